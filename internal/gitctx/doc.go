// Package gitctx takes diffs straight from a git repository so a review can
// be requested without writing a diff file first.
//
// It shells out to git for unstaged, staged and revision-range diffs, drops
// file sections matching exclude globs and truncates the result to an
// optional byte limit.
package gitctx
