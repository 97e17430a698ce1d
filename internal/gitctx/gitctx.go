package gitctx

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
)

// ErrEmptyDiff is returned when git reports no changes.
var ErrEmptyDiff = errors.New("no changes to review")

// Options controls how a diff is taken.
type Options struct {
	// Dir is the working directory git runs in. Empty means the current one.
	Dir          string
	ContextLines int
	// Exclude drops whole file sections whose path matches any glob.
	Exclude []string
	// MaxBytes truncates the diff. Zero means no limit.
	MaxBytes int
}

// Result is a diff ready to be submitted, with the files it touches.
type Result struct {
	Diff  string
	Files []string
}

// Unstaged returns the diff of the working tree against the index.
func Unstaged(ctx context.Context, opts Options) (Result, error) {
	return diff(ctx, opts)
}

// Staged returns the diff of the index against HEAD.
func Staged(ctx context.Context, opts Options) (Result, error) {
	return diff(ctx, opts, "--cached")
}

// Range returns the diff for a revision range such as origin/main...HEAD.
func Range(ctx context.Context, revRange string, opts Options) (Result, error) {
	if strings.TrimSpace(revRange) == "" {
		return Result{}, errors.New("revision range is required")
	}
	if strings.HasPrefix(revRange, "-") {
		return Result{}, fmt.Errorf("invalid revision range %q", revRange)
	}
	return diff(ctx, opts, revRange)
}

func diff(ctx context.Context, opts Options, extra ...string) (Result, error) {
	args := []string{"diff", "--no-color", "--no-ext-diff"}
	if opts.ContextLines > 0 {
		args = append(args, fmt.Sprintf("-U%d", opts.ContextLines))
	}
	args = append(args, extra...)
	args = append(args, "--")

	out, err := git(ctx, opts.Dir, args...)
	if err != nil {
		return Result{}, err
	}
	return buildResult(out, opts)
}

func buildResult(diff string, opts Options) (Result, error) {
	// Excluded files are dropped before truncation so they don't use up the budget.
	if len(opts.Exclude) > 0 {
		diff = filterExcluded(diff, opts.Exclude)
	}
	if strings.TrimSpace(diff) == "" {
		return Result{}, ErrEmptyDiff
	}
	files := extractFiles(diff)
	if opts.MaxBytes > 0 && len(diff) > opts.MaxBytes {
		diff = diff[:opts.MaxBytes] + "\n... (diff truncated)\n"
	}
	return Result{Diff: diff, Files: files}, nil
}

func extractFiles(diff string) []string {
	var files []string
	seen := make(map[string]bool)
	for _, line := range strings.Split(diff, "\n") {
		if f, ok := strings.CutPrefix(line, "+++ b/"); ok && !seen[f] {
			seen[f] = true
			files = append(files, f)
		}
	}
	return files
}

func filterExcluded(diff string, excludes []string) string {
	var kept []string
	for _, section := range splitSections(diff) {
		path := sectionPath(section)
		if path == "" || !MatchesAny(path, excludes) {
			kept = append(kept, section)
		}
	}
	return strings.Join(kept, "")
}

func splitSections(diff string) []string {
	var sections []string
	var current strings.Builder
	for _, line := range strings.SplitAfter(diff, "\n") {
		if strings.HasPrefix(line, "diff --git") && current.Len() > 0 {
			sections = append(sections, current.String())
			current.Reset()
		}
		current.WriteString(line)
	}
	if current.Len() > 0 {
		sections = append(sections, current.String())
	}
	return sections
}

// sectionPath returns the new path of a file section, or the old one for a
// deletion.
func sectionPath(section string) string {
	var old string
	for _, line := range strings.Split(section, "\n") {
		if p, ok := strings.CutPrefix(line, "+++ b/"); ok {
			return p
		}
		if p, ok := strings.CutPrefix(line, "--- a/"); ok {
			old = p
		}
	}
	return old
}

// MatchesAny returns true if the path matches any of the given glob patterns.
// A leading "**/" also matches at any depth.
func MatchesAny(path string, patterns []string) bool {
	for _, pattern := range patterns {
		if matched, err := filepath.Match(pattern, path); err == nil && matched {
			return true
		}
		clean, ok := strings.CutPrefix(pattern, "**/")
		if !ok {
			continue
		}
		if matched, err := filepath.Match(clean, filepath.Base(path)); err == nil && matched {
			return true
		}
		if matched, err := filepath.Match(clean, path); err == nil && matched {
			return true
		}
	}
	return false
}

func git(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("git %s: %s", args[0], msg)
		}
		return "", fmt.Errorf("git %s: %w", args[0], err)
	}
	return string(out), nil
}
