// Package redact removes secrets from diffs and repository files before they
// are uploaded for overview generation.
//
// Detection uses regex heuristics for common secret shapes, including Google
// API keys and OAuth tokens, Firebase ID tokens, private key blocks and
// provider API keys. Files whose paths match configured globs are withheld
// entirely instead of being scanned.
package redact
