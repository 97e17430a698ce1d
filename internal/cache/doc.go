// Package cache provides a file-based cache for generation model completions.
//
// Entries are keyed by a SHA-256 hash of the provider name, model, and prompt
// text. Each entry stores the completion text with a creation timestamp and a
// TTL in seconds; expired entries are skipped on read.
//
// The default directory is $XDG_CACHE_HOME/codeoverview (or the OS
// equivalent). The cache is off unless enabled in configuration.
package cache
