package redact

import (
	"path/filepath"
	"regexp"
	"strings"
)

const placeholder = "[REDACTED]"

// DefaultPaths are the path globs whose files are withheld entirely when
// collecting repository context.
var DefaultPaths = []string{
	"**/.env",
	"**/.env.*",
	"**/.dev.vars",
	"**/*.pem",
	"**/*secrets*",
	"**/service-account*.json",
}

var secretPatterns = []*regexp.Regexp{
	// API keys in assignments
	regexp.MustCompile(`(?i)(api[_-]?key|apikey|api[_-]?secret)\s*[:=]\s*["']?([A-Za-z0-9/+=_-]{20,})["']?`),
	// AWS access key IDs
	regexp.MustCompile(`AKIA[0-9A-Z]{16}`),
	regexp.MustCompile(`(?i)(aws[_-]?secret[_-]?access[_-]?key)\s*[:=]\s*["']?([A-Za-z0-9/+=]{40})["']?`),
	regexp.MustCompile(`(?i)(secret|token|password|passwd|credential)\s*[:=]\s*["']([^"']{8,})["']`),
	regexp.MustCompile(`(?i)Bearer\s+[A-Za-z0-9._-]{20,}`),
	// JWTs, including Firebase ID tokens
	regexp.MustCompile(`eyJ[A-Za-z0-9_-]{10,}\.eyJ[A-Za-z0-9_-]{10,}\.[A-Za-z0-9_-]{10,}`),
	regexp.MustCompile(`-----BEGIN\s+(RSA\s+|EC\s+)?PRIVATE KEY-----`),
	// Google API keys and OAuth access tokens
	regexp.MustCompile(`AIza[0-9A-Za-z_-]{35}`),
	regexp.MustCompile(`ya29\.[0-9A-Za-z_-]{20,}`),
	regexp.MustCompile(`gh[pousr]_[A-Za-z0-9_]{36,}`),
	regexp.MustCompile(`xox[bporas]-[A-Za-z0-9-]{10,}`),
	regexp.MustCompile(`sk-ant-[A-Za-z0-9_-]{20,}`),
	regexp.MustCompile(`sk-[A-Za-z0-9]{20,}`),
	regexp.MustCompile(`(?i)(key|secret|token)\s*[:=]\s*["']?[0-9a-f]{32,}["']?`),
}

// Secrets replaces detected secrets in text with [REDACTED].
func Secrets(text string) string {
	result := text
	for _, pat := range secretPatterns {
		result = pat.ReplaceAllLiteralString(result, placeholder)
	}
	return result
}

// ShouldRedactPath checks if a file path matches any of the path patterns.
// A leading "**/" matches the pattern against the base name at any depth.
func ShouldRedactPath(path string, patterns []string) bool {
	path = filepath.ToSlash(path)
	for _, pattern := range patterns {
		if matched, err := filepath.Match(pattern, path); err == nil && matched {
			return true
		}
		if rest, ok := strings.CutPrefix(pattern, "**/"); ok {
			if matched, err := filepath.Match(rest, filepath.Base(path)); err == nil && matched {
				return true
			}
		}
	}
	return false
}

// Redactor applies secret and path redaction to outgoing content. The zero
// value passes everything through.
type Redactor struct {
	Enabled bool
	Paths   []string
}

// New returns an enabled Redactor. Nil paths select DefaultPaths.
func New(paths []string) *Redactor {
	if paths == nil {
		paths = DefaultPaths
	}
	return &Redactor{Enabled: true, Paths: paths}
}

// Text redacts secrets in free text such as a diff.
func (r *Redactor) Text(s string) string {
	if r == nil || !r.Enabled {
		return s
	}
	return Secrets(s)
}

// File redacts the content of the file at path, withholding it entirely when
// the path matches a configured pattern.
func (r *Redactor) File(path, content string) string {
	if r == nil || !r.Enabled {
		return content
	}
	if ShouldRedactPath(path, r.Paths) {
		return placeholder + " (file content redacted by path policy)"
	}
	return Secrets(content)
}
