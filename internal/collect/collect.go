package collect

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dshills/codeoverview/internal/redact"
)

// Separator joins the contents of consecutive files.
const Separator = "\n\n"

// Options controls how a directory is collected.
type Options struct {
	// Redactor, when set, is applied to every file before it is joined.
	Redactor *redact.Redactor
}

// Files lists every non-directory entry under root, depth-first with entries
// of a directory in lexical order. Hidden files and build output are not
// skipped.
func Files(root string) ([]string, error) {
	var out []string
	if err := walk(root, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func walk(dir string, out *[]string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("reading directory %s: %w", dir, err)
	}
	for _, e := range entries {
		p := filepath.Join(dir, e.Name())
		if e.IsDir() {
			if err := walk(p, out); err != nil {
				return err
			}
			continue
		}
		*out = append(*out, p)
	}
	return nil
}

// Dir reads every file under root and returns their contents joined by
// Separator. Any unreadable file or directory aborts collection.
func Dir(root string, opts Options) (string, error) {
	files, err := Files(root)
	if err != nil {
		return "", err
	}

	parts := make([]string, 0, len(files))
	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			return "", fmt.Errorf("reading %s: %w", f, err)
		}
		content := string(data)
		if opts.Redactor != nil {
			rel, relErr := filepath.Rel(root, f)
			if relErr != nil {
				rel = f
			}
			content = opts.Redactor.File(rel, content)
		}
		parts = append(parts, content)
	}
	return strings.Join(parts, Separator), nil
}
