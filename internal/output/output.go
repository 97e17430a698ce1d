package output

import (
	"fmt"
	"io"
	"os"
)

// Report is the outcome of one overview request.
type Report struct {
	Overview   string `json:"overview"`
	OverviewID string `json:"overview_id"`
	URL        string `json:"url"`
}

// Writer writes a report in a specific format.
type Writer interface {
	Write(w io.Writer, report Report) error
}

// GetWriter returns a writer for the specified format.
func GetWriter(format string) (Writer, error) {
	switch format {
	case "text":
		return &TextWriter{}, nil
	case "json":
		return &JSONWriter{}, nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}

// WriteReport writes the report to outPath, or to stdout when outPath is empty.
func WriteReport(report Report, writer Writer, outPath string, stdout io.Writer) error {
	if outPath == "" {
		return writer.Write(stdout, report)
	}
	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	if err := writer.Write(f, report); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
