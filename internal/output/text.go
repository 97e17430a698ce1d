package output

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/mitchellh/go-wordwrap"
)

const (
	banner  = "=== AI Code Review ==="
	linkBar = "=======PLEASE SEE MORE INFORMATION ABOUT YOUR CODE OVERVIEW ON THE LINK BELOW ==========="
)

// TextWriter outputs the overview between a banner and the shareable link.
type TextWriter struct {
	// Width wraps the overview at word boundaries. Zero leaves it as is.
	Width uint
	// Color enables ANSI styling of the banner and link.
	Color bool
}

func (t *TextWriter) Write(w io.Writer, report Report) error {
	ew := &errWriter{w: w}
	heading := t.style(color.Bold, color.FgCyan)
	link := t.style(color.Underline, color.FgBlue)

	text := report.Overview
	if t.Width > 0 {
		text = wordwrap.WrapString(text, t.Width)
	}

	ew.printf("\n%s\n\n", heading.Sprint(banner))
	ew.println(text)
	ew.printf("\n%s\n", heading.Sprint(linkBar))
	ew.println(link.Sprint(report.URL))
	return ew.err
}

func (t *TextWriter) style(attrs ...color.Attribute) *color.Color {
	c := color.New(attrs...)
	if t.Color {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c
}

// Errorf writes a failure line in red when color is on.
func Errorf(w io.Writer, useColor bool, format string, args ...any) {
	c := color.New(color.FgRed)
	if useColor {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	_, _ = c.Fprintf(w, "Error: "+format+"\n", args...)
}

// errWriter wraps an io.Writer and captures the first error.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...any) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}

func (ew *errWriter) println(s string) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintln(ew.w, s)
}
