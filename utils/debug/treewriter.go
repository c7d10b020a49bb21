// Package debug contains helpers producing human readable dumps.
package debug

import (
	"fmt"
	"strconv"
	"strings"
)

// TreeWriter accumulates indented lines of a tree dump.
type TreeWriter struct {
	w      *strings.Builder
	indent string
}

// NewTreeWriter creates writer indenting each level by width spaces, width
// below 1 means 2.
func NewTreeWriter(width int) *TreeWriter {
	if width < 1 {
		width = 2
	}
	return &TreeWriter{
		w:      &strings.Builder{},
		indent: strings.Repeat(" ", width),
	}
}

func (tw *TreeWriter) String() string {
	return tw.w.String()
}

func (tw *TreeWriter) pad(depth int) {
	for range depth {
		tw.w.WriteString(tw.indent)
	}
}

// Line writes formatted line at depth.
func (tw *TreeWriter) Line(depth int, format string, args ...any) {
	tw.pad(depth)
	fmt.Fprintf(tw.w, format, args...)
	tw.w.WriteByte('\n')
}

// Field writes "label: value" line with value quoted, empty values are left
// as is.
func (tw *TreeWriter) Field(depth int, label, value string) {
	tw.pad(depth)
	tw.w.WriteString(label)
	tw.w.WriteString(": ")
	tw.w.WriteString(encodeText(value))
	tw.w.WriteByte('\n')
}

func encodeText(raw string) string {
	if raw == "" {
		return raw
	}
	return strconv.Quote(raw)
}
