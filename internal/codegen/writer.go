// Package codegen provides the script-emission machinery for psybuilder:
// an indentation-aware text writer, per-generation session state, the
// condition-test dispatch that produces start/stop guards, and the
// contract every component implements to contribute code.
package codegen

import (
	"fmt"
	"strings"
)

// IndentStep is the indentation unit of the generated Python source.
const IndentStep = "    "

// Writer accumulates generated source text at a tracked indentation
// level. It counts pushes and pops so a generation pass can assert that
// every component left the level exactly where it found it.
type Writer struct {
	buf    strings.Builder
	level  int
	pushes int
	pops   int
}

// NewWriter creates a writer at indentation level zero.
func NewWriter() *Writer {
	return &Writer{}
}

// Indent increases the indentation level by one.
func (w *Writer) Indent() {
	w.level++
	w.pushes++
}

// Dedent decreases the indentation level by one. Dedenting below zero is
// a programming error in a component's emission hooks.
func (w *Writer) Dedent() error {
	if w.level == 0 {
		return fmt.Errorf("indentation underflow: dedent at level 0")
	}
	w.level--
	w.pops++
	return nil
}

// Level returns the current indentation level.
func (w *Writer) Level() int {
	return w.level
}

// Balance returns the total indentation pushes and pops seen so far.
func (w *Writer) Balance() (pushes, pops int) {
	return w.pushes, w.pops
}

// WriteLines writes a block of text, indenting every non-empty line at
// the current level. The block may contain embedded newlines; a missing
// trailing newline is added.
func (w *Writer) WriteLines(block string) {
	lines := strings.Split(block, "\n")
	// A trailing newline in the block produces one empty tail element;
	// drop it so callers can end blocks either way.
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	for _, line := range lines {
		if line == "" {
			w.buf.WriteString("\n")
			continue
		}
		w.buf.WriteString(strings.Repeat(IndentStep, w.level))
		w.buf.WriteString(line)
		w.buf.WriteString("\n")
	}
}

// WriteLinesf formats according to format and writes the result as an
// indented block.
func (w *Writer) WriteLinesf(format string, args ...any) {
	w.WriteLines(fmt.Sprintf(format, args...))
}

// BlankLine writes a single empty line.
func (w *Writer) BlankLine() {
	w.buf.WriteString("\n")
}

// String returns everything written so far.
func (w *Writer) String() string {
	return w.buf.String()
}
