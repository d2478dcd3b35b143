// Package report renders run summaries and node inspections as Markdown.
package report

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/term"
)

// Table is a titled Markdown table with optional trailing notes.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
	Notes   []string
}

// Markdown renders t. Pipes inside cells are escaped and empty cells show
// as a dash.
func (t *Table) Markdown() string {
	var b strings.Builder
	if t.Title != "" {
		fmt.Fprintf(&b, "## %s\n\n", t.Title)
	}

	if len(t.Headers) > 0 {
		b.WriteString(row(t.Headers))
		sep := make([]string, len(t.Headers))
		for i := range sep {
			sep[i] = "---"
		}
		b.WriteString(row(sep))
		for _, r := range t.Rows {
			b.WriteString(row(pad(r, len(t.Headers))))
		}
	}

	if len(t.Notes) > 0 {
		b.WriteString("\n")
		for _, n := range t.Notes {
			fmt.Fprintf(&b, "- %s\n", n)
		}
	}
	return b.String()
}

func row(cells []string) string {
	escaped := make([]string, len(cells))
	for i, c := range cells {
		if c == "" {
			c = "-"
		}
		escaped[i] = strings.ReplaceAll(c, "|", `\|`)
	}
	return "| " + strings.Join(escaped, " | ") + " |\n"
}

func pad(cells []string, n int) []string {
	if len(cells) >= n {
		return cells[:n]
	}
	out := make([]string, n)
	copy(out, cells)
	return out
}

// Write prints markdown to w, styled by glamour when w is a terminal.
func Write(w io.Writer, markdown string) error {
	if !isTerminal(w) {
		_, err := io.WriteString(w, markdown)
		return err
	}

	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle())
	if err != nil {
		return errors.Errorf("creating renderer: %w", err)
	}
	out, err := r.Render(markdown)
	if err != nil {
		return errors.Errorf("rendering report: %w", err)
	}
	_, err = io.WriteString(w, out)
	return err
}

func isTerminal(w io.Writer) bool {
	if file, ok := w.(*os.File); ok {
		return term.IsTerminal(int(file.Fd()))
	}
	return false
}
