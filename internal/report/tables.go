package report

import (
	"fmt"
	"strings"

	"github.com/jsvensson/tokentest/internal/directive"
	"github.com/jsvensson/tokentest/internal/driver"
	"github.com/jsvensson/tokentest/internal/tokens"
)

// Run summarizes a driver run, one row per artifact.
func Run(r *driver.Report) *Table {
	t := &Table{
		Title:   "Generated tests",
		Headers: []string{"Source", "Key", "File", "Outcome", "Error"},
	}
	for _, res := range r.Results {
		msg := ""
		if res.Err != nil {
			msg = res.Err.Error()
		}
		t.Rows = append(t.Rows, []string{res.Source, res.Key, res.Path, string(res.Outcome), msg})
	}
	for _, w := range r.Warnings {
		t.Notes = append(t.Notes, "warning: "+w.Error())
	}
	t.Notes = append(t.Notes, fmt.Sprintf("%d documents, %d written, %d unchanged, %d stale, %d failed",
		len(r.Documents), r.Count(driver.Written), r.Count(driver.Unchanged), r.Count(driver.Stale), r.Count(driver.Failed)))
	return t
}

// Inspect lists the directives of every node in doc. When only is non-empty
// just that key is listed. The root row uses the viewport-filling variant.
func Inspect(doc *tokens.Document, only string) (*Table, error) {
	root, err := tokens.FindRootKey(doc)
	if err != nil {
		return nil, err
	}

	t := &Table{
		Title:   "Directives",
		Headers: []string{"Key", "Name", "Directives", "Background"},
	}
	if w := root.Warning(); w != nil {
		t.Notes = append(t.Notes, "warning: "+w.Error())
	}

	keys := doc.Keys()
	if only != "" {
		if _, err := doc.Lookup(only); err != nil {
			return nil, err
		}
		keys = []string{only}
	}

	for _, key := range keys {
		n, ok := doc.Node(key)
		if !ok || n == nil {
			t.Rows = append(t.Rows, []string{key, tokens.ShortName(key), "(no data)", ""})
			continue
		}
		res, err := directive.Map(n, directive.Options{IsRoot: root.Found && key == root.Key})
		if err != nil {
			return nil, err
		}
		name := tokens.ShortName(key)
		if root.Found && key == root.Key {
			name += " (root)"
		}
		t.Rows = append(t.Rows, []string{key, name, code(res.Directives), "`" + res.ActualBackground + "`"})
	}
	return t, nil
}

func code(directives []string) string {
	if len(directives) == 0 {
		return ""
	}
	return "`" + strings.Join(directives, " ") + "`"
}
