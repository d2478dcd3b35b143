// Package generate renders Jest verification code for mapped token nodes.
package generate

import (
	"bytes"
	"embed"
	"path"
	"strings"
	"text/template"

	"gitlab.com/tozd/go/errors"

	"github.com/jsvensson/tokentest/internal/directive"
	"github.com/jsvensson/tokentest/internal/tokens"
)

// ErrPlaceholderCollision is returned when a node's debug placeholder equals
// its actual background, which would make the two modes indistinguishable.
var ErrPlaceholderCollision = errors.Base("placeholder equals actual background")

// Mode selects which rendering of the component a test case verifies.
type Mode int

const (
	// Debug renders placeholders and frame names instead of real backgrounds.
	Debug Mode = iota
	// Final renders real backgrounds and no frame names.
	Final
)

func (m Mode) String() string {
	switch m {
	case Debug:
		return "debug"
	case Final:
		return "final"
	}
	return "unknown"
}

const (
	debugTitle = "should render correctly with debug styles when isDebug is true"
	finalTitle = "should render correctly with final styles when isDebug is false or not provided"

	defaultIndent = "  "
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var templates = template.Must(
	template.New("tokentest").Funcs(template.FuncMap{
		"quote":   quote,
		"classes": classes,
	}).ParseFS(templateFS, "templates/*.tmpl"),
)

// Generator renders test files against one root component.
type Generator struct {
	// Component is the root component rendered by every test.
	Component string
	// ComponentPath is the directory of Component relative to the output file.
	ComponentPath string
	// Source names the token document in the generated header.
	Source string
	// Indent is one level of indentation; two spaces when empty.
	Indent string
	// Placeholders maps lower-case short names to the debug placeholder
	// directive the renderer applies instead of the actual background.
	Placeholders map[string]string
}

// Artifact is one generated test file.
type Artifact struct {
	Key         string
	ShortName   string
	DisplayName string
	Root        bool
	Text        string
}

// FileName is the artifact's file name inside the output directory.
func (a *Artifact) FileName() string {
	return a.ShortName + ".test.js"
}

type caseData struct {
	Title       string
	Component   string
	Debug       bool
	Frame       bool
	DisplayName string
	Core        []string
	Background  string
	Placeholder string
}

type fileData struct {
	FileName    string
	Source      string
	Component   string
	Import      string
	DisplayName string
	TestID      string
	Debug       string
	Final       string
	Classes     []string
}

// Render produces the test case verifying one mode of a node. Both modes
// assert exactly core.Directives; they differ only in the background and
// visible-name assertions, taken from full.ActualBackground and id.
func (g *Generator) Render(id Identity, core, full directive.Result, mode Mode) (string, error) {
	text, err := g.renderCase(id, core, full, mode)
	if err != nil {
		return "", err
	}
	return reindent(text, g.indent()), nil
}

// Frame generates the debug and final test cases for the node under key.
func (g *Generator) Frame(doc *tokens.Document, key string) (*Artifact, error) {
	n, err := doc.Lookup(key)
	if err != nil {
		return nil, err
	}
	id := NewIdentity(key, n)
	if id.ShortName == "" {
		return nil, errors.Errorf("key %q has an empty name", key)
	}

	core, full, err := directive.MapPair(n, false)
	if err != nil {
		return nil, errors.WithDetails(err, "key", key)
	}

	debug, err := g.renderCase(id, core, full, Debug)
	if err != nil {
		return nil, err
	}
	final, err := g.renderCase(id, core, full, Final)
	if err != nil {
		return nil, err
	}

	a := &Artifact{Key: key, ShortName: id.ShortName, DisplayName: id.DisplayName}
	data := g.fileData(a)
	data.Debug = indentBlock(debug)
	data.Final = indentBlock(final)

	text, err := g.execute("frame", data)
	if err != nil {
		return nil, err
	}
	a.Text = reindent(text, g.indent())
	return a, nil
}

// Root generates the test for the root node, asserting its full directive
// set including the background.
func (g *Generator) Root(doc *tokens.Document, key string) (*Artifact, error) {
	n, err := doc.Lookup(key)
	if err != nil {
		return nil, err
	}
	id := NewIdentity(key, n)
	if id.ShortName == "" {
		return nil, errors.Errorf("key %q has an empty name", key)
	}

	full, err := directive.Map(n, directive.Options{IsRoot: true, IncludeBackground: true})
	if err != nil {
		return nil, errors.WithDetails(err, "key", key)
	}

	a := &Artifact{Key: key, ShortName: id.ShortName, DisplayName: id.DisplayName, Root: true}
	data := g.fileData(a)
	data.Classes = full.Directives

	text, err := g.execute("root", data)
	if err != nil {
		return nil, err
	}
	a.Text = reindent(text, g.indent())
	return a, nil
}

func (g *Generator) renderCase(id Identity, core, full directive.Result, mode Mode) (string, error) {
	if g.Component == "" {
		return "", errors.New("generator has no component")
	}

	data := caseData{
		Component:   g.Component,
		Debug:       mode == Debug,
		Frame:       id.Frame,
		DisplayName: id.DisplayName,
		Core:        core.Directives,
		Background:  full.ActualBackground,
	}

	switch mode {
	case Debug:
		data.Title = debugTitle
		data.Placeholder = g.Placeholders[strings.ToLower(id.ShortName)]
		if data.Placeholder != "" && data.Placeholder == full.ActualBackground {
			return "", errors.WithDetails(ErrPlaceholderCollision, "key", id.Key, "placeholder", data.Placeholder)
		}
	case Final:
		data.Title = finalTitle
	default:
		return "", errors.Errorf("unknown mode %d", mode)
	}

	return g.execute("case", data)
}

func (g *Generator) fileData(a *Artifact) fileData {
	return fileData{
		FileName:    a.FileName(),
		Source:      g.Source,
		Component:   g.Component,
		Import:      g.importPath(),
		DisplayName: a.DisplayName,
		TestID:      a.ShortName,
	}
}

func (g *Generator) execute(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", errors.Errorf("executing template %s: %w", name, err)
	}
	return buf.String(), nil
}

func (g *Generator) importPath() string {
	if g.ComponentPath == "" {
		return "./" + g.Component
	}
	return path.Join(g.ComponentPath, g.Component)
}

func (g *Generator) indent() string {
	if g.Indent == "" {
		return defaultIndent
	}
	return g.Indent
}

// quote renders s as a single-quoted JavaScript string literal.
func quote(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `'`, `\'`, "\n", `\n`)
	return "'" + r.Replace(s) + "'"
}

func classes(list []string) string {
	quoted := make([]string, len(list))
	for i, c := range list {
		quoted[i] = quote(c)
	}
	return strings.Join(quoted, ", ")
}
