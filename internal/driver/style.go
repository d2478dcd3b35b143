package driver

import (
	"bytes"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/editorconfig/editorconfig-core-go/v2"
	"github.com/spf13/afero"
	"gitlab.com/tozd/go/errors"
)

// Style is the whitespace convention applied to written artifacts.
type Style struct {
	Indent       string
	EOL          string
	FinalNewline bool
}

// DefaultStyle is used when no .editorconfig applies.
var DefaultStyle = Style{Indent: "  ", EOL: "\n", FinalNewline: true}

// styles resolves Style per artifact path from one .editorconfig file.
type styles struct {
	ec  *editorconfig.Editorconfig
	dir string
}

func loadStyles(fsys afero.Fs, path string) (*styles, error) {
	if path == "" {
		return &styles{}, nil
	}
	src, err := afero.ReadFile(fsys, path)
	if err != nil {
		return nil, errors.Errorf("reading editorconfig: %w", err)
	}
	ec, err := editorconfig.Parse(bytes.NewReader(src))
	if err != nil {
		return nil, errors.Errorf("parsing editorconfig %s: %w", path, err)
	}
	return &styles{ec: ec, dir: filepath.Dir(path)}, nil
}

// For returns the style of the file at path.
func (s *styles) For(path string) (Style, error) {
	style := DefaultStyle
	if s == nil || s.ec == nil {
		return style, nil
	}

	name := path
	if rel, err := filepath.Rel(s.dir, path); err == nil {
		name = rel
	}
	def, err := s.ec.GetDefinitionForFilename(filepath.ToSlash(name))
	if err != nil {
		return style, errors.Errorf("resolving editorconfig for %s: %w", path, err)
	}

	switch strings.ToLower(def.IndentStyle) {
	case "tab":
		style.Indent = "\t"
	case "space":
		if n, err := strconv.Atoi(def.IndentSize); err == nil && n > 0 {
			style.Indent = strings.Repeat(" ", n)
		}
	}

	switch strings.ToLower(def.EndOfLine) {
	case "crlf":
		style.EOL = "\r\n"
	case "cr":
		style.EOL = "\r"
	}

	if def.InsertFinalNewline != nil {
		style.FinalNewline = *def.InsertFinalNewline
	}
	return style, nil
}

// Apply rewrites line endings and the trailing newline of text, which uses
// "\n" line endings. Indentation is applied at generation time.
func (s Style) Apply(text string) string {
	text = strings.TrimRight(text, "\n")
	if s.FinalNewline {
		text += "\n"
	}
	if s.EOL != "\n" && s.EOL != "" {
		text = strings.ReplaceAll(text, "\n", s.EOL)
	}
	return text
}
