// Package tokentest maps design-token documents to Tailwind directives and
// generates Jest tests verifying them.
package tokentest

import (
	"github.com/spf13/afero"
	"gitlab.com/tozd/go/errors"

	"github.com/jsvensson/tokentest/internal/tokens"
)

// Load reads a JSON or YAML token document from path.
func Load(path string) (*tokens.Document, error) {
	return LoadFS(afero.NewOsFs(), path)
}

// LoadFS reads a token document from fsys.
func LoadFS(fsys afero.Fs, path string) (*tokens.Document, error) {
	src, err := afero.ReadFile(fsys, path)
	if err != nil {
		return nil, errors.Errorf("reading token document: %w", err)
	}
	doc, err := tokens.Parse(src)
	if err != nil {
		return nil, errors.WithDetails(errors.Errorf("loading tokens: %w", err), "file", path)
	}
	return doc, nil
}
