package lsp

import (
	"strings"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/jsvensson/tokentest/internal/config"
)

// formatEdits returns a single whole-document edit when a project file is
// not canonically formatted. Token documents are left alone.
func formatEdits(uri, content string) ([]protocol.TextEdit, error) {
	if !strings.HasSuffix(uri, ".hcl") {
		return []protocol.TextEdit{}, nil
	}
	formatted, err := config.Format(content)
	if err != nil {
		return nil, err
	}
	if formatted == content {
		return []protocol.TextEdit{}, nil
	}

	lines := splitLines(content)
	last := len(lines) - 1
	return []protocol.TextEdit{{
		Range: protocol.Range{
			Start: protocol.Position{},
			End:   protocol.Position{Line: uint32(last), Character: uint32(len(lines[last]))},
		},
		NewText: formatted,
	}}, nil
}

// textDocumentFormatting handles textDocument/formatting requests.
func (s *Server) textDocumentFormatting(_ *glsp.Context, params *protocol.DocumentFormattingParams) ([]protocol.TextEdit, error) {
	uri := string(params.TextDocument.URI)
	content, ok := s.docs.Get(uri)
	if !ok {
		return nil, nil
	}
	return formatEdits(uri, content)
}
