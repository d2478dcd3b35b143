package lsp

import (
	"fmt"
	"strings"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/jsvensson/tokentest/internal/color"
	"github.com/jsvensson/tokentest/internal/directive"
	"github.com/jsvensson/tokentest/internal/generate"
	"github.com/jsvensson/tokentest/internal/tokens"
)

// posInRange returns true if pos is within the range [r.Start, r.End).
// The end position is exclusive.
func posInRange(pos protocol.Position, r protocol.Range) bool {
	if pos.Line < r.Start.Line || pos.Line > r.End.Line {
		return false
	}
	if pos.Line == r.Start.Line && pos.Character < r.Start.Character {
		return false
	}
	if pos.Line == r.End.Line && pos.Character >= r.End.Character {
		return false
	}
	return true
}

// extractText extracts the source text at a given LSP range from document content.
func extractText(content string, r protocol.Range) string {
	lines := strings.Split(content, "\n")

	startLine := int(r.Start.Line)
	endLine := int(r.End.Line)

	if startLine >= len(lines) {
		return ""
	}
	if endLine >= len(lines) {
		endLine = len(lines) - 1
	}

	if startLine == endLine {
		line := lines[startLine]
		startChar := int(r.Start.Character)
		endChar := int(r.End.Character)
		if startChar > len(line) {
			startChar = len(line)
		}
		if endChar > len(line) {
			endChar = len(line)
		}
		return line[startChar:endChar]
	}

	// Multi-line range
	var parts []string
	for i := startLine; i <= endLine; i++ {
		line := lines[i]
		if i == startLine {
			startChar := int(r.Start.Character)
			if startChar > len(line) {
				startChar = len(line)
			}
			parts = append(parts, line[startChar:])
		} else if i == endLine {
			endChar := int(r.End.Character)
			if endChar > len(line) {
				endChar = len(line)
			}
			parts = append(parts, line[:endChar])
		} else {
			parts = append(parts, line)
		}
	}
	return strings.Join(parts, "\n")
}

// hover describes the color or node key under the cursor. Colors show their
// display form and background directive; node keys show the directives the
// node maps to. Returns nil when nothing is under the cursor.
func hover(result *AnalysisResult, pos protocol.Position) *protocol.Hover {
	if result == nil {
		return nil
	}

	for _, cl := range result.Colors {
		if !posInRange(pos, cl.Range) {
			continue
		}
		c := cl.Color
		md := fmt.Sprintf("`%s` \u00b7 `%s`", color.Display(&c), directive.Background(&c))
		return markdownHover(md, cl.Range)
	}

	for _, nl := range result.Nodes {
		if !posInRange(pos, nl.Range) {
			continue
		}
		return markdownHover(describeNode(result, nl), nl.Range)
	}

	return nil
}

func describeNode(result *AnalysisResult, nl NodeLocation) string {
	short := tokens.ShortName(nl.Key)
	title := fmt.Sprintf("**%s** `%s`", generate.DisplayName(short), nl.Key)
	if result.IsRoot(nl.Key) {
		title += " (root)"
	}
	if nl.Node == nil {
		return title + "\n\nNo node data."
	}

	res, err := directive.Map(nl.Node, directive.Options{IsRoot: result.IsRoot(nl.Key)})
	if err != nil {
		return title + "\n\n" + err.Error()
	}

	classes := "none"
	if len(res.Directives) > 0 {
		classes = "`" + strings.Join(res.Directives, " ") + "`"
	}
	return fmt.Sprintf("%s\n\nDirectives: %s\n\nBackground: `%s`", title, classes, res.ActualBackground)
}

func markdownHover(md string, rng protocol.Range) *protocol.Hover {
	return &protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.MarkupKindMarkdown,
			Value: md,
		},
		Range: &rng,
	}
}

// textDocumentHover handles textDocument/hover requests.
func (s *Server) textDocumentHover(_ *glsp.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	return hover(s.docs.Result(string(params.TextDocument.URI)), params.Position), nil
}
