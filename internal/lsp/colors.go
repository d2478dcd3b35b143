package lsp

import (
	"math"
	"strconv"
	"strings"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/jsvensson/tokentest/internal/color"
)

// colorToLSP converts a color to a protocol.Color, clamping channels to [0, 1].
func colorToLSP(c color.Color) protocol.Color {
	r, g, b := c.RGB255()
	return protocol.Color{
		Red:   float32(r) / 255.0,
		Green: float32(g) / 255.0,
		Blue:  float32(b) / 255.0,
		Alpha: float32(math.Max(0, math.Min(1, c.Alpha()))),
	}
}

// colorFromLSP converts a protocol.Color back, rounding channels to four
// decimals. The alpha channel is dropped when fully opaque.
func colorFromLSP(p protocol.Color) color.Color {
	c := color.RGB(round4(p.Red), round4(p.Green), round4(p.Blue))
	if p.Alpha < 1 {
		c = color.RGBA(c.R, c.G, c.B, round4(p.Alpha))
	}
	return c
}

func round4(v float32) float64 {
	return math.Round(float64(v)*1e4) / 1e4
}

// documentColors converts the analysis result's color locations into LSP ColorInformation items.
func documentColors(result *AnalysisResult) []protocol.ColorInformation {
	if result == nil {
		return []protocol.ColorInformation{}
	}

	infos := make([]protocol.ColorInformation, 0, len(result.Colors))
	for _, cl := range result.Colors {
		infos = append(infos, protocol.ColorInformation{
			Range: cl.Range,
			Color: colorToLSP(cl.Color),
		})
	}
	return infos
}

// colorPresentation offers the picked color as a replacement object. Only
// inline objects are rewritten; JSON keeps its quoted keys.
func colorPresentation(content string, params *protocol.ColorPresentationParams) []protocol.ColorPresentation {
	text := strings.TrimSpace(extractText(content, params.Range))
	if !strings.HasPrefix(text, "{") || !strings.HasSuffix(text, "}") {
		return []protocol.ColorPresentation{}
	}

	c := colorFromLSP(params.Color)
	quoted := strings.Contains(text, `"r"`)

	return []protocol.ColorPresentation{
		{
			Label: color.Display(&c),
			TextEdit: &protocol.TextEdit{
				Range:   params.Range,
				NewText: colorObject(c, quoted),
			},
		},
	}
}

func colorObject(c color.Color, quoted bool) string {
	key := func(k string) string {
		if quoted {
			return `"` + k + `"`
		}
		return k
	}
	num := func(v float64) string {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}

	parts := []string{
		key("r") + ": " + num(c.R),
		key("g") + ": " + num(c.G),
		key("b") + ": " + num(c.B),
	}
	if !c.IsOpaque() {
		parts = append(parts, key("a")+": "+num(c.Alpha()))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// textDocumentDocumentColor handles textDocument/documentColor requests.
func (s *Server) textDocumentDocumentColor(_ *glsp.Context, params *protocol.DocumentColorParams) ([]protocol.ColorInformation, error) {
	return documentColors(s.docs.Result(string(params.TextDocument.URI))), nil
}

// textDocumentColorPresentation handles textDocument/colorPresentation requests.
func (s *Server) textDocumentColorPresentation(_ *glsp.Context, params *protocol.ColorPresentationParams) ([]protocol.ColorPresentation, error) {
	content, ok := s.docs.Get(string(params.TextDocument.URI))
	if !ok {
		return []protocol.ColorPresentation{}, nil
	}
	return colorPresentation(content, params), nil
}
