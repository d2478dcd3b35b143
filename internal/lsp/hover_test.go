package lsp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

func TestPosInRange(t *testing.T) {
	r := protocol.Range{
		Start: protocol.Position{Line: 1, Character: 4},
		End:   protocol.Position{Line: 2, Character: 3},
	}

	tests := []struct {
		name string
		pos  protocol.Position
		want bool
	}{
		{"before start line", protocol.Position{Line: 0, Character: 10}, false},
		{"before start char", protocol.Position{Line: 1, Character: 3}, false},
		{"at start", protocol.Position{Line: 1, Character: 4}, true},
		{"middle line", protocol.Position{Line: 1, Character: 40}, true},
		{"before end", protocol.Position{Line: 2, Character: 2}, true},
		{"at end", protocol.Position{Line: 2, Character: 3}, false},
		{"after end line", protocol.Position{Line: 3, Character: 0}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, posInRange(tt.pos, r))
		})
	}
}

func TestExtractText(t *testing.T) {
	content := "first line\nsecond line\nthird"

	assert.Equal(t, "line", extractText(content, protocol.Range{
		Start: protocol.Position{Line: 0, Character: 6},
		End:   protocol.Position{Line: 0, Character: 10},
	}))
	assert.Equal(t, "line\nsecond line\nth", extractText(content, protocol.Range{
		Start: protocol.Position{Line: 0, Character: 6},
		End:   protocol.Position{Line: 2, Character: 2},
	}))
	assert.Equal(t, "", extractText(content, protocol.Range{
		Start: protocol.Position{Line: 9},
		End:   protocol.Position{Line: 9},
	}))
}

func hoverValue(t *testing.T, h *protocol.Hover) string {
	t.Helper()
	require.NotNil(t, h)
	mc, ok := h.Contents.(protocol.MarkupContent)
	require.True(t, ok, "contents is %T", h.Contents)
	assert.Equal(t, protocol.MarkupKindMarkdown, mc.Kind)
	return mc.Value
}

func TestHoverColor(t *testing.T) {
	result := Analyze("tokens.json", sampleTokens)

	got := hoverValue(t, hover(result, protocol.Position{Line: 3, Character: 40}))
	assert.Equal(t, "`#ffffff` · `bg-[#ffffff]`", got)
}

func TestHoverNode(t *testing.T) {
	result := Analyze("tokens.json", sampleTokens)

	root := hoverValue(t, hover(result, protocol.Position{Line: 1, Character: 3}))
	assert.Contains(t, root, "**App** `app` (root)")
	assert.Contains(t, root, "Directives: `w-screen h-screen`")
	assert.Contains(t, root, "Background: `bg-[#ffffff]`")

	hero := hoverValue(t, hover(result, protocol.Position{Line: 5, Character: 4}))
	assert.Contains(t, hero, "**Hero** `app/hero`")
	assert.NotContains(t, hero, "(root)")
	assert.Contains(t, hero, "Directives: `flex flex-row gap-[10px]`")
	assert.Contains(t, hero, "Background: `bg-[#ffe000]`")

	ghost := hoverValue(t, hover(result, protocol.Position{Line: 10, Character: 4}))
	assert.Contains(t, ghost, "**Ghost** `app/ghost`")
	assert.Contains(t, ghost, "No node data.")
}

func TestHoverNothing(t *testing.T) {
	result := Analyze("tokens.json", sampleTokens)

	assert.Nil(t, hover(result, protocol.Position{Line: 0, Character: 0}))
	assert.Nil(t, hover(nil, protocol.Position{}))
}

func TestHoverNoDirectives(t *testing.T) {
	result := Analyze("tokens.json", `{"app": {}, "app/empty": {}}`)

	got := hoverValue(t, hover(result, protocol.Position{Line: 0, Character: 14}))
	assert.Contains(t, got, "Directives: none")
	assert.Contains(t, got, "Background: `bg-transparent`")
}
