package lsp

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

const sampleTokens = `{
  "app": {
    "type": "FRAME",
    "visuals": {"backgroundColor": {"r": 1, "g": 1, "b": 1}}
  },
  "app/hero": {
    "type": "FRAME",
    "layout": {"layoutMode": "HORIZONTAL", "itemSpacing": 10},
    "visuals": {"fills": [{"type": "SOLID", "color": {"r": 1, "g": 0.88, "b": 0}}]}
  },
  "app/ghost": null
}`

func severities(result *AnalysisResult) []protocol.DiagnosticSeverity {
	var out []protocol.DiagnosticSeverity
	for _, d := range result.Diagnostics {
		out = append(out, *d.Severity)
	}
	return out
}

func TestAnalyzeTokens(t *testing.T) {
	result := Analyze("file:///design-tokens.json", sampleTokens)

	require.Len(t, result.Nodes, 3)
	assert.Equal(t, "app", result.Nodes[0].Key)
	assert.Equal(t, protocol.Range{
		Start: protocol.Position{Line: 1, Character: 2},
		End:   protocol.Position{Line: 1, Character: 7},
	}, result.Nodes[0].Range)
	assert.True(t, result.IsRoot("app"))
	assert.False(t, result.IsRoot("app/hero"))

	require.Len(t, result.Colors, 2)
	assert.True(t, result.Colors[0].Flow)
	assert.Equal(t, protocol.Range{
		Start: protocol.Position{Line: 3, Character: 35},
		End:   protocol.Position{Line: 3, Character: 59},
	}, result.Colors[0].Range)
	assert.Equal(t, "#ffe000", result.Colors[1].Color.Hex())

	require.Len(t, result.Diagnostics, 1)
	assert.Equal(t, DiagWarning, *result.Diagnostics[0].Severity)
	assert.Contains(t, result.Diagnostics[0].Message, "app/ghost has no node data")
	assert.Equal(t, uint32(10), result.Diagnostics[0].Range.Start.Line)
}

func TestAnalyzeDegradedRoot(t *testing.T) {
	result := Analyze("tokens.json", `{"x/y": {}, "x/z": {}}`)

	assert.Equal(t, "x/y", result.Root.Key)
	assert.True(t, result.Root.Degraded)
	assert.Equal(t, []protocol.DiagnosticSeverity{DiagWarning, DiagInfo}, severities(result))
	assert.Contains(t, result.Diagnostics[0].Message, `root inferred as "x/y"`)
	assert.Contains(t, result.Diagnostics[1].Message, "no direct children")
}

func TestAnalyzeYAML(t *testing.T) {
	content := `app:
  type: FRAME
app/nav:
  visuals:
    backgroundColor:
      r: 0
      g: 0
      b: 1
`
	result := Analyze("tokens.yaml", content)
	assert.Empty(t, result.Diagnostics)
	require.Len(t, result.Nodes, 2)
	assert.Equal(t, uint32(2), result.Nodes[1].Range.Start.Line)

	require.Len(t, result.Colors, 1)
	assert.False(t, result.Colors[0].Flow)
	assert.Equal(t, "#0000ff", result.Colors[0].Color.Hex())
}

func TestAnalyzeSyntaxError(t *testing.T) {
	content := "{\n  \"app\": {\n    \"type\": \"FRAME\"\n"
	result := Analyze("tokens.json", content)

	require.Len(t, result.Diagnostics, 1)
	assert.Equal(t, DiagError, *result.Diagnostics[0].Severity)
	assert.Empty(t, result.Nodes)
}

func TestAnalyzeInvalidShapes(t *testing.T) {
	tests := []struct {
		name    string
		content string
		message string
	}{
		{"list document", `[1, 2]`, "must map keys to nodes"},
		{"scalar document", `"hello"`, "must map keys to nodes"},
		{"list node", `{"app": {}, "app/nav": [1]}`, "app/nav"},
		{"number node", `{"app": 3}`, "app"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Analyze("tokens.json", tt.content)
			require.NotEmpty(t, result.Diagnostics)
			assert.Equal(t, DiagError, *result.Diagnostics[0].Severity)
			assert.Contains(t, result.Diagnostics[0].Message, tt.message)
		})
	}
}

func TestAnalyzeEmpty(t *testing.T) {
	for _, content := range []string{"", "{}", "   \n"} {
		result := Analyze("tokens.json", content)
		assert.Empty(t, result.Diagnostics, "content %q", content)
		assert.NotNil(t, result.Diagnostics)
		assert.False(t, result.Root.Found)
	}
}

func TestAnalyzeProject(t *testing.T) {
	result := Analyze("file:///tokentest.hcl", "run {\n  parallel = 4\n}\n")
	assert.Empty(t, result.Diagnostics)

	result = Analyze("file:///tokentest.hcl", "run {\n  parallel = 4\n")
	require.NotEmpty(t, result.Diagnostics)
	assert.Equal(t, DiagError, *result.Diagnostics[0].Severity)

	result = Analyze("file:///tokentest.hcl", "run {\n  parallel = 100\n}\n")
	require.Len(t, result.Diagnostics, 1)
	assert.True(t, strings.Contains(result.Diagnostics[0].Message, "run.parallel"))
}

func TestClosingBrace(t *testing.T) {
	lines := []string{`{"r": 1 `, `  }, "x"`}
	got := closingBrace(lines, protocol.Position{Line: 0, Character: 7})
	assert.Equal(t, protocol.Position{Line: 1, Character: 3}, got)

	start := protocol.Position{Line: 1, Character: 4}
	assert.Equal(t, start, closingBrace(lines, start))
}
