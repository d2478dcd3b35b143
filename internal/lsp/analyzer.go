package lsp

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"gopkg.in/yaml.v3"

	"github.com/jsvensson/tokentest/internal/color"
	"github.com/jsvensson/tokentest/internal/config"
	"github.com/jsvensson/tokentest/internal/tokens"
)

var (
	DiagError   = protocol.DiagnosticSeverityError
	DiagWarning = protocol.DiagnosticSeverityWarning
	DiagInfo    = protocol.DiagnosticSeverityInformation
)

const diagSource = "tokentest"

var yamlErrorLine = regexp.MustCompile(`line (\d+)`)

// AnalysisResult holds everything derived from one open document.
type AnalysisResult struct {
	Diagnostics []protocol.Diagnostic
	Root        tokens.Root
	Nodes       []NodeLocation
	Colors      []ColorLocation
}

// NodeLocation records where a node key appears in the source.
type NodeLocation struct {
	Key   string
	Range protocol.Range
	Node  *tokens.Node
}

// ColorLocation records a color object at a specific source position.
type ColorLocation struct {
	Range protocol.Range
	Color color.Color
	// Flow is set for inline {r: .., g: .., b: ..} objects, which can be
	// rewritten in place.
	Flow bool
}

// IsRoot reports whether key is the document's resolved root.
func (r *AnalysisResult) IsRoot(key string) bool {
	return r.Root.Found && r.Root.Key == key
}

// Analyze parses a token document or project file from memory. It collects
// every problem rather than stopping at the first.
func Analyze(filename, content string) *AnalysisResult {
	if strings.HasSuffix(filename, ".hcl") {
		return analyzeProject(filename, content)
	}
	return analyzeTokens(content)
}

func analyzeTokens(content string) *AnalysisResult {
	result := &AnalysisResult{Diagnostics: []protocol.Diagnostic{}}
	lines := splitLines(content)

	var root yaml.Node
	if err := yaml.Unmarshal([]byte(content), &root); err != nil {
		line := 0
		if m := yamlErrorLine.FindStringSubmatch(err.Error()); m != nil {
			n, _ := strconv.Atoi(m[1])
			line = n - 1
		}
		result.addError(lineRange(lines, line), err.Error())
		return result
	}

	top := &root
	if top.Kind == yaml.DocumentNode {
		if len(top.Content) == 0 {
			return result
		}
		top = top.Content[0]
	}
	top = resolveAlias(top)
	if top.Kind == 0 {
		return result
	}
	if top.Kind != yaml.MappingNode {
		result.addError(lineRange(lines, top.Line-1), "token document must map keys to nodes")
		return result
	}

	doc := tokens.NewDocument()
	for i := 0; i+1 < len(top.Content); i += 2 {
		keyNode, valNode := top.Content[i], resolveAlias(top.Content[i+1])
		key := keyNode.Value
		rng := scalarRange(keyNode)

		n, err := tokens.NodeFromYAML(valNode)
		if err != nil {
			result.addError(rng, fmt.Sprintf("%s: %s", key, err.Error()))
			continue
		}
		doc.Set(key, n)
		result.Nodes = append(result.Nodes, NodeLocation{Key: key, Range: rng, Node: n})
		if n == nil {
			result.addWarning(rng, fmt.Sprintf("%s has no node data", key))
			continue
		}
		result.collectColors(valNode, lines)
	}

	rootKey, err := tokens.FindRootKey(doc)
	if err != nil || !rootKey.Found {
		return result
	}
	result.Root = rootKey

	rootRange := result.rangeOf(rootKey.Key)
	if rootKey.Degraded {
		result.addWarning(rootRange, fmt.Sprintf("no top-level key; root inferred as %q", rootKey.Key))
	}
	if len(tokens.DirectChildKeys(doc, rootKey.Key)) == 0 {
		result.addInfo(rootRange, fmt.Sprintf("root %q has no direct children", rootKey.Key))
	}
	return result
}

func (r *AnalysisResult) rangeOf(key string) protocol.Range {
	for _, n := range r.Nodes {
		if n.Key == key {
			return n.Range
		}
	}
	return protocol.Range{}
}

// collectColors records visuals.backgroundColor and visuals.fills[].color.
func (r *AnalysisResult) collectColors(node *yaml.Node, lines []string) {
	visuals := mappingValue(node, "visuals")
	if visuals == nil {
		return
	}
	if bg := mappingValue(visuals, "backgroundColor"); bg != nil {
		r.addColor(bg, lines)
	}
	fills := mappingValue(visuals, "fills")
	if fills == nil || fills.Kind != yaml.SequenceNode {
		return
	}
	for _, fill := range fills.Content {
		if c := mappingValue(resolveAlias(fill), "color"); c != nil {
			r.addColor(c, lines)
		}
	}
}

func (r *AnalysisResult) addColor(node *yaml.Node, lines []string) {
	if node.Kind != yaml.MappingNode || len(node.Content) == 0 {
		return
	}
	var c color.Color
	if err := node.Decode(&c); err != nil {
		r.addError(scalarRange(node), "invalid color: "+err.Error())
		return
	}
	flow := node.Style&yaml.FlowStyle != 0
	end := scalarRange(node.Content[len(node.Content)-1]).End
	if flow {
		end = closingBrace(lines, end)
	}
	r.Colors = append(r.Colors, ColorLocation{
		Range: protocol.Range{Start: yamlPos(node), End: end},
		Color: c,
		Flow:  flow,
	})
}

func mappingValue(node *yaml.Node, key string) *yaml.Node {
	if node == nil || node.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return resolveAlias(node.Content[i+1])
		}
	}
	return nil
}

func resolveAlias(n *yaml.Node) *yaml.Node {
	for n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	return n
}

// yamlPos converts a YAML position to an LSP position.
// YAML positions are 1-based; LSP positions are 0-based.
func yamlPos(n *yaml.Node) protocol.Position {
	return protocol.Position{
		Line:      uint32(max(n.Line-1, 0)),
		Character: uint32(max(n.Column-1, 0)),
	}
}

// scalarRange spans a scalar's source text, including its quotes.
func scalarRange(n *yaml.Node) protocol.Range {
	start := yamlPos(n)
	width := len(n.Value)
	switch n.Style {
	case yaml.DoubleQuotedStyle, yaml.SingleQuotedStyle:
		width += 2
	}
	return protocol.Range{
		Start: start,
		End:   protocol.Position{Line: start.Line, Character: start.Character + uint32(width)},
	}
}

// closingBrace returns the position just past the first '}' at or after pos,
// skipping whitespace. pos is returned when something else comes first.
func closingBrace(lines []string, pos protocol.Position) protocol.Position {
	for l := int(pos.Line); l < len(lines); l++ {
		line := lines[l]
		c := 0
		if l == int(pos.Line) {
			c = int(pos.Character)
		}
		for ; c < len(line); c++ {
			switch line[c] {
			case ' ', '\t', '\r':
				continue
			case '}':
				return protocol.Position{Line: uint32(l), Character: uint32(c + 1)}
			}
			return pos
		}
	}
	return pos
}

func lineRange(lines []string, line int) protocol.Range {
	if line < 0 {
		line = 0
	}
	width := 0
	if line < len(lines) {
		width = len(lines[line])
	}
	return protocol.Range{
		Start: protocol.Position{Line: uint32(line)},
		End:   protocol.Position{Line: uint32(line), Character: uint32(width)},
	}
}

// splitLines splits content into lines, dropping carriage returns.
func splitLines(content string) []string {
	return strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n")
}

// analyzeProject checks a tokentest.hcl project file.
func analyzeProject(filename, content string) *AnalysisResult {
	result := &AnalysisResult{Diagnostics: []protocol.Diagnostic{}}

	_, diags := hclsyntax.ParseConfig([]byte(content), filename, hcl.Pos{Line: 1, Column: 1})
	if diags.HasErrors() {
		for _, d := range diags {
			result.Diagnostics = append(result.Diagnostics, hclDiagToLSP(d))
		}
		return result
	}

	if _, err := config.Parse([]byte(content), filename); err != nil {
		result.addError(protocol.Range{}, err.Error())
	}
	return result
}

// hclPosToLSP converts an HCL position to an LSP position.
func hclPosToLSP(pos hcl.Pos) protocol.Position {
	return protocol.Position{
		Line:      uint32(max(pos.Line-1, 0)),
		Character: uint32(max(pos.Column-1, 0)),
	}
}

// hclDiagToLSP converts an HCL diagnostic to an LSP diagnostic.
func hclDiagToLSP(d *hcl.Diagnostic) protocol.Diagnostic {
	sev := DiagError
	if d.Severity == hcl.DiagWarning {
		sev = DiagWarning
	}

	diag := protocol.Diagnostic{
		Severity: &sev,
		Message:  d.Summary,
		Source:   strPtr(diagSource),
	}
	if d.Detail != "" {
		diag.Message = d.Summary + ": " + d.Detail
	}
	if d.Subject != nil {
		diag.Range = protocol.Range{Start: hclPosToLSP(d.Subject.Start), End: hclPosToLSP(d.Subject.End)}
	}
	return diag
}

func (r *AnalysisResult) add(rng protocol.Range, sev *protocol.DiagnosticSeverity, msg string) {
	r.Diagnostics = append(r.Diagnostics, protocol.Diagnostic{
		Range:    rng,
		Severity: sev,
		Source:   strPtr(diagSource),
		Message:  msg,
	})
}

func (r *AnalysisResult) addError(rng protocol.Range, msg string)   { r.add(rng, &DiagError, msg) }
func (r *AnalysisResult) addWarning(rng protocol.Range, msg string) { r.add(rng, &DiagWarning, msg) }
func (r *AnalysisResult) addInfo(rng protocol.Range, msg string)    { r.add(rng, &DiagInfo, msg) }

func strPtr(s string) *string {
	return &s
}
