package tokens

import (
	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"
)

// Parse decodes a JSON or YAML token document, keeping the source key order.
// Empty input yields an empty document.
func Parse(src []byte) (*Document, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(src, &root); err != nil {
		return nil, errors.Errorf("decoding token document: %w", err)
	}
	return FromYAML(&root)
}

// FromYAML builds a document from an already parsed YAML tree. The top level
// must be a mapping whose values are mappings or null.
func FromYAML(root *yaml.Node) (*Document, error) {
	top := root
	if top.Kind == yaml.DocumentNode {
		if len(top.Content) == 0 {
			return NewDocument(), nil
		}
		top = top.Content[0]
	}
	if top.Kind == 0 {
		return NewDocument(), nil
	}
	top = resolveAlias(top)
	if top.Kind != yaml.MappingNode {
		return nil, errors.WithDetails(ErrInvalidInputKind, "kind", kindName(top.Kind), "line", top.Line)
	}

	doc := NewDocument()
	for i := 0; i+1 < len(top.Content); i += 2 {
		keyNode, valNode := top.Content[i], resolveAlias(top.Content[i+1])
		key := keyNode.Value

		n, err := NodeFromYAML(valNode)
		if err != nil {
			return nil, errors.WithDetails(err, "key", key, "line", keyNode.Line)
		}
		doc.Set(key, n)
		doc.positions[key] = Position{Line: keyNode.Line, Column: keyNode.Column}
	}
	return doc, nil
}

// NodeFromYAML decodes one node value. A null value yields a nil node.
func NodeFromYAML(v *yaml.Node) (*Node, error) {
	v = resolveAlias(v)
	switch v.Kind {
	case yaml.ScalarNode:
		if v.Tag == "!!null" {
			return nil, nil
		}
	case yaml.MappingNode:
		var raw map[string]any
		if err := v.Decode(&raw); err != nil {
			return nil, errors.Errorf("%w: %s", ErrInvalidInputKind, err.Error())
		}
		return DecodeNode(raw)
	}
	return nil, errors.WithDetails(ErrInvalidInputKind, "kind", kindName(v.Kind))
}

func resolveAlias(n *yaml.Node) *yaml.Node {
	for n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	return n
}

func kindName(k yaml.Kind) string {
	switch k {
	case yaml.SequenceNode:
		return "list"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.MappingNode:
		return "mapping"
	case yaml.AliasNode:
		return "alias"
	}
	return "unknown"
}
