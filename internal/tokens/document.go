package tokens

import (
	"github.com/mitchellh/mapstructure"
	"gitlab.com/tozd/go/errors"
)

// Position is a 1-based source location.
type Position struct {
	Line   int
	Column int
}

// Document is an ordered mapping from slash-delimited keys to nodes. Key order
// is the order of the source text, or insertion order for built documents.
// A Document is read-only once handed to the mapper or generator.
type Document struct {
	keys      []string
	nodes     map[string]*Node
	positions map[string]Position
}

// NewDocument returns an empty document.
func NewDocument() *Document {
	return &Document{
		nodes:     make(map[string]*Node),
		positions: make(map[string]Position),
	}
}

// Set stores a node under key. New keys are appended to the iteration order;
// existing keys keep their position. A nil node is allowed.
func (d *Document) Set(key string, n *Node) {
	if _, ok := d.nodes[key]; !ok {
		d.keys = append(d.keys, key)
	}
	d.nodes[key] = n
}

// Keys returns the keys in iteration order.
func (d *Document) Keys() []string {
	out := make([]string, len(d.keys))
	copy(out, d.keys)
	return out
}

// Len returns the number of keys.
func (d *Document) Len() int {
	return len(d.keys)
}

// Node returns the node stored under key. The boolean reports whether the key
// exists; an existing key may still hold a nil node.
func (d *Document) Node(key string) (*Node, bool) {
	n, ok := d.nodes[key]
	return n, ok
}

// Lookup returns the node for key, failing with ErrUnknownNodeKey when the key
// is absent and ErrMissingNodeData when it holds no node.
func (d *Document) Lookup(key string) (*Node, error) {
	n, ok := d.nodes[key]
	if !ok {
		return nil, errors.WithDetails(ErrUnknownNodeKey, "key", key)
	}
	if n == nil {
		return nil, errors.WithDetails(ErrMissingNodeData, "key", key)
	}
	return n, nil
}

// Position returns where key was declared in the source, if known.
func (d *Document) Position(key string) (Position, bool) {
	p, ok := d.positions[key]
	return p, ok
}

// FromMap builds a document from generic values in the given key order.
// Values may be *Node, Node, nil, or a map decoded from JSON/YAML. Keys
// missing from values are stored with a nil node.
func FromMap(keys []string, values map[string]any) (*Document, error) {
	doc := NewDocument()
	for _, key := range keys {
		n, err := decodeValue(values[key])
		if err != nil {
			return nil, errors.WithDetails(err, "key", key)
		}
		doc.Set(key, n)
	}
	return doc, nil
}

func decodeValue(v any) (*Node, error) {
	switch val := v.(type) {
	case nil:
		return nil, nil
	case *Node:
		return val, nil
	case Node:
		return &val, nil
	case map[string]any:
		return DecodeNode(val)
	default:
		return nil, errors.WithDetails(ErrInvalidInputKind, "type", typeName(v))
	}
}

// DecodeNode decodes a generic attribute map into a Node. Unknown attributes
// are ignored; attributes of the wrong shape fail with ErrInvalidInputKind.
func DecodeNode(raw map[string]any) (*Node, error) {
	var n Node
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      &n,
		ErrorUnused: false,
	})
	if err != nil {
		return nil, errors.Errorf("creating node decoder: %w", err)
	}
	if err := dec.Decode(raw); err != nil {
		return nil, errors.Errorf("%w: %s", ErrInvalidInputKind, err.Error())
	}
	return &n, nil
}

func typeName(v any) string {
	switch v.(type) {
	case []any:
		return "list"
	case string:
		return "string"
	case bool:
		return "bool"
	case int, int64, float64:
		return "number"
	}
	return "unknown"
}
