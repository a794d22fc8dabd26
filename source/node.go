package source

import (
	"errors"
	"fmt"
	"io"

	gojson "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

type nodeKind uint8

const (
	scalarNode nodeKind = iota
	listNode
	objectNode
)

// node is an order-preserving document tree. Declarations depend on field
// order, which map[string]any loses.
type node struct {
	kind  nodeKind
	value any     // scalarNode
	items []*node // listNode
	keys  []string
	vals  []*node // objectNode, parallel to keys
}

func (n *node) add(path, key string, v *node) error {
	for _, k := range n.keys {
		if k == key {
			return fmt.Errorf("duplicate key %q at %q", key, path)
		}
	}
	n.keys = append(n.keys, key)
	n.vals = append(n.vals, v)
	return nil
}

// plain converts the tree into map[string]any, []any and scalars.
func (n *node) plain() any {
	switch n.kind {
	case listNode:
		out := make([]any, len(n.items))
		for i, it := range n.items {
			out[i] = it.plain()
		}
		return out
	case objectNode:
		out := make(map[string]any, len(n.keys))
		for i, k := range n.keys {
			out[k] = n.vals[i].plain()
		}
		return out
	}
	return n.value
}

func joinKey(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}

// ---- YAML ----

func parseYAMLNode(data []byte) (*node, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return &node{kind: objectNode}, nil
	}
	return fromYAML(doc.Content[0], "", 0)
}

const maxAliasChain = 64

func fromYAML(y *yaml.Node, path string, aliases int) (*node, error) {
	switch y.Kind {
	case yaml.AliasNode:
		if aliases >= maxAliasChain {
			return nil, fmt.Errorf("alias chain too long at %q", path)
		}
		return fromYAML(y.Alias, path, aliases+1)
	case yaml.ScalarNode:
		var v any
		if err := y.Decode(&v); err != nil {
			return nil, fmt.Errorf("line %d: %w", y.Line, err)
		}
		return &node{kind: scalarNode, value: v}, nil
	case yaml.SequenceNode:
		n := &node{kind: listNode}
		for i, c := range y.Content {
			it, err := fromYAML(c, joinKey(path, fmt.Sprint(i)), aliases)
			if err != nil {
				return nil, err
			}
			n.items = append(n.items, it)
		}
		return n, nil
	case yaml.MappingNode:
		n := &node{kind: objectNode}
		for i := 0; i+1 < len(y.Content); i += 2 {
			key := y.Content[i].Value
			v, err := fromYAML(y.Content[i+1], joinKey(path, key), aliases)
			if err != nil {
				return nil, err
			}
			if err := n.add(path, key, v); err != nil {
				return nil, fmt.Errorf("line %d: %w", y.Content[i].Line, err)
			}
		}
		return n, nil
	}
	return nil, fmt.Errorf("unsupported YAML node at %q", path)
}

// ---- JSON ----

func parseJSONNode(r io.Reader) (*node, error) {
	dec := gojson.NewDecoder(r)
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return &node{kind: objectNode}, nil
		}
		return nil, err
	}
	n, err := fromJSON(dec, tok, "")
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected data after the top-level value")
	}
	return n, nil
}

func fromJSON(dec *gojson.Decoder, tok gojson.Token, path string) (*node, error) {
	d, ok := tok.(gojson.Delim)
	if !ok {
		return &node{kind: scalarNode, value: tok}, nil
	}
	switch d {
	case '{':
		n := &node{kind: objectNode}
		for dec.More() {
			kt, err := dec.Token()
			if err != nil {
				return nil, err
			}
			key, ok := kt.(string)
			if !ok {
				return nil, fmt.Errorf("expected an object key at %q", path)
			}
			vt, err := dec.Token()
			if err != nil {
				return nil, err
			}
			v, err := fromJSON(dec, vt, joinKey(path, key))
			if err != nil {
				return nil, err
			}
			if err := n.add(path, key, v); err != nil {
				return nil, err
			}
		}
		_, err := dec.Token()
		return n, err
	case '[':
		n := &node{kind: listNode}
		for dec.More() {
			vt, err := dec.Token()
			if err != nil {
				return nil, err
			}
			it, err := fromJSON(dec, vt, joinKey(path, fmt.Sprint(len(n.items))))
			if err != nil {
				return nil, err
			}
			n.items = append(n.items, it)
		}
		_, err := dec.Token()
		return n, err
	}
	return nil, fmt.Errorf("unexpected delimiter %q at %q", d, path)
}
