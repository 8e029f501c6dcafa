package loader

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// fields is a YAML mapping with its keys in document order.
type fields struct {
	keys   []string
	values map[string]*yaml.Node
}

func mappingFields(n *yaml.Node) (*fields, error) {
	if n.Kind == yaml.AliasNode {
		n = n.Alias
	}
	if n.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("expected a mapping")
	}
	f := &fields{values: make(map[string]*yaml.Node, len(n.Content)/2)}
	for i := 0; i+1 < len(n.Content); i += 2 {
		key := n.Content[i].Value
		if _, dup := f.values[key]; dup {
			return nil, fmt.Errorf("duplicate key %q", key)
		}
		f.keys = append(f.keys, key)
		f.values[key] = n.Content[i+1]
	}
	return f, nil
}

func (f *fields) has(key string) bool {
	_, ok := f.values[key]
	return ok
}

// get returns nil for an absent key.
func (f *fields) get(key string) *yaml.Node {
	return f.values[key]
}

// sequence returns the items of a sequence node.  An absent node is empty.
func sequence(n *yaml.Node) ([]*yaml.Node, error) {
	if n == nil || n.Kind == 0 {
		return nil, nil
	}
	if n.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("expected a list")
	}
	return n.Content, nil
}

// nodeAt is a placeholder node carrying only a position.
func nodeAt(line, col int) *yaml.Node {
	return &yaml.Node{Line: line, Column: col}
}
