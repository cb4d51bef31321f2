package value

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Standard YAML tags that map onto plain variants rather than Tagged.
var coreTags = map[string]bool{
	"":            true,
	"!":           true,
	"!!null":      true,
	"!!bool":      true,
	"!!int":       true,
	"!!float":     true,
	"!!str":       true,
	"!!seq":       true,
	"!!map":       true,
	"!!binary":    true,
	"!!timestamp": true,
}

// FromNode converts a parsed YAML node into a Value. Custom tags ("!name")
// become Tagged values; anchors and aliases are followed.
func FromNode(n *yaml.Node) (Value, error) {
	if n == nil {
		return Null(), nil
	}

	var v Value
	var err error

	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return Null(), nil
		}
		return FromNode(n.Content[0])
	case yaml.AliasNode:
		return FromNode(n.Alias)
	case yaml.SequenceNode:
		items := make([]Value, 0, len(n.Content))
		for _, c := range n.Content {
			item, err := FromNode(c)
			if err != nil {
				return Value{}, err
			}
			items = append(items, item)
		}
		v = Sequence(items...)
	case yaml.MappingNode:
		if len(n.Content)%2 != 0 {
			return Value{}, fmt.Errorf("value: malformed mapping at line %d", n.Line)
		}
		entries := make([]Entry, 0, len(n.Content)/2)
		for i := 0; i < len(n.Content); i += 2 {
			k := n.Content[i]
			if k.Kind != yaml.ScalarNode {
				return Value{}, fmt.Errorf("value: non-scalar mapping key at line %d", k.Line)
			}
			item, err := FromNode(n.Content[i+1])
			if err != nil {
				return Value{}, err
			}
			entries = append(entries, Entry{Key: k.Value, Value: item})
		}
		v = Mapping(entries...)
	case yaml.ScalarNode:
		v, err = scalar(n)
		if err != nil {
			return Value{}, err
		}
	default:
		return Value{}, fmt.Errorf("value: unsupported yaml node kind %d", n.Kind)
	}

	if !coreTags[n.Tag] && !strings.HasPrefix(n.Tag, "tag:yaml.org,2002:") {
		return Tagged(strings.TrimPrefix(n.Tag, "!"), v), nil
	}
	return v, nil
}

func scalar(n *yaml.Node) (Value, error) {
	switch n.ShortTag() {
	case "!!null":
		return Null(), nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return Value{}, fmt.Errorf("value: decode bool: %w", err)
		}
		return Bool(b), nil
	case "!!int", "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			return Value{}, fmt.Errorf("value: decode number: %w", err)
		}
		return Number(f), nil
	}
	return String(n.Value), nil
}

// ToNode converts v into a YAML node tree.
func (v Value) ToNode() *yaml.Node {
	switch v.kind {
	case KindNull:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
	case KindBool:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: strconv.FormatBool(v.b)}
	case KindNumber:
		if v.n == math.Trunc(v.n) && !math.IsInf(v.n, 0) && math.Abs(v.n) < 1e15 {
			return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.FormatInt(int64(v.n), 10)}
		}
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: formatFloat(v.n)}
	case KindString:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v.s}
	case KindSequence:
		n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, it := range v.seq {
			n.Content = append(n.Content, it.ToNode())
		}
		return n
	case KindMapping:
		n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, e := range v.Entries() {
			n.Content = append(n.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: e.Key},
				e.Value.ToNode(),
			)
		}
		return n
	case KindTagged:
		name, inner, _ := v.Tag()
		n := inner.ToNode()
		n.Tag = "!" + name
		return n
	}
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: Placeholder}
}

// MarshalYAML implements yaml.Marshaler.
func (v Value) MarshalYAML() (any, error) {
	return v.ToNode(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (v *Value) UnmarshalYAML(n *yaml.Node) error {
	parsed, err := FromNode(n)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// ParseYAML parses a YAML document into a Value.
func ParseYAML(data []byte) (Value, error) {
	var n yaml.Node
	if err := yaml.Unmarshal(data, &n); err != nil {
		return Value{}, fmt.Errorf("value: parse yaml: %w", err)
	}
	return FromNode(&n)
}

// YAML renders v as a YAML document.
func (v Value) YAML() (string, error) {
	out, err := yaml.Marshal(v.ToNode())
	if err != nil {
		return "", fmt.Errorf("value: render yaml: %w", err)
	}
	return string(out), nil
}
