package document

import (
	"fmt"

	"github.com/de-tools/work-reports/pkg/models/domain"
	"gopkg.in/yaml.v3"
)

// ActivitiesTableToken is the structural placeholder for the billing table.
const ActivitiesTableToken = "{{activitiesTable}}"

// Parse decodes a JSON or YAML document into a node tree, preserving map key order.
// A list element whose whole value is ActivitiesTableToken becomes a Placeholder; the same
// text anywhere else stays an ordinary string.
func Parse(data []byte) (Node, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrTemplateMalformed, err)
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return nil, fmt.Errorf("%w: empty document", domain.ErrTemplateMalformed)
	}
	return convert(root.Content[0], false)
}

// ParseMap is Parse for documents whose root must be a map, such as style sheets.
// Empty input yields an empty map.
func ParseMap(data []byte) (*Map, error) {
	if len(data) == 0 {
		return NewMap(), nil
	}
	n, err := Parse(data)
	if err != nil {
		return nil, err
	}
	m, ok := n.(*Map)
	if !ok {
		return nil, fmt.Errorf("%w: expected a map at the root, got %s", domain.ErrTemplateMalformed, n.Kind())
	}
	return m, nil
}

func convert(n *yaml.Node, inList bool) (Node, error) {
	switch n.Kind {
	case yaml.AliasNode:
		if n.Alias == nil {
			return nil, fmt.Errorf("%w: dangling alias at line %d", domain.ErrTemplateMalformed, n.Line)
		}
		return convert(n.Alias, inList)
	case yaml.SequenceNode:
		out := make(List, 0, len(n.Content))
		for _, child := range n.Content {
			c, err := convert(child, true)
			if err != nil {
				return nil, err
			}
			out = append(out, c)
		}
		return out, nil
	case yaml.MappingNode:
		out := NewMap()
		for i := 0; i+1 < len(n.Content); i += 2 {
			k, v := n.Content[i], n.Content[i+1]
			if k.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("%w: non-scalar key at line %d", domain.ErrTemplateMalformed, k.Line)
			}
			c, err := convert(v, false)
			if err != nil {
				return nil, err
			}
			out.Set(k.Value, c)
		}
		return out, nil
	case yaml.ScalarNode:
		return convertScalar(n, inList)
	default:
		return nil, fmt.Errorf("%w: unsupported node at line %d", domain.ErrTemplateMalformed, n.Line)
	}
}

func convertScalar(n *yaml.Node, inList bool) (Node, error) {
	switch n.ShortTag() {
	case "!!null":
		return Null(), nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrTemplateMalformed, err)
		}
		return Bool(b), nil
	case "!!int", "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrTemplateMalformed, err)
		}
		return Number(f), nil
	default:
		if inList && n.Value == ActivitiesTableToken {
			return Placeholder{Token: n.Value}, nil
		}
		return String(n.Value), nil
	}
}

// Validate reports whether every node in the tree is a member of the variant.
func Validate(n Node) error {
	switch v := n.(type) {
	case nil:
		return fmt.Errorf("%w: nil node", domain.ErrTemplateMalformed)
	case Scalar, Placeholder:
		return nil
	case List:
		for i, child := range v {
			if err := Validate(child); err != nil {
				return fmt.Errorf("[%d]: %w", i, err)
			}
		}
		return nil
	case *Map:
		if v == nil {
			return fmt.Errorf("%w: nil map", domain.ErrTemplateMalformed)
		}
		for _, e := range v.entries {
			if err := Validate(e.Value); err != nil {
				return fmt.Errorf("%s: %w", e.Key, err)
			}
		}
		return nil
	default:
		return fmt.Errorf("%w: unexpected node %T", domain.ErrTemplateMalformed, n)
	}
}
