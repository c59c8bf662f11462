// Package document models a generic, placeholder-driven document description as a tree of
// tagged nodes. A tree is one of Scalar, List, Map or Placeholder at every level.
package document

import "fmt"

type Kind int

const (
	KindScalar Kind = iota
	KindList
	KindMap
	KindPlaceholder
)

func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	case KindPlaceholder:
		return "placeholder"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Node is implemented only by the types in this package.
type Node interface {
	Kind() Kind
	sealed()
}

type ScalarType int

const (
	ScalarNull ScalarType = iota
	ScalarString
	ScalarNumber
	ScalarBool
)

type Scalar struct {
	Type ScalarType
	Str  string
	Num  float64
	Bool bool
}

func String(s string) Scalar { return Scalar{Type: ScalarString, Str: s} }
func Number(n float64) Scalar { return Scalar{Type: ScalarNumber, Num: n} }
func Bool(b bool) Scalar { return Scalar{Type: ScalarBool, Bool: b} }
func Null() Scalar { return Scalar{Type: ScalarNull} }
func (Scalar) Kind() Kind { return KindScalar }
func (Scalar) sealed() {}
func (s Scalar) IsString() bool { return s.Type == ScalarString }

type List []Node

func (List) Kind() Kind { return KindList }
func (List) sealed() {}

// Placeholder stands for a whole sub-tree. It only ever occurs as a list element.
type Placeholder struct {
	Token string
}

func (Placeholder) Kind() Kind { return KindPlaceholder }
func (Placeholder) sealed() {}

type Entry struct {
	Key   string
	Value Node
}

// Map is an ordered mapping. Keys keep insertion order; Set on an existing key replaces the
// value in place.
type Map struct {
	entries []Entry
	index   map[string]int
}

func NewMap(entries ...Entry) *Map {
	m := &Map{}
	for _, e := range entries {
		m.Set(e.Key, e.Value)
	}
	return m
}

func (*Map) Kind() Kind { return KindMap }
func (*Map) sealed() {}

func (m *Map) Len() int {
	return len(m.entries)
}

func (m *Map) Set(key string, value Node) {
	if m.index == nil {
		m.index = make(map[string]int)
	}
	if i, ok := m.index[key]; ok {
		m.entries[i].Value = value
		return
	}
	m.index[key] = len(m.entries)
	m.entries = append(m.entries, Entry{Key: key, Value: value})
}

func (m *Map) Get(key string) (Node, bool) {
	if m == nil || m.index == nil {
		return nil, false
	}
	i, ok := m.index[key]
	if !ok {
		return nil, false
	}
	return m.entries[i].Value, true
}

// Entries returns a copy of the entries in key order.
func (m *Map) Entries() []Entry {
	out := make([]Entry, len(m.entries))
	copy(out, m.entries)
	return out
}

// Clone returns a deep copy of n. Scalars and placeholders are values and are copied as is.
func Clone(n Node) Node {
	switch v := n.(type) {
	case List:
		out := make(List, len(v))
		for i, child := range v {
			out[i] = Clone(child)
		}
		return out
	case *Map:
		out := &Map{}
		for _, e := range v.entries {
			out.Set(e.Key, Clone(e.Value))
		}
		return out
	default:
		return n
	}
}

// Merge returns a new map holding base's entries overlaid with overrides, key by key.
// Either argument may be nil.
func Merge(base, overrides *Map) *Map {
	out := &Map{}
	if base != nil {
		for _, e := range base.entries {
			out.Set(e.Key, Clone(e.Value))
		}
	}
	if overrides != nil {
		for _, e := range overrides.entries {
			out.Set(e.Key, Clone(e.Value))
		}
	}
	return out
}
