package document

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Marshal writes n as JSON, keeping map keys in their document order.
func Marshal(n Node) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeJSON(&buf, n); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// MarshalIndent is Marshal followed by json.Indent.
func MarshalIndent(n Node, prefix, indent string) ([]byte, error) {
	raw, err := Marshal(n)
	if err != nil {
		return nil, err
	}
	var out bytes.Buffer
	if err := json.Indent(&out, raw, prefix, indent); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

func (s Scalar) MarshalJSON() ([]byte, error) { return Marshal(s) }
func (l List) MarshalJSON() ([]byte, error) { return Marshal(l) }
func (m *Map) MarshalJSON() ([]byte, error) { return Marshal(m) }
func (p Placeholder) MarshalJSON() ([]byte, error) { return Marshal(p) }

func writeJSON(buf *bytes.Buffer, n Node) error {
	switch v := n.(type) {
	case nil:
		buf.WriteString("null")
	case Scalar:
		return writeScalar(buf, v)
	case Placeholder:
		return writeString(buf, v.Token)
	case List:
		buf.WriteByte('[')
		for i, child := range v {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeJSON(buf, child); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case *Map:
		if v == nil {
			buf.WriteString("null")
			return nil
		}
		buf.WriteByte('{')
		for i, e := range v.entries {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeString(buf, e.Key); err != nil {
				return err
			}
			buf.WriteByte(':')
			if err := writeJSON(buf, e.Value); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	default:
		return fmt.Errorf("unsupported node type %T", n)
	}
	return nil
}

func writeScalar(buf *bytes.Buffer, s Scalar) error {
	switch s.Type {
	case ScalarNull:
		buf.WriteString("null")
	case ScalarString:
		return writeString(buf, s.Str)
	case ScalarNumber:
		if math.IsNaN(s.Num) || math.IsInf(s.Num, 0) {
			return fmt.Errorf("unsupported number %v", s.Num)
		}
		buf.WriteString(strconv.FormatFloat(s.Num, 'f', -1, 64))
	case ScalarBool:
		buf.WriteString(strconv.FormatBool(s.Bool))
	default:
		return fmt.Errorf("unknown scalar type %d", s.Type)
	}
	return nil
}

func writeString(buf *bytes.Buffer, s string) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return err
	}
	buf.Write(raw)
	return nil
}
