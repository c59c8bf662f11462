package render

import (
	"strconv"
	"strings"

	"github.com/de-tools/work-reports/pkg/document"
)

const (
	defaultFontSize   = 12
	defaultLineHeight = 1.2
)

// style is the resolved text style of one node. Values cascade from the document's
// defaultStyle through enclosing containers down to the node itself.
type style struct {
	fontSize   float64
	lineHeight float64
	bold       bool
	italics    bool
	alignment  string
	color      [3]int
	fillColor  *[3]int
	// top, bottom; only vertical margins are honoured outside columns
	marginTop    float64
	marginBottom float64
}

func baseStyle() style {
	return style{
		fontSize:   defaultFontSize,
		lineHeight: defaultLineHeight,
		alignment:  "left",
	}
}

// inherit returns the part of s that children inherit: everything but margins and fill.
func (s style) inherit() style {
	s.marginTop, s.marginBottom = 0, 0
	s.fillColor = nil
	return s
}

func (s style) lineHeightPt() float64 {
	return s.fontSize * s.lineHeight
}

func (s style) fontStyle() string {
	switch {
	case s.bold && s.italics:
		return "BI"
	case s.bold:
		return "B"
	case s.italics:
		return "I"
	default:
		return ""
	}
}

func (s style) align() string {
	switch s.alignment {
	case "center":
		return "C"
	case "right":
		return "R"
	case "justify":
		return "J"
	default:
		return "L"
	}
}

// resolve applies named styles referenced by "style" and then the node's own properties.
func resolve(parent style, m *document.Map, named *document.Map) style {
	s := parent
	if m == nil {
		return s
	}
	if ref, ok := m.Get("style"); ok {
		for _, name := range styleNames(ref) {
			if def, ok := named.Get(name); ok {
				if dm, ok := def.(*document.Map); ok {
					s = apply(s, dm)
				}
			}
		}
	}
	return apply(s, m)
}

func styleNames(n document.Node) []string {
	switch v := n.(type) {
	case document.Scalar:
		if v.IsString() {
			return []string{v.Str}
		}
	case document.List:
		var names []string
		for _, child := range v {
			names = append(names, styleNames(child)...)
		}
		return names
	}
	return nil
}

func apply(s style, m *document.Map) style {
	if v, ok := number(m, "fontSize"); ok && v > 0 {
		s.fontSize = v
	}
	if v, ok := number(m, "lineHeight"); ok && v > 0 {
		s.lineHeight = v
	}
	if v, ok := boolean(m, "bold"); ok {
		s.bold = v
	}
	if v, ok := boolean(m, "italics"); ok {
		s.italics = v
	}
	if v, ok := str(m, "alignment"); ok {
		s.alignment = v
	}
	if v, ok := str(m, "color"); ok {
		if c, ok := parseColor(v); ok {
			s.color = c
		}
	}
	if v, ok := str(m, "fillColor"); ok {
		if c, ok := parseColor(v); ok {
			s.fillColor = &c
		}
	}
	if n, ok := m.Get("margin"); ok {
		_, top, _, bottom := box(n)
		s.marginTop, s.marginBottom = top, bottom
	}
	if v, ok := number(m, "marginTop"); ok {
		s.marginTop = v
	}
	if v, ok := number(m, "marginBottom"); ok {
		s.marginBottom = v
	}
	return s
}

// box reads a pdfmake margin: a single number, [horizontal, vertical] or [left, top, right, bottom].
func box(n document.Node) (left, top, right, bottom float64) {
	switch v := n.(type) {
	case document.Scalar:
		if v.Type == document.ScalarNumber {
			return v.Num, v.Num, v.Num, v.Num
		}
	case document.List:
		nums := make([]float64, 0, len(v))
		for _, child := range v {
			if s, ok := child.(document.Scalar); ok && s.Type == document.ScalarNumber {
				nums = append(nums, s.Num)
			}
		}
		switch len(nums) {
		case 2:
			return nums[0], nums[1], nums[0], nums[1]
		case 4:
			return nums[0], nums[1], nums[2], nums[3]
		}
	}
	return 0, 0, 0, 0
}

var namedColors = map[string][3]int{
	"black": {0, 0, 0},
	"white": {255, 255, 255},
	"gray":  {128, 128, 128},
	"grey":  {128, 128, 128},
	"red":   {255, 0, 0},
	"green": {0, 128, 0},
	"blue":  {0, 0, 255},
}

func parseColor(s string) ([3]int, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if c, ok := namedColors[s]; ok {
		return c, true
	}
	if !strings.HasPrefix(s, "#") {
		return [3]int{}, false
	}
	hex := s[1:]
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return [3]int{}, false
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return [3]int{}, false
	}
	return [3]int{int(v >> 16 & 0xff), int(v >> 8 & 0xff), int(v & 0xff)}, true
}

func number(m *document.Map, key string) (float64, bool) {
	n, ok := m.Get(key)
	if !ok {
		return 0, false
	}
	s, ok := n.(document.Scalar)
	if !ok || s.Type != document.ScalarNumber {
		return 0, false
	}
	return s.Num, true
}

func boolean(m *document.Map, key string) (bool, bool) {
	n, ok := m.Get(key)
	if !ok {
		return false, false
	}
	s, ok := n.(document.Scalar)
	if !ok || s.Type != document.ScalarBool {
		return false, false
	}
	return s.Bool, true
}

func str(m *document.Map, key string) (string, bool) {
	n, ok := m.Get(key)
	if !ok {
		return "", false
	}
	s, ok := n.(document.Scalar)
	if !ok || !s.IsString() {
		return "", false
	}
	return s.Str, true
}

// textOf flattens a text node: strings, numbers, inline fragment lists and {text: ...} maps.
func textOf(n document.Node) string {
	switch v := n.(type) {
	case document.Scalar:
		switch v.Type {
		case document.ScalarString:
			return v.Str
		case document.ScalarNumber:
			return strconv.FormatFloat(v.Num, 'f', -1, 64)
		case document.ScalarBool:
			return strconv.FormatBool(v.Bool)
		}
	case document.Placeholder:
		return v.Token
	case document.List:
		var b strings.Builder
		for _, child := range v {
			b.WriteString(textOf(child))
		}
		return b.String()
	case *document.Map:
		if t, ok := v.Get("text"); ok {
			return textOf(t)
		}
		if st, ok := v.Get("stack"); ok {
			if items, ok := st.(document.List); ok {
				parts := make([]string, 0, len(items))
				for _, item := range items {
					parts = append(parts, textOf(item))
				}
				return strings.Join(parts, "\n")
			}
		}
	}
	return ""
}
