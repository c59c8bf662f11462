package document

import (
	"testing"

	"github.com/de-tools/work-reports/pkg/models/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected Node
	}{
		{
			name:  "json keeps key order",
			input: `{"b": 1, "a": "x", "c": true, "d": null}`,
			expected: NewMap(
				Entry{Key: "b", Value: Number(1)},
				Entry{Key: "a", Value: String("x")},
				Entry{Key: "c", Value: Bool(true)},
				Entry{Key: "d", Value: Null()},
			),
		},
		{
			name: "yaml list with table placeholder",
			input: `
content:
  - "Report {{reportDate}}"
  - "{{activitiesTable}}"
`,
			expected: NewMap(
				Entry{Key: "content", Value: List{
					String("Report {{reportDate}}"),
					Placeholder{Token: ActivitiesTableToken},
				}},
			),
		},
		{
			name:  "table token outside a list stays a string",
			input: `{"text": "{{activitiesTable}}"}`,
			expected: NewMap(
				Entry{Key: "text", Value: String(ActivitiesTableToken)},
			),
		},
		{
			name:     "scalar root",
			input:    `"hello"`,
			expected: String("hello"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse([]byte(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestParse_Malformed(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "empty", input: ""},
		{name: "broken json", input: `{"content": [`},
		{name: "complex key", input: "? [a, b]\n: c\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.input))
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrTemplateMalformed)
		})
	}
}

func TestParseMap(t *testing.T) {
	t.Run("empty input is an empty map", func(t *testing.T) {
		m, err := ParseMap(nil)
		require.NoError(t, err)
		assert.Equal(t, 0, m.Len())
	})

	t.Run("list root is rejected", func(t *testing.T) {
		_, err := ParseMap([]byte(`[1, 2]`))
		assert.ErrorIs(t, err, domain.ErrTemplateMalformed)
	})
}

func TestMap_SetReplacesInPlace(t *testing.T) {
	m := NewMap(
		Entry{Key: "a", Value: Number(1)},
		Entry{Key: "b", Value: Number(2)},
	)
	m.Set("a", Number(3))

	entries := m.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "a", entries[0].Key)
	assert.Equal(t, Number(3), entries[0].Value)
}

func TestClone_IsDeep(t *testing.T) {
	inner := NewMap(Entry{Key: "text", Value: String("x")})
	original := List{inner}

	cloned := Clone(original).(List)
	cloned[0].(*Map).Set("text", String("y"))

	v, _ := inner.Get("text")
	assert.Equal(t, String("x"), v)
}

func TestMerge(t *testing.T) {
	base := NewMap(
		Entry{Key: "header", Value: NewMap(Entry{Key: "fontSize", Value: Number(18)})},
		Entry{Key: "small", Value: NewMap(Entry{Key: "fontSize", Value: Number(8)})},
	)
	overrides := NewMap(
		Entry{Key: "header", Value: NewMap(Entry{Key: "bold", Value: Bool(true)})},
	)

	merged := Merge(base, overrides)

	header, ok := merged.Get("header")
	require.True(t, ok)
	_, hasSize := header.(*Map).Get("fontSize")
	assert.False(t, hasSize, "overrides replace whole keys")
	_, ok = merged.Get("small")
	assert.True(t, ok)
	assert.Equal(t, 2, base.Len())

	assert.Equal(t, 0, Merge(nil, nil).Len())
}

func TestValidate(t *testing.T) {
	var nilMap *Map

	assert.NoError(t, Validate(NewMap(Entry{Key: "content", Value: List{String("a")}})))
	assert.ErrorIs(t, Validate(nil), domain.ErrTemplateMalformed)
	assert.ErrorIs(t, Validate(List{String("a"), nil}), domain.ErrTemplateMalformed)
	assert.ErrorIs(t, Validate(NewMap(Entry{Key: "x", Value: nilMap})), domain.ErrTemplateMalformed)
}

func TestMarshal(t *testing.T) {
	doc := NewMap(
		Entry{Key: "z", Value: List{String("a"), Number(1.5), Bool(false), Null()}},
		Entry{Key: "a", Value: Placeholder{Token: ActivitiesTableToken}},
	)

	raw, err := Marshal(doc)
	require.NoError(t, err)
	assert.Equal(t, `{"z":["a",1.5,false,null],"a":"{{activitiesTable}}"}`, string(raw))
}
