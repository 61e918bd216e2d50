package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnmarshalIRValue(t *testing.T) {
	v, err := UnmarshalIRValue([]byte(`{"name":"p","args":[{"id":2,"hidden":false}]}`))
	require.NoError(t, err)
	assert.Equal(t, IRObject{
		"name": IRString("p"),
		"args": IRArray{IRObject{"id": IRInt(2), "hidden": IRBool(false)}},
	}, v)

	v, err = UnmarshalIRValue([]byte(`[]`))
	require.NoError(t, err)
	assert.Equal(t, IRArray{}, v)
}

func TestUnmarshalIRValue_Rejects(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"float in nested array", `{"args":[{"min":1.5}]}`, "$.args[0].min: floats are forbidden"},
		{"null", `{"a":null}`, "$.a: null is forbidden"},
		{"duplicate key", `{"a":1,"a":2}`, `$: duplicate key "a"`},
		{"trailing data", `{} {}`, "trailing data"},
		{"truncated", `{"a":`, "$.a"},
		{"empty", ``, "$"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := UnmarshalIRValue([]byte(tt.in))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestSortedKeys_UTF16Order(t *testing.T) {
	obj := IRObject{"\U00010000": IRInt(1), "\uE000": IRInt(2), "b": IRInt(3), "a": IRInt(4)}
	// U+10000 encodes as a surrogate pair (0xD800...), which sorts
	// before U+E000 in UTF-16 but after it in UTF-8.
	assert.Equal(t, []string{"a", "b", "\U00010000", "\uE000"}, obj.SortedKeys())
}
