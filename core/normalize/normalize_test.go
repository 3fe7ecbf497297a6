package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKey(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "lowercase", input: "Punjab", expected: "punjab"},
		{name: "diacritics stripped", input: "São Paulo", expected: "sao paulo"},
		{name: "trim", input: "  Sindh  ", expected: "sindh"},
		{name: "collapse internal whitespace", input: "Khyber \t Pakhtunkhwa", expected: "khyber pakhtunkhwa"},
		{name: "mixed", input: "  CÔTE   d'Ivoire ", expected: "cote d'ivoire"},
		{name: "empty", input: "", expected: ""},
		{name: "whitespace only", input: "   ", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Key(tt.input))
		})
	}
}

func TestKey_Idempotent(t *testing.T) {
	inputs := []string{"São Paulo", "  Gilgit   Baltistan ", "Azad Kashmir", "Bogotá D.C.", ""}
	for _, in := range inputs {
		once := Key(in)
		assert.Equal(t, once, Key(once), "Key must be idempotent for %q", in)
	}
}

func TestEqual(t *testing.T) {
	assert.True(t, Equal("São Paulo", "sao paulo"))
	assert.True(t, Equal("  Punjab ", "PUNJAB"))
	assert.False(t, Equal("Punjab", "Sindh"))
}
