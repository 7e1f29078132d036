package ident

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := New()
		assert.Len(t, id, Length)
		assert.True(t, IsValid(id), id)
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestShort(t *testing.T) {
	code := Short()
	assert.Len(t, code, ShortLength)
	assert.True(t, IsValidShort(code))
}

func TestIsValid(t *testing.T) {
	tests := []struct {
		name string
		id   string
		want bool
	}{
		{"valid", "0123456789abcdef0123456789abcdef", true},
		{"too short", "0123456789abcdef", false},
		{"uppercase", "0123456789ABCDEF0123456789ABCDEF", false},
		{"non hex", "0123456789abcdef0123456789abcdeg", false},
		{"uuid with dashes", "01234567-89ab-cdef-0123-456789abcd", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValid(tt.id))
		})
	}
}
