package id

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_Uniqueness(t *testing.T) {
	seen := make(map[string]bool)
	const count = 1000

	for range count {
		s, err := Generate("recipe")
		require.NoError(t, err)
		assert.False(t, seen[s], "duplicate id %s", s)
		seen[s] = true
	}
	assert.Len(t, seen, count)
}

func TestGenerate_Format(t *testing.T) {
	s, err := Generate("recipe")
	require.NoError(t, err)

	prefix, rest, ok := strings.Cut(s, "-")
	require.True(t, ok)
	assert.Equal(t, "recipe", prefix)
	assert.Len(t, rest, size)
	assert.NotContains(t, rest, "-")
	assert.NotContains(t, rest, "_")
}

func TestFileName(t *testing.T) {
	tests := []struct {
		ext  string
		want string
	}{
		{"jpg", ".jpg"},
		{".png", ".png"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.ext, func(t *testing.T) {
			name, err := FileName("recipe", tt.ext)
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(name, "recipe-"))
			if tt.want != "" {
				assert.True(t, strings.HasSuffix(name, tt.want), name)
			} else {
				assert.NotContains(t, name, ".")
			}
		})
	}
}

func TestMustGenerate(t *testing.T) {
	assert.NotPanics(t, func() {
		assert.True(t, strings.HasPrefix(MustGenerate("x"), "x-"))
	})
}
