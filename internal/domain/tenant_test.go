package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAPIKey(t *testing.T) {
	key, hash, err := NewAPIKey()
	require.NoError(t, err)
	assert.True(t, LooksLikeAPIKey(key))
	assert.Len(t, key, len(APIKeyPrefix)+64)
	assert.Equal(t, HashAPIKey(key), hash)
	assert.NotEqual(t, key, hash)

	other, _, err := NewAPIKey()
	require.NoError(t, err)
	assert.NotEqual(t, key, other)
}

func TestLooksLikeAPIKey(t *testing.T) {
	tests := []struct {
		key  string
		want bool
	}{
		{"wk_abc", true},
		{"wk_", false},
		{"", false},
		{"mz_abc", false},
		{"WK_abc", false},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			assert.Equal(t, tt.want, LooksLikeAPIKey(tt.key))
		})
	}
}
