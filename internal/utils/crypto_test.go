// internal/utils/crypto_test.go
package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateTempPassword(t *testing.T) {
	password, err := GenerateTempPassword(12)
	require.NoError(t, err)
	assert.Len(t, password, 12)

	for _, c := range password {
		assert.True(t, strings.ContainsRune(tempPasswordCharset, c), "unexpected character %q", c)
	}

	// Ambiguous characters never appear.
	assert.NotContains(t, password, "0")
	assert.NotContains(t, password, "O")
	assert.NotContains(t, password, "l")
}

func TestGenerateTempPasswordDefaultsLength(t *testing.T) {
	password, err := GenerateTempPassword(0)
	require.NoError(t, err)
	assert.Len(t, password, 12)
}

func TestGenerateTempPasswordIsRandom(t *testing.T) {
	first, err := GenerateTempPassword(16)
	require.NoError(t, err)
	second, err := GenerateTempPassword(16)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}
