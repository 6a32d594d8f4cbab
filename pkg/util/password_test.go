package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("secret-password-123")
	require.NoError(t, err)
	assert.NotEmpty(t, hash)
	assert.NotEqual(t, "secret-password-123", hash)
}

func TestVerifyPassword(t *testing.T) {
	hash, err := HashPassword("secret-password-123")
	require.NoError(t, err)

	assert.True(t, VerifyPassword(hash, "secret-password-123"))
	assert.False(t, VerifyPassword(hash, "wrong-password"))
	assert.False(t, VerifyPassword("not-a-hash", "secret-password-123"))
}
