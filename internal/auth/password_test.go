package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPasswordSaltsEveryCall(t *testing.T) {
	first, err := HashPassword("hunter2")
	require.NoError(t, err)
	second, err := HashPassword("hunter2")
	require.NoError(t, err)

	assert.NotEqual(t, first, second, "same plaintext must produce different hashes")
	assert.True(t, VerifyPassword("hunter2", first))
	assert.True(t, VerifyPassword("hunter2", second))
}

func TestVerifyPasswordRejectsWrongPassword(t *testing.T) {
	hash, err := HashPassword("correct horse")
	require.NoError(t, err)

	assert.False(t, VerifyPassword("correct horsf", hash))
	assert.False(t, VerifyPassword("", hash))
	assert.False(t, VerifyPassword("correct horse", "not-a-bcrypt-hash"))
}
