package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPasswordFormat(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$"), "hash should use the argon2id format")
}

func TestVerifyPassword(t *testing.T) {
	hash, err := HashPassword("my-password")
	require.NoError(t, err)

	valid, err := VerifyPassword("my-password", hash)
	require.NoError(t, err)
	assert.True(t, valid)

	valid, err = VerifyPassword("not-my-password", hash)
	require.NoError(t, err)
	assert.False(t, valid)
}

func TestVerifyPasswordRejectsMalformedHash(t *testing.T) {
	_, err := VerifyPassword("whatever", "not-a-real-hash")
	assert.Error(t, err)
}

func TestHashPasswordUniqueSalts(t *testing.T) {
	first, err := HashPassword("same password")
	require.NoError(t, err)
	second, err := HashPassword("same password")
	require.NoError(t, err)
	assert.NotEqual(t, first, second, "two hashes of the same password should use different salts")
}
