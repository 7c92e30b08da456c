package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBcryptHasher_Hash_and_Compare(t *testing.T) {
	h := NewBcryptHasher(4) // low cost keeps the test fast
	password := "my-secret-password"

	hash, err := h.Hash(password)
	require.NoError(t, err)
	require.NotEmpty(t, hash)
	assert.True(t, strings.HasPrefix(hash, "$2a$"), "bcrypt hash format")

	require.NoError(t, h.Compare(hash, password))
}

func TestBcryptHasher_Compare_wrong_password(t *testing.T) {
	h := NewBcryptHasher(4)
	hash, err := h.Hash("correct")
	require.NoError(t, err)

	assert.Error(t, h.Compare(hash, "wrong"))
}

func TestBcryptHasher_Hash_is_salted(t *testing.T) {
	h := NewBcryptHasher(4)
	first, err := h.Hash("password")
	require.NoError(t, err)
	second, err := h.Hash("password")
	require.NoError(t, err)

	assert.NotEqual(t, first, second, "bcrypt embeds a fresh salt per hash")
}
