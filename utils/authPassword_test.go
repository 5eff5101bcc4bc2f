package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasher(t *testing.T) {
	h := BcryptHasher{Cost: bcrypt.MinCost}

	hash, err := h.Hash("Secreta#2025")
	require.NoError(t, err)
	assert.NotEqual(t, "Secreta#2025", hash)

	assert.True(t, h.Verify("Secreta#2025", hash))
	assert.False(t, h.Verify("secreta#2025", hash))
	assert.False(t, h.Verify("Secreta#2025", "not-a-bcrypt-hash"))
}
