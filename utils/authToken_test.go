package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "0123456789abcdef0123456789abcdef"

func TestNewTokenIssuer_RequiresKeyLength(t *testing.T) {
	_, err := NewTokenIssuer("short")
	assert.Error(t, err)

	issuer, err := NewTokenIssuer(testKey)
	require.NoError(t, err)
	assert.NotNil(t, issuer)
}

func TestTokenIssuer_RoundTripCarriesClaims(t *testing.T) {
	issuer, err := NewTokenIssuer(testKey)
	require.NoError(t, err)

	access, refresh, err := issuer.GenerateTokens(7, []string{"PACIENTE", "MEDICO"})
	require.NoError(t, err)
	assert.NotEqual(t, access, refresh)

	claims, err := issuer.ValidateToken(access)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, []string{"PACIENTE", "MEDICO"}, claims.Roles)

	_, err = issuer.ValidateToken(access, "CLINICA", "MEDICO")
	assert.NoError(t, err)
	_, err = issuer.ValidateToken(access, "CLINICA")
	assert.ErrorIs(t, err, ErrInsufficientPermission)
}

func TestTokenIssuer_Expiry(t *testing.T) {
	issuer, err := NewTokenIssuer(testKey)
	require.NoError(t, err)
	start := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	issuer.now = func() time.Time { return start }

	access, refresh, err := issuer.GenerateTokens(1, nil)
	require.NoError(t, err)

	issuer.now = func() time.Time { return start.Add(AccessTokenExpiry + time.Minute) }
	_, err = issuer.ValidateToken(access)
	assert.ErrorIs(t, err, ErrTokenExpired)
	_, err = issuer.ValidateToken(refresh)
	assert.NoError(t, err)
}

func TestTokenIssuer_RejectsForeignKey(t *testing.T) {
	issuer, err := NewTokenIssuer(testKey)
	require.NoError(t, err)
	other, err := NewTokenIssuer("ffffffffffffffffffffffffffffffff")
	require.NoError(t, err)

	access, _, err := other.GenerateTokens(1, nil)
	require.NoError(t, err)
	_, err = issuer.ValidateToken(access)
	assert.Error(t, err)

	_, err = issuer.ValidateToken("not-a-token")
	assert.Error(t, err)
}
