package jwt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	token, err := GenerateAccessToken(42, "acme", "ana@example.com", "USER", "secret", 15)
	require.NoError(t, err)

	claims, err := ValidateAccessToken(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "acme", claims.TenantID)
	assert.Equal(t, "ana@example.com", claims.Email)
	assert.Equal(t, "42", claims.Subject)

	_, err = ValidateAccessToken(token, "other")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestAccessTokenExpired(t *testing.T) {
	token, err := GenerateAccessToken(1, "acme", "a@b.com", "USER", "secret", -1)
	require.NoError(t, err)

	_, err = ValidateAccessToken(token, "secret")
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	token, err := GenerateRefreshToken(7, "tok-1", "refresh", 7)
	require.NoError(t, err)

	claims, err := ValidateRefreshToken(token, "refresh")
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, "tok-1", claims.TokenID)

	// access and refresh tokens are not interchangeable across secrets
	_, err = ValidateAccessToken(token, "secret")
	assert.Error(t, err)
}
