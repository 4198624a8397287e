package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/skillgrove/skillgrove_app/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "unit-test-signing-secret"

func TestAccessTokenRoundTrip(t *testing.T) {
	businessID := "6a1f8f3e-0000-0000-0000-000000000001"
	user := &domain.User{
		UserID:        "6a1f8f3e-0000-0000-0000-000000000002",
		Role:          domain.RoleStaff,
		BusinessID:    &businessID,
		BusinessAdmin: true,
	}

	tokenString, expiresAt, err := GenerateAccessToken(user, testSecret, 15*time.Minute, "skillgrove")
	require.NoError(t, err, "Signing should not return an error")
	assert.NotEmpty(t, tokenString)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), expiresAt, 5*time.Second)

	claims, err := ParseAndValidateAccessToken(tokenString, testSecret)
	require.NoError(t, err, "A freshly signed token should validate")
	assert.Equal(t, user.UserID, claims.Subject, "Subject should carry the user ID")
	assert.Equal(t, domain.RoleStaff, claims.Role)
	assert.Equal(t, businessID, claims.BusinessID)
	assert.True(t, claims.BusinessAdmin)
	assert.Equal(t, "skillgrove", claims.Issuer)
}

func TestAccessTokenWithoutBusinessScope(t *testing.T) {
	user := &domain.User{UserID: "user-1", Role: domain.RoleIndividual}

	tokenString, _, err := GenerateAccessToken(user, testSecret, time.Minute, "skillgrove")
	require.NoError(t, err)

	claims, err := ParseAndValidateAccessToken(tokenString, testSecret)
	require.NoError(t, err)
	assert.Empty(t, claims.BusinessID, "Individual accounts carry no business scope")
	assert.False(t, claims.BusinessAdmin)
}

func TestParseAndValidateAccessTokenRejectsWrongSecret(t *testing.T) {
	user := &domain.User{UserID: "user-1", Role: domain.RoleIndividual}
	tokenString, _, err := GenerateAccessToken(user, testSecret, time.Minute, "skillgrove")
	require.NoError(t, err)

	claims, err := ParseAndValidateAccessToken(tokenString, "another-secret")
	assert.Error(t, err, "A token signed with a different secret should not validate")
	assert.Nil(t, claims)
}

func TestParseAndValidateAccessTokenRejectsExpired(t *testing.T) {
	user := &domain.User{UserID: "user-1", Role: domain.RoleIndividual}
	tokenString, _, err := GenerateAccessToken(user, testSecret, -time.Minute, "skillgrove")
	require.NoError(t, err)

	claims, err := ParseAndValidateAccessToken(tokenString, testSecret)
	assert.Error(t, err, "An expired token should not validate")
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
	assert.Nil(t, claims)
}

func TestParseAccessTokenAllowExpired(t *testing.T) {
	user := &domain.User{UserID: "user-1", Role: domain.RoleIndividual}
	tokenString, _, err := GenerateAccessToken(user, testSecret, -time.Minute, "skillgrove")
	require.NoError(t, err)

	// The refresh flow recovers the subject of an expired token.
	claims, err := ParseAccessTokenAllowExpired(tokenString, testSecret)
	require.NoError(t, err, "Expiry alone should be tolerated")
	assert.Equal(t, "user-1", claims.Subject)

	// A bad signature is still rejected, expired or not.
	_, err = ParseAccessTokenAllowExpired(tokenString, "another-secret")
	assert.Error(t, err, "A forged token should be rejected even when expiry is tolerated")
}

func TestGenerateSecureRandomString(t *testing.T) {
	first, err := GenerateSecureRandomString(32)
	require.NoError(t, err)
	assert.Len(t, first, 64, "32 bytes should hex-encode to 64 characters")

	second, err := GenerateSecureRandomString(32)
	require.NoError(t, err)
	assert.NotEqual(t, first, second, "Two generated tokens should not collide")

	_, err = GenerateSecureRandomString(0)
	assert.Error(t, err, "Zero length should be rejected")
	_, err = GenerateSecureRandomString(-1)
	assert.Error(t, err, "Negative length should be rejected")
}

func TestHashAndCompareToken(t *testing.T) {
	token := "an-opaque-token-value"

	hash := HashToken(token)
	assert.Len(t, hash, 64, "SHA-256 should hex-encode to 64 characters")
	assert.NotEqual(t, token, hash)
	assert.Equal(t, hash, HashToken(token), "Hashing should be deterministic")

	assert.True(t, CompareTokenHash(token, hash), "Matching token should compare true")
	assert.False(t, CompareTokenHash("a-different-token", hash), "Non-matching token should compare false")
	assert.False(t, CompareTokenHash(token, "deadbeef"), "Wrong-length stored hash should compare false")
}
