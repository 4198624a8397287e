package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/skillgrove/skillgrove_app/internal/core/domain"
)

// AccessClaims are the JWT claims carried by an access token. Role and
// business scope are resolved once at login and trusted for the token's
// lifetime; handlers never re-read them from the request body.
type AccessClaims struct {
	Role          domain.UserRole `json:"role"`
	BusinessID    string          `json:"businessID,omitempty"`
	BusinessAdmin bool            `json:"businessAdmin,omitempty"`
	jwt.RegisteredClaims
}

// GenerateAccessToken signs an HS256 access token for the user.
func GenerateAccessToken(user *domain.User, secret string, expiryDuration time.Duration, issuer string) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(expiryDuration)
	claims := AccessClaims{
		Role:          user.Role,
		BusinessAdmin: user.BusinessAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   user.UserID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	if user.BusinessID != nil {
		claims.BusinessID = *user.BusinessID
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// ParseAndValidateAccessToken parses an access token string, validates its
// signature and standard claims, and returns the AccessClaims.
func ParseAndValidateAccessToken(tokenString string, secretKey string) (*AccessClaims, error) {
	claims := &AccessClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secretKey), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.ErrTokenSignatureInvalid
	}
	return claims, nil
}

// ParseAccessTokenAllowExpired parses an access token and verifies its
// signature but tolerates expiry. The refresh flow uses it to recover the
// subject of an expired token before checking the refresh token proper.
func ParseAccessTokenAllowExpired(tokenString string, secretKey string) (*AccessClaims, error) {
	claims := &AccessClaims{}

	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secretKey), nil
	})
	if err != nil && !errors.Is(err, jwt.ErrTokenExpired) {
		return nil, err
	}
	return claims, nil
}
