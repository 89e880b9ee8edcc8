// Package auth implements the credential primitives of the server: issuing
// and verifying HS256 access tokens, and bcrypt password hashing.
package auth

import (
	"errors"
	"time"

	"github.com/dklimov/taskvault/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// TokenTypeAccess is the type discriminator carried in every issued token.
const TokenTypeAccess = "access"

// Claims is the claim set of an access token: the registered claims
// (subject = user ID, issued-at, expiry) plus a type discriminator.
type Claims struct {
	jwt.RegisteredClaims
	TokenType string `json:"type"`
}

// GenerateToken issues a signed access token for userID, valid for
// validityDuration from now.
func GenerateToken(userID string, secretKey []byte, validityDuration time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validityDuration)),
		},
		TokenType: TokenTypeAccess,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// GetUserIDFromToken verifies tokenString against secretKey and returns the
// subject claim. Only HS256 is accepted; tokens signed with another method
// (including "none") fail verification.
//
// Expired tokens yield common.ErrTokenExpired; any other failure, including a
// wrong secret or a malformed token, yields common.ErrInvalidToken. The two
// are distinguished for diagnostics only and must be reported identically to
// clients.
func GetUserIDFromToken(tokenString string, secretKey []byte) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", common.ErrTokenExpired
		}
		return "", common.ErrInvalidToken
	}

	if !token.Valid || claims.Subject == "" {
		return "", common.ErrInvalidToken
	}

	return claims.Subject, nil
}
