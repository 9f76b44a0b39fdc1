// Package auth issues and verifies the HS256 session tokens that carry an
// authenticated caller's identity. Verification of the upstream identity
// provider (Sign in with Apple) happens outside this process; this package is
// the interface to it.
package auth

import (
	"errors"
	"time"

	"github.com/dmitrijs2005/postscript/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims carries the authenticated user's id and verified email alongside the
// registered claims.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"uid"`
	Email  string `json:"email"`
}

// GenerateToken signs a session token for the given identity.
func GenerateToken(userID, email string, secretKey []byte, validityDuration time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(validityDuration)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
		UserID: userID,
		Email:  email,
	})

	return token.SignedString(secretKey)
}

// VerifyToken parses and validates a session token, returning its claims.
// Expired tokens yield common.ErrTokenExpired; everything else invalid yields
// common.ErrInvalidToken.
func VerifyToken(tokenString string, secretKey []byte) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, common.ErrInvalidToken
		}
		return secretKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, common.ErrInvalidToken
	}

	if !token.Valid || claims.UserID == "" {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}
