// Package auth issues and verifies the bearer tokens and password hashes
// used by the API layer.
package auth

import (
	"errors"
	"time"

	"github.com/dmitrijs2005/taskvault/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// DefaultTokenTTL is used when GenerateToken is called without an explicit
// validity duration. The login flow passes the configured (longer) duration.
const DefaultTokenTTL = 15 * time.Minute

// GenerateToken mints an HS256-signed JWT whose subject is the user's email.
// A non-positive ttl falls back to DefaultTokenTTL.
func GenerateToken(subject string, secretKey []byte, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// GetSubjectFromToken verifies the signature and expiry of tokenString and
// returns the embedded subject. Expired tokens yield common.ErrTokenExpired;
// any other verification failure yields common.ErrInvalidToken.
func GetSubjectFromToken(tokenString string, secretKey []byte) (string, error) {
	claims := &jwt.RegisteredClaims{}

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
