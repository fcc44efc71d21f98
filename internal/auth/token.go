// Package auth provides password hashing and the signed token codec used by
// the login and session layers.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned for any token verification failure. Callers
// cannot tell an expired token from a forged or malformed one; the codec
// deliberately collapses all of them into this single error.
var ErrInvalidToken = errors.New("invalid token")

// Claims is the fixed payload carried by every access token. Subject holds
// the account email.
type Claims struct {
	jwt.RegisteredClaims
	Role      string `json:"role"`
	AccountID uint64 `json:"id"`
}

// TokenCodec signs and verifies HS256 access tokens with a process-wide secret.
type TokenCodec struct {
	secret []byte
}

func NewTokenCodec(secret string) *TokenCodec {
	return &TokenCodec{secret: []byte(secret)}
}

// Issue builds and signs a token bound to {email, role, id} expiring after ttl.
func (c *TokenCodec) Issue(email, role string, id uint64, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Role:      role,
		AccountID: id,
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(c.secret)
}

// Verify checks the signature and expiry and returns the decoded claims.
// Any failure yields ErrInvalidToken.
func (c *TokenCodec) Verify(token string) (Claims, error) {
	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return c.secret, nil
	})
	if err != nil || !tok.Valid {
		return Claims{}, ErrInvalidToken
	}
	return *claims, nil
}
