package session

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const cookieIssuer = "tables-pro"

// Signer binds session ids to an HS256 token so clients cannot forge or guess ids.
type Signer struct {
	secret []byte
	ttl    time.Duration
}

// NewSigner constructs a signer. A non-positive ttl disables expiry.
func NewSigner(secret string, ttl time.Duration) *Signer {
	return &Signer{secret: []byte(secret), ttl: ttl}
}

// Sign returns the cookie value for id.
func (s *Signer) Sign(id string) (string, error) {
	if id == "" {
		return "", fmt.Errorf("session id required")
	}
	if len(s.secret) == 0 {
		return "", fmt.Errorf("session secret missing")
	}
	now := time.Now()
	claims := jwt.RegisteredClaims{
		ID:       id,
		Issuer:   cookieIssuer,
		IssuedAt: jwt.NewNumericDate(now),
	}
	if s.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(s.ttl))
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Parse validates a cookie value and returns the session id it carries.
func (s *Signer) Parse(token string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(cookieIssuer))
	if err != nil {
		return "", fmt.Errorf("parse session token: %w", err)
	}
	if claims.ID == "" {
		return "", fmt.Errorf("session token without id")
	}
	return claims.ID, nil
}
