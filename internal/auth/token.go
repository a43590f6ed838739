package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"rrrgame/internal/httperr"
)

// TokenIssuer signs and verifies the bearer tokens presented on
// authenticated routes. Tokens are HS512 JWTs carrying the username as the
// subject, bounded by the configured TTL.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenIssuer creates an issuer for the given shared secret.
func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), ttl: ttl}
}

// Issue creates a signed token for username.
func (t *TokenIssuer) Issue(username string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   username,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString(t.secret)
}

// Verify checks the signature and expiry and extracts the username. It fails
// closed: any structural or signature problem is Unauthorized.
func (t *TokenIssuer) Verify(token string) (string, error) {
	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(tok *jwt.Token) (any, error) {
		if tok.Method.Alg() != jwt.SigningMethodHS512.Alg() {
			return nil, jwt.ErrTokenUnverifiable
		}
		return t.secret, nil
	})
	if err != nil || !parsed.Valid {
		return "", httperr.Unauthorized("Error decoding jwt token")
	}

	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return "", httperr.Unauthorized("Error decoding jwt token")
	}
	return claims.Subject, nil
}
