// Package utils provides the credential primitives: password hashing,
// session tokens and reset codes.
package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTokenTTL is the session token lifetime used when Issue receives a
// non-positive ttl.
const DefaultTokenTTL = 24 * time.Hour

// ErrInvalidToken is returned by Verify for any token that must not be
// trusted: bad signature, unexpected algorithm, malformed, expired or
// missing subject.  The underlying cause is wrapped for logging only.
var ErrInvalidToken = errors.New("invalid token")

// AccessToken is a signed session token along with its expiry.
type AccessToken struct {
	Token string    // the serialized JWT string
	Exp   time.Time // the UTC expiration time
}

// TokenService issues and verifies HS256 session tokens.  Tokens are
// stateless: a token stays valid until it expires.
type TokenService struct {
	secret []byte
	clock  Clock
}

// NewTokenService builds a TokenService signing with secret.  A nil clock
// means SystemClock.
func NewTokenService(secret string, clock Clock) *TokenService {
	if clock == nil {
		clock = SystemClock{}
	}
	return &TokenService{secret: []byte(secret), clock: clock}
}

// Issue signs a token whose subject is subject and which expires ttl from
// now.  The claims are the registered sub, iat and exp.
func (s *TokenService) Issue(subject string, ttl time.Duration) (AccessToken, error) {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	now := s.clock.Now()
	exp := now.Add(ttl)
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return AccessToken{}, fmt.Errorf("sign token: %w", err)
	}
	return AccessToken{Token: signed, Exp: exp}, nil
}

// Verify checks the signature and expiry of raw and returns its subject.
func (s *TokenService) Verify(raw string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	tok, err := jwt.ParseWithClaims(raw, claims,
		func(t *jwt.Token) (interface{}, error) {
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.clock.Now),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !tok.Valid || claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}
