package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims are the JWT claims carried by an access token. The subject holds
// the principal's email address.
type Claims struct {
	jwt.RegisteredClaims
}

// TokenService issues and validates signed access tokens. Tokens are
// stateless: validation checks the signature and expiry only, with no
// database hit.
type TokenService struct {
	secret     []byte
	method     jwt.SigningMethod
	defaultTTL time.Duration
}

// NewTokenService creates a token service for the given signing secret.
//
// Only the HS256 algorithm is accepted. The algorithm arrives as
// configuration, and a typo here must fail loudly at startup rather than
// silently downgrade signing.
func NewTokenService(secret, algorithm string, defaultTTL time.Duration) (*TokenService, error) {
	if secret == "" {
		return nil, fmt.Errorf("token secret must not be empty")
	}
	if algorithm != jwt.SigningMethodHS256.Alg() {
		return nil, fmt.Errorf("unsupported signing algorithm %q", algorithm)
	}
	if defaultTTL <= 0 {
		return nil, fmt.Errorf("token TTL must be positive, got %s", defaultTTL)
	}

	return &TokenService{
		secret:     []byte(secret),
		method:     jwt.SigningMethodHS256,
		defaultTTL: defaultTTL,
	}, nil
}

// Issue creates a signed access token for the given subject.
// A non-positive ttl selects the service's configured default.
func (s *TokenService) Issue(subject string, ttl time.Duration) (string, error) {
	if subject == "" {
		return "", fmt.Errorf("token subject must not be empty")
	}
	if ttl <= 0 {
		ttl = s.defaultTTL
	}

	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(s.method, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("signing access token: %w", err)
	}
	return signed, nil
}

// Validate parses and verifies an access token, returning its claims.
//
// Every failure mode (bad signature, wrong algorithm, expired, missing
// expiry, garbled input, empty subject) collapses to ErrInvalidToken so
// callers cannot leak which check failed.
func (s *TokenService) Validate(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(_ *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{s.method.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	return claims, nil
}
