package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"
)

// clockSkewTolerance is applied to expiry and not-before checks.
const clockSkewTolerance = 30 * time.Second

// TokenVerifier checks a raw bearer token and returns the principal it
// represents.
type TokenVerifier interface {
	Verify(ctx context.Context, raw string) (*Principal, error)
}

// Verifier validates tokens against the identity provider's published key
// set. The key set is fetched lazily on first use and then kept fresh by the
// keyfunc refresher, so key rotation during runtime is handled.
type Verifier struct {
	jwksURL string
	parser  *jwt.Parser

	mu   sync.Mutex
	keys keyfunc.Keyfunc
}

// NewVerifier creates a Verifier for the given JWKS endpoint and expected
// issuer. No network access happens until the first Verify call.
func NewVerifier(jwksURL, issuer string) *Verifier {
	return &Verifier{
		jwksURL: jwksURL,
		parser: jwt.NewParser(
			jwt.WithIssuer(issuer),
			jwt.WithLeeway(clockSkewTolerance),
			jwt.WithValidMethods([]string{"RS256"}),
		),
	}
}

// Verify parses and validates raw, returning the normalized principal.
func (v *Verifier) Verify(_ context.Context, raw string) (*Principal, error) {
	keys, err := v.keySet()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch identity provider key set: %w", err)
	}

	claims := jwt.MapClaims{}
	if _, err := v.parser.ParseWithClaims(raw, claims, keys.Keyfunc); err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, ErrInvalidSignature
		default:
			return nil, fmt.Errorf("%w: %w", ErrAuthenticationFailed, err)
		}
	}

	return principalFromClaims(claims), nil
}

// keySet lazily builds the JWKS client. The background refresher needs to
// outlive any single request, so it is bound to the process lifetime rather
// than a request context.
func (v *Verifier) keySet() (keyfunc.Keyfunc, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.keys != nil {
		return v.keys, nil
	}

	keys, err := keyfunc.NewDefault([]string{v.jwksURL})
	if err != nil {
		return nil, err
	}
	v.keys = keys

	return keys, nil
}
