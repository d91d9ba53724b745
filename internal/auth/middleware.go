package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/mockmart/techstore/pkg/httpx"
)

type contextKey int

const (
	principalKey contextKey = iota
	rawTokenKey
)

// ExtractToken pulls the bearer token out of the Authorization header.
// Returns the empty string when the header is absent or malformed.
func ExtractToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(header, "Bearer ")
}

// PrincipalFromContext returns the verified principal, if any.
func PrincipalFromContext(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalKey).(*Principal)
	return p, ok
}

// RawTokenFromContext returns the raw bearer token of an authenticated
// request, for forwarding to downstream services.
func RawTokenFromContext(ctx context.Context) (string, bool) {
	t, ok := ctx.Value(rawTokenKey).(string)
	return t, ok
}

// RequireAuth rejects requests that do not carry a valid bearer token. On
// success the principal and the raw token are attached to the context.
func RequireAuth(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := ExtractToken(r)
			if raw == "" {
				httpx.Error(w, http.StatusUnauthorized, httpx.CategoryUnauthenticated, "No Bearer token provided")
				return
			}

			principal, err := verifier.Verify(r.Context(), raw)
			if err != nil {
				slog.ErrorContext(r.Context(), "JWT validation failed", "error", err)
				writeVerifyError(w, err)
				return
			}

			ctx := context.WithValue(r.Context(), principalKey, principal)
			ctx = context.WithValue(ctx, rawTokenKey, raw)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuth verifies a token when one is present but never rejects: on any
// failure the request continues anonymously. Used by endpoints that behave
// differently for authenticated callers without requiring authentication.
func OptionalAuth(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := ExtractToken(r)
			if raw == "" {
				next.ServeHTTP(w, r)
				return
			}

			principal, err := verifier.Verify(r.Context(), raw)
			if err != nil {
				slog.WarnContext(r.Context(), "Optional auth: invalid token provided, continuing without authentication", "error", err)
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), principalKey, principal)
			ctx = context.WithValue(ctx, rawTokenKey, raw)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin rejects authenticated principals lacking the admin role. Must
// run after RequireAuth.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, ok := PrincipalFromContext(r.Context())
		if !ok {
			httpx.Error(w, http.StatusUnauthorized, httpx.CategoryUnauthenticated, "Please login first")
			return
		}

		if !principal.HasRole("admin") {
			httpx.Error(w, http.StatusForbidden, httpx.CategoryForbidden, "You do not have permission to access this resource")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func writeVerifyError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrTokenExpired):
		httpx.Error(w, http.StatusUnauthorized, httpx.CategoryTokenExpired, "Please obtain a new token")
	case errors.Is(err, ErrInvalidSignature):
		httpx.Error(w, http.StatusUnauthorized, httpx.CategoryInvalidSig, "Token signature verification failed")
	default:
		httpx.Error(w, http.StatusUnauthorized, httpx.CategoryAuthFailed, "Invalid or expired token")
	}
}
