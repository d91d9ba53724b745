package auth_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mockmart/techstore/internal/auth"
	"github.com/mockmart/techstore/internal/auth/authtest"
)

func setupMiddlewareTest(t *testing.T) (*authtest.IdentityProvider, *auth.Verifier) {
	t.Helper()

	idp, err := authtest.New()
	require.NoError(t, err)
	t.Cleanup(idp.Close)

	return idp, auth.NewVerifier(idp.JWKSURL(), idp.Issuer())
}

func errorCategory(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()

	var body struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Error
}

func echoPrincipal() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, ok := auth.PrincipalFromContext(r.Context())
		if !ok {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("anonymous"))
			return
		}
		_, _ = w.Write([]byte(principal.ID))
	})
}

func TestRequireAuth_NoToken(t *testing.T) {
	_, verifier := setupMiddlewareTest(t)
	handler := auth.RequireAuth(verifier)(echoPrincipal())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Unauthenticated", errorCategory(t, rec))
}

func TestRequireAuth_ExpiredToken(t *testing.T) {
	idp, verifier := setupMiddlewareTest(t)
	handler := auth.RequireAuth(verifier)(echoPrincipal())

	raw, err := idp.Sign(map[string]any{
		"sub": "user-1",
		"exp": int64(0),
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+raw)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "TokenExpired", errorCategory(t, rec))
}

func TestRequireAuth_MalformedToken(t *testing.T) {
	_, verifier := setupMiddlewareTest(t)
	handler := auth.RequireAuth(verifier)(echoPrincipal())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "AuthenticationFailed", errorCategory(t, rec))
}

func TestRequireAuth_ValidToken(t *testing.T) {
	idp, verifier := setupMiddlewareTest(t)
	handler := auth.RequireAuth(verifier)(echoPrincipal())

	raw, err := idp.UserToken("user-1", "alice@example.com", nil, true)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+raw)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-1", rec.Body.String())
}

func TestOptionalAuth_InvalidTokenContinuesAnonymous(t *testing.T) {
	_, verifier := setupMiddlewareTest(t)
	handler := auth.OptionalAuth(verifier)(echoPrincipal())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "anonymous", rec.Body.String())
}

func TestRequireAdmin(t *testing.T) {
	idp, verifier := setupMiddlewareTest(t)
	handler := auth.RequireAuth(verifier)(auth.RequireAdmin(echoPrincipal()))

	t.Run("customer is rejected", func(t *testing.T) {
		raw, err := idp.UserToken("user-1", "alice@example.com", []string{"customer"}, true)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+raw)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, "Forbidden", errorCategory(t, rec))
	})

	t.Run("admin passes", func(t *testing.T) {
		raw, err := idp.UserToken("admin-1", "root@example.com", []string{"admin"}, true)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+raw)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})
}
