// Package authtest runs an in-process identity provider for tests: it serves
// a JWKS endpoint, answers client-credentials token requests and signs tokens
// with a throwaway RSA key.
package authtest

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	Realm    = "techstore"
	AuthPath = "/auth"
)

// IdentityProvider is a fake Keycloak-shaped provider.
type IdentityProvider struct {
	Key    *rsa.PrivateKey
	KeyID  string
	Server *httptest.Server

	// ExpiresIn is returned by the token endpoint. Zero omits the field.
	ExpiresIn int
	// FailTokenEndpoint makes the token endpoint answer 500.
	FailTokenEndpoint atomic.Bool

	tokenRequests atomic.Int64
}

// New starts the provider. Callers own Close.
func New() (*IdentityProvider, error) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return nil, fmt.Errorf("failed to generate signing key: %w", err)
	}

	p := &IdentityProvider{
		Key:       key,
		KeyID:     "authtest-key-1",
		ExpiresIn: 300,
	}

	mux := http.NewServeMux()
	realmPath := AuthPath + "/realms/" + Realm
	// Method-prefixed ServeMux patterns need Go 1.22; guard the method by hand
	// so this helper also works on Go 1.21.
	mux.HandleFunc(realmPath+"/protocol/openid-connect/certs", requireMethod(http.MethodGet, p.serveJWKS))
	mux.HandleFunc(realmPath+"/protocol/openid-connect/token", requireMethod(http.MethodPost, p.serveToken))
	p.Server = httptest.NewServer(mux)

	return p, nil
}

func requireMethod(method string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != method {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h(w, r)
	}
}

func (p *IdentityProvider) Close() {
	p.Server.Close()
}

// Issuer matches what signed tokens carry by default.
func (p *IdentityProvider) Issuer() string {
	return p.Server.URL + AuthPath + "/realms/" + Realm
}

func (p *IdentityProvider) JWKSURL() string {
	return p.Issuer() + "/protocol/openid-connect/certs"
}

func (p *IdentityProvider) TokenURL() string {
	return p.Issuer() + "/protocol/openid-connect/token"
}

// TokenRequests reports how many times the token endpoint was hit.
func (p *IdentityProvider) TokenRequests() int64 {
	return p.tokenRequests.Load()
}

// Sign produces a token for the given claims, filling in iss, iat and exp
// unless the caller already set them.
func (p *IdentityProvider) Sign(claims jwt.MapClaims) (string, error) {
	now := time.Now()
	if _, ok := claims["iss"]; !ok {
		claims["iss"] = p.Issuer()
	}
	if _, ok := claims["iat"]; !ok {
		claims["iat"] = now.Unix()
	}
	if _, ok := claims["exp"]; !ok {
		claims["exp"] = now.Add(5 * time.Minute).Unix()
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = p.KeyID

	return token.SignedString(p.Key)
}

// UserToken signs an interactive user token.
func (p *IdentityProvider) UserToken(sub, email string, roles []string, canCheckout any) (string, error) {
	roleList := make([]any, len(roles))
	for i, r := range roles {
		roleList[i] = r
	}

	return p.Sign(jwt.MapClaims{
		"sub":                sub,
		"email":              email,
		"preferred_username": email,
		"given_name":         "Test",
		"family_name":        "User",
		"realm_access":       map[string]any{"roles": roleList},
		"canCheckout":        canCheckout,
	})
}

// ServiceToken signs a service-account token for the given client.
func (p *IdentityProvider) ServiceToken(clientID string) (string, error) {
	return p.Sign(jwt.MapClaims{
		"sub": "service-account-" + clientID,
		"azp": clientID,
	})
}

func (p *IdentityProvider) serveJWKS(w http.ResponseWriter, _ *http.Request) {
	pub := p.Key.Public().(*rsa.PublicKey)

	jwks := map[string]any{
		"keys": []map[string]any{{
			"kty": "RSA",
			"use": "sig",
			"alg": "RS256",
			"kid": p.KeyID,
			"n":   base64.RawURLEncoding.EncodeToString(pub.N.Bytes()),
			"e":   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(pub.E)).Bytes()),
		}},
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(jwks)
}

func (p *IdentityProvider) serveToken(w http.ResponseWriter, r *http.Request) {
	p.tokenRequests.Add(1)

	if p.FailTokenEndpoint.Load() {
		http.Error(w, "identity provider unavailable", http.StatusInternalServerError)
		return
	}

	if err := r.ParseForm(); err != nil || r.PostForm.Get("grant_type") != "client_credentials" {
		http.Error(w, "unsupported grant type", http.StatusBadRequest)
		return
	}

	token, err := p.ServiceToken(r.PostForm.Get("client_id"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	body := map[string]any{"access_token": token, "token_type": "Bearer"}
	if p.ExpiresIn > 0 {
		body["expires_in"] = p.ExpiresIn
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(body)
}
