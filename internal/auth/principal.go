// Package auth verifies bearer tokens issued by the identity provider and
// normalizes their claims into a Principal shared by all services.
package auth

import (
	"github.com/golang-jwt/jwt/v5"
)

// Kind distinguishes interactive user tokens from machine credentials.
type Kind int

const (
	KindUser Kind = iota
	KindServiceAccount
)

// Principal is the normalized identity attached to a request after the token
// has been verified. The Kind tag is resolved once at verification time;
// handlers never re-derive it from raw claims.
type Principal struct {
	Kind      Kind
	ID        string
	Email     string
	Username  string
	FirstName string
	LastName  string
	Name      string
	Roles     []string
	// CanCheckout comes from a custom claim that the provider may emit as a
	// boolean or as the literal string "true".
	CanCheckout bool
	// ClientID names the calling client, "unknown" when the token carries
	// neither azp nor clientId.
	ClientID string
	Claims   jwt.MapClaims
}

// IsServiceAccount reports whether the token represents an automated caller.
func (p *Principal) IsServiceAccount() bool {
	return p.Kind == KindServiceAccount
}

// HasRole reports whether the realm role list contains role.
func (p *Principal) HasRole(role string) bool {
	for _, r := range p.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// principalFromClaims builds the Principal. Different token types populate
// different claims, so the subject falls back through sub, email and
// preferred_username in that order.
func principalFromClaims(claims jwt.MapClaims) *Principal {
	p := &Principal{
		Email:     stringClaim(claims, "email"),
		Username:  stringClaim(claims, "preferred_username"),
		FirstName: stringClaim(claims, "given_name"),
		LastName:  stringClaim(claims, "family_name"),
		Roles:     rolesClaim(claims),
		Claims:    claims,
	}

	p.ID = stringClaim(claims, "sub")
	if p.ID == "" {
		p.ID = p.Email
	}
	if p.ID == "" {
		p.ID = p.Username
	}

	p.Name = stringClaim(claims, "name")
	if p.Name == "" {
		p.Name = joinName(p.FirstName, p.LastName)
	}

	switch v := claims["canCheckout"].(type) {
	case bool:
		p.CanCheckout = v
	case string:
		p.CanCheckout = v == "true"
	}

	// A token with no email but an authorized-party claim belongs to a
	// service account. The calling-service name is derived for every token,
	// defaulting to "unknown" when neither claim is present.
	clientID := stringClaim(claims, "azp")
	if clientID == "" {
		clientID = stringClaim(claims, "clientId")
	}
	if p.Email == "" && clientID != "" {
		p.Kind = KindServiceAccount
	}
	p.ClientID = clientID
	if p.ClientID == "" {
		p.ClientID = "unknown"
	}

	return p
}

func stringClaim(claims jwt.MapClaims, key string) string {
	if v, ok := claims[key].(string); ok {
		return v
	}
	return ""
}

// rolesClaim reads realm-style roles, falling back to a top-level roles claim.
func rolesClaim(claims jwt.MapClaims) []string {
	var raw []any
	if realm, ok := claims["realm_access"].(map[string]any); ok {
		raw, _ = realm["roles"].([]any)
	}
	if raw == nil {
		raw, _ = claims["roles"].([]any)
	}

	roles := make([]string, 0, len(raw))
	for _, r := range raw {
		if s, ok := r.(string); ok {
			roles = append(roles, s)
		}
	}
	return roles
}

func joinName(first, last string) string {
	switch {
	case first == "":
		return last
	case last == "":
		return first
	default:
		return first + " " + last
	}
}
