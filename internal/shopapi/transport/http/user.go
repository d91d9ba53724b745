package httptransport

import (
	"net/http"

	"github.com/mockmart/techstore/internal/auth"
	"github.com/mockmart/techstore/pkg/httpx"
)

func (h *HTTPTransport) profile(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		httpx.Error(w, http.StatusUnauthorized, httpx.CategoryUnauthenticated, "Please login first")
		return
	}

	role := "customer"
	if principal.HasRole("admin") {
		role = "admin"
	}

	httpx.JSON(w, http.StatusOK, map[string]any{
		"id":          principal.ID,
		"email":       principal.Email,
		"username":    principal.Username,
		"firstName":   principal.FirstName,
		"lastName":    principal.LastName,
		"name":        principal.Name,
		"canCheckout": principal.CanCheckout,
		"role":        role,
		"roles":       principal.Roles,
	})
}
