package httptransport

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/mockmart/techstore/internal/auth"
	"github.com/mockmart/techstore/internal/shopapi/cart"
	"github.com/mockmart/techstore/pkg/httpx"
)

type checkoutRequest struct {
	ShippingAddress json.RawMessage `json:"shippingAddress"`
	PaymentMethod   string          `json:"paymentMethod"`
}

// checkout validates in a fixed sequence: empty cart, checkout permission,
// then request fields. Tests rely on this ordering.
func (h *HTTPTransport) checkout(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		httpx.Error(w, http.StatusUnauthorized, httpx.CategoryUnauthenticated, "Please login first")
		return
	}

	sessionID := cart.SessionIDFromContext(r.Context())
	lines := h.carts.Get(sessionID)
	if len(lines) == 0 {
		httpx.Error(w, http.StatusBadRequest, httpx.CategoryValidation, "Cart is empty")
		return
	}

	if !principal.CanCheckout {
		httpx.Error(w, http.StatusForbidden, httpx.CategoryForbidden, "You are not allowed to checkout")
		return
	}

	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.Error(w, http.StatusBadRequest, httpx.CategoryValidation, "Invalid JSON body")
		return
	}
	if len(req.ShippingAddress) == 0 || bytes.Equal(req.ShippingAddress, []byte("null")) || req.PaymentMethod == "" {
		httpx.Error(w, http.StatusBadRequest, httpx.CategoryValidation, "shippingAddress and paymentMethod are required")
		return
	}

	o, err := h.orders.Checkout(r.Context(), principal, lines, req.ShippingAddress, req.PaymentMethod)
	if err != nil {
		slog.ErrorContext(r.Context(), "Checkout failed", "error", err, "user_id", principal.ID)
		httpx.Error(w, http.StatusInternalServerError, httpx.CategoryUpstream, "Failed to create order")
		return
	}

	// The cart survives any failure above; it is dropped only once the
	// order is committed.
	h.carts.Clear(sessionID)

	slog.InfoContext(r.Context(), "Checkout completed", "order_id", o.ID, "user_id", principal.ID, "total", o.Total)
	httpx.JSON(w, http.StatusOK, map[string]any{"success": true, "order": o})
}
