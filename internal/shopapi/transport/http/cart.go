package httptransport

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/mockmart/techstore/internal/shopapi/cart"
	"github.com/mockmart/techstore/pkg/httpx"
)

// getCart returns the bare line array; only mutations wrap the cart in a
// {success, cart} envelope.
func (h *HTTPTransport) getCart(w http.ResponseWriter, r *http.Request) {
	sessionID := cart.SessionIDFromContext(r.Context())
	httpx.JSON(w, http.StatusOK, h.carts.Get(sessionID))
}

type addToCartRequest struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

func (h *HTTPTransport) addToCart(w http.ResponseWriter, r *http.Request) {
	var req addToCartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.Error(w, http.StatusBadRequest, httpx.CategoryValidation, "Invalid JSON body")
		return
	}
	if req.ProductID == 0 {
		httpx.Error(w, http.StatusBadRequest, httpx.CategoryValidation, "productId is required")
		return
	}
	if req.Quantity <= 0 {
		req.Quantity = 1
	}

	product, err := h.catalog.Get(req.ProductID)
	if err != nil {
		httpx.Error(w, http.StatusNotFound, httpx.CategoryNotFound, "Product not found")
		return
	}

	sessionID := cart.SessionIDFromContext(r.Context())
	lines := h.carts.Add(sessionID, product, req.Quantity)

	httpx.JSON(w, http.StatusOK, map[string]any{"success": true, "cart": lines})
}

type updateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

func (h *HTTPTransport) updateCartItem(w http.ResponseWriter, r *http.Request) {
	productID, err := strconv.ParseInt(chi.URLParam(r, "productId"), 10, 64)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, httpx.CategoryValidation, "Invalid product id")
		return
	}

	var req updateCartItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.Error(w, http.StatusBadRequest, httpx.CategoryValidation, "Invalid JSON body")
		return
	}

	sessionID := cart.SessionIDFromContext(r.Context())
	lines, err := h.carts.SetQuantity(sessionID, productID, req.Quantity)
	if err != nil {
		writeCartError(w, err)
		return
	}

	httpx.JSON(w, http.StatusOK, map[string]any{"success": true, "cart": lines})
}

func (h *HTTPTransport) removeCartItem(w http.ResponseWriter, r *http.Request) {
	productID, err := strconv.ParseInt(chi.URLParam(r, "productId"), 10, 64)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, httpx.CategoryValidation, "Invalid product id")
		return
	}

	sessionID := cart.SessionIDFromContext(r.Context())
	lines, err := h.carts.Remove(sessionID, productID)
	if err != nil {
		writeCartError(w, err)
		return
	}

	httpx.JSON(w, http.StatusOK, map[string]any{"success": true, "cart": lines})
}

func writeCartError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, cart.ErrNoCart):
		httpx.Error(w, http.StatusNotFound, httpx.CategoryNotFound, "Cart not found")
	case errors.Is(err, cart.ErrNoLine):
		httpx.Error(w, http.StatusNotFound, httpx.CategoryNotFound, "Item not in cart")
	default:
		httpx.Error(w, http.StatusInternalServerError, httpx.CategoryUpstream, "Cart operation failed")
	}
}
