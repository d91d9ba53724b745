package httptransport

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/mockmart/techstore/internal/auth"
	"github.com/mockmart/techstore/internal/shopapi/models/order"
	"github.com/mockmart/techstore/internal/shopapi/ordersvc"
	"github.com/mockmart/techstore/pkg/httpx"
)

func (h *HTTPTransport) listOrders(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		httpx.Error(w, http.StatusUnauthorized, httpx.CategoryUnauthenticated, "Please login first")
		return
	}

	orders, err := h.orders.ListOrders(r.Context(), principal.ID)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to list orders", "error", err, "user_id", principal.ID)
		httpx.Error(w, http.StatusInternalServerError, httpx.CategoryUpstream, "Failed to load orders")
		return
	}

	httpx.JSON(w, http.StatusOK, map[string]any{"orders": orders})
}

func (h *HTTPTransport) getOrder(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		httpx.Error(w, http.StatusUnauthorized, httpx.CategoryUnauthenticated, "Please login first")
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, httpx.CategoryValidation, "Invalid order id")
		return
	}

	o, err := h.orders.GetOrder(r.Context(), id, principal.ID)
	if err != nil {
		switch {
		case errors.Is(err, order.ErrNotFound):
			httpx.Error(w, http.StatusNotFound, httpx.CategoryNotFound, "Order not found")
		case errors.Is(err, ordersvc.ErrNotOwner):
			httpx.Error(w, http.StatusForbidden, httpx.CategoryForbidden, "You do not have access to this order")
		default:
			slog.ErrorContext(r.Context(), "Failed to load order", "error", err, "order_id", id)
			httpx.Error(w, http.StatusInternalServerError, httpx.CategoryUpstream, "Failed to load order")
		}
		return
	}

	httpx.JSON(w, http.StatusOK, o)
}
