package httptransport

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/mockmart/techstore/internal/inventory/inventorysvc"
	"github.com/mockmart/techstore/pkg/httpx"
)

var validate = validator.New()

type checkRequest struct {
	Items []inventorysvc.Item `json:"items" validate:"required,min=1,dive"`
}

func (h *HTTPTransport) check(w http.ResponseWriter, r *http.Request) {
	var req checkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.Error(w, http.StatusBadRequest, httpx.CategoryValidation, "Invalid JSON body")
		return
	}
	if err := validate.Struct(req); err != nil {
		httpx.Error(w, http.StatusBadRequest, httpx.CategoryValidation, "items is required and must not be empty")
		return
	}

	available, items := h.service.Check(r.Context(), req.Items)

	httpx.JSON(w, http.StatusOK, map[string]any{
		"available": available,
		"items":     items,
	})
}

type reserveRequest struct {
	OrderID string              `json:"orderId" validate:"required"`
	Items   []inventorysvc.Item `json:"items"   validate:"required,min=1,dive"`
}

func (h *HTTPTransport) reserve(w http.ResponseWriter, r *http.Request) {
	var req reserveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.Error(w, http.StatusBadRequest, httpx.CategoryValidation, "Invalid JSON body")
		return
	}
	if err := validate.Struct(req); err != nil {
		httpx.Error(w, http.StatusBadRequest, httpx.CategoryValidation, "orderId and a non-empty items list are required")
		return
	}

	reservation, reserved, err := h.service.Reserve(r.Context(), req.OrderID, req.Items)
	if err != nil {
		var insufficient *inventorysvc.InsufficientStockError
		if errors.As(err, &insufficient) {
			httpx.JSON(w, http.StatusConflict, map[string]any{
				"error":            httpx.CategoryConflict,
				"message":          "Insufficient stock",
				"unavailableItems": insufficient.Unavailable,
			})
			return
		}
		slog.ErrorContext(r.Context(), "Reservation failed", "error", err)
		httpx.Error(w, http.StatusInternalServerError, httpx.CategoryUpstream, "Failed to reserve items")
		return
	}

	httpx.JSON(w, http.StatusOK, map[string]any{
		"success":       true,
		"reservationId": reservation.ID,
		"orderId":       reservation.OrderID,
		"items":         reserved,
	})
}

type releaseRequest struct {
	ReservationID string `json:"reservationId" validate:"required"`
}

func (h *HTTPTransport) release(w http.ResponseWriter, r *http.Request) {
	var req releaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.Error(w, http.StatusBadRequest, httpx.CategoryValidation, "Invalid JSON body")
		return
	}
	if err := validate.Struct(req); err != nil {
		httpx.Error(w, http.StatusBadRequest, httpx.CategoryValidation, "reservationId is required")
		return
	}

	orderID, released, err := h.service.Release(r.Context(), req.ReservationID)
	if err != nil {
		var notFound *inventorysvc.NotFoundError
		if errors.As(err, &notFound) {
			httpx.Error(w, http.StatusNotFound, httpx.CategoryNotFound, "Reservation not found")
			return
		}
		slog.ErrorContext(r.Context(), "Release failed", "error", err)
		httpx.Error(w, http.StatusInternalServerError, httpx.CategoryUpstream, "Failed to release reservation")
		return
	}

	httpx.JSON(w, http.StatusOK, map[string]any{
		"success":       true,
		"orderId":       orderID,
		"releasedItems": released,
	})
}

func (h *HTTPTransport) stock(w http.ResponseWriter, _ *http.Request) {
	levels, active := h.service.Stock()

	httpx.JSON(w, http.StatusOK, map[string]any{
		"stock":              levels,
		"activeReservations": active,
	})
}

func (h *HTTPTransport) simulateOutOfStock(w http.ResponseWriter, r *http.Request) {
	h.service.SimulateOutOfStock()
	slog.InfoContext(r.Context(), "Out-of-stock simulation armed")
	httpx.JSON(w, http.StatusOK, map[string]any{"success": true, "mode": "out-of-stock"})
}

func (h *HTTPTransport) simulateSlow(w http.ResponseWriter, r *http.Request) {
	h.service.SimulateSlow()
	slog.InfoContext(r.Context(), "Slow-operation simulation armed")
	httpx.JSON(w, http.StatusOK, map[string]any{"success": true, "mode": "slow"})
}

func (h *HTTPTransport) reset(w http.ResponseWriter, r *http.Request) {
	h.service.ResetSimulations()
	slog.InfoContext(r.Context(), "Simulations reset")
	httpx.JSON(w, http.StatusOK, map[string]any{"success": true})
}
