package httptransport

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mockmart/techstore/internal/payment/paymentsvc"
	"github.com/mockmart/techstore/pkg/httpx"
)

// CategoryDeclined is the error category for a refused charge.
const CategoryDeclined = "PaymentDeclined"

type processRequest struct {
	OrderID       string  `json:"orderId"`
	Amount        float64 `json:"amount"`
	PaymentMethod string  `json:"paymentMethod"`
}

func (h *HTTPTransport) process(w http.ResponseWriter, r *http.Request) {
	var req processRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.Error(w, http.StatusBadRequest, httpx.CategoryValidation, "Invalid JSON body")
		return
	}
	if req.Amount <= 0 || req.PaymentMethod == "" {
		httpx.Error(w, http.StatusBadRequest, httpx.CategoryValidation, "amount and paymentMethod are required")
		return
	}

	result, err := h.service.Process(r.Context(), req.OrderID, req.Amount, req.PaymentMethod)
	if err != nil {
		if errors.Is(err, paymentsvc.ErrDeclined) {
			slog.WarnContext(r.Context(), "Payment declined", "order_id", req.OrderID, "amount", req.Amount)
			httpx.Error(w, http.StatusPaymentRequired, CategoryDeclined, "Payment declined")
			return
		}
		slog.ErrorContext(r.Context(), "Payment processing failed", "error", err)
		httpx.Error(w, http.StatusInternalServerError, httpx.CategoryUpstream, "Payment processing failed")
		return
	}

	slog.InfoContext(r.Context(), "Payment processed",
		"transaction_id", result.TransactionID,
		"payment_ref", result.PaymentRef,
		"processing_time_ms", result.ProcessingTime,
	)

	httpx.JSON(w, http.StatusOK, map[string]any{
		"success":        true,
		"transactionId":  result.TransactionID,
		"processingTime": result.ProcessingTime,
		"paymentRef":     result.PaymentRef,
		"amount":         result.Amount,
		"paymentMethod":  result.PaymentMethod,
		"timestamp":      result.Timestamp,
	})
}

func (h *HTTPTransport) status(w http.ResponseWriter, r *http.Request) {
	transactionID := chi.URLParam(r, "transactionId")

	// The gateway keeps no transaction log; any id reads as completed.
	httpx.JSON(w, http.StatusOK, map[string]any{
		"transactionId": transactionID,
		"status":        "completed",
		"timestamp":     time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *HTTPTransport) simulateFailure(w http.ResponseWriter, r *http.Request) {
	h.service.SimulateFailure()
	slog.InfoContext(r.Context(), "Payment failure simulation armed")
	httpx.JSON(w, http.StatusOK, map[string]any{"success": true, "mode": "failure"})
}

func (h *HTTPTransport) simulateSlow(w http.ResponseWriter, r *http.Request) {
	h.service.SimulateSlow()
	slog.InfoContext(r.Context(), "Payment slow simulation armed")
	httpx.JSON(w, http.StatusOK, map[string]any{"success": true, "mode": "slow"})
}

func (h *HTTPTransport) reset(w http.ResponseWriter, r *http.Request) {
	h.service.ResetSimulations()
	slog.InfoContext(r.Context(), "Payment simulations reset")
	httpx.JSON(w, http.StatusOK, map[string]any{"success": true})
}
