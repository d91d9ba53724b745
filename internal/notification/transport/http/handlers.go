package httptransport

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/mockmart/techstore/internal/auth"
	"github.com/mockmart/techstore/internal/notification/notificationsvc"
	"github.com/mockmart/techstore/pkg/httpx"
)

func (h *HTTPTransport) orderNotification(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok || !principal.IsServiceAccount() {
		httpx.Error(w, http.StatusForbidden, httpx.CategoryForbidden,
			"Order notifications accept service accounts only")
		return
	}
	if principal.ClientID != h.expectedCaller {
		slog.WarnContext(r.Context(), "Notification call from unexpected client",
			"client_id", principal.ClientID, "expected", h.expectedCaller)
		httpx.Error(w, http.StatusForbidden, httpx.CategoryForbidden,
			"Calling service is not allowed to send order notifications")
		return
	}

	var payload notificationsvc.Payload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		httpx.Error(w, http.StatusBadRequest, httpx.CategoryValidation, "Invalid JSON body")
		return
	}
	if payload.OrderID == "" {
		httpx.Error(w, http.StatusBadRequest, httpx.CategoryValidation, "orderId is required")
		return
	}

	// An armed timeout holds the connection open without answering, so the
	// caller's own deadline decides the outcome.
	if h.service.ConsumeTimeout() {
		slog.WarnContext(r.Context(), "Timeout simulation active, holding request", "order_id", payload.OrderID)
		<-r.Context().Done()
		return
	}

	notification, err := h.service.Send(r.Context(), payload)
	if err != nil {
		slog.ErrorContext(r.Context(), "Notification render failed", "error", err, "order_id", payload.OrderID)
		httpx.Error(w, http.StatusInternalServerError, httpx.CategoryUpstream, "Failed to send notification")
		return
	}

	slog.InfoContext(r.Context(), "Order notification sent",
		"notification_id", notification.ID,
		"order_id", payload.OrderID,
		"render_time_ms", notification.RenderTime,
	)

	httpx.JSON(w, http.StatusOK, map[string]any{
		"success":        true,
		"notificationId": notification.ID,
		"template":       notification.Template,
		"renderTime":     notification.RenderTime,
		"message":        notification.Message,
		"timestamp":      notification.Timestamp,
	})
}

func (h *HTTPTransport) stats(w http.ResponseWriter, _ *http.Request) {
	uptime, sent, slowUsers := h.service.Stats()

	httpx.JSON(w, http.StatusOK, map[string]any{
		"service":           serviceName,
		"uptimeSeconds":     int64(uptime.Seconds()),
		"notificationsSent": sent,
		"slowTemplateUsers": slowUsers,
	})
}

func (h *HTTPTransport) simulateTimeout(w http.ResponseWriter, r *http.Request) {
	h.service.SimulateTimeout()
	slog.InfoContext(r.Context(), "Notification timeout simulation armed")
	httpx.JSON(w, http.StatusOK, map[string]any{"success": true, "mode": "timeout"})
}

type slowTemplateRequest struct {
	UserIDs []string `json:"userIds"`
}

func (h *HTTPTransport) slowTemplate(w http.ResponseWriter, r *http.Request) {
	var req slowTemplateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.Error(w, http.StatusBadRequest, httpx.CategoryValidation, "Invalid JSON body")
		return
	}

	h.service.SetSlowTemplateUsers(req.UserIDs)
	slog.InfoContext(r.Context(), "Slow-template users set", "count", len(req.UserIDs))
	httpx.JSON(w, http.StatusOK, map[string]any{"success": true, "userIds": req.UserIDs})
}

func (h *HTTPTransport) reset(w http.ResponseWriter, r *http.Request) {
	h.service.ResetSimulations()
	slog.InfoContext(r.Context(), "Notification simulations reset")
	httpx.JSON(w, http.StatusOK, map[string]any{"success": true})
}
