package httptransport

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mockmart/techstore/internal/auth"
	"github.com/mockmart/techstore/internal/notification/notificationsvc"
	"github.com/mockmart/techstore/pkg/httpx"
)

const serviceName = "notification"

type service interface {
	Send(ctx context.Context, p notificationsvc.Payload) (*notificationsvc.Notification, error)
	ConsumeTimeout() bool
	SimulateTimeout()
	SetSlowTemplateUsers(userIDs []string)
	ResetSimulations()
	Stats() (uptime time.Duration, sent int64, slowUsers int)
}

type HTTPTransport struct {
	server   *http.Server
	router   *chi.Mux
	service  service
	verifier auth.TokenVerifier

	// expectedCaller is the only client allowed to send order notifications.
	expectedCaller string
}

func NewHTTPTransport(service service, verifier auth.TokenVerifier, expectedCaller string) *HTTPTransport {
	router := httpx.NewRouter(serviceName)
	server := httpx.NewServer(serviceName, router)
	return &HTTPTransport{
		server:         server,
		router:         router,
		service:        service,
		verifier:       verifier,
		expectedCaller: expectedCaller,
	}
}

func (h *HTTPTransport) Run() error {
	return h.server.ListenAndServe()
}

func (h *HTTPTransport) Shutdown(ctx context.Context) error {
	return h.server.Shutdown(ctx)
}

// RegisterRoutes registers the routes for the HTTPTransport.
func (h *HTTPTransport) RegisterRoutes() {
	h.router.Route("/api/notifications", func(r chi.Router) {
		r.Use(auth.RequireAuth(h.verifier))
		r.Post("/order", h.orderNotification)
		r.Get("/stats", h.stats)
	})

	h.router.Route("/config", func(r chi.Router) {
		r.Post("/simulate-timeout", h.simulateTimeout)
		r.Post("/slow-template", h.slowTemplate)
		r.Post("/reset", h.reset)
	})
}

// Router exposes the router for tests.
func (h *HTTPTransport) Router() http.Handler {
	return h.router
}
