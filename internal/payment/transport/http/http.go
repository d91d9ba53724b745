package httptransport

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mockmart/techstore/internal/auth"
	"github.com/mockmart/techstore/internal/payment/paymentsvc"
	"github.com/mockmart/techstore/pkg/httpx"
)

const serviceName = "payment"

type service interface {
	Process(ctx context.Context, orderID string, amount float64, paymentMethod string) (*paymentsvc.Result, error)
	SimulateFailure()
	SimulateSlow()
	ResetSimulations()
}

type HTTPTransport struct {
	server   *http.Server
	router   *chi.Mux
	service  service
	verifier auth.TokenVerifier
}

func NewHTTPTransport(service service, verifier auth.TokenVerifier) *HTTPTransport {
	router := httpx.NewRouter(serviceName)
	server := httpx.NewServer(serviceName, router)
	return &HTTPTransport{
		server:   server,
		router:   router,
		service:  service,
		verifier: verifier,
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
	h.router.Route("/api/payments", func(r chi.Router) {
		r.Use(auth.RequireAuth(h.verifier))
		r.Post("/process", h.process)
		r.Get("/status/{transactionId}", h.status)
	})

	h.router.Route("/config", func(r chi.Router) {
		r.Post("/simulate-failure", h.simulateFailure)
		r.Post("/simulate-slow", h.simulateSlow)
		r.Post("/reset", h.reset)
	})
}

// Router exposes the router for tests.
func (h *HTTPTransport) Router() http.Handler {
	return h.router
}
