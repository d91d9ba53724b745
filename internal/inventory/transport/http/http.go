package httptransport

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mockmart/techstore/internal/auth"
	"github.com/mockmart/techstore/internal/inventory/inventorysvc"
	"github.com/mockmart/techstore/pkg/httpx"
)

const serviceName = "inventory"

type service interface {
	Check(ctx context.Context, items []inventorysvc.Item) (bool, []inventorysvc.CheckedItem)
	Reserve(ctx context.Context, orderID string, items []inventorysvc.Item) (*inventorysvc.Reservation, []inventorysvc.ReservedItem, error)
	Release(ctx context.Context, reservationID string) (string, []inventorysvc.ReleasedItem, error)
	Stock() ([]inventorysvc.StockLevel, int)
	SimulateOutOfStock()
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

// RegisterRoutes registers the routes for the HTTPTransport. Stock routes
// accept any valid token, user or service; fault toggles stay open because
// they only exist for demos and tests.
func (h *HTTPTransport) RegisterRoutes() {
	h.router.Route("/api/inventory", func(r chi.Router) {
		r.Use(auth.RequireAuth(h.verifier))
		r.Post("/check", h.check)
		r.Post("/reserve", h.reserve)
		r.Post("/release", h.release)
		r.Get("/stock", h.stock)
	})

	h.router.Route("/config", func(r chi.Router) {
		r.Post("/simulate-out-of-stock", h.simulateOutOfStock)
		r.Post("/simulate-slow", h.simulateSlow)
		r.Post("/reset", h.reset)
	})
}

// Router exposes the router for tests.
func (h *HTTPTransport) Router() http.Handler {
	return h.router
}
