package httptransport

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mockmart/techstore/internal/auth"
	"github.com/mockmart/techstore/internal/shopapi/cart"
	"github.com/mockmart/techstore/internal/shopapi/catalog"
	"github.com/mockmart/techstore/internal/shopapi/models/order"
	"github.com/mockmart/techstore/pkg/httpx"
)

const serviceName = "shop-api"

type orderService interface {
	Checkout(ctx context.Context, principal *auth.Principal, lines []cart.Line, shippingAddress json.RawMessage, paymentMethod string) (*order.Order, error)
	ListOrders(ctx context.Context, userID string) ([]order.Order, error)
	GetOrder(ctx context.Context, id int64, userID string) (*order.Order, error)
}

type HTTPTransport struct {
	server   *http.Server
	router   *chi.Mux
	catalog  *catalog.Store
	carts    *cart.Store
	orders   orderService
	verifier auth.TokenVerifier
}

func NewHTTPTransport(catalogStore *catalog.Store, carts *cart.Store, orders orderService, verifier auth.TokenVerifier) *HTTPTransport {
	router := httpx.NewRouter(serviceName)
	server := httpx.NewServer(serviceName, router)
	return &HTTPTransport{
		server:   server,
		router:   router,
		catalog:  catalogStore,
		carts:    carts,
		orders:   orders,
		verifier: verifier,
	}
}

func (h *HTTPTransport) Run() error {
	return h.server.ListenAndServe()
}

func (h *HTTPTransport) Shutdown(ctx context.Context) error {
	return h.server.Shutdown(ctx)
}

// RegisterRoutes registers the routes for the HTTPTransport. Catalog reads
// and writes are both public (the unguarded writes are a deliberate demo
// gap); the /api/admin mirror of the write operations is the admin-gated
// surface. Cart is session-scoped, checkout plus orders require a logged-in
// user.
func (h *HTTPTransport) RegisterRoutes() {
	h.router.Route("/api", func(r chi.Router) {
		r.Get("/products", h.listProducts)
		r.Get("/products/{id}", h.getProduct)
		r.Get("/categories", h.categories)
		r.Post("/products", h.createProduct)
		r.Put("/products/{id}", h.updateProduct)
		r.Delete("/products/{id}", h.deleteProduct)

		r.Route("/admin", func(r chi.Router) {
			r.Use(auth.RequireAuth(h.verifier))
			r.Use(auth.RequireAdmin)
			r.Post("/products", h.createProduct)
			r.Put("/products/{id}", h.updateProduct)
			r.Delete("/products/{id}", h.deleteProduct)
		})

		r.Route("/cart", func(r chi.Router) {
			r.Use(cart.SessionMiddleware)
			r.Get("/", h.getCart)
			r.Post("/", h.addToCart)
			r.Put("/{productId}", h.updateCartItem)
			r.Delete("/{productId}", h.removeCartItem)
		})

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(h.verifier))
			r.Get("/user/profile", h.profile)
			r.With(cart.SessionMiddleware).Post("/checkout", h.checkout)
			r.Get("/orders", h.listOrders)
			r.Get("/orders/{id}", h.getOrder)
		})
	})
}

// Router exposes the router for tests.
func (h *HTTPTransport) Router() http.Handler {
	return h.router
}
