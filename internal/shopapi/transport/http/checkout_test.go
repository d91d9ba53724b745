package httptransport

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mockmart/techstore/internal/auth"
	"github.com/mockmart/techstore/internal/auth/authtest"
	"github.com/mockmart/techstore/internal/shopapi/cart"
	"github.com/mockmart/techstore/internal/shopapi/catalog"
	"github.com/mockmart/techstore/internal/shopapi/models/order"
)

type fakeOrderService struct {
	fail    bool
	lastErr error
	placed  []*order.Order
}

func (f *fakeOrderService) Checkout(_ context.Context, principal *auth.Principal, lines []cart.Line, shippingAddress json.RawMessage, paymentMethod string) (*order.Order, error) {
	if f.fail {
		f.lastErr = errors.New("database unavailable")
		return nil, f.lastErr
	}

	var total float64
	for _, l := range lines {
		total += l.Product.Price * float64(l.Quantity)
	}
	o := &order.Order{
		ID:              int64(len(f.placed) + 1),
		UserID:          principal.ID,
		Total:           total,
		ShippingAddress: shippingAddress,
		PaymentMethod:   paymentMethod,
		Status:          order.StatusPending,
	}
	f.placed = append(f.placed, o)
	return o, nil
}

func (f *fakeOrderService) ListOrders(_ context.Context, userID string) ([]order.Order, error) {
	var result []order.Order
	for i := len(f.placed) - 1; i >= 0; i-- {
		if f.placed[i].UserID == userID {
			result = append(result, *f.placed[i])
		}
	}
	return result, nil
}

func (f *fakeOrderService) GetOrder(_ context.Context, id int64, userID string) (*order.Order, error) {
	for _, o := range f.placed {
		if o.ID != id {
			continue
		}
		if o.UserID != userID {
			return nil, errors.New("order belongs to another user")
		}
		return o, nil
	}
	return nil, order.ErrNotFound
}

type transportFixture struct {
	idp     *authtest.IdentityProvider
	carts   *cart.Store
	orders  *fakeOrderService
	handler http.Handler
}

func setupTransportTest(t *testing.T) *transportFixture {
	t.Helper()

	idp, err := authtest.New()
	require.NoError(t, err)
	t.Cleanup(idp.Close)

	catalogStore := catalog.NewStore()
	_, err = catalogStore.Create(catalog.NewProduct{Name: "MacBook Pro", Price: 2499, Category: "laptops"})
	require.NoError(t, err)
	_, err = catalogStore.Create(catalog.NewProduct{Name: "AirPods Pro", Price: 249, Category: "audio"})
	require.NoError(t, err)

	carts := cart.NewStore()
	orders := &fakeOrderService{}

	transport := NewHTTPTransport(catalogStore, carts, orders, auth.NewVerifier(idp.JWKSURL(), idp.Issuer()))
	transport.RegisterRoutes()

	return &transportFixture{idp: idp, carts: carts, orders: orders, handler: transport.Router()}
}

const testSession = "test-session"

func (f *transportFixture) do(t *testing.T, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(&http.Cookie{Name: cart.SessionCookie, Value: testSession})
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	return rec
}

func (f *transportFixture) userToken(t *testing.T, canCheckout any) string {
	t.Helper()

	token, err := f.idp.UserToken("user-1", "alice@example.com", nil, canCheckout)
	require.NoError(t, err)
	return token
}

const checkoutBody = `{"shippingAddress":{"street":"Main St 1","city":"Berlin"},"paymentMethod":"credit-card"}`

func TestCheckout_RequiresAuth(t *testing.T) {
	f := setupTransportTest(t)

	rec := f.do(t, http.MethodPost, "/api/checkout", "", checkoutBody)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCheckout_EmptyCart(t *testing.T) {
	f := setupTransportTest(t)

	rec := f.do(t, http.MethodPost, "/api/checkout", f.userToken(t, true), checkoutBody)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Cart is empty")
}

func TestCheckout_ForbiddenWithoutPermission(t *testing.T) {
	f := setupTransportTest(t)
	f.do(t, http.MethodPost, "/api/cart", "", `{"productId":1,"quantity":1}`)

	rec := f.do(t, http.MethodPost, "/api/checkout", f.userToken(t, false), checkoutBody)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	// The cart is untouched by a rejected checkout.
	assert.Len(t, f.carts.Get(testSession), 1)
}

func TestCheckout_MissingFields(t *testing.T) {
	f := setupTransportTest(t)
	f.do(t, http.MethodPost, "/api/cart", "", `{"productId":1,"quantity":1}`)
	token := f.userToken(t, true)

	for name, body := range map[string]string{
		"no shipping address": `{"paymentMethod":"credit-card"}`,
		"null address":        `{"shippingAddress":null,"paymentMethod":"credit-card"}`,
		"no payment method":   `{"shippingAddress":{"city":"Berlin"}}`,
	} {
		t.Run(name, func(t *testing.T) {
			rec := f.do(t, http.MethodPost, "/api/checkout", token, body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}

	assert.Len(t, f.carts.Get(testSession), 1)
}

func TestCheckout_SuccessClearsCart(t *testing.T) {
	f := setupTransportTest(t)
	f.do(t, http.MethodPost, "/api/cart", "", `{"productId":1,"quantity":1}`)
	f.do(t, http.MethodPost, "/api/cart", "", `{"productId":2,"quantity":2}`)

	rec := f.do(t, http.MethodPost, "/api/checkout", f.userToken(t, true), checkoutBody)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Success bool         `json:"success"`
		Order   *order.Order `json:"order"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	require.NotNil(t, body.Order)
	assert.Equal(t, 2997.0, body.Order.Total)
	assert.Equal(t, order.StatusPending, body.Order.Status)

	assert.Empty(t, f.carts.Get(testSession))
}

func TestCheckout_FailureKeepsCart(t *testing.T) {
	f := setupTransportTest(t)
	f.do(t, http.MethodPost, "/api/cart", "", `{"productId":1,"quantity":1}`)
	f.orders.fail = true

	rec := f.do(t, http.MethodPost, "/api/checkout", f.userToken(t, true), checkoutBody)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Len(t, f.carts.Get(testSession), 1)
}
