package order

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/mockmart/techstore/internal/shopapi/models/orderitem"
)

// ErrNotFound is returned when an order id does not exist.
var ErrNotFound = errors.New("order not found")

// StatusPending is the only status checkout produces; downstream settlement
// never reports back in this system.
const StatusPending = "pending"

// Order represents a placed order.
type Order struct {
	ID        int64  `json:"id"`
	UserID    string `json:"userId"`
	UserEmail string `json:"userEmail"`
	UserName  string `json:"userName"`

	Total float64 `json:"total"`
	// ShippingAddress is stored opaquely; the shop never interprets it.
	ShippingAddress json.RawMessage `json:"shippingAddress"`
	PaymentMethod   string          `json:"paymentMethod"`

	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`

	Items []orderitem.OrderItem `json:"items"`
}
