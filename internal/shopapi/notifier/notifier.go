// Package notifier delivers order confirmations to the notification service
// using a machine-to-machine token.
package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/mockmart/techstore/internal/shopapi/models/order"
)

// Timeout bounds one notification attempt. Checkout treats notification as
// best-effort, so the bound keeps a slow notification service from holding
// the checkout response.
const Timeout = 5 * time.Second

// Notifier sends order events to interested services.
type Notifier interface {
	OrderCreated(ctx context.Context, o *order.Order) error
}

// TokenSource supplies the machine-to-machine bearer token.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// HTTPNotifier calls the notification service over HTTP.
type HTTPNotifier struct {
	baseURL    string
	tokens     TokenSource
	httpClient *http.Client
}

// NewHTTPNotifier creates a notifier for the given notification service URL.
func NewHTTPNotifier(baseURL string, tokens TokenSource) *HTTPNotifier {
	return &HTTPNotifier{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		tokens:     tokens,
		httpClient: &http.Client{Timeout: Timeout},
	}
}

type orderItemPayload struct {
	ProductID   int64   `json:"productId"`
	ProductName string  `json:"productName"`
	Quantity    int     `json:"quantity"`
	Price       float64 `json:"price"`
}

type orderPayload struct {
	OrderID   string             `json:"orderId"`
	UserID    string             `json:"userId"`
	UserEmail string             `json:"userEmail"`
	UserName  string             `json:"userName"`
	Total     float64            `json:"total"`
	Items     []orderItemPayload `json:"items"`
	Timestamp string             `json:"timestamp"`
}

// OrderCreated posts the confirmation request for a committed order.
func (n *HTTPNotifier) OrderCreated(ctx context.Context, o *order.Order) error {
	token, err := n.tokens.Token(ctx)
	if err != nil {
		return fmt.Errorf("failed to obtain notification token: %w", err)
	}

	items := make([]orderItemPayload, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, orderItemPayload{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			Price:       item.Price,
		})
	}

	body, err := json.Marshal(orderPayload{
		OrderID:   strconv.FormatInt(o.ID, 10),
		UserID:    o.UserID,
		UserEmail: o.UserEmail,
		UserName:  o.UserName,
		Total:     o.Total,
		Items:     items,
		Timestamp: o.CreatedAt.UTC().Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal notification payload: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.baseURL+"/api/notifications/order", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build notification request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("notification request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("notification service returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	return nil
}
