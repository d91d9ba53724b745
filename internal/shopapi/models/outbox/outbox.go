package outbox

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/mockmart/techstore/internal/shopapi/models/order"
)

// QueueOrderEvents is the queue the outbox worker publishes order events to.
const QueueOrderEvents = "orders.events"

const defaultMaxRetries = 10

// OutboxMessage is an event written in the same transaction as the change it
// describes, waiting to be published to RabbitMQ.
type OutboxMessage struct {
	ID           int64
	QueueName    string
	ExchangeName string
	RoutingKey   string
	Payload      []byte
	ContentType  string
	RetryCount   int
	MaxRetries   int
	LastError    string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	NextRetryAt  time.Time
}

type orderCreatedEvent struct {
	Type      string       `json:"type"`
	Order     *order.Order `json:"order"`
	Timestamp time.Time    `json:"timestamp"`
}

// NewOrderCreated builds the order.created event for a freshly inserted order.
func NewOrderCreated(o *order.Order) (OutboxMessage, error) {
	now := time.Now()

	payload, err := json.Marshal(orderCreatedEvent{
		Type:      "order.created",
		Order:     o,
		Timestamp: now,
	})
	if err != nil {
		return OutboxMessage{}, fmt.Errorf("failed to marshal order.created event: %w", err)
	}

	return OutboxMessage{
		QueueName:   QueueOrderEvents,
		RoutingKey:  QueueOrderEvents,
		Payload:     payload,
		ContentType: "application/json",
		MaxRetries:  defaultMaxRetries,
		CreatedAt:   now,
		UpdatedAt:   now,
		NextRetryAt: now,
	}, nil
}
