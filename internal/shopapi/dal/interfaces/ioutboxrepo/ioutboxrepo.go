package ioutboxrepo

import (
	"context"
	"time"

	"github.com/mockmart/techstore/internal/shopapi/models/outbox"
)

// IOutboxRepository is an interface for the outbox repository.
type IOutboxRepository interface {
	Insert(ctx context.Context, msg outbox.OutboxMessage) error
	GetPendingMessages(ctx context.Context, limit int) ([]outbox.OutboxMessage, error)
	Delete(ctx context.Context, id int64) error
	UpdateRetry(ctx context.Context, id int64, retryCount int, lastError string, nextRetryAt time.Time) error
}
