package iorderitemrepo

import (
	"context"

	"github.com/mockmart/techstore/internal/shopapi/models/orderitem"
)

// IOrderItemRepository is an interface for the order item postgres repository.
type IOrderItemRepository interface {
	BulkInsert(ctx context.Context, items []orderitem.OrderItem) error
	ListByOrderIDs(ctx context.Context, orderIDs []int64) ([]orderitem.OrderItem, error)
}
