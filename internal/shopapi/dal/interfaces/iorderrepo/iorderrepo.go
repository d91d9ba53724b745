package iorderrepo

import (
	"context"

	"github.com/mockmart/techstore/internal/shopapi/models/order"
)

// IOrderRepository is an interface for the order postgres repository.
type IOrderRepository interface {
	Insert(ctx context.Context, o *order.Order) error
	ListByUser(ctx context.Context, userID string) ([]order.Order, error)
	GetByID(ctx context.Context, id int64) (*order.Order, error)
}
