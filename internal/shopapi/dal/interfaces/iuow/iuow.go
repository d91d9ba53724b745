package iuow

import (
	"context"

	"github.com/mockmart/techstore/internal/shopapi/dal/interfaces/iorderitemrepo"
	"github.com/mockmart/techstore/internal/shopapi/dal/interfaces/iorderrepo"
	"github.com/mockmart/techstore/internal/shopapi/dal/interfaces/ioutboxrepo"
)

// IUnitOfWork scopes repositories to one transaction. Begin rebinds every
// repository to the new transaction; Commit and Rollback end it.
type IUnitOfWork interface {
	Begin(ctx context.Context) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error

	OrderRepository() iorderrepo.IOrderRepository
	OrderItemRepository() iorderitemrepo.IOrderItemRepository
	OutboxRepository() ioutboxrepo.IOutboxRepository
}

// Factory creates a fresh unit of work per use.
type Factory func() IUnitOfWork
