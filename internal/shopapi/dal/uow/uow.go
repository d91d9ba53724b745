package uow

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mockmart/techstore/internal/shopapi/dal/interfaces/iorderitemrepo"
	"github.com/mockmart/techstore/internal/shopapi/dal/interfaces/iorderrepo"
	"github.com/mockmart/techstore/internal/shopapi/dal/interfaces/ioutboxrepo"
	"github.com/mockmart/techstore/internal/shopapi/dal/interfaces/iuow"
	"github.com/mockmart/techstore/internal/shopapi/dal/postgres"
	orderrepo "github.com/mockmart/techstore/internal/shopapi/dal/repositories/order/postgres"
	orderitemrepo "github.com/mockmart/techstore/internal/shopapi/dal/repositories/orderitem/postgres"
	outboxrepo "github.com/mockmart/techstore/internal/shopapi/dal/repositories/outbox/postgres"
)

type unitOfWork struct {
	pool *pgxpool.Pool
	tx   pgx.Tx

	orderRepo     iorderrepo.IOrderRepository
	orderItemRepo iorderitemrepo.IOrderItemRepository
	outboxRepo    ioutboxrepo.IOutboxRepository
}

// NewUnitOfWork creates a unit of work over the pool. Until Begin is called
// the repositories run outside any transaction.
func NewUnitOfWork(client *postgres.Client) iuow.IUnitOfWork {
	pool := client.Pool()
	return &unitOfWork{
		pool:          pool,
		orderRepo:     orderrepo.NewPostgresOrderRepository(pool),
		orderItemRepo: orderitemrepo.NewPostgresOrderItemRepository(pool),
		outboxRepo:    outboxrepo.NewOutboxRepository(pool),
	}
}

func (u *unitOfWork) OrderRepository() iorderrepo.IOrderRepository {
	return u.orderRepo
}

func (u *unitOfWork) OrderItemRepository() iorderitemrepo.IOrderItemRepository {
	return u.orderItemRepo
}

func (u *unitOfWork) OutboxRepository() ioutboxrepo.IOutboxRepository {
	return u.outboxRepo
}

func (u *unitOfWork) Begin(ctx context.Context) error {
	tx, err := u.pool.Begin(ctx)
	if err != nil {
		return err
	}

	u.tx = tx
	u.orderRepo = orderrepo.NewPostgresOrderRepository(tx)
	u.orderItemRepo = orderitemrepo.NewPostgresOrderItemRepository(tx)
	u.outboxRepo = outboxrepo.NewOutboxRepository(tx)

	return nil
}

func (u *unitOfWork) Commit(ctx context.Context) error {
	if u.tx == nil {
		return nil
	}
	return u.tx.Commit(ctx)
}

// Rollback is safe to defer after Commit; a finished transaction reports
// pgx.ErrTxClosed which is swallowed here.
func (u *unitOfWork) Rollback(ctx context.Context) error {
	if u.tx == nil {
		return nil
	}
	if err := u.tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return err
	}
	return nil
}
