package postgresrepo

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/mockmart/techstore/internal/shopapi/models/order"
)

// querier is satisfied by both pgxpool.Pool and pgx.Tx so repositories can be
// rebound to a transaction by the unit of work.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type PostgresOrderRepository struct {
	conn querier
}

func NewPostgresOrderRepository(conn querier) *PostgresOrderRepository {
	return &PostgresOrderRepository{
		conn: conn,
	}
}

var orderColumns = []string{
	"id",
	"user_id",
	"user_email",
	"user_name",
	"total",
	"shipping_address",
	"payment_method",
	"status",
	"created_at",
}

// Insert stores the order and fills in its generated id.
func (r *PostgresOrderRepository) Insert(ctx context.Context, o *order.Order) error {
	query, args, err := sq.Insert("orders").
		Columns(
			"user_id",
			"user_email",
			"user_name",
			"total",
			"shipping_address",
			"payment_method",
			"status",
			"created_at",
		).
		Values(
			o.UserID,
			o.UserEmail,
			o.UserName,
			o.Total,
			[]byte(o.ShippingAddress),
			o.PaymentMethod,
			o.Status,
			o.CreatedAt,
		).
		Suffix("RETURNING id").
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert query: %w", err)
	}

	if err := r.conn.QueryRow(ctx, query, args...).Scan(&o.ID); err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}

	return nil
}

// ListByUser returns the user's orders, newest first. Items are not loaded
// here; the service aggregates them in a second query.
func (r *PostgresOrderRepository) ListByUser(ctx context.Context, userID string) ([]order.Order, error) {
	query, args, err := sq.Select(orderColumns...).
		From("orders").
		Where(sq.Eq{"user_id": userID}).
		OrderBy("created_at DESC", "id DESC").
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var result []order.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}

// GetByID returns one order or order.ErrNotFound.
func (r *PostgresOrderRepository) GetByID(ctx context.Context, id int64) (*order.Order, error) {
	query, args, err := sq.Select(orderColumns...).
		From("orders").
		Where(sq.Eq{"id": id}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	o, err := scanOrder(r.conn.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, err
	}

	return o, nil
}

func scanOrder(row pgx.Row) (*order.Order, error) {
	var o order.Order
	var shippingAddress []byte

	err := row.Scan(
		&o.ID,
		&o.UserID,
		&o.UserEmail,
		&o.UserName,
		&o.Total,
		&shippingAddress,
		&o.PaymentMethod,
		&o.Status,
		&o.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan order: %w", err)
	}

	o.ShippingAddress = shippingAddress

	return &o, nil
}
