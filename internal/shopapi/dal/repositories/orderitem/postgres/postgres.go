package postgresrepo

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/mockmart/techstore/internal/shopapi/models/orderitem"
)

type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type PostgresOrderItemRepository struct {
	conn querier
}

func NewPostgresOrderItemRepository(conn querier) *PostgresOrderItemRepository {
	return &PostgresOrderItemRepository{
		conn: conn,
	}
}

// BulkInsert inserts all items of an order in one statement.
func (r *PostgresOrderItemRepository) BulkInsert(ctx context.Context, items []orderitem.OrderItem) error {
	if len(items) == 0 {
		return nil
	}

	sql := `
		INSERT INTO order_items (order_id, product_id, product_name, quantity, price)
		SELECT order_id, product_id, product_name, quantity, price
		FROM unnest($1::bigint[], $2::bigint[], $3::text[], $4::int[], $5::float8[])
		AS t(order_id, product_id, product_name, quantity, price)
	`

	orderIDs := make([]int64, len(items))
	productIDs := make([]int64, len(items))
	productNames := make([]string, len(items))
	quantities := make([]int32, len(items))
	prices := make([]float64, len(items))

	for i, item := range items {
		orderIDs[i] = item.OrderID
		productIDs[i] = item.ProductID
		productNames[i] = item.ProductName
		quantities[i] = int32(item.Quantity)
		prices[i] = item.Price
	}

	if _, err := r.conn.Exec(ctx, sql, orderIDs, productIDs, productNames, quantities, prices); err != nil {
		return fmt.Errorf("failed to bulk insert order items: %w", err)
	}

	return nil
}

// ListByOrderIDs loads the items of every order in one query.
func (r *PostgresOrderItemRepository) ListByOrderIDs(ctx context.Context, orderIDs []int64) ([]orderitem.OrderItem, error) {
	if len(orderIDs) == 0 {
		return nil, nil
	}

	query, args, err := sq.Select("order_id", "product_id", "product_name", "quantity", "price").
		From("order_items").
		Where(sq.Eq{"order_id": orderIDs}).
		OrderBy("order_id", "id").
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	var result []orderitem.OrderItem
	for rows.Next() {
		var item orderitem.OrderItem
		if err := rows.Scan(&item.OrderID, &item.ProductID, &item.ProductName, &item.Quantity, &item.Price); err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		result = append(result, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}
