// Package ordersvc holds the checkout saga and order queries.
package ordersvc

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/mockmart/techstore/internal/auth"
	"github.com/mockmart/techstore/internal/shopapi/cart"
	"github.com/mockmart/techstore/internal/shopapi/dal/interfaces/iuow"
	"github.com/mockmart/techstore/internal/shopapi/models/order"
	"github.com/mockmart/techstore/internal/shopapi/models/orderitem"
	"github.com/mockmart/techstore/internal/shopapi/models/outbox"
	"github.com/mockmart/techstore/internal/shopapi/notifier"
)

// ErrNotOwner is returned when a user reads someone else's order.
var ErrNotOwner = errors.New("order belongs to another user")

// OrderService is a service for placing and reading orders.
type OrderService struct {
	newUOW   iuow.Factory
	notifier notifier.Notifier
}

// option is a function that configures the OrderService.
type option func(*OrderService)

// MustNewOrderService creates a new OrderService. A unit-of-work factory is
// mandatory; a nil notifier disables confirmations.
func MustNewOrderService(opts ...option) *OrderService {
	s := &OrderService{}
	for _, opt := range opts {
		opt(s)
	}

	if s.newUOW == nil {
		panic("ordersvc: unit of work factory is required")
	}

	return s
}

// WithUnitOfWorkFactory sets the unit-of-work factory for the OrderService.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithUnitOfWorkFactory(factory iuow.Factory) option {
	return func(s *OrderService) {
		s.newUOW = factory
	}
}

// WithNotifier sets the order-confirmation notifier for the OrderService.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithNotifier(n notifier.Notifier) option {
	return func(s *OrderService) {
		s.notifier = n
	}
}

// Checkout turns the cart into an order. The order, its items and the
// order.created outbox event commit in one transaction; on any failure the
// transaction rolls back and the caller keeps the cart. Notification runs
// after commit and never fails the checkout.
func (s *OrderService) Checkout(
	ctx context.Context,
	principal *auth.Principal,
	lines []cart.Line,
	shippingAddress json.RawMessage,
	paymentMethod string,
) (*order.Order, error) {
	var total float64
	items := make([]orderitem.OrderItem, 0, len(lines))
	for _, line := range lines {
		total += line.Product.Price * float64(line.Quantity)
		items = append(items, orderitem.OrderItem{
			ProductID:   line.ProductID,
			ProductName: line.Product.Name,
			Quantity:    line.Quantity,
			Price:       line.Product.Price,
		})
	}

	o := &order.Order{
		UserID:          principal.ID,
		UserEmail:       principal.Email,
		UserName:        principal.Name,
		Total:           total,
		ShippingAddress: shippingAddress,
		PaymentMethod:   paymentMethod,
		Status:          order.StatusPending,
		CreatedAt:       time.Now(),
		Items:           items,
	}

	work := s.newUOW()

	if err := work.Begin(ctx); err != nil {
		return nil, err
	}
	defer func() {
		if err := work.Rollback(ctx); err != nil {
			slog.ErrorContext(ctx, "Checkout transaction rollback failed", "error", err)
		}
	}()

	if err := work.OrderRepository().Insert(ctx, o); err != nil {
		return nil, err
	}

	for i := range o.Items {
		o.Items[i].OrderID = o.ID
	}
	if err := work.OrderItemRepository().BulkInsert(ctx, o.Items); err != nil {
		return nil, err
	}

	event, err := outbox.NewOrderCreated(o)
	if err != nil {
		return nil, err
	}
	if err := work.OutboxRepository().Insert(ctx, event); err != nil {
		return nil, err
	}

	if err := work.Commit(ctx); err != nil {
		return nil, err
	}

	s.notifyOrderCreated(ctx, o)

	return o, nil
}

// notifyOrderCreated is best-effort: a dead or slow notification service must
// not fail a committed checkout.
func (s *OrderService) notifyOrderCreated(ctx context.Context, o *order.Order) {
	if s.notifier == nil {
		return
	}

	if err := s.notifier.OrderCreated(ctx, o); err != nil {
		slog.WarnContext(ctx, "Order notification failed, order is already committed",
			"order_id", o.ID,
			"error", err,
		)
		return
	}

	slog.InfoContext(ctx, "Order notification sent", "order_id", o.ID)
}

// ListOrders returns the user's orders with items attached, newest first.
func (s *OrderService) ListOrders(ctx context.Context, userID string) ([]order.Order, error) {
	work := s.newUOW()

	orders, err := work.OrderRepository().ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return []order.Order{}, nil
	}

	orderIDs := make([]int64, len(orders))
	index := make(map[int64]*order.Order, len(orders))
	for i := range orders {
		orders[i].Items = []orderitem.OrderItem{}
		orderIDs[i] = orders[i].ID
		index[orders[i].ID] = &orders[i]
	}

	items, err := work.OrderItemRepository().ListByOrderIDs(ctx, orderIDs)
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		if o, ok := index[item.OrderID]; ok {
			o.Items = append(o.Items, item)
		}
	}

	return orders, nil
}

// GetOrder returns one order with items. Ownership is enforced here so the
// transport cannot leak another user's order by mistake.
func (s *OrderService) GetOrder(ctx context.Context, id int64, userID string) (*order.Order, error) {
	work := s.newUOW()

	o, err := work.OrderRepository().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.UserID != userID {
		return nil, ErrNotOwner
	}

	items, err := work.OrderItemRepository().ListByOrderIDs(ctx, []int64{o.ID})
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []orderitem.OrderItem{}
	}
	o.Items = items

	return o, nil
}
