// Package inventorysvc owns the stock levels and the reservation lifecycle.
// All state is in-memory with process lifetime; reservations never expire on
// their own, an abandoned order leaks its hold until release is called.
package inventorysvc

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// slowOperationDelay is applied once after the slow-simulation toggle fires.
const slowOperationDelay = 1500 * time.Millisecond

// Item is a productId/quantity pair as sent by callers.
type Item struct {
	ProductID int64 `json:"productId"        validate:"gt=0"`
	Quantity  int   `json:"quantity"         validate:"gt=0"`
}

// StockEntry seeds one product's stock level.
type StockEntry struct {
	Name  string
	Stock int
}

// Reservation is a hold on stock tied to an order.
type Reservation struct {
	ID        string    `json:"reservationId"`
	OrderID   string    `json:"orderId"`
	Items     []Item    `json:"items"`
	CreatedAt time.Time `json:"createdAt"`
}

// CheckedItem reports availability for one requested line.
type CheckedItem struct {
	ProductID         int64  `json:"productId"`
	RequestedQuantity int    `json:"requestedQuantity"`
	Available         bool   `json:"available"`
	Stock             int    `json:"stock"`
	ProductName       string `json:"productName,omitempty"`
	Reason            string `json:"reason,omitempty"`
}

// ReservedItem is one line of a successful reservation.
type ReservedItem struct {
	ProductID      int64  `json:"productId"`
	Quantity       int    `json:"quantity"`
	ProductName    string `json:"productName"`
	RemainingStock int    `json:"remainingStock"`
}

// ReleasedItem is one line returned to stock.
type ReleasedItem struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
	NewStock  int   `json:"newStock"`
}

// UnavailableItem describes a line that blocked a reservation.
type UnavailableItem struct {
	ProductID         int64 `json:"productId"`
	RequestedQuantity int   `json:"requestedQuantity"`
	AvailableStock    int   `json:"availableStock"`
}

// InsufficientStockError fails the whole reservation; no line is decremented.
type InsufficientStockError struct {
	Unavailable []UnavailableItem
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %d item(s)", len(e.Unavailable))
}

// NotFoundError reports an unknown reservation id.
type NotFoundError struct {
	ReservationID string
}

func (e *NotFoundError) Error() string {
	return "reservation not found: " + e.ReservationID
}

// Service holds stock and reservations behind one mutex so every batch
// operation is a single critical section.
type Service struct {
	mu           sync.Mutex
	stock        map[int64]*StockEntry
	reservations map[string]*Reservation

	simulateOutOfStock bool
	simulateSlow       bool

	// sleep is swappable in tests.
	sleep func(time.Duration)
	now   func() time.Time
}

// New creates a Service seeded with the given stock levels.
func New(seed map[int64]StockEntry) *Service {
	stock := make(map[int64]*StockEntry, len(seed))
	for id, entry := range seed {
		e := entry
		stock[id] = &e
	}

	return &Service{
		stock:        stock,
		reservations: make(map[string]*Reservation),
		sleep:        time.Sleep,
		now:          time.Now,
	}
}

// DefaultStock mirrors the catalog's product identifiers.
func DefaultStock() map[int64]StockEntry {
	return map[int64]StockEntry{
		1:  {Name: `MacBook Pro 16"`, Stock: 50},
		2:  {Name: "iPhone 15 Pro", Stock: 200},
		3:  {Name: "iPad Air", Stock: 150},
		4:  {Name: "AirPods Pro", Stock: 75},
		5:  {Name: "Apple Watch Series 9", Stock: 30},
		6:  {Name: "Magic Keyboard", Stock: 100},
		7:  {Name: "Studio Display", Stock: 80},
		8:  {Name: "Mac Mini M2", Stock: 120},
		9:  {Name: "HomePod Mini", Stock: 60},
		10: {Name: "AirTag 4 Pack", Stock: 90},
	}
}

// Check reports availability for every requested line.
func (s *Service) Check(ctx context.Context, items []Item) (allAvailable bool, results []CheckedItem) {
	s.maybeSleep(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.simulateOutOfStock {
		s.simulateOutOfStock = false
		results = make([]CheckedItem, 0, len(items))
		for _, item := range items {
			results = append(results, CheckedItem{
				ProductID:         item.ProductID,
				RequestedQuantity: item.Quantity,
				Available:         false,
				Stock:             0,
				Reason:            "Out of stock (simulated)",
			})
		}
		return false, results
	}

	allAvailable = true
	results = make([]CheckedItem, 0, len(items))
	for _, item := range items {
		entry, ok := s.stock[item.ProductID]
		checked := CheckedItem{
			ProductID:         item.ProductID,
			RequestedQuantity: item.Quantity,
			ProductName:       "Unknown",
		}
		if ok {
			checked.Stock = entry.Stock
			checked.ProductName = entry.Name
			checked.Available = entry.Stock >= item.Quantity
		}
		if !checked.Available {
			allAvailable = false
		}
		results = append(results, checked)
	}

	return allAvailable, results
}

// Reserve decrements stock for every line or for none of them. The whole
// batch runs under one lock so concurrent reservations cannot interleave
// between the availability check and the decrement.
func (s *Service) Reserve(ctx context.Context, orderID string, items []Item) (*Reservation, []ReservedItem, error) {
	s.maybeSleep(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	var unavailable []UnavailableItem
	for _, item := range items {
		entry, ok := s.stock[item.ProductID]
		if !ok || entry.Stock < item.Quantity {
			available := 0
			if ok {
				available = entry.Stock
			}
			unavailable = append(unavailable, UnavailableItem{
				ProductID:         item.ProductID,
				RequestedQuantity: item.Quantity,
				AvailableStock:    available,
			})
		}
	}
	if len(unavailable) > 0 {
		return nil, nil, &InsufficientStockError{Unavailable: unavailable}
	}

	reserved := make([]ReservedItem, 0, len(items))
	for _, item := range items {
		entry := s.stock[item.ProductID]
		entry.Stock -= item.Quantity
		reserved = append(reserved, ReservedItem{
			ProductID:      item.ProductID,
			Quantity:       item.Quantity,
			ProductName:    entry.Name,
			RemainingStock: entry.Stock,
		})
	}

	reservation := &Reservation{
		ID:        "res-" + uuid.NewString(),
		OrderID:   orderID,
		Items:     append([]Item(nil), items...),
		CreatedAt: s.now(),
	}
	s.reservations[reservation.ID] = reservation

	return reservation, reserved, nil
}

// Release restores the reserved quantities and deletes the record. A second
// release of the same id legitimately fails with NotFoundError because the
// record is gone.
func (s *Service) Release(ctx context.Context, reservationID string) (orderID string, released []ReleasedItem, err error) {
	s.maybeSleep(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	reservation, ok := s.reservations[reservationID]
	if !ok {
		return "", nil, &NotFoundError{ReservationID: reservationID}
	}

	released = make([]ReleasedItem, 0, len(reservation.Items))
	for _, item := range reservation.Items {
		entry, ok := s.stock[item.ProductID]
		if !ok {
			continue
		}
		entry.Stock += item.Quantity
		released = append(released, ReleasedItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			NewStock:  entry.Stock,
		})
	}

	delete(s.reservations, reservationID)

	return reservation.OrderID, released, nil
}

// StockLevel is one row of the stock report.
type StockLevel struct {
	ProductID int64  `json:"productId"`
	Name      string `json:"name"`
	Stock     int    `json:"stock"`
}

// Stock returns current levels and the active reservation count.
func (s *Service) Stock() ([]StockLevel, int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	levels := make([]StockLevel, 0, len(s.stock))
	for id, entry := range s.stock {
		levels = append(levels, StockLevel{ProductID: id, Name: entry.Name, Stock: entry.Stock})
	}

	return levels, len(s.reservations)
}

// SimulateOutOfStock arms the out-of-stock answer for the next check.
func (s *Service) SimulateOutOfStock() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.simulateOutOfStock = true
}

// SimulateSlow arms a one-shot delay before the next operation.
func (s *Service) SimulateSlow() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.simulateSlow = true
}

// ResetSimulations clears every armed fault.
func (s *Service) ResetSimulations() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.simulateOutOfStock = false
	s.simulateSlow = false
}

// maybeSleep consumes the slow toggle outside the stock lock so a delayed
// request does not block others.
func (s *Service) maybeSleep(ctx context.Context) {
	s.mu.Lock()
	slow := s.simulateSlow
	s.simulateSlow = false
	s.mu.Unlock()

	if !slow {
		return
	}

	select {
	case <-ctx.Done():
	case <-s.after(slowOperationDelay):
	}
}

func (s *Service) after(d time.Duration) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		s.sleep(d)
		close(done)
	}()
	return done
}
