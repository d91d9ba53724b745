// Package cart keeps per-session shopping carts in memory, keyed by the
// session cookie. Carts disappear on restart; only checkout persists data.
package cart

import (
	"errors"
	"sync"

	"github.com/mockmart/techstore/internal/shopapi/catalog"
)

var (
	// ErrNoCart is returned when the session has never added anything.
	ErrNoCart = errors.New("cart not found")
	// ErrNoLine is returned when the product is not in the cart.
	ErrNoLine = errors.New("item not in cart")
)

// Line is one cart entry. Product is a snapshot taken when the line was
// added; later catalog edits do not reach into existing carts.
type Line struct {
	ProductID int64           `json:"productId"`
	Quantity  int             `json:"quantity"`
	Product   catalog.Product `json:"product"`
}

// Store holds all session carts behind one mutex.
type Store struct {
	mu    sync.Mutex
	carts map[string][]Line
}

// NewStore creates an empty cart store.
func NewStore() *Store {
	return &Store{
		carts: make(map[string][]Line),
	}
}

// Get returns the session's cart. An unknown session reads as empty.
func (s *Store) Get(sessionID string) []Line {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]Line(nil), s.carts[sessionID]...)
}

// Add puts quantity units of the product into the cart, merging with an
// existing line for the same product.
func (s *Store) Add(sessionID string, p *catalog.Product, quantity int) []Line {
	s.mu.Lock()
	defer s.mu.Unlock()

	lines := s.carts[sessionID]
	for i := range lines {
		if lines[i].ProductID == p.ID {
			lines[i].Quantity += quantity
			s.carts[sessionID] = lines
			return append([]Line(nil), lines...)
		}
	}

	lines = append(lines, Line{
		ProductID: p.ID,
		Quantity:  quantity,
		Product:   *p,
	})
	s.carts[sessionID] = lines

	return append([]Line(nil), lines...)
}

// SetQuantity updates one line. A quantity of zero or less removes the line.
func (s *Store) SetQuantity(sessionID string, productID int64, quantity int) ([]Line, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lines, ok := s.carts[sessionID]
	if !ok {
		return nil, ErrNoCart
	}

	for i := range lines {
		if lines[i].ProductID != productID {
			continue
		}

		if quantity <= 0 {
			lines = append(lines[:i], lines[i+1:]...)
		} else {
			lines[i].Quantity = quantity
		}
		s.carts[sessionID] = lines

		return append([]Line(nil), lines...), nil
	}

	return nil, ErrNoLine
}

// Remove deletes one line from the cart.
func (s *Store) Remove(sessionID string, productID int64) ([]Line, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lines, ok := s.carts[sessionID]
	if !ok {
		return nil, ErrNoCart
	}

	for i := range lines {
		if lines[i].ProductID == productID {
			lines = append(lines[:i], lines[i+1:]...)
			s.carts[sessionID] = lines
			return append([]Line(nil), lines...), nil
		}
	}

	return nil, ErrNoLine
}

// Clear drops the whole cart. Called after a checkout commits.
func (s *Store) Clear(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.carts, sessionID)
}
