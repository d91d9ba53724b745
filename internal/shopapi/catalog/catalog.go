// Package catalog is the in-memory product store. Products live for the
// process lifetime; a restart reloads the seed file.
package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
)

var (
	// ErrNotFound is returned for unknown product ids.
	ErrNotFound = errors.New("product not found")
	// ErrDuplicateName rejects a second product with the same name.
	ErrDuplicateName = errors.New("product with this name already exists")
)

const defaultImage = "https://via.placeholder.com/300x200"

// Product is a catalog entry. Stock here is display-only; the inventory
// service owns the authoritative stock levels.
type Product struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
	Image       string  `json:"image"`
	Stock       int     `json:"stock"`
}

// Query filters and orders a product listing.
type Query struct {
	Category string `schema:"category"`
	Search   string `schema:"search"`
	Sort     string `schema:"sort"`
}

// NewProduct carries the fields of a product being created.
type NewProduct struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
	Image       string  `json:"image"`
	Stock       int     `json:"stock"`
}

// ProductPatch updates only the fields that are present.
type ProductPatch struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"`
	Category    *string  `json:"category"`
	Image       *string  `json:"image"`
	Stock       *int     `json:"stock"`
}

// Store holds the products behind a read-write mutex.
type Store struct {
	mu       sync.RWMutex
	products map[int64]*Product
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		products: make(map[int64]*Product),
	}
}

// MustNewStoreFromFile loads the seed catalog from a JSON file.
func MustNewStoreFromFile(path string) *Store {
	data, err := os.ReadFile(path)
	if err != nil {
		panic(fmt.Sprintf("Failed to read product seed file: %v", err))
	}

	var products []Product
	if err := json.Unmarshal(data, &products); err != nil {
		panic(fmt.Sprintf("Failed to parse product seed file: %v", err))
	}

	store := NewStore()
	for i := range products {
		p := products[i]
		store.products[p.ID] = &p
	}

	return store
}

// List returns products matching the query. Sort accepts price-asc,
// price-desc and name; anything else keeps id order.
func (s *Store) List(q Query) []Product {
	s.mu.RLock()

	result := make([]Product, 0, len(s.products))
	search := strings.ToLower(q.Search)
	for _, p := range s.products {
		if q.Category != "" && !strings.EqualFold(p.Category, q.Category) {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(p.Name), search) &&
			!strings.Contains(strings.ToLower(p.Description), search) {
			continue
		}
		result = append(result, *p)
	}
	s.mu.RUnlock()

	switch q.Sort {
	case "price-asc":
		sort.Slice(result, func(i, j int) bool { return result[i].Price < result[j].Price })
	case "price-desc":
		sort.Slice(result, func(i, j int) bool { return result[i].Price > result[j].Price })
	case "name":
		sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	default:
		sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	}

	return result
}

// Get returns one product or ErrNotFound.
func (s *Store) Get(id int64) (*Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	if !ok {
		return nil, ErrNotFound
	}

	copy := *p
	return &copy, nil
}

// Categories returns the distinct categories, sorted.
func (s *Store) Categories() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]struct{})
	for _, p := range s.products {
		seen[p.Category] = struct{}{}
	}

	categories := make([]string, 0, len(seen))
	for c := range seen {
		categories = append(categories, c)
	}
	sort.Strings(categories)

	return categories
}

// Create adds a product. Names are unique case-insensitively; the new id is
// one past the current maximum.
func (s *Store) Create(np NewProduct) (*Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range s.products {
		if strings.EqualFold(p.Name, np.Name) {
			return nil, ErrDuplicateName
		}
	}

	var maxID int64
	for id := range s.products {
		if id > maxID {
			maxID = id
		}
	}

	image := np.Image
	if image == "" {
		image = defaultImage
	}

	p := &Product{
		ID:          maxID + 1,
		Name:        np.Name,
		Description: np.Description,
		Price:       np.Price,
		Category:    np.Category,
		Image:       image,
		Stock:       np.Stock,
	}
	s.products[p.ID] = p

	copy := *p
	return &copy, nil
}

// Update applies a partial patch to an existing product.
func (s *Store) Update(id int64, patch ProductPatch) (*Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[id]
	if !ok {
		return nil, ErrNotFound
	}

	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.Price != nil {
		p.Price = *patch.Price
	}
	if patch.Category != nil {
		p.Category = *patch.Category
	}
	if patch.Image != nil {
		p.Image = *patch.Image
	}
	if patch.Stock != nil {
		p.Stock = *patch.Stock
	}

	copy := *p
	return &copy, nil
}

// Delete removes a product or reports ErrNotFound.
func (s *Store) Delete(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[id]; !ok {
		return ErrNotFound
	}
	delete(s.products, id)

	return nil
}
