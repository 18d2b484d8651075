package catalog

import "sync"

// Store holds the loaded product set. The catalog arrives asynchronously at
// startup, so reads must tolerate an empty store; Replace swaps the whole set
// atomically once the fetch completes.
type Store struct {
	mu       sync.RWMutex
	products []Product
	byID     map[string]Product
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{byID: make(map[string]Product)}
}

// Replace installs a new product set, dropping the previous one.
func (s *Store) Replace(products []Product) {
	byID := make(map[string]Product, len(products))
	list := make([]Product, 0, len(products))
	for _, p := range products {
		if _, ok := byID[p.ID]; ok {
			continue
		}
		byID[p.ID] = p
		list = append(list, p)
	}
	s.mu.Lock()
	s.products = list
	s.byID = byID
	s.mu.Unlock()
}

// Get looks up a product by ID.
func (s *Store) Get(id string) (Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.byID[id]
	return p, ok
}

// List returns the products in document order.
func (s *Store) List() []Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Product, len(s.products))
	copy(out, s.products)
	return out
}

// Len returns the number of loaded products.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.products)
}
