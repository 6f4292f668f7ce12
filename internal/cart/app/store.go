package app

import (
	"sync"

	catalog "github.com/moksh1tha/nuastore/internal/catalog/domain"
	"github.com/moksh1tha/nuastore/internal/cart/domain"
)

// Store holds the single authoritative cart. Every mutation publishes the
// new snapshot synchronously to all subscribers before it returns.
// Mutations never fail; out-of-range quantities are clamped or treated as
// removal. Safe for concurrent use.
type Store struct {
	mu          sync.Mutex
	cart        domain.Cart
	subscribers map[int]func(domain.Cart)
	nextSubID   int
}

// NewStore creates a store holding the given initial cart, typically
// rehydrated from a Repo at startup. A zero Cart is a valid start.
func NewStore(initial domain.Cart) *Store {
	return &Store{
		cart:        initial.Clone(),
		subscribers: make(map[int]func(domain.Cart)),
	}
}

// Subscribe registers fn to receive every post-mutation snapshot. The
// returned cancel func removes the subscription.
func (s *Store) Subscribe(fn func(domain.Cart)) (cancel func()) {
	s.mu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subscribers, id)
		s.mu.Unlock()
	}
}

// Add puts qty of p in the cart. An existing line for the same product id
// accumulates quantity instead of duplicating; the result is clamped to
// MaxQuantity.
func (s *Store) Add(p catalog.Product, qty int) {
	qty = domain.ClampQuantity(qty)

	s.mu.Lock()
	found := false
	for i, l := range s.cart.Lines {
		if l.Product.ID == p.ID {
			s.cart.Lines[i].Quantity = domain.ClampQuantity(l.Quantity + qty)
			found = true
			break
		}
	}
	if !found {
		s.cart.Lines = append(s.cart.Lines, domain.Line{Product: p, Quantity: qty})
	}
	s.publishLocked()
}

// Remove deletes the line for productID. Absent lines are a no-op.
func (s *Store) Remove(productID int) {
	s.mu.Lock()
	for i, l := range s.cart.Lines {
		if l.Product.ID == productID {
			s.cart.Lines = append(s.cart.Lines[:i], s.cart.Lines[i+1:]...)
			break
		}
	}
	s.publishLocked()
}

// SetQuantity sets the line's quantity, clamped to MaxQuantity. A quantity
// of zero or less removes the line. No-op if the product is not in the cart.
func (s *Store) SetQuantity(productID, qty int) {
	if qty <= 0 {
		s.Remove(productID)
		return
	}
	qty = domain.ClampQuantity(qty)

	s.mu.Lock()
	for i, l := range s.cart.Lines {
		if l.Product.ID == productID {
			s.cart.Lines[i].Quantity = qty
			break
		}
	}
	s.publishLocked()
}

// Clear empties the cart unconditionally.
func (s *Store) Clear() {
	s.mu.Lock()
	s.cart.Lines = nil
	s.publishLocked()
}

// Cart returns a snapshot of the current cart.
func (s *Store) Cart() domain.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Clone()
}

// Lines returns a snapshot of the cart lines in insertion order.
func (s *Store) Lines() []domain.Line {
	return s.Cart().Lines
}

// ItemCount is the sum of quantities across all lines.
func (s *Store) ItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.ItemCount()
}

// TotalPrice is the cart subtotal at current in-memory prices.
func (s *Store) TotalPrice() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.TotalPrice()
}

// publishLocked snapshots the cart, releases the lock, and notifies every
// subscriber before the triggering mutation returns. Callers must hold mu.
func (s *Store) publishLocked() {
	snapshot := s.cart.Clone()
	subs := make([]func(domain.Cart), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(snapshot)
	}
}
