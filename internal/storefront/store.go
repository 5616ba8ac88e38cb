package storefront

import (
	"slices"
	"sync"

	"github.com/kuitang/storefront-e2e/internal/errs"
	"github.com/kuitang/storefront-e2e/internal/fixture"
)

// visitor is the server-side state behind one session cookie.
type visitor struct {
	user string
	cart []string
	info fixture.CheckoutInfo
}

// Store keeps per-browser state keyed by session cookie. It is the only
// shared mutable state in the stand-in app.
type Store struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	orders   int
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{visitors: make(map[string]*visitor)}
}

func (s *Store) get(id string) *visitor {
	v, ok := s.visitors[id]
	if !ok {
		v = &visitor{}
		s.visitors[id] = v
	}
	return v
}

// Login records the signed-in user for a session.
func (s *Store) Login(id, user string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.get(id).user = user
}

// Logout signs a session out. The cart survives, as on the demo site.
func (s *Store) Logout(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.visitors[id]; ok {
		v.user = ""
		v.info = fixture.CheckoutInfo{}
	}
}

// User returns the signed-in user, or "".
func (s *Store) User(id string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.visitors[id]; ok {
		return v.user
	}
	return ""
}

// Add puts a product in the cart and returns the new item count. Adding a
// product already in the cart is a no-op.
func (s *Store) Add(id, slug string) (int, error) {
	if _, ok := fixture.ProductBySlug(slug); !ok {
		return 0, errs.New(errs.NotFound, "unknown product "+slug)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	v := s.get(id)
	if !slices.Contains(v.cart, slug) {
		v.cart = append(v.cart, slug)
	}
	return len(v.cart), nil
}

// Remove takes a product out of the cart and returns the new item count.
func (s *Store) Remove(id, slug string) (int, error) {
	if _, ok := fixture.ProductBySlug(slug); !ok {
		return 0, errs.New(errs.NotFound, "unknown product "+slug)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	v := s.get(id)
	v.cart = slices.DeleteFunc(v.cart, func(s string) bool { return s == slug })
	return len(v.cart), nil
}

// Cart returns the cart's products in the order they were added.
func (s *Store) Cart(id string) []fixture.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.visitors[id]
	if !ok {
		return nil
	}
	out := make([]fixture.Product, 0, len(v.cart))
	for _, slug := range v.cart {
		if p, ok := fixture.ProductBySlug(slug); ok {
			out = append(out, p)
		}
	}
	return out
}

// SetCheckoutInfo stores the first checkout step's answers.
func (s *Store) SetCheckoutInfo(id string, info fixture.CheckoutInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.get(id).info = info
}

// CheckoutInfo returns the stored checkout answers.
func (s *Store) CheckoutInfo(id string) fixture.CheckoutInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.visitors[id]; ok {
		return v.info
	}
	return fixture.CheckoutInfo{}
}

// PlaceOrder empties the cart and returns the order number.
func (s *Store) PlaceOrder(id string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders++
	v := s.get(id)
	v.cart = nil
	v.info = fixture.CheckoutInfo{}
	return s.orders
}
