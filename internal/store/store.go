// Package store holds the single application state and applies typed
// transitions to it. Every transition publishes a fresh State; readers
// holding an older snapshot never observe a partial update.
package store

import (
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/Skotchmaster/storefront/internal/models"
)

const (
	OpSetUser            = "set_user"
	OpAddToCart          = "add_to_cart"
	OpRemoveFromCart     = "remove_from_cart"
	OpUpdateQuantity     = "update_quantity"
	OpClearCart          = "clear_cart"
	OpAddToWishlist      = "add_to_wishlist"
	OpRemoveFromWishlist = "remove_from_wishlist"
	OpClearWishlist      = "clear_wishlist"
	OpSetProducts        = "set_products"
	OpAddOrder           = "add_order"
	OpSetOrders          = "set_orders"
	OpSetSearchQuery     = "set_search_query"
)

type Change struct {
	Op   string
	Prev State
	Next State
}

// Listener observes committed changes in commit order. It runs while the
// writer lock is held, so it may read the Store but must not mutate it.
type Listener func(Change)

type Store struct {
	log *slog.Logger

	// mu serialises writers and listener dispatch.
	mu    sync.Mutex
	state atomic.Pointer[State]

	lmu       sync.RWMutex
	listeners map[uint64]Listener
	nextID    uint64
}

func New(log *slog.Logger) *Store {
	if log == nil {
		log = slog.Default()
	}
	s := &Store{
		log:       log,
		listeners: make(map[uint64]Listener),
	}
	s.state.Store(&State{})
	return s
}

func (s *Store) Snapshot() State {
	return *s.state.Load()
}

// Subscribe registers l and returns a function that removes it.
func (s *Store) Subscribe(l Listener) func() {
	s.lmu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = l
	s.lmu.Unlock()

	return func() {
		s.lmu.Lock()
		delete(s.listeners, id)
		s.lmu.Unlock()
	}
}

// apply runs fn against the current snapshot. fn reports whether it produced
// a different state; unchanged transitions are not published.
func (s *Store) apply(op string, fn func(prev State) (State, bool)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := *s.state.Load()
	next, changed := fn(prev)
	if !changed {
		s.log.Debug("state_unchanged", "op", op)
		return
	}
	s.state.Store(&next)
	s.log.Debug("state_changed", "op", op, "cart_items", len(next.Cart), "orders", len(next.Orders))

	s.lmu.RLock()
	ls := make([]Listener, 0, len(s.listeners))
	ids := make([]uint64, 0, len(s.listeners))
	for id := range s.listeners {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		ls = append(ls, s.listeners[id])
	}
	s.lmu.RUnlock()

	ch := Change{Op: op, Prev: prev, Next: next}
	for _, l := range ls {
		l(ch)
	}
}

func (s *Store) SetUser(u *models.User) {
	s.apply(OpSetUser, func(st State) (State, bool) {
		if u == nil && st.User == nil {
			return st, false
		}
		if u != nil && st.User != nil && *u == *st.User {
			return st, false
		}
		if u != nil {
			cp := *u
			st.User = &cp
		} else {
			st.User = nil
		}
		return st, true
	})
}

// AddToCart increments the quantity of an existing line or appends a new
// line with quantity 1. Existing line order is preserved.
func (s *Store) AddToCart(p models.Product) {
	s.apply(OpAddToCart, func(st State) (State, bool) {
		cart := slices.Clone(st.Cart)
		if i := indexOfCartItem(cart, p.ID); i >= 0 {
			cart[i].Quantity++
		} else {
			cart = append(cart, models.CartItem{Product: p, Quantity: 1})
		}
		st.Cart = cart
		return st, true
	})
}

func (s *Store) RemoveFromCart(productID int) {
	s.apply(OpRemoveFromCart, func(st State) (State, bool) {
		return removeCartItem(st, productID)
	})
}

// UpdateQuantity sets the quantity of a line; zero or negative removes it.
func (s *Store) UpdateQuantity(productID, quantity int) {
	s.apply(OpUpdateQuantity, func(st State) (State, bool) {
		i := indexOfCartItem(st.Cart, productID)
		if i < 0 {
			return st, false
		}
		if quantity <= 0 {
			return removeCartItem(st, productID)
		}
		if st.Cart[i].Quantity == quantity {
			return st, false
		}
		cart := slices.Clone(st.Cart)
		cart[i].Quantity = quantity
		st.Cart = cart
		return st, true
	})
}

func (s *Store) ClearCart() {
	s.apply(OpClearCart, func(st State) (State, bool) {
		if len(st.Cart) == 0 {
			return st, false
		}
		st.Cart = nil
		return st, true
	})
}

func (s *Store) AddToWishlist(p models.Product) {
	s.apply(OpAddToWishlist, func(st State) (State, bool) {
		if indexOfProduct(st.Wishlist, p.ID) >= 0 {
			return st, false
		}
		wl := make([]models.Product, 0, len(st.Wishlist)+1)
		wl = append(wl, st.Wishlist...)
		st.Wishlist = append(wl, p)
		return st, true
	})
}

func (s *Store) RemoveFromWishlist(productID int) {
	s.apply(OpRemoveFromWishlist, func(st State) (State, bool) {
		i := indexOfProduct(st.Wishlist, productID)
		if i < 0 {
			return st, false
		}
		st.Wishlist = slices.Delete(slices.Clone(st.Wishlist), i, i+1)
		return st, true
	})
}

func (s *Store) ClearWishlist() {
	s.apply(OpClearWishlist, func(st State) (State, bool) {
		if len(st.Wishlist) == 0 {
			return st, false
		}
		st.Wishlist = nil
		return st, true
	})
}

// SetProducts replaces the cached catalog wholesale.
func (s *Store) SetProducts(products []models.Product) {
	s.apply(OpSetProducts, func(st State) (State, bool) {
		st.Products = slices.Clone(products)
		return st, true
	})
}

// AddOrder prepends o; the order list is kept most recent first.
func (s *Store) AddOrder(o models.Order) {
	s.apply(OpAddOrder, func(st State) (State, bool) {
		o.Items = slices.Clone(o.Items)
		orders := make([]models.Order, 0, len(st.Orders)+1)
		orders = append(orders, o)
		st.Orders = append(orders, st.Orders...)
		return st, true
	})
}

func (s *Store) SetOrders(orders []models.Order) {
	s.apply(OpSetOrders, func(st State) (State, bool) {
		st.Orders = slices.Clone(orders)
		return st, true
	})
}

func (s *Store) SetSearchQuery(q string) {
	s.apply(OpSetSearchQuery, func(st State) (State, bool) {
		if st.SearchQuery == q {
			return st, false
		}
		st.SearchQuery = q
		return st, true
	})
}

func removeCartItem(st State, productID int) (State, bool) {
	i := indexOfCartItem(st.Cart, productID)
	if i < 0 {
		return st, false
	}
	st.Cart = slices.Delete(slices.Clone(st.Cart), i, i+1)
	return st, true
}
