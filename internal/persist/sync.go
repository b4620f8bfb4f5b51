// Package persist mirrors the user, cart, wishlist and orders slices of the
// application state into a kv.Store and replays them on startup.
package persist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/Skotchmaster/storefront/internal/kv"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/store"
)

const (
	KeyUser     = "user"
	KeyCart     = "cart"
	KeyWishlist = "wishlist"
	KeyOrders   = "orders"
)

const writeTimeout = 3 * time.Second

var ErrCorrupt = errors.New("corrupt persisted value")

var equateEmpty = cmpopts.EquateEmpty()

type Sync struct {
	Store *store.Store
	KV    kv.Store
	Log   *slog.Logger

	unsubscribe func()
}

func New(st *store.Store, kvs kv.Store, log *slog.Logger) *Sync {
	if log == nil {
		log = slog.Default()
	}
	return &Sync{Store: st, KV: kvs, Log: log.With("component", "persist")}
}

// Restore reads every tracked key and replays it through Store commands so
// the Store invariants hold for data written by older schemas. A missing or
// unparseable value leaves that slice empty.
func (s *Sync) Restore(ctx context.Context) {
	if err := s.restoreUser(ctx); err != nil {
		s.Log.Warn("restore_failed", "key", KeyUser, "error", err)
	}
	if err := s.restoreCart(ctx); err != nil {
		s.Log.Warn("restore_failed", "key", KeyCart, "error", err)
	}
	if err := s.restoreWishlist(ctx); err != nil {
		s.Log.Warn("restore_failed", "key", KeyWishlist, "error", err)
	}
	if err := s.restoreOrders(ctx); err != nil {
		s.Log.Warn("restore_failed", "key", KeyOrders, "error", err)
	}

	st := s.Store.Snapshot()
	s.Log.Info("state_restored",
		"user", st.IsAuthenticated(),
		"cart_items", len(st.Cart),
		"wishlist", len(st.Wishlist),
		"orders", len(st.Orders),
	)
}

func (s *Sync) read(ctx context.Context, key string, dst any) (bool, error) {
	raw, ok, err := s.KV.Get(ctx, key)
	if err != nil {
		return false, fmt.Errorf("read %s: %w", key, err)
	}
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return false, fmt.Errorf("%w: %s: %v", ErrCorrupt, key, err)
	}
	return true, nil
}

func (s *Sync) restoreUser(ctx context.Context) error {
	var u *models.User
	ok, err := s.read(ctx, KeyUser, &u)
	if err != nil || !ok || u == nil {
		return err
	}
	s.Store.SetUser(u)
	return nil
}

func (s *Sync) restoreCart(ctx context.Context) error {
	var items []models.CartItem
	ok, err := s.read(ctx, KeyCart, &items)
	if err != nil || !ok {
		return err
	}
	for _, it := range items {
		if it.Quantity <= 0 {
			continue
		}
		s.Store.AddToCart(it.Product)
		if it.Quantity == 1 {
			continue
		}
		cur, _ := s.Store.Snapshot().CartItem(it.ID)
		s.Store.UpdateQuantity(it.ID, cur.Quantity+it.Quantity-1)
	}
	return nil
}

func (s *Sync) restoreWishlist(ctx context.Context) error {
	var products []models.Product
	ok, err := s.read(ctx, KeyWishlist, &products)
	if err != nil || !ok {
		return err
	}
	for _, p := range products {
		s.Store.AddToWishlist(p)
	}
	return nil
}

func (s *Sync) restoreOrders(ctx context.Context) error {
	var orders []models.Order
	ok, err := s.read(ctx, KeyOrders, &orders)
	if err != nil || !ok {
		return err
	}
	s.Store.SetOrders(orders)
	return nil
}

// Start registers the mirroring listener. It is safe to call once; later
// calls are ignored.
func (s *Sync) Start() {
	if s.unsubscribe != nil {
		return
	}
	s.unsubscribe = s.Store.Subscribe(s.onChange)
}

func (s *Sync) Stop() {
	if s.unsubscribe != nil {
		s.unsubscribe()
		s.unsubscribe = nil
	}
}

// Changed lists the tracked keys whose slice differs between prev and next.
func Changed(prev, next store.State) []string {
	var keys []string
	if !cmp.Equal(prev.User, next.User) {
		keys = append(keys, KeyUser)
	}
	if !cmp.Equal(prev.Cart, next.Cart, equateEmpty) {
		keys = append(keys, KeyCart)
	}
	if !cmp.Equal(prev.Wishlist, next.Wishlist, equateEmpty) {
		keys = append(keys, KeyWishlist)
	}
	if !cmp.Equal(prev.Orders, next.Orders, equateEmpty) {
		keys = append(keys, KeyOrders)
	}
	return keys
}

func (s *Sync) onChange(c store.Change) {
	keys := Changed(c.Prev, c.Next)
	if len(keys) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	for _, key := range keys {
		if err := s.write(ctx, key, c.Next); err != nil {
			s.Log.Error("persist_write_failed", "key", key, "op", c.Op, "error", err)
		}
	}
}

func (s *Sync) write(ctx context.Context, key string, st store.State) error {
	var v any
	switch key {
	case KeyUser:
		if st.User == nil {
			return s.KV.Remove(ctx, KeyUser)
		}
		v = st.User
	case KeyCart:
		v = nonNil(st.Cart)
	case KeyWishlist:
		v = nonNil(st.Wishlist)
	case KeyOrders:
		v = nonNil(st.Orders)
	default:
		return fmt.Errorf("unknown key %q", key)
	}

	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	return s.KV.Set(ctx, key, string(data))
}

// Logout drops the identity, cart, wishlist and search query, then deletes
// their keys. Order history is kept.
func (s *Sync) Logout(ctx context.Context) error {
	s.Store.SetUser(nil)
	s.Store.ClearCart()
	s.Store.ClearWishlist()
	s.Store.SetSearchQuery("")

	if err := s.KV.Remove(ctx, KeyUser, KeyCart, KeyWishlist); err != nil {
		return fmt.Errorf("clear session keys: %w", err)
	}
	s.Log.Info("session_cleared")
	return nil
}

func nonNil[T any](in []T) []T {
	if in == nil {
		return []T{}
	}
	return in
}
