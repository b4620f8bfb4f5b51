package persist

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/kv"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/store"
)

func product(id int, price int64) models.Product {
	return models.Product{ID: id, Title: "item", Price: decimal.NewFromInt(price), Rating: 4}
}

func newSync(t *testing.T, kvs kv.Store) *Sync {
	t.Helper()
	s := New(store.New(nil), kvs, nil)
	s.Restore(context.Background())
	s.Start()
	t.Cleanup(s.Stop)
	return s
}

func get(t *testing.T, kvs kv.Store, key string) (string, bool) {
	t.Helper()
	v, ok, err := kvs.Get(context.Background(), key)
	require.NoError(t, err)
	return v, ok
}

func TestSync_WritesChangedSlices(t *testing.T) {
	t.Parallel()

	kvs := kv.NewMemoryStore()
	s := newSync(t, kvs)

	s.Store.AddToCart(product(1, 100))
	raw, ok := get(t, kvs, KeyCart)
	require.True(t, ok)

	var cart []models.CartItem
	require.NoError(t, json.Unmarshal([]byte(raw), &cart))
	require.Len(t, cart, 1)
	assert.Equal(t, 1, cart[0].Quantity)

	_, ok = get(t, kvs, KeyWishlist)
	assert.False(t, ok, "untouched slices are not written")

	s.Store.SetSearchQuery("serum")
	_, ok = get(t, kvs, KeyUser)
	assert.False(t, ok)

	s.Store.ClearCart()
	raw, _ = get(t, kvs, KeyCart)
	assert.Equal(t, "[]", raw)
}

func TestSync_UserKeyFollowsIdentity(t *testing.T) {
	t.Parallel()

	kvs := kv.NewMemoryStore()
	s := newSync(t, kvs)

	s.Store.SetUser(&models.User{Email: "demo@glowcart.com", Name: "Demo User"})
	raw, ok := get(t, kvs, KeyUser)
	require.True(t, ok)
	assert.JSONEq(t, `{"email":"demo@glowcart.com","name":"Demo User"}`, raw)

	s.Store.SetUser(nil)
	_, ok = get(t, kvs, KeyUser)
	assert.False(t, ok)
}

func TestSync_RoundTrip(t *testing.T) {
	t.Parallel()

	kvs := kv.NewMemoryStore()
	first := newSync(t, kvs)

	first.Store.AddToCart(product(3, 30))
	first.Store.AddToCart(product(1, 10))
	first.Store.AddToCart(product(2, 20))
	first.Store.UpdateQuantity(1, 4)
	first.Store.AddToWishlist(product(8, 80))
	first.Store.AddOrder(models.Order{ID: "A", Status: models.OrderStatusConfirmed})
	first.Store.AddOrder(models.Order{ID: "B", Status: models.OrderStatusConfirmed})
	first.Store.SetUser(&models.User{Email: "a@b.c", Name: "A"})
	first.Stop()

	second := newSync(t, kvs)
	st := second.Store.Snapshot()

	require.Len(t, st.Cart, 3)
	assert.Equal(t, []int{3, 1, 2}, []int{st.Cart[0].ID, st.Cart[1].ID, st.Cart[2].ID})
	assert.Equal(t, []int{1, 4, 1}, []int{st.Cart[0].Quantity, st.Cart[1].Quantity, st.Cart[2].Quantity})
	assert.True(t, first.Store.CartTotal().Equal(st.CartTotal()))
	assert.True(t, st.IsInWishlist(8))
	require.Len(t, st.Orders, 2)
	assert.Equal(t, "B", st.Orders[0].ID)
	require.NotNil(t, st.User)
	assert.Equal(t, "a@b.c", st.User.Email)
}

func TestSync_RestoreMergesDuplicateCartLines(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	kvs := kv.NewMemoryStore()
	legacy := `[
		{"id":1,"title":"a","price":10,"thumbnail":"","rating":4,"quantity":2},
		{"id":2,"title":"b","price":20,"thumbnail":"","rating":4,"quantity":1},
		{"id":1,"title":"a","price":10,"thumbnail":"","rating":4,"quantity":3},
		{"id":3,"title":"c","price":30,"thumbnail":"","rating":4,"quantity":0}
	]`
	require.NoError(t, kvs.Set(ctx, KeyCart, legacy))

	s := newSync(t, kvs)
	cart := s.Store.Snapshot().Cart

	require.Len(t, cart, 2)
	assert.Equal(t, 1, cart[0].ID)
	assert.Equal(t, 5, cart[0].Quantity)
	assert.Equal(t, 2, cart[1].ID)
	assert.Equal(t, 6, s.Store.CartItemCount())
}

func TestSync_CorruptValuesStartEmpty(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	kvs := kv.NewMemoryStore()
	require.NoError(t, kvs.Set(ctx, KeyCart, "{not json"))
	require.NoError(t, kvs.Set(ctx, KeyWishlist, `"nope"`))
	require.NoError(t, kvs.Set(ctx, KeyUser, "[1,2]"))
	require.NoError(t, kvs.Set(ctx, KeyOrders, `[{"id":"A","items":[],"status":"confirmed"}]`))

	s := newSync(t, kvs)
	st := s.Store.Snapshot()

	assert.Empty(t, st.Cart)
	assert.Empty(t, st.Wishlist)
	assert.Nil(t, st.User)
	require.Len(t, st.Orders, 1, "healthy slices still restore")
}

func TestSync_LogoutKeepsOrders(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	kvs := kv.NewMemoryStore()
	s := newSync(t, kvs)

	s.Store.SetUser(&models.User{Email: "a@b.c", Name: "A"})
	s.Store.AddToCart(product(1, 10))
	s.Store.AddToWishlist(product(2, 20))
	s.Store.AddOrder(models.Order{ID: "A"})
	s.Store.SetSearchQuery("lipstick")

	require.NoError(t, s.Logout(ctx))

	for _, key := range []string{KeyUser, KeyCart, KeyWishlist} {
		_, ok := get(t, kvs, key)
		assert.False(t, ok, key)
	}
	raw, ok := get(t, kvs, KeyOrders)
	require.True(t, ok)
	assert.Contains(t, raw, `"A"`)

	st := s.Store.Snapshot()
	assert.Nil(t, st.User)
	assert.Empty(t, st.Cart)
	assert.Empty(t, st.Wishlist)
	assert.Empty(t, st.SearchQuery)
	assert.Len(t, st.Orders, 1)
}

func TestChanged(t *testing.T) {
	t.Parallel()

	base := store.State{Cart: nil, Orders: []models.Order{}}
	assert.Empty(t, Changed(base, store.State{}), "nil and empty slices are equal")

	next := base
	next.Cart = []models.CartItem{{Product: product(1, 10), Quantity: 1}}
	next.User = &models.User{Email: "x"}
	assert.Equal(t, []string{KeyUser, KeyCart}, Changed(base, next))
}
