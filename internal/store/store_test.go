package store

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/Skotchmaster/storefront/internal/models"
)

func product(id int, price int64, discount float64) models.Product {
	return models.Product{
		ID:                 id,
		Title:              "product",
		Price:              decimal.NewFromInt(price),
		Rating:             4.2,
		DiscountPercentage: discount,
	}
}

func TestStore_AddToCartTwice(t *testing.T) {
	t.Parallel()

	s := New(nil)
	p := product(1, 900, 0)
	s.AddToCart(p)
	s.AddToCart(p)

	cart := s.Snapshot().Cart
	require.Len(t, cart, 1)
	assert.Equal(t, 1, cart[0].ID)
	assert.Equal(t, 2, cart[0].Quantity)
	assert.Equal(t, 2, s.CartItemCount())
	assert.True(t, decimal.NewFromInt(1800).Equal(s.CartTotal()), "total %s", s.CartTotal())
}

func TestStore_AddToCartKeepsOrder(t *testing.T) {
	t.Parallel()

	s := New(nil)
	s.AddToCart(product(3, 10, 0))
	s.AddToCart(product(1, 10, 0))
	s.AddToCart(product(3, 10, 0))
	s.AddToCart(product(2, 10, 0))

	var ids []int
	for _, it := range s.Snapshot().Cart {
		ids = append(ids, it.ID)
	}
	assert.Equal(t, []int{3, 1, 2}, ids)
}

func TestStore_CartTotalLinear(t *testing.T) {
	t.Parallel()

	s := New(nil)
	s.AddToCart(product(5, 50, 0))
	before := s.CartTotal()

	discounted := product(9, 100, 20)
	for i := 0; i < 3; i++ {
		s.AddToCart(discounted)
	}

	assert.True(t, decimal.NewFromInt(240).Equal(s.CartTotal().Sub(before)))
}

func TestStore_UpdateQuantity(t *testing.T) {
	t.Parallel()

	s := New(nil)
	s.AddToCart(product(1, 10, 0))
	s.AddToCart(product(2, 10, 0))

	s.UpdateQuantity(1, 5)
	item, ok := s.Snapshot().CartItem(1)
	require.True(t, ok)
	assert.Equal(t, 5, item.Quantity)

	s.UpdateQuantity(42, 3)
	assert.Len(t, s.Snapshot().Cart, 2)

	s.UpdateQuantity(2, -1)
	_, ok = s.Snapshot().CartItem(2)
	assert.False(t, ok)
	assert.Len(t, s.Snapshot().Cart, 1)
}

func TestStore_RemoveUnknownIsNoop(t *testing.T) {
	t.Parallel()

	s := New(nil)
	calls := 0
	s.Subscribe(func(Change) { calls++ })

	s.RemoveFromCart(7)
	s.RemoveFromWishlist(7)
	s.ClearCart()
	s.ClearWishlist()
	s.SetUser(nil)

	assert.Zero(t, calls)
}

func TestStore_Wishlist(t *testing.T) {
	t.Parallel()

	s := New(nil)
	p := product(4, 299, 0)
	s.AddToWishlist(p)
	s.AddToWishlist(p)

	assert.Len(t, s.Snapshot().Wishlist, 1)
	assert.True(t, s.IsInWishlist(4))
	assert.False(t, s.IsInWishlist(5))

	s.RemoveFromWishlist(4)
	assert.False(t, s.IsInWishlist(4))
	assert.Empty(t, s.Snapshot().Wishlist)
}

func TestStore_AddOrderMostRecentFirst(t *testing.T) {
	t.Parallel()

	s := New(nil)
	s.AddOrder(models.Order{ID: "A"})
	s.AddOrder(models.Order{ID: "B"})

	orders := s.Snapshot().Orders
	require.Len(t, orders, 2)
	assert.Equal(t, "B", orders[0].ID)
	assert.Equal(t, "A", orders[1].ID)
}

func TestStore_OrderItemsAreSnapshot(t *testing.T) {
	t.Parallel()

	s := New(nil)
	s.AddToCart(product(1, 10, 0))
	cart := s.Snapshot().Cart
	s.AddOrder(models.Order{ID: "1", Items: cart})

	cart[0].Quantity = 99
	assert.Equal(t, 1, s.Snapshot().Orders[0].Items[0].Quantity)
}

func TestStore_SnapshotsAreImmutable(t *testing.T) {
	t.Parallel()

	s := New(nil)
	s.AddToCart(product(1, 10, 0))
	old := s.Snapshot()

	s.AddToCart(product(1, 10, 0))
	s.AddToCart(product(2, 10, 0))
	s.SetSearchQuery("mascara")

	require.Len(t, old.Cart, 1)
	assert.Equal(t, 1, old.Cart[0].Quantity)
	assert.Empty(t, old.SearchQuery)
}

func TestStore_UserTransitions(t *testing.T) {
	t.Parallel()

	s := New(nil)
	assert.False(t, s.Snapshot().IsAuthenticated())

	u := &models.User{Email: "demo@glowcart.com", Name: "Demo User"}
	s.SetUser(u)
	u.Name = "changed"
	require.True(t, s.Snapshot().IsAuthenticated())
	assert.Equal(t, "Demo User", s.Snapshot().User.Name)

	s.SetUser(nil)
	assert.False(t, s.Snapshot().IsAuthenticated())
}

func TestStore_SetProductsAndSearchQuery(t *testing.T) {
	t.Parallel()

	s := New(nil)
	list := []models.Product{product(1, 10, 0), product(2, 20, 0)}
	s.SetProducts(list)
	list[0].Title = "mutated"

	p, ok := s.Snapshot().Product(1)
	require.True(t, ok)
	assert.Equal(t, "product", p.Title)

	s.SetSearchQuery("serum")
	assert.Equal(t, "serum", s.Snapshot().SearchQuery)
	s.SetSearchQuery("")
	assert.Empty(t, s.Snapshot().SearchQuery)
}

func TestStore_ListenersSeeOrderedChanges(t *testing.T) {
	t.Parallel()

	s := New(nil)
	var ops []string
	unsubscribe := s.Subscribe(func(c Change) {
		ops = append(ops, c.Op)
		assert.Equal(t, c.Next.CartItemCount(), s.Snapshot().CartItemCount())
	})

	s.AddToCart(product(1, 10, 0))
	s.UpdateQuantity(1, 3)
	s.AddToWishlist(product(1, 10, 0))
	unsubscribe()
	s.ClearCart()

	assert.Equal(t, []string{OpAddToCart, OpUpdateQuantity, OpAddToWishlist}, ops)
}

func TestStore_Properties(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		s := New(nil)
		adds := rapid.SliceOf(rapid.IntRange(1, 6)).Draw(t, "adds")
		for _, id := range adds {
			s.AddToCart(product(id, int64(id*10), 0))
		}

		st := s.Snapshot()
		seen := map[int]bool{}
		for _, it := range st.Cart {
			if seen[it.ID] {
				t.Fatalf("duplicate cart id %d", it.ID)
			}
			seen[it.ID] = true
			if it.Quantity < 1 {
				t.Fatalf("non-positive quantity for %d", it.ID)
			}
		}
		if st.CartItemCount() != len(adds) {
			t.Fatalf("count %d, want %d", st.CartItemCount(), len(adds))
		}

		target := rapid.IntRange(1, 6).Draw(t, "target")
		qty := rapid.IntRange(-3, 0).Draw(t, "qty")

		viaUpdate := New(nil)
		viaRemove := New(nil)
		for _, id := range adds {
			viaUpdate.AddToCart(product(id, int64(id*10), 0))
			viaRemove.AddToCart(product(id, int64(id*10), 0))
		}
		viaUpdate.UpdateQuantity(target, qty)
		viaRemove.RemoveFromCart(target)

		a, b := viaUpdate.Snapshot().Cart, viaRemove.Snapshot().Cart
		if len(a) != len(b) {
			t.Fatalf("update len %d, remove len %d", len(a), len(b))
		}
		for i := range a {
			if a[i].ID != b[i].ID || a[i].Quantity != b[i].Quantity {
				t.Fatalf("mismatch at %d: %+v vs %+v", i, a[i], b[i])
			}
		}
	})
}
