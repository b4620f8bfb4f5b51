package store

import (
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/storefront/internal/models"
)

// State is one immutable snapshot of the application. The Store never edits
// a published State in place; callers must treat its slices as read-only.
type State struct {
	User        *models.User      `json:"user"`
	Cart        []models.CartItem `json:"cart"`
	Wishlist    []models.Product  `json:"wishlist"`
	Products    []models.Product  `json:"products"`
	Orders      []models.Order    `json:"orders"`
	SearchQuery string            `json:"searchQuery"`
}

func (s State) IsAuthenticated() bool {
	return s.User != nil
}

// CartTotal sums discounted unit prices times quantity. It is not rounded.
func (s State) CartTotal() decimal.Decimal {
	total := decimal.Zero
	for _, it := range s.Cart {
		total = total.Add(it.LineTotal())
	}
	return total
}

// CartItemCount counts units, not distinct products.
func (s State) CartItemCount() int {
	n := 0
	for _, it := range s.Cart {
		n += it.Quantity
	}
	return n
}

func (s State) IsInWishlist(productID int) bool {
	return indexOfProduct(s.Wishlist, productID) >= 0
}

func (s State) CartItem(productID int) (models.CartItem, bool) {
	i := indexOfCartItem(s.Cart, productID)
	if i < 0 {
		return models.CartItem{}, false
	}
	return s.Cart[i], true
}

func (s State) Product(productID int) (models.Product, bool) {
	i := indexOfProduct(s.Products, productID)
	if i < 0 {
		return models.Product{}, false
	}
	return s.Products[i], true
}

func indexOfCartItem(items []models.CartItem, id int) int {
	for i := range items {
		if items[i].ID == id {
			return i
		}
	}
	return -1
}

func indexOfProduct(items []models.Product, id int) int {
	for i := range items {
		if items[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) CartTotal() decimal.Decimal {
	return s.Snapshot().CartTotal()
}

func (s *Store) CartItemCount() int {
	return s.Snapshot().CartItemCount()
}

func (s *Store) IsInWishlist(productID int) bool {
	return s.Snapshot().IsInWishlist(productID)
}
