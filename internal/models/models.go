package models

import (
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

type Product struct {
	ID                 int             `json:"id"`
	Title              string          `json:"title"`
	Price              decimal.Decimal `json:"price"`
	Thumbnail          string          `json:"thumbnail"`
	Rating             float64         `json:"rating"`
	DiscountPercentage float64         `json:"discountPercentage,omitempty"`
	Description        string          `json:"description,omitempty"`
	Images             []string        `json:"images,omitempty"`
	Brand              string          `json:"brand,omitempty"`
	Category           string          `json:"category,omitempty"`
}

// EffectivePrice is the per-unit price after the product discount.
func (p Product) EffectivePrice() decimal.Decimal {
	if p.DiscountPercentage == 0 {
		return p.Price
	}
	off := decimal.NewFromFloat(p.DiscountPercentage).Div(hundred)
	return p.Price.Mul(decimal.NewFromInt(1).Sub(off))
}

func (p Product) OnSale() bool {
	return p.DiscountPercentage > 0
}

type CartItem struct {
	Product
	Quantity int `json:"quantity"`
}

func (c CartItem) LineTotal() decimal.Decimal {
	return c.EffectivePrice().Mul(decimal.NewFromInt(int64(c.Quantity)))
}

type User struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}
