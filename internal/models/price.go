package models

import (
	"github.com/shopspring/decimal"
)

const currencySymbol = "₹"

func FormatPrice(price decimal.Decimal) string {
	return currencySymbol + price.StringFixed(2)
}

type PriceBreakdown struct {
	OriginalPrice   string `json:"originalPrice"`
	DiscountedPrice string `json:"discountedPrice"`
	Savings         string `json:"savings"`
}

func BreakdownFor(p Product) PriceBreakdown {
	original := FormatPrice(p.Price)
	if !p.OnSale() {
		return PriceBreakdown{
			OriginalPrice:   original,
			DiscountedPrice: original,
			Savings:         FormatPrice(decimal.Zero),
		}
	}
	discounted := p.EffectivePrice()
	return PriceBreakdown{
		OriginalPrice:   original,
		DiscountedPrice: FormatPrice(discounted),
		Savings:         FormatPrice(p.Price.Sub(discounted)),
	}
}
