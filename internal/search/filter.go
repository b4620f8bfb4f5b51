package search

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/storefront/internal/models"
)

// DefaultPriceMax is the upper bound of the untouched price slider.
var DefaultPriceMax = decimal.NewFromInt(5000)

type Filters struct {
	PriceMin   decimal.Decimal `json:"priceMin"`
	PriceMax   decimal.Decimal `json:"priceMax"`
	Categories []string        `json:"categories"`
	MinRating  float64         `json:"minRating"`
	OnSale     bool            `json:"onSale"`
}

func DefaultFilters() Filters {
	return Filters{PriceMin: decimal.Zero, PriceMax: DefaultPriceMax}
}

// ActiveCount counts filter groups that narrow the result set.
func (f Filters) ActiveCount() int {
	n := 0
	if len(f.Categories) > 0 {
		n++
	}
	if f.MinRating > 0 {
		n++
	}
	if f.PriceMin.IsPositive() || (!f.PriceMax.IsZero() && f.PriceMax.LessThan(DefaultPriceMax)) {
		n++
	}
	if f.OnSale {
		n++
	}
	return n
}

func (f Filters) Match(p models.Product) bool {
	price := p.EffectivePrice()
	if price.LessThan(f.PriceMin) {
		return false
	}
	if !f.PriceMax.IsZero() && price.GreaterThan(f.PriceMax) {
		return false
	}
	if len(f.Categories) > 0 && !matchesCategory(p, f.Categories) {
		return false
	}
	if f.MinRating > 0 && p.Rating < f.MinRating {
		return false
	}
	if f.OnSale && !p.OnSale() {
		return false
	}
	return true
}

func matchesCategory(p models.Product, cats []string) bool {
	title := strings.ToLower(p.Title)
	for _, c := range cats {
		c = strings.ToLower(c)
		if strings.Contains(strings.ToLower(p.Category), c) || strings.Contains(title, c) {
			return true
		}
	}
	return false
}

// MatchesQuery reports whether the title or description contains q,
// ignoring case. An empty query matches everything.
func MatchesQuery(p models.Product, q string) bool {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(p.Title), q) ||
		strings.Contains(strings.ToLower(p.Description), q)
}

// Apply returns the products matching q and f, preserving catalog order.
func Apply(products []models.Product, q string, f Filters) []models.Product {
	out := make([]models.Product, 0, len(products))
	for _, p := range products {
		if MatchesQuery(p, q) && f.Match(p) {
			out = append(out, p)
		}
	}
	return out
}

type Page struct {
	Items   []models.Product `json:"items"`
	Total   int              `json:"total"`
	HasMore bool             `json:"hasMore"`
}

// Paginate returns the first page*size items, the "load more" window.
func Paginate(items []models.Product, page, size int) Page {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = 12
	}
	if last := len(items)/size + 1; page > last {
		page = last
	}
	end := page * size
	if end > len(items) {
		end = len(items)
	}
	return Page{Items: items[:end], Total: len(items), HasMore: end < len(items)}
}
