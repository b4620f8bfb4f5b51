package search

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/models"
)

func fixtureProducts() []models.Product {
	return []models.Product{
		{ID: 1, Title: "Velvet Lipstick", Price: decimal.NewFromInt(800), Rating: 4.6, DiscountPercentage: 10, Category: "beauty"},
		{ID: 2, Title: "Hydrating Serum", Price: decimal.NewFromInt(1500), Rating: 4.1, Category: "skin-care", Description: "Light gel for dry skin"},
		{ID: 3, Title: "Rose Perfume", Price: decimal.NewFromInt(6200), Rating: 3.8, Category: "fragrances"},
		{ID: 4, Title: "Lash Mascara", Price: decimal.NewFromInt(450), Rating: 4.9, DiscountPercentage: 25, Category: "beauty"},
	}
}

func ids(products []models.Product) []int {
	out := make([]int, len(products))
	for i, p := range products {
		out[i] = p.ID
	}
	return out
}

func TestApply(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		q    string
		f    Filters
		want []int
	}{
		{name: "defaults keep cheap items", f: DefaultFilters(), want: []int{1, 2, 4}},
		{name: "zero max means no ceiling", f: Filters{}, want: []int{1, 2, 3, 4}},
		{name: "query matches description", q: "DRY skin", f: Filters{}, want: []int{2}},
		{name: "category substring", f: Filters{Categories: []string{"Fragrance"}}, want: []int{3}},
		{name: "category falls back to title", f: Filters{Categories: []string{"mascara"}}, want: []int{4}},
		{name: "min rating", f: Filters{MinRating: 4.5}, want: []int{1, 4}},
		{name: "on sale", f: Filters{OnSale: true}, want: []int{1, 4}},
		{
			name: "price uses discounted amount",
			f:    Filters{PriceMin: decimal.NewFromInt(700), PriceMax: decimal.NewFromInt(730)},
			want: []int{1},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ids(Apply(fixtureProducts(), tt.q, tt.f)))
		})
	}
}

func TestFilters_ActiveCount(t *testing.T) {
	t.Parallel()

	assert.Zero(t, DefaultFilters().ActiveCount())
	assert.Zero(t, Filters{}.ActiveCount())

	f := DefaultFilters()
	f.Categories = []string{"beauty", "skin"}
	f.MinRating = 4
	f.PriceMax = decimal.NewFromInt(1000)
	f.OnSale = true
	assert.Equal(t, 4, f.ActiveCount())
}

func TestPaginate(t *testing.T) {
	t.Parallel()

	items := fixtureProducts()

	p := Paginate(items, 1, 3)
	require.Len(t, p.Items, 3)
	assert.Equal(t, 4, p.Total)
	assert.True(t, p.HasMore)

	p = Paginate(items, 2, 3)
	assert.Len(t, p.Items, 4)
	assert.False(t, p.HasMore)

	p = Paginate(nil, 0, 0)
	assert.Empty(t, p.Items)
	assert.False(t, p.HasMore)
}

func TestPaginate_HugeValues(t *testing.T) {
	t.Parallel()

	items := fixtureProducts()
	const maxInt = int(^uint(0) >> 1)

	for _, tt := range []struct {
		name       string
		page, size int
	}{
		{"page overflows", 1<<62 + 1, 2},
		{"product wraps to zero", 1 << 62, 4},
		{"max size", 1, maxInt},
		{"max both", maxInt, maxInt},
	} {
		t.Run(tt.name, func(t *testing.T) {
			p := Paginate(items, tt.page, tt.size)
			assert.Len(t, p.Items, len(items))
			assert.False(t, p.HasMore)
		})
	}
}
