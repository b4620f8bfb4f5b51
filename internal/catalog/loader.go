package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/notify"
	"github.com/Skotchmaster/storefront/internal/store"
)

// Indexer receives the catalog after every successful load.
type Indexer interface {
	IndexProducts(ctx context.Context, products []models.Product) error
}

type Selector func(models.Product) bool

var beautyKeywords = []string{
	"mascara", "perfume", "powder", "cream", "essence", "lipstick",
	"foundation", "serum", "moisturizer", "cleanser",
}

var beautyCategories = map[string]bool{
	"beauty":     true,
	"fragrances": true,
	"skin-care":  true,
}

// BeautySelector keeps cosmetics by title keyword or category.
func BeautySelector(p models.Product) bool {
	if beautyCategories[p.Category] {
		return true
	}
	title := strings.ToLower(p.Title)
	for _, k := range beautyKeywords {
		if strings.Contains(title, k) {
			return true
		}
	}
	return false
}

type Loader struct {
	Client     *Client
	Store      *store.Store
	Notify     *notify.Queue
	Index      Indexer
	Selector   Selector
	PriceScale int64
	Limit      int
	Log        *slog.Logger
}

// Scale converts a catalog price into local major units, rounded to whole units.
func (l *Loader) Scale(p models.Product) models.Product {
	if l.PriceScale <= 1 {
		return p
	}
	p.Price = p.Price.Mul(decimal.NewFromInt(l.PriceScale)).Round(0)
	return p
}

// Load fetches the catalog and replaces the cached products once. On failure
// the cache is left untouched and a persistent network error is shown. A
// result arriving after ctx is done is discarded.
func (l *Loader) Load(ctx context.Context) error {
	raw, err := l.Client.ListProducts(ctx, l.Limit)
	if ctx.Err() != nil {
		l.Log.Info("catalog_load_discarded", "reason", ctx.Err())
		return ctx.Err()
	}
	if err != nil {
		l.Log.Error("catalog_load_failed", "error", err)
		if l.Notify != nil {
			l.Notify.Add(notify.NetworkError())
		}
		return fmt.Errorf("load catalog: %w", err)
	}

	products := make([]models.Product, 0, len(raw))
	for _, p := range raw {
		if l.Selector != nil && !l.Selector(p) {
			continue
		}
		products = append(products, l.Scale(p))
	}

	l.Store.SetProducts(products)
	l.Log.Info("catalog_loaded", "fetched", len(raw), "kept", len(products))

	if l.Index != nil {
		if err := l.Index.IndexProducts(ctx, products); err != nil {
			l.Log.Warn("catalog_index_failed", "error", err)
		}
	}
	return nil
}

// Product returns a cached product or fetches it by id.
func (l *Loader) Product(ctx context.Context, id int) (models.Product, error) {
	if p, ok := l.Store.Snapshot().Product(id); ok {
		return p, nil
	}
	p, err := l.Client.GetProduct(ctx, id)
	if err != nil {
		return models.Product{}, err
	}
	return l.Scale(p), nil
}
