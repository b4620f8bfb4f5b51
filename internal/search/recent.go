package search

import (
	"context"
	"encoding/json"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/Skotchmaster/storefront/internal/kv"
)

const (
	KeyRecentSearches = "recentSearches"
	MaxRecentSearches = 5
)

// RecentSearches is a bounded most-recent-first list of distinct queries,
// mirrored into the kv store on every change.
type RecentSearches struct {
	kv  kv.Store
	log *slog.Logger

	mu    sync.Mutex
	items []string
}

func NewRecentSearches(ctx context.Context, kvs kv.Store, log *slog.Logger) *RecentSearches {
	if log == nil {
		log = slog.Default()
	}
	r := &RecentSearches{kv: kvs, log: log.With("component", "recent_searches")}
	r.load(ctx)
	return r
}

func (r *RecentSearches) load(ctx context.Context) {
	raw, ok, err := r.kv.Get(ctx, KeyRecentSearches)
	if err != nil {
		r.log.Warn("recent_searches_read_failed", "error", err)
		return
	}
	if !ok {
		return
	}
	var items []string
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		r.log.Warn("recent_searches_corrupt", "error", err)
		return
	}
	if len(items) > MaxRecentSearches {
		items = items[:MaxRecentSearches]
	}
	r.items = items
}

func (r *RecentSearches) List() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.items)
}

// Record prepends the trimmed query. Blank queries and exact repeats are
// ignored.
func (r *RecentSearches) Record(ctx context.Context, q string) {
	q = strings.TrimSpace(q)
	if q == "" {
		return
	}

	r.mu.Lock()
	if slices.Contains(r.items, q) {
		r.mu.Unlock()
		return
	}
	items := make([]string, 0, MaxRecentSearches)
	items = append(items, q)
	for _, s := range r.items {
		if len(items) == MaxRecentSearches {
			break
		}
		items = append(items, s)
	}
	r.items = items
	r.mu.Unlock()

	r.save(ctx, items)
}

func (r *RecentSearches) Remove(ctx context.Context, q string) {
	r.mu.Lock()
	i := slices.Index(r.items, q)
	if i < 0 {
		r.mu.Unlock()
		return
	}
	items := slices.Delete(slices.Clone(r.items), i, i+1)
	r.items = items
	r.mu.Unlock()

	r.save(ctx, items)
}

func (r *RecentSearches) Clear(ctx context.Context) {
	r.mu.Lock()
	r.items = nil
	r.mu.Unlock()

	if err := r.kv.Remove(ctx, KeyRecentSearches); err != nil {
		r.log.Error("recent_searches_write_failed", "error", err)
	}
}

func (r *RecentSearches) save(ctx context.Context, items []string) {
	data, err := json.Marshal(items)
	if err != nil {
		r.log.Error("recent_searches_write_failed", "error", err)
		return
	}
	if err := r.kv.Set(ctx, KeyRecentSearches, string(data)); err != nil {
		r.log.Error("recent_searches_write_failed", "error", err)
	}
}
