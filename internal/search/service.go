package search

import (
	"context"
	"log/slog"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/store"
)

const indexSearchSize = 100

type Service struct {
	Store  *store.Store
	Recent *RecentSearches
	// Index is optional; without it search runs over the cached catalog.
	Index *ESIndex
	Log   *slog.Logger
}

// Search records q as the current query and a recent search, then returns
// the matching products.
func (s *Service) Search(ctx context.Context, q string, f Filters) []models.Product {
	s.Store.SetSearchQuery(q)
	if s.Recent != nil {
		s.Recent.Record(ctx, q)
	}

	if s.Index != nil && q != "" {
		_, hits, err := s.Index.Search(ctx, q, 0, indexSearchSize)
		if err == nil {
			return Apply(hits, "", f)
		}
		s.Log.Warn("index_search_failed", "query", q, "error", err)
	}
	return Apply(s.Store.Snapshot().Products, q, f)
}

// Voice parses a transcript and runs it as a search. An empty parse returns
// no query and no results.
func (s *Service) Voice(ctx context.Context, transcript string, f Filters) (string, []models.Product) {
	q := ParseVoiceCommand(transcript)
	if q == "" {
		return "", nil
	}
	return q, s.Search(ctx, q, f)
}
