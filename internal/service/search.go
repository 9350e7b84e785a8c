package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/librarydb/librarydb/internal/metrics"
	"github.com/librarydb/librarydb/internal/model"
)

// DefaultMiniSearchLimit caps mini search results when none is configured.
const DefaultMiniSearchLimit = 10

// SearchService handles the mini search endpoints.
type SearchService struct {
	store   SearchStore
	limit   int
	metrics metrics.Recorder
}

// NewSearchService creates a new SearchService.
func NewSearchService(store SearchStore, limit int, recorder metrics.Recorder) *SearchService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if limit <= 0 {
		limit = DefaultMiniSearchLimit
	}
	return &SearchService{store: store, limit: limit, metrics: recorder}
}

// Authors returns authors whose full name contains query.
func (s *SearchService) Authors(ctx context.Context, query string) ([]model.SearchResult, error) {
	return s.search(ctx, "author", query, s.store.SearchAuthors)
}

// Media returns media whose title contains query.
func (s *SearchService) Media(ctx context.Context, query string) ([]model.SearchResult, error) {
	return s.search(ctx, "media", query, s.store.SearchMedia)
}

func (s *SearchService) search(
	ctx context.Context,
	kind, query string,
	run func(ctx context.Context, q string, limit int) ([]model.SearchResult, error),
) ([]model.SearchResult, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return []model.SearchResult{}, nil
	}

	s.metrics.IncMiniSearch(kind)

	results, err := run(ctx, q, s.limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %s search: %v", ErrInternal, kind, err)
	}
	if results == nil {
		results = []model.SearchResult{}
	}
	return results, nil
}
