package service

import (
	"context"
	"strings"

	"restaurant-finder/web-svc/internal/domain"
	"restaurant-finder/web-svc/internal/metrics"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Suggester answers autocomplete lookups from the cache when it can, and
// collapses concurrent identical lookups into one backend call.
type Suggester struct {
	backend Backend
	cache   SuggestionCache
	group   singleflight.Group
	log     *zap.Logger
}

func NewSuggester(backend Backend, cache SuggestionCache, log *zap.Logger) *Suggester {
	return &Suggester{backend: backend, cache: cache, log: log}
}

func (s *Suggester) Suggest(ctx context.Context, query string) ([]domain.SearchSuggestion, error) {
	normalized := strings.ToLower(strings.TrimSpace(query))

	var key string
	if s.cache != nil {
		key = s.cache.SuggestionKey(normalized)
		cached, found, err := s.cache.GetSuggestions(ctx, key)
		switch {
		case err != nil:
			s.log.Warn("suggestion cache read failed", zap.String("query", normalized), zap.Error(err))
		case found:
			metrics.SuggestionCacheLookups.WithLabelValues("hit").Inc()
			return cached, nil
		default:
			metrics.SuggestionCacheLookups.WithLabelValues("miss").Inc()
		}
	}

	// The shared lookup outlives any single caller; the backend client's
	// timeout bounds it.
	shared := context.WithoutCancel(ctx)
	ch := s.group.DoChan(normalized, func() (interface{}, error) {
		suggestions, err := s.backend.Search(shared, query)
		if err != nil {
			return nil, err
		}
		if s.cache != nil {
			if err := s.cache.SetSuggestions(shared, key, suggestions); err != nil {
				s.log.Warn("suggestion cache write failed", zap.String("query", normalized), zap.Error(err))
			}
		}
		return suggestions, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]domain.SearchSuggestion), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
