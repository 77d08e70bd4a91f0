// Package grants is the single entry point callers search through. The
// service owns the result cache and the adapter set; it never returns an
// error — a search that reaches no source at all is an empty result, not a
// failure.
package grants

import (
	"context"
	"log"

	"grantfinder-engine/internal/aggregate"
	"grantfinder-engine/internal/cache"
	"grantfinder-engine/internal/domain"
)

type Service struct {
	cache *cache.Store
	agg   *aggregate.Aggregator
}

func NewService(store *cache.Store, agg *aggregate.Aggregator) *Service {
	return &Service{cache: store, agg: agg}
}

// Search resolves the facet query through the cache; on a miss it runs the
// full aggregation and stores the result under the facet key.
func (s *Service) Search(ctx context.Context, q domain.Query) []domain.Grant {
	q = q.Normalized()
	key := q.Key()

	records := s.cache.GetOrFetch(ctx, key, func(fctx context.Context) []domain.Grant {
		log.Printf("[grants] fetching key=%s", key)
		return s.agg.Aggregate(fctx, q)
	})

	log.Printf("[grants] key=%s results=%d", key, len(records))
	return records
}
