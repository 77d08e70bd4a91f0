// Package aggregate merges the per-source results into one ranked,
// deduplicated, bounded list.
package aggregate

import (
	"context"
	"log"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"grantfinder-engine/internal/domain"
	"grantfinder-engine/internal/source"
)

// MaxResults bounds every aggregated result set.
const MaxResults = 25

// DefaultSourceBudget is the overall time one adapter gets; individual
// network calls inside an adapter carry their own shorter timeouts.
const DefaultSourceBudget = 2 * time.Minute

type Aggregator struct {
	sources []source.Source
	budget  time.Duration
}

// New builds an aggregator over sources in priority order. The order is
// part of the contract: it decides which record survives deduplication.
func New(sources ...source.Source) *Aggregator {
	return &Aggregator{sources: sources, budget: DefaultSourceBudget}
}

// WithBudget overrides the per-source time budget (tests shrink it).
func (a *Aggregator) WithBudget(d time.Duration) *Aggregator {
	a.budget = d
	return a
}

// Aggregate fans the sources out concurrently, then merges by the fixed
// priority index so output is identical to a sequential run regardless of
// completion order. Failures are captured per source: a broken adapter
// contributes nothing, healthy adapters' records survive. Every adapter
// failing still yields an empty result, never an error.
func (a *Aggregator) Aggregate(ctx context.Context, q domain.Query) []domain.Grant {
	results := make([][]domain.Grant, len(a.sources))

	var g errgroup.Group
	for i, src := range a.sources {
		i, src := i, src
		g.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					log.Printf("[aggregate] source=%s panic=%v", src.Name(), r)
				}
			}()

			sctx, cancel := context.WithTimeout(ctx, a.budget)
			defer cancel()

			grants, err := src.Search(sctx, q)
			if err != nil {
				log.Printf("[aggregate] source=%s err=%v", src.Name(), err)
				return nil // best-effort: don't cancel siblings
			}
			results[i] = grants
			return nil
		})
	}
	_ = g.Wait()

	var merged []domain.Grant
	for _, r := range results {
		merged = append(merged, r...)
	}

	merged = dedupe(merged)
	sortByPublication(merged)

	if len(merged) > MaxResults {
		merged = merged[:MaxResults]
	}
	return merged
}

// sortByPublication orders newest first. Unknown publication dates rank as
// the earliest possible instant, so they land at the end. The sort is
// stable: ties keep adapter priority order.
func sortByPublication(grants []domain.Grant) {
	sort.SliceStable(grants, func(i, j int) bool {
		di, dj := grants[i].PublicationDate, grants[j].PublicationDate
		switch {
		case di.Valid && !dj.Valid:
			return true
		case !di.Valid:
			return false
		default:
			return di.Time.After(dj.Time)
		}
	})
}
