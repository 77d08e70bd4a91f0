// Package source defines the adapter contract every grant source implements.
package source

import (
	"context"

	"grantfinder-engine/internal/domain"
)

// Source turns a facet query into zero or more grant records. Implementations
// isolate their own network and parsing failures: individual request errors
// are logged and skipped, and the adapter returns whatever partial set it
// accumulated. A returned error means the adapter produced nothing at all.
type Source interface {
	Name() string
	Search(ctx context.Context, q domain.Query) ([]domain.Grant, error)
}
