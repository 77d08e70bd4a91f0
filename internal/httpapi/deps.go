package httpapi

import (
	"context"
	"database/sql"
	"sync/atomic"

	"grantfinder-engine/internal/cache"
	"grantfinder-engine/internal/config"
	"grantfinder-engine/internal/domain"
	"grantfinder-engine/internal/events"
)

// Searcher abstracts the grants service so handlers can be tested with stubs.
type Searcher interface {
	Search(ctx context.Context, q domain.Query) []domain.Grant
}

type Deps struct {
	DB *sql.DB

	Hub *events.Hub

	Grants Searcher
	Cache  *cache.Store

	// Atomic store for live config snapshots
	CfgVal *atomic.Value // stores config.Config

	// Config persistence
	UserCfgPath string
	LoadCfg     func() (config.Config, error)
}
