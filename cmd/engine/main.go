package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync/atomic"
	"syscall"
	"time"

	"grantfinder-engine/internal/aggregate"
	"grantfinder-engine/internal/cache"
	"grantfinder-engine/internal/config"
	"grantfinder-engine/internal/events"
	"grantfinder-engine/internal/grants"
	"grantfinder-engine/internal/httpapi"
	"grantfinder-engine/internal/relevance"
	"grantfinder-engine/internal/scheduler"
	"grantfinder-engine/internal/source"
	"grantfinder-engine/internal/source/boe"
	"grantfinder-engine/internal/source/cdti"
	"grantfinder-engine/internal/source/eufunding"
	"grantfinder-engine/internal/source/idae"
	"grantfinder-engine/internal/store"
)

func main() {
	// Engine data dir: use env if provided, else local folder.
	dataDir := os.Getenv("GRANTFINDER_DATA_DIR")
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		log.Fatal(err)
	}

	defaultCfgPath := filepath.Join("config", "config.yml")
	userCfgPath, err := config.EnsureUserConfig(dataDir, defaultCfgPath)
	if err != nil {
		log.Fatalf("config bootstrap failed: %v", err)
	}

	// Load config and keep it reloadable
	var cfgVal atomic.Value // stores config.Config
	loadCfg := func() (config.Config, error) {
		cfg, err := config.Load(userCfgPath)
		if err != nil {
			return cfg, err
		}
		normalized, vr := config.NormalizeAndValidate(cfg)
		for _, w := range vr.Warnings {
			log.Printf("[config] warning: %s", w)
		}
		if !vr.OK() {
			return cfg, fmt.Errorf("invalid config: %v", vr.Errors)
		}
		return normalized, nil
	}
	cfg, err := loadCfg()
	if err != nil {
		log.Fatalf("config load failed (%s): %v", userCfgPath, err)
	}
	cfgVal.Store(cfg)

	dbPath := filepath.Join(dataDir, "grantfinder.db")
	db, err := store.Open(dbPath)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()
	if err := store.Migrate(db.Pool); err != nil {
		log.Fatal(err)
	}

	hub := events.NewHub()

	filter := relevance.New(cfg.Policy)
	agg := aggregate.New(buildSources(cfg, filter)...)
	cacheStore := cache.New(time.Duration(cfg.Cache.TTLSeconds) * time.Second)
	svc := grants.NewService(cacheStore, agg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Background cache janitor and history trim.
	janitorEvery := time.Duration(cfg.Cache.JanitorSeconds) * time.Second
	if janitorEvery <= 0 {
		janitorEvery = 5 * time.Minute
	}
	go scheduler.Every(ctx, janitorEvery, "cache-janitor", func(ctx context.Context) error {
		if removed := cacheStore.Prune(); removed > 0 {
			hub.Publish(events.MakeEvent("", events.TypeCachePruned, 1, events.PruneData{Removed: removed}))
		}
		_, err := store.CleanupOldSearches(db.Pool)
		return err
	})

	mux := httpapi.NewMux(httpapi.Deps{
		DB:          db.Pool,
		Hub:         hub,
		Grants:      svc,
		Cache:       cacheStore,
		CfgVal:      &cfgVal,
		UserCfgPath: userCfgPath,
		LoadCfg:     loadCfg,
	})

	handler := httpapi.Chain(mux,
		httpapi.RequestID,
		httpapi.Recover,
		httpapi.AccessLog,
		httpapi.Cors,
	)

	addr := fmt.Sprintf("127.0.0.1:%d", cfg.App.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("[engine] listening on http://%s (db=%s, config=%s)", addr, dbPath, userCfgPath)

	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	<-ctx.Done()
	log.Printf("[engine] shutting down")
	shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shCtx)
}

// buildSources assembles the enabled adapters in fixed precedence order:
// BOE first, then the EU portal, then CDTI, then IDAE. Dedup keeps the
// first occurrence, so this order decides which source wins a collision.
func buildSources(cfg config.Config, filter *relevance.Filter) []source.Source {
	var out []source.Source

	if cfg.Sources.BOE.Enabled {
		out = append(out, boe.New(boe.Config{
			BaseURL:    cfg.Sources.BOE.BaseURL,
			Timeout:    cfg.Sources.BOE.Timeout(),
			Delay:      cfg.Sources.BOE.Delay(),
			WindowDays: cfg.Sources.BOE.WindowDays,
			MaxResults: cfg.Sources.BOE.MaxResults,
			BaseScore:  cfg.Sources.BOE.BaseScore,
		}, filter))
	}

	if cfg.Sources.EUFunding.Enabled {
		out = append(out, eufunding.New(eufunding.Config{
			BaseURL:    cfg.Sources.EUFunding.BaseURL,
			Timeout:    cfg.Sources.EUFunding.Timeout(),
			PageSize:   cfg.Sources.EUFunding.PageSize,
			MaxResults: cfg.Sources.EUFunding.MaxResults,
			BaseScore:  cfg.Sources.EUFunding.BaseScore,
		}, filter))
	}

	if cfg.Sources.CDTI.Enabled {
		out = append(out, cdti.New(cdti.Config{
			BaseURL:         cfg.Sources.CDTI.BaseURL,
			Timeout:         cfg.Sources.CDTI.Timeout(),
			SectionDelay:    cfg.Sources.CDTI.Delay(),
			LinkDelay:       config.SecondsDuration(cfg.Sources.CDTI.LinkDelaySeconds),
			Sections:        cfg.Sources.CDTI.Sections,
			PerSectionLimit: cfg.Sources.CDTI.PerSectionLimit,
			MaxResults:      cfg.Sources.CDTI.MaxResults,
			BaseScore:       cfg.Sources.CDTI.BaseScore,
			MinScore:        cfg.Sources.CDTI.MinScore,
		}, filter))
	}

	if cfg.Sources.IDAE.Enabled {
		out = append(out, idae.New(idae.Config{
			ListingURL:   cfg.Sources.IDAE.BaseURL,
			Timeout:      cfg.Sources.IDAE.Timeout(),
			ListingDelay: cfg.Sources.IDAE.Delay(),
			LinkDelay:    config.SecondsDuration(cfg.Sources.IDAE.LinkDelaySeconds),
			PerPageLimit: cfg.Sources.IDAE.PerPageLimit,
			MaxResults:   cfg.Sources.IDAE.MaxResults,
			BaseScore:    cfg.Sources.IDAE.BaseScore,
			MinScore:     cfg.Sources.IDAE.MinScore,
		}, filter))
	}

	return out
}
