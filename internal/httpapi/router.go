package httpapi

import "net/http"

// NewMux returns the raw mux so main() can still attach extra routes.
func NewMux(d Deps) *http.ServeMux {
	mux := http.NewServeMux()

	// Search
	sh := SearchHandler{DB: d.DB, Hub: d.Hub, Grants: d.Grants}
	mux.HandleFunc("/search", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: sh.Search,
	}))

	// Export
	xh := ExportHandler{Grants: d.Grants}
	mux.HandleFunc("/export/", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: xh.ExportByPath, // expects /export/{json|csv}
	}))

	// Stats
	th := StatsHandler{DB: d.DB, Cache: d.Cache}
	mux.HandleFunc("/stats", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: th.Get,
	}))

	// Facet catalogs
	cath := CatalogHandler{}
	mux.HandleFunc("/catalog", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: cath.Get,
	}))

	// Config
	ch := ConfigHandler{
		CfgVal:      d.CfgVal,
		UserCfgPath: d.UserCfgPath,
		LoadCfg:     d.LoadCfg,
	}
	mux.HandleFunc("/config", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Get,
		http.MethodPut: ch.Put,
	}))
	mux.HandleFunc("/config/path", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Path,
	}))
	mux.HandleFunc("/config/validate", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Validate,
	}))

	// SSE events
	eh := EventsHandler{Hub: d.Hub}
	mux.HandleFunc("/events", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: eh.ServeSSE,
	}))

	// Health
	hh := HealthHandler{}
	mux.HandleFunc("/health", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: hh.Health,
	}))

	return mux
}
