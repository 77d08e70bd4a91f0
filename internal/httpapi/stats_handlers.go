package httpapi

import (
	"database/sql"
	"net/http"

	"grantfinder-engine/internal/cache"
	"grantfinder-engine/internal/store"
)

type StatsHandler struct {
	DB    *sql.DB
	Cache *cache.Store
}

type statsResponse struct {
	store.UsageStats
	CachedQueries int `json:"cached_queries"`
}

func (h StatsHandler) Get(w http.ResponseWriter, r *http.Request) {
	usage, err := store.LoadUsageStats(r.Context(), h.DB)
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "stats_failed", err.Error())
		return
	}
	resp := statsResponse{UsageStats: usage}
	if h.Cache != nil {
		resp.CachedQueries = h.Cache.Len()
	}
	WriteJSON(w, http.StatusOK, resp)
}
