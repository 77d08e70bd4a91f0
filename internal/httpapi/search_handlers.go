package httpapi

import (
	"database/sql"
	"log"
	"net/http"
	"time"

	"grantfinder-engine/internal/domain"
	"grantfinder-engine/internal/events"
	"grantfinder-engine/internal/postprocess"
	"grantfinder-engine/internal/store"
)

type SearchHandler struct {
	DB     *sql.DB
	Hub    *events.Hub
	Grants Searcher
}

type searchCriteria struct {
	Sector      string `json:"sector"`
	Location    string `json:"location"`
	CompanyType string `json:"company_type"`
	Region      string `json:"region"`
}

type searchResponse struct {
	Success        bool           `json:"success"`
	Results        int            `json:"results"`
	Grants         []domain.Grant `json:"grants"`
	SearchCriteria searchCriteria `json:"search_criteria"`
	Timestamp      string         `json:"timestamp"`
}

func queryFromRequest(r *http.Request) domain.Query {
	v := r.URL.Query()
	return domain.Query{
		Sector:      v.Get("sector"),
		Location:    v.Get("location"),
		CompanyType: v.Get("company_type"),
		Region:      v.Get("region"),
	}.Normalized()
}

func (h SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := queryFromRequest(r)
	reqID := RequestIDFrom(r.Context())

	if h.Hub != nil {
		h.Hub.Publish(events.MakeEvent(reqID, events.TypeSearchStarted, 1, events.SearchData{
			Sector: q.Sector, Location: q.Location, CompanyType: q.CompanyType, Region: q.Region,
		}))
	}

	started := time.Now()
	grants := h.Grants.Search(r.Context(), q)
	postprocess.Annotate(grants, time.Now())
	durMs := time.Since(started).Milliseconds()

	if h.DB != nil {
		if err := store.RecordSearch(r.Context(), h.DB, store.SearchRecord{
			Sector:      q.Sector,
			Location:    q.Location,
			CompanyType: q.CompanyType,
			Region:      q.Region,
			Results:     len(grants),
			DurationMs:  durMs,
		}); err != nil {
			log.Printf("[httpapi] record search: %v", err)
		}
	}

	if h.Hub != nil {
		h.Hub.Publish(events.MakeEvent(reqID, events.TypeSearchCompleted, 1, events.SearchData{
			Sector: q.Sector, Location: q.Location, CompanyType: q.CompanyType, Region: q.Region,
			Results: len(grants), DurationMs: durMs,
		}))
	}

	WriteJSON(w, http.StatusOK, searchResponse{
		Success: true,
		Results: len(grants),
		Grants:  grants,
		SearchCriteria: searchCriteria{
			Sector:      q.Sector,
			Location:    q.Location,
			CompanyType: q.CompanyType,
			Region:      q.Region,
		},
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}
