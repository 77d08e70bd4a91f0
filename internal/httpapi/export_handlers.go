package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"grantfinder-engine/internal/domain"
	"grantfinder-engine/internal/export"
	"grantfinder-engine/internal/postprocess"
)

type ExportHandler struct {
	Grants Searcher
}

type exportRequest struct {
	Sector      string `json:"sector"`
	Location    string `json:"location"`
	CompanyType string `json:"company_type"`
	Region      string `json:"region"`
}

// ExportByPath handles POST /export/{format}. The body carries the same
// facets as /search; the search runs fresh (through the cache) and the
// results stream back as a download.
func (h ExportHandler) ExportByPath(w http.ResponseWriter, r *http.Request) {
	raw := strings.TrimPrefix(r.URL.Path, "/export/")
	format, err := export.ParseFormat(raw)
	if err != nil {
		WriteError(w, r, http.StatusBadRequest, "bad_format", err.Error())
		return
	}

	// Empty body means export everything.
	var req exportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		WriteError(w, r, http.StatusBadRequest, "bad_json", "invalid JSON: "+err.Error())
		return
	}

	q := domain.Query{
		Sector:      req.Sector,
		Location:    req.Location,
		CompanyType: req.CompanyType,
		Region:      req.Region,
	}.Normalized()

	grants := h.Grants.Search(r.Context(), q)
	postprocess.Annotate(grants, time.Now())

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", format.Filename()))
	// Headers are already out, so a write error here can only end the stream.
	_ = format.Write(w, grants)
}
