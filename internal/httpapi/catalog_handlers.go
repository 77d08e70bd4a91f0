package httpapi

import (
	"net/http"

	"grantfinder-engine/internal/domain"
)

type CatalogHandler struct{}

// Get serves the fixed facet catalogs so a frontend can build its dropdowns.
func (h CatalogHandler) Get(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]any{
		"sectors":       domain.Sectors,
		"locations":     []string{domain.All, domain.LocationSpain, domain.LocationEU},
		"company_types": domain.CompanyTypes,
		"regions":       domain.Regions,
	})
}
