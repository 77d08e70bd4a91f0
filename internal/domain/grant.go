package domain

import (
	"strings"
	"time"
)

// All is the sentinel facet value meaning "no filter".
const All = "All"

// Location values with meaning beyond the region catalog.
const (
	LocationSpain = "Spain"
	LocationEU    = "EU"
)

// AmountUnknown is returned when no funding amount could be mined from the
// announcement text; callers should point users at the official call.
const AmountUnknown = "Consultar convocatoria"

// MaxTitleLen is the bound sources truncate titles to.
const MaxTitleLen = 150

// Sectors is the fixed sector catalog. Adapters may only emit these values
// (or All).
var Sectors = []string{
	"Technology", "Energy", "Industry", "Agriculture", "Commerce",
	"Services", "Construction", "Health", "Tourism", "Education", "Transport",
}

// Regions lists the Spanish autonomous communities plus the two autonomous
// cities, usable as both location and region facet values.
var Regions = []string{
	"Andalucía", "Aragón", "Asturias", "Islas Baleares", "Canarias",
	"Cantabria", "Castilla-La Mancha", "Castilla y León", "Cataluña",
	"Extremadura", "Galicia", "Madrid", "Murcia", "Navarra",
	"La Rioja", "País Vasco", "Valencia", "Ceuta", "Melilla",
}

// CompanyTypes is the company-type catalog.
var CompanyTypes = []string{
	"SME", "Startup", "Sole trader", "Large company", "NGO", "University",
	"Research center", "Individual", "Homeowners' association", "Municipality",
}

// Date is a calendar date with an explicit unknown state. An unparseable or
// missing date stays unknown; it is never treated as "far future".
type Date struct {
	Time  time.Time
	Valid bool
}

// NewDate returns a known date truncated to day precision.
func NewDate(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Time: time.Date(y, m, d, 0, 0, 0, 0, time.UTC), Valid: true}
}

// ParseDate reads an ISO yyyy-mm-dd string. Anything unparseable yields the
// unknown state, not an error.
func ParseDate(s string) Date {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return Date{}
	}
	return Date{Time: t, Valid: true}
}

func (d Date) String() string {
	if !d.Valid {
		return ""
	}
	return d.Time.Format("2006-01-02")
}

// MarshalJSON encodes known dates as "yyyy-mm-dd" and unknown dates as null.
func (d Date) MarshalJSON() ([]byte, error) {
	if !d.Valid {
		return []byte("null"), nil
	}
	return []byte(`"` + d.Time.Format("2006-01-02") + `"`), nil
}

// UnmarshalJSON accepts null or "yyyy-mm-dd"; bad input parses to unknown.
func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "null" || s == "" {
		*d = Date{}
		return nil
	}
	*d = ParseDate(s)
	return nil
}

// Grant is the normalized announcement every source adapter produces.
// Records are created fresh per search inside an adapter and never mutated
// after leaving the aggregator, except for the postprocess annotations.
type Grant struct {
	Title           string `json:"title"`
	Description     string `json:"description"`
	Sector          string `json:"sector"`
	Location        string `json:"location"`
	Region          string `json:"region"`
	CompanyType     string `json:"company_type"`
	Amount          string `json:"amount"`
	Deadline        Date   `json:"deadline"`
	PublicationDate Date   `json:"publication_date"`
	Source          string `json:"source"`
	Link            string `json:"link"`
	RelevanceScore  int    `json:"relevance_score"`
	Identifier      string `json:"identifier,omitempty"`

	// Filled by postprocess, after aggregation.
	DaysRemaining int    `json:"days_remaining"`
	Urgency       string `json:"urgency,omitempty"`
}

// Query is the immutable facet tuple a search runs against.
type Query struct {
	Sector      string
	Location    string
	CompanyType string
	Region      string
}

// Normalized returns a copy with empty facets replaced by the All sentinel.
func (q Query) Normalized() Query {
	def := func(s string) string {
		s = strings.TrimSpace(s)
		if s == "" {
			return All
		}
		return s
	}
	return Query{
		Sector:      def(q.Sector),
		Location:    def(q.Location),
		CompanyType: def(q.CompanyType),
		Region:      def(q.Region),
	}
}

// Key joins the facets into the cache key. None of the facet catalogs
// contain an underscore, so the join is unambiguous.
func (q Query) Key() string {
	n := q.Normalized()
	return n.Sector + "_" + n.Location + "_" + n.CompanyType + "_" + n.Region
}
