package store

import (
	"context"
	"database/sql"
	"time"
)

type FacetCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// UsageStats summarizes search history for the stats endpoint.
type UsageStats struct {
	TotalSearches  int            `json:"total_searches"`
	SearchesToday  int            `json:"searches_today"`
	AvgDurationMs  int64          `json:"avg_duration_ms"`
	PopularSectors []FacetCount   `json:"popular_sectors"`
	TopRegions     []FacetCount   `json:"top_regions"`
	RecentActivity []SearchRecord `json:"recent_activity"`
}

func LoadUsageStats(ctx context.Context, db *sql.DB) (UsageStats, error) {
	var st UsageStats

	var avg float64
	if err := db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(AVG(duration_ms), 0) FROM searches;`,
	).Scan(&st.TotalSearches, &avg); err != nil {
		return st, err
	}
	st.AvgDurationMs = int64(avg)

	if err := db.QueryRowContext(ctx, `
SELECT COUNT(*) FROM searches
WHERE created_at >= datetime('now', 'start of day');
`).Scan(&st.SearchesToday); err != nil {
		return st, err
	}

	var err error
	st.PopularSectors, err = facetCounts(ctx, db, "sector")
	if err != nil {
		return st, err
	}
	st.TopRegions, err = facetCounts(ctx, db, "region")
	if err != nil {
		return st, err
	}

	st.RecentActivity, err = recentSearches(ctx, db, 10)
	return st, err
}

// facetCounts groups by a fixed column name; callers pass only the
// whitelisted facet columns, never user input.
func facetCounts(ctx context.Context, db *sql.DB, column string) ([]FacetCount, error) {
	switch column {
	case "sector", "region", "location", "company_type":
	default:
		return nil, sql.ErrNoRows
	}
	rows, err := db.QueryContext(ctx, `
SELECT `+column+`, COUNT(*) AS n FROM searches
WHERE `+column+` != 'All'
GROUP BY `+column+`
ORDER BY n DESC, `+column+` ASC
LIMIT 5;
`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []FacetCount{}
	for rows.Next() {
		var fc FacetCount
		if err := rows.Scan(&fc.Value, &fc.Count); err != nil {
			return nil, err
		}
		out = append(out, fc)
	}
	return out, rows.Err()
}

func recentSearches(ctx context.Context, db *sql.DB, limit int) ([]SearchRecord, error) {
	rows, err := db.QueryContext(ctx, `
SELECT id, sector, location, company_type, region, results, duration_ms, created_at
FROM searches
ORDER BY created_at DESC, id DESC
LIMIT ?;
`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []SearchRecord{}
	for rows.Next() {
		var rec SearchRecord
		var created string
		if err := rows.Scan(&rec.ID, &rec.Sector, &rec.Location, &rec.CompanyType,
			&rec.Region, &rec.Results, &rec.DurationMs, &created); err != nil {
			return nil, err
		}
		rec.CreatedAt, _ = time.Parse(time.RFC3339, created)
		out = append(out, rec)
	}
	return out, rows.Err()
}
