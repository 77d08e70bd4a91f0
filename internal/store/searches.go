package store

import (
	"context"
	"database/sql"
	"time"
)

// SearchRecord is one executed search: its facets and its outcome. Only
// history is persisted here — cached results never touch the database.
type SearchRecord struct {
	ID          int64     `json:"id"`
	Sector      string    `json:"sector"`
	Location    string    `json:"location"`
	CompanyType string    `json:"company_type"`
	Region      string    `json:"region"`
	Results     int       `json:"results"`
	DurationMs  int64     `json:"duration_ms"`
	CreatedAt   time.Time `json:"created_at"`
}

func Migrate(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var v int
	if err := tx.QueryRow(`PRAGMA user_version;`).Scan(&v); err != nil {
		return err
	}
	if v >= 1 {
		return tx.Commit()
	}

	if _, err := tx.Exec(`
CREATE TABLE IF NOT EXISTS searches (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  sector TEXT NOT NULL,
  location TEXT NOT NULL,
  company_type TEXT NOT NULL,
  region TEXT NOT NULL,
  results INTEGER NOT NULL DEFAULT 0,
  duration_ms INTEGER NOT NULL DEFAULT 0,
  created_at TEXT NOT NULL
);
`); err != nil {
		return err
	}

	if _, err := tx.Exec(`
CREATE INDEX IF NOT EXISTS idx_searches_created_at ON searches(created_at);
`); err != nil {
		return err
	}

	if _, err := tx.Exec(`PRAGMA user_version = 1;`); err != nil {
		return err
	}
	return tx.Commit()
}

func RecordSearch(ctx context.Context, db *sql.DB, rec SearchRecord) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	_, err := db.ExecContext(ctx, `
INSERT INTO searches(sector, location, company_type, region, results, duration_ms, created_at)
VALUES(?,?,?,?,?,?,?);`,
		rec.Sector, rec.Location, rec.CompanyType, rec.Region,
		rec.Results, rec.DurationMs, rec.CreatedAt.Format(time.RFC3339),
	)
	return err
}

// CleanupOldSearches trims history older than three months.
func CleanupOldSearches(db *sql.DB) (deleted int64, err error) {
	res, err := db.Exec(`
DELETE FROM searches
WHERE created_at < datetime('now', '-3 months');
`)
	if err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()
	return n, nil
}
