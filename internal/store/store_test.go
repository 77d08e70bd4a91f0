package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, Migrate(db.Pool))
	return db
}

func TestMigrateIsIdempotent(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, Migrate(db.Pool))

	var v int
	require.NoError(t, db.Pool.QueryRow(`PRAGMA user_version;`).Scan(&v))
	assert.Equal(t, 1, v)
}

func TestRecordSearchAndStats(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	recs := []SearchRecord{
		{Sector: "Technology", Location: "Spain", CompanyType: "SME", Region: "Madrid", Results: 12, DurationMs: 900},
		{Sector: "Technology", Location: "Spain", CompanyType: "All", Region: "Madrid", Results: 8, DurationMs: 500},
		{Sector: "Energy", Location: "All", CompanyType: "All", Region: "Galicia", Results: 3, DurationMs: 700},
		{Sector: "All", Location: "All", CompanyType: "All", Region: "All", Results: 25, DurationMs: 300},
	}
	for _, r := range recs {
		require.NoError(t, RecordSearch(ctx, db.Pool, r))
	}

	st, err := LoadUsageStats(ctx, db.Pool)
	require.NoError(t, err)

	assert.Equal(t, 4, st.TotalSearches)
	assert.Equal(t, 4, st.SearchesToday)
	assert.Equal(t, int64(600), st.AvgDurationMs)

	// the All sentinel never shows up as a popular facet
	require.NotEmpty(t, st.PopularSectors)
	assert.Equal(t, "Technology", st.PopularSectors[0].Value)
	assert.Equal(t, 2, st.PopularSectors[0].Count)
	for _, fc := range st.PopularSectors {
		assert.NotEqual(t, "All", fc.Value)
	}

	require.NotEmpty(t, st.TopRegions)
	assert.Equal(t, "Madrid", st.TopRegions[0].Value)

	require.Len(t, st.RecentActivity, 4)
	// newest first
	assert.Equal(t, "All", st.RecentActivity[0].Sector)
}

func TestRecentActivityLimit(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 15; i++ {
		require.NoError(t, RecordSearch(ctx, db.Pool, SearchRecord{
			Sector: "Technology", Location: "All", CompanyType: "All", Region: "All",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	st, err := LoadUsageStats(ctx, db.Pool)
	require.NoError(t, err)
	assert.Len(t, st.RecentActivity, 10)
	assert.True(t, st.RecentActivity[0].CreatedAt.After(st.RecentActivity[9].CreatedAt))
}

func TestCleanupOldSearches(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	require.NoError(t, RecordSearch(ctx, db.Pool, SearchRecord{
		Sector: "Energy", Location: "All", CompanyType: "All", Region: "All",
		CreatedAt: time.Now().UTC().AddDate(0, -4, 0),
	}))
	require.NoError(t, RecordSearch(ctx, db.Pool, SearchRecord{
		Sector: "Energy", Location: "All", CompanyType: "All", Region: "All",
	}))

	deleted, err := CleanupOldSearches(db.Pool)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	st, err := LoadUsageStats(ctx, db.Pool)
	require.NoError(t, err)
	assert.Equal(t, 1, st.TotalSearches)
}
