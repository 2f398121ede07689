package earnings

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()

	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, InitSchema(db))
	return NewRepository(db, zerolog.Nop())
}

func TestUpsertAndGetLatest(t *testing.T) {
	repo := newTestRepo(t)

	reports := []Report{
		{Ticker: "AAPL", ReportDate: "2026-08-25", EPSEstimate: "1.50", ReportedEPS: "N/A", RevenueForecast: "90B", ReportedRevenue: "N/A", Time: "After Market Close", MarketCap: "3.5T"},
		{Ticker: "NVDA", ReportDate: "2026-08-27", EPSEstimate: "1.01", ReportedEPS: "N/A", RevenueForecast: "46B", ReportedRevenue: "N/A", Time: "After Market Close", MarketCap: "4.3T"},
	}
	require.NoError(t, repo.Upsert(reports))

	got, err := repo.GetLatest(10)
	require.NoError(t, err)
	require.Len(t, got, 2)

	// Most recent report date first
	assert.Equal(t, "NVDA", got[0].Ticker)
	assert.Equal(t, "AAPL", got[1].Ticker)
}

func TestUpsertOverwritesSameReport(t *testing.T) {
	repo := newTestRepo(t)

	first := Report{Ticker: "AAPL", ReportDate: "2026-08-25", EPSEstimate: "1.50", Time: "After Market Close"}
	require.NoError(t, repo.Upsert([]Report{first}))

	// Re-scrape of the same report carries the actual number
	second := first
	second.ReportedEPS = "1.57"
	require.NoError(t, repo.Upsert([]Report{second}))

	got, err := repo.GetLatest(10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "1.57", got[0].ReportedEPS)
}

func TestUpsertEmptyTimeDefaultsToUnknown(t *testing.T) {
	repo := newTestRepo(t)

	require.NoError(t, repo.Upsert([]Report{
		{Ticker: "AAPL", ReportDate: "2026-08-25", Time: ""},
	}))

	got, err := repo.GetLatest(10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Unknown", got[0].Time)
}

func TestUpsertNoReports(t *testing.T) {
	repo := newTestRepo(t)
	require.NoError(t, repo.Upsert(nil))
}

func TestGetLatestRespectsLimit(t *testing.T) {
	repo := newTestRepo(t)

	reports := make([]Report, 0, 15)
	for i := 0; i < 15; i++ {
		reports = append(reports, Report{
			Ticker:     string(rune('A'+i)) + "AA",
			ReportDate: "2026-08-25",
			Time:       "Before Market Open",
		})
	}
	require.NoError(t, repo.Upsert(reports))

	got, err := repo.GetLatest(5)
	require.NoError(t, err)
	assert.Len(t, got, 5)
}
