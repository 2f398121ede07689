package scheduler

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marketdash/marketdash/internal/modules/earnings"
	"github.com/marketdash/marketdash/internal/modules/sentiment"

	_ "modernc.org/sqlite"
)

func TestMaintenancePrunesOldRows(t *testing.T) {
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, earnings.InitSchema(db))
	require.NoError(t, sentiment.InitSchema(db))

	_, err = db.Exec(`INSERT INTO earnings_reports (ticker, report_date, eps_estimate, reported_eps, revenue_forecast, reported_revenue, time, market_cap)
		VALUES ('OLD', '2020-01-01', 'N/A', 'N/A', 'N/A', 'N/A', 'Unknown', 'N/A'),
		       ('NEW', '2099-01-01', 'N/A', 'N/A', 'N/A', 'N/A', 'Unknown', 'N/A')`)
	require.NoError(t, err)

	_, err = db.Exec(`INSERT INTO fear_greed_index (date, fear_value, category)
		VALUES ('2020-01-01 12:00:00', 40, 'Fear'), ('2099-01-01 12:00:00', 60, 'Greed')`)
	require.NoError(t, err)

	job := NewMaintenanceJob(db, 30, zerolog.Nop())
	require.NoError(t, job.Run())

	var reports int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM earnings_reports`).Scan(&reports))
	assert.Equal(t, 1, reports)

	var readings int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM fear_greed_index`).Scan(&readings))
	assert.Equal(t, 1, readings)
}

func TestMaintenanceCheckpointsWAL(t *testing.T) {
	// WAL mode, as the database package opens it in production
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "test.db")+"?_pragma=journal_mode(WAL)")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, earnings.InitSchema(db))
	_, err = db.Exec(`INSERT INTO earnings_reports (ticker, report_date, eps_estimate, reported_eps, revenue_forecast, reported_revenue, time, market_cap)
		VALUES ('AAPL', '2026-08-25', 'N/A', 'N/A', 'N/A', 'N/A', 'Unknown', 'N/A')`)
	require.NoError(t, err)

	job := NewMaintenanceJob(db, 30, zerolog.Nop())

	frames, err := job.checkpointWAL()
	require.NoError(t, err)
	assert.GreaterOrEqual(t, frames, 0)
}

func TestMaintenanceRetentionDisabled(t *testing.T) {
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, earnings.InitSchema(db))
	require.NoError(t, sentiment.InitSchema(db))

	_, err = db.Exec(`INSERT INTO earnings_reports (ticker, report_date, eps_estimate, reported_eps, revenue_forecast, reported_revenue, time, market_cap)
		VALUES ('OLD', '2020-01-01', 'N/A', 'N/A', 'N/A', 'N/A', 'Unknown', 'N/A')`)
	require.NoError(t, err)

	job := NewMaintenanceJob(db, 0, zerolog.Nop())
	require.NoError(t, job.Run())

	var reports int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM earnings_reports`).Scan(&reports))
	assert.Equal(t, 1, reports)
}
