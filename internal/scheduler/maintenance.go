package scheduler

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// MaintenanceJob keeps the scrape database healthy: integrity check, WAL
// checkpoint, and pruning of scraped rows past the retention window.
type MaintenanceJob struct {
	db            *sql.DB
	retentionDays int
	log           zerolog.Logger
}

// NewMaintenanceJob creates a new database maintenance job
func NewMaintenanceJob(db *sql.DB, retentionDays int, log zerolog.Logger) *MaintenanceJob {
	return &MaintenanceJob{
		db:            db,
		retentionDays: retentionDays,
		log:           log.With().Str("job", "db_maintenance").Logger(),
	}
}

// Name implements Job
func (j *MaintenanceJob) Name() string {
	return "db_maintenance"
}

// Run executes the maintenance pass
func (j *MaintenanceJob) Run() error {
	start := time.Now()

	if err := j.checkIntegrity(); err != nil {
		// Corruption is critical and not auto-recoverable
		return err
	}

	if _, err := j.checkpointWAL(); err != nil {
		j.log.Warn().Err(err).Msg("Failed to checkpoint WAL")
	}
	j.pruneOldRows()

	j.log.Info().Dur("elapsed", time.Since(start)).Msg("Maintenance completed")
	return nil
}

// checkIntegrity runs SQLite's PRAGMA integrity_check
func (j *MaintenanceJob) checkIntegrity() error {
	var result string
	if err := j.db.QueryRow("PRAGMA integrity_check").Scan(&result); err != nil {
		return fmt.Errorf("integrity check failed: %w", err)
	}
	if result != "ok" {
		return fmt.Errorf("integrity check returned: %s", result)
	}

	j.log.Debug().Msg("Database integrity OK")
	return nil
}

// checkpointWAL runs a passive checkpoint and reports the WAL frame count.
// The pragma returns three columns: busy, log frames, frames checkpointed.
func (j *MaintenanceJob) checkpointWAL() (int, error) {
	var busy, frames, checkpointed int
	err := j.db.QueryRow("PRAGMA wal_checkpoint(PASSIVE)").Scan(&busy, &frames, &checkpointed)
	if err != nil {
		return 0, fmt.Errorf("wal checkpoint failed: %w", err)
	}

	if frames > 1000 {
		j.log.Warn().
			Int("wal_frames", frames).
			Int("checkpointed", checkpointed).
			Msg("WAL file is large, checkpoint may be needed")
	} else {
		j.log.Debug().Int("wal_frames", frames).Msg("WAL checkpoint status OK")
	}

	return frames, nil
}

// pruneOldRows deletes scraped rows older than the retention window. Holidays
// are kept; the table is tiny and past holidays stay useful for reference.
func (j *MaintenanceJob) pruneOldRows() {
	if j.retentionDays <= 0 {
		j.log.Debug().Msg("Retention disabled, skipping prune")
		return
	}

	cutoff := fmt.Sprintf("-%d days", j.retentionDays)
	prunes := []struct {
		table string
		query string
	}{
		{"earnings_reports", `DELETE FROM earnings_reports WHERE report_date < date('now', ?)`},
		{"economic_events", `DELETE FROM economic_events WHERE event_date < datetime('now', ?)`},
		{"fear_greed_index", `DELETE FROM fear_greed_index WHERE date < datetime('now', ?)`},
		{"premarket_movers", `DELETE FROM premarket_movers WHERE date < date('now', ?)`},
	}

	for _, p := range prunes {
		res, err := j.db.Exec(p.query, cutoff)
		if err != nil {
			j.log.Error().Err(err).Str("table", p.table).Msg("Failed to prune old rows")
			continue
		}
		if n, err := res.RowsAffected(); err == nil && n > 0 {
			j.log.Info().Str("table", p.table).Int64("rows", n).Msg("Pruned old rows")
		}
	}
}
