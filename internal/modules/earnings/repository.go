package earnings

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// upsertChunkSize keeps each batch under sqlite's bound-variable limit
const upsertChunkSize = 100

// Repository handles earnings report database operations
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new earnings repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "earnings").Logger(),
	}
}

// Upsert stores reports keyed by (ticker, report_date, time). A re-scrape of
// the same report overwrites the value fields instead of duplicating the row.
func (r *Repository) Upsert(reports []Report) error {
	if len(reports) == 0 {
		r.log.Debug().Msg("No earnings reports to store")
		return nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for start := 0; start < len(reports); start += upsertChunkSize {
		end := start + upsertChunkSize
		if end > len(reports) {
			end = len(reports)
		}
		if err := upsertChunk(tx, reports[start:end]); err != nil {
			return fmt.Errorf("failed to upsert earnings reports: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit earnings reports: %w", err)
	}

	r.log.Info().Int("count", len(reports)).Msg("Stored earnings reports")
	return nil
}

func upsertChunk(tx *sql.Tx, reports []Report) error {
	placeholders := make([]string, 0, len(reports))
	args := make([]interface{}, 0, len(reports)*8)

	for _, rep := range reports {
		timeOfDay := rep.Time
		if strings.TrimSpace(timeOfDay) == "" {
			timeOfDay = "Unknown"
		}
		placeholders = append(placeholders, "(?, ?, ?, ?, ?, ?, ?, ?)")
		args = append(args,
			rep.Ticker, rep.ReportDate, rep.EPSEstimate, rep.ReportedEPS,
			rep.RevenueForecast, rep.ReportedRevenue, timeOfDay, rep.MarketCap,
		)
	}

	query := `
		INSERT INTO earnings_reports
			(ticker, report_date, eps_estimate, reported_eps, revenue_forecast, reported_revenue, time, market_cap)
		VALUES ` + strings.Join(placeholders, ", ") + `
		ON CONFLICT (ticker, report_date, time) DO UPDATE SET
			eps_estimate = excluded.eps_estimate,
			reported_eps = excluded.reported_eps,
			revenue_forecast = excluded.revenue_forecast,
			reported_revenue = excluded.reported_revenue,
			market_cap = excluded.market_cap`

	_, err := tx.Exec(query, args...)
	return err
}

// GetLatest returns the most recent reports ordered by report date
func (r *Repository) GetLatest(limit int) ([]Report, error) {
	query := `
		SELECT ticker, report_date, eps_estimate, reported_eps, revenue_forecast, reported_revenue, time, market_cap
		FROM earnings_reports
		ORDER BY report_date DESC
		LIMIT ?`

	rows, err := r.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query earnings reports: %w", err)
	}
	defer rows.Close()

	var reports []Report
	for rows.Next() {
		var rep Report
		err := rows.Scan(
			&rep.Ticker, &rep.ReportDate, &rep.EPSEstimate, &rep.ReportedEPS,
			&rep.RevenueForecast, &rep.ReportedRevenue, &rep.Time, &rep.MarketCap,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan earnings report: %w", err)
		}
		reports = append(reports, rep)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating earnings reports: %w", err)
	}

	return reports, nil
}
