package holidays

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Repository handles market holiday database operations
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new holidays repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "holidays").Logger(),
	}
}

// Upsert stores holidays keyed by (name, date, exchange). Rows are written
// one at a time so a single malformed holiday cannot sink the batch; row
// failures are logged and counted, not returned.
func (r *Repository) Upsert(records []Holiday) error {
	if len(records) == 0 {
		r.log.Debug().Msg("No market holidays to store")
		return nil
	}

	query := `
		INSERT INTO market_holidays (name, date, status, exchange, year)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (name, date, exchange) DO UPDATE SET
			status = excluded.status,
			year = excluded.year`

	stored := 0
	for _, h := range records {
		if _, err := time.Parse("2006-01-02", h.Date); err != nil {
			r.log.Error().Str("name", h.Name).Str("date", h.Date).Msg("Invalid holiday date, skipping")
			continue
		}
		if _, err := r.db.Exec(query, h.Name, h.Date, h.Status, h.Exchange, h.Year); err != nil {
			r.log.Error().Err(err).Str("name", h.Name).Msg("Failed to store holiday")
			continue
		}
		stored++
	}

	if stored == 0 {
		return fmt.Errorf("failed to store any of %d market holidays", len(records))
	}

	r.log.Info().Int("count", stored).Msg("Stored market holidays")
	return nil
}

// GetUpcoming returns future-dated holidays in chronological order
func (r *Repository) GetUpcoming(limit int) ([]Holiday, error) {
	query := `
		SELECT name, date, status, exchange, year
		FROM market_holidays
		WHERE date >= date('now')
		ORDER BY date ASC
		LIMIT ?`

	rows, err := r.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query market holidays: %w", err)
	}
	defer rows.Close()

	var holidays []Holiday
	for rows.Next() {
		var h Holiday
		if err := rows.Scan(&h.Name, &h.Date, &h.Status, &h.Exchange, &h.Year); err != nil {
			return nil, fmt.Errorf("failed to scan market holiday: %w", err)
		}
		holidays = append(holidays, h)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating market holidays: %w", err)
	}

	return holidays, nil
}
