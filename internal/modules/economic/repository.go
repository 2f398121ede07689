package economic

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

const upsertChunkSize = 100

// Repository handles economic event database operations
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new economic events repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "economic").Logger(),
	}
}

// Upsert stores events keyed by (event_date, event, country). Re-scraping an
// event refreshes actual/forecast/prior in place.
func (r *Repository) Upsert(events []Event) error {
	if len(events) == 0 {
		r.log.Debug().Msg("No economic events to store")
		return nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for start := 0; start < len(events); start += upsertChunkSize {
		end := start + upsertChunkSize
		if end > len(events) {
			end = len(events)
		}
		if err := upsertChunk(tx, events[start:end]); err != nil {
			return fmt.Errorf("failed to upsert economic events: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit economic events: %w", err)
	}

	r.log.Info().Int("count", len(events)).Msg("Stored economic events")
	return nil
}

func upsertChunk(tx *sql.Tx, events []Event) error {
	placeholders := make([]string, 0, len(events))
	args := make([]interface{}, 0, len(events)*7)

	for _, e := range events {
		placeholders = append(placeholders, "(?, ?, ?, ?, ?, ?, ?)")
		args = append(args, e.Date, e.Time, e.Country, e.Event, e.Actual, e.Forecast, e.Prior)
	}

	query := `
		INSERT INTO economic_events
			(event_date, event_time, country, event, actual_value, forecast_value, prior_value)
		VALUES ` + strings.Join(placeholders, ", ") + `
		ON CONFLICT (event_date, event, country) DO UPDATE SET
			actual_value = excluded.actual_value,
			forecast_value = excluded.forecast_value,
			prior_value = excluded.prior_value`

	_, err := tx.Exec(query, args...)
	return err
}

// GetLatest returns the most recent events ordered by event date
func (r *Repository) GetLatest(limit int) ([]Event, error) {
	query := `
		SELECT event_date, event_time, country, event, actual_value, forecast_value, prior_value
		FROM economic_events
		ORDER BY event_date DESC
		LIMIT ?`

	rows, err := r.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query economic events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var e Event
		var eventTime sql.NullString
		err := rows.Scan(&e.Date, &eventTime, &e.Country, &e.Event, &e.Actual, &e.Forecast, &e.Prior)
		if err != nil {
			return nil, fmt.Errorf("failed to scan economic event: %w", err)
		}
		e.Time = eventTime.String
		if e.Time == "" {
			e.Time = "Unknown"
		}
		events = append(events, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating economic events: %w", err)
	}

	return events, nil
}
