package sentiment

import (
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"
)

// Repository handles fear & greed index database operations
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new sentiment repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "sentiment").Logger(),
	}
}

// Upsert stores one reading keyed by its capture timestamp. The hourly
// schedule keeps readings deduplicated to one per hour in practice.
func (r *Repository) Upsert(reading Reading) error {
	query := `
		INSERT INTO fear_greed_index (date, fear_value, category)
		VALUES (?, ?, ?)
		ON CONFLICT (date) DO UPDATE SET
			fear_value = excluded.fear_value,
			category = excluded.category`

	_, err := r.db.Exec(query, reading.Date, reading.Value, reading.Category)
	if err != nil {
		return fmt.Errorf("failed to upsert fear greed reading: %w", err)
	}

	return nil
}

// GetLatest returns the most recent readings, newest first
func (r *Repository) GetLatest(limit int) ([]Reading, error) {
	query := `
		SELECT date, fear_value, category
		FROM fear_greed_index
		ORDER BY date DESC
		LIMIT ?`

	rows, err := r.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query fear greed readings: %w", err)
	}
	defer rows.Close()

	var readings []Reading
	for rows.Next() {
		var reading Reading
		if err := rows.Scan(&reading.Date, &reading.Value, &reading.Category); err != nil {
			return nil, fmt.Errorf("failed to scan fear greed reading: %w", err)
		}
		readings = append(readings, reading)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating fear greed readings: %w", err)
	}

	return readings, nil
}
