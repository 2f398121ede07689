package premarket

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

const upsertChunkSize = 100

// Repository handles pre-market mover database operations
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new premarket repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "premarket").Logger(),
	}
}

// Upsert stores movers keyed by (symbol, date, direction)
func (r *Repository) Upsert(movers []Mover) error {
	if len(movers) == 0 {
		r.log.Debug().Msg("No premarket movers to store")
		return nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for start := 0; start < len(movers); start += upsertChunkSize {
		end := start + upsertChunkSize
		if end > len(movers) {
			end = len(movers)
		}
		if err := upsertChunk(tx, movers[start:end]); err != nil {
			return fmt.Errorf("failed to upsert premarket movers: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit premarket movers: %w", err)
	}

	r.log.Info().Int("count", len(movers)).Msg("Stored premarket movers")
	return nil
}

func upsertChunk(tx *sql.Tx, movers []Mover) error {
	placeholders := make([]string, 0, len(movers))
	args := make([]interface{}, 0, len(movers)*7)

	for _, m := range movers {
		placeholders = append(placeholders, "(?, ?, ?, ?, ?, ?, ?)")
		args = append(args, m.Symbol, m.Price, m.Change, m.ChangePercent, m.Volume, string(m.Direction), m.Date)
	}

	query := `
		INSERT INTO premarket_movers
			(symbol, price, change, change_percent, volume, direction, date)
		VALUES ` + strings.Join(placeholders, ", ") + `
		ON CONFLICT (symbol, date, direction) DO UPDATE SET
			price = excluded.price,
			change = excluded.change,
			change_percent = excluded.change_percent,
			volume = excluded.volume`

	_, err := tx.Exec(query, args...)
	return err
}

// GetLatest returns up to limit gainers and limit losers from the most
// recent snapshot date, ignoring older rows. Gainers are ordered biggest
// rise first, losers biggest drop first.
func (r *Repository) GetLatest(limit int) (Movers, error) {
	latest, err := r.latestDate()
	if err != nil {
		return Movers{}, err
	}
	if latest == "" {
		return Movers{Gainers: []Mover{}, Losers: []Mover{}}, nil
	}

	gainers, err := r.getByDirection(latest, Gainer, limit)
	if err != nil {
		return Movers{}, err
	}
	losers, err := r.getByDirection(latest, Loser, limit)
	if err != nil {
		return Movers{}, err
	}

	return Movers{Gainers: gainers, Losers: losers}, nil
}

// GetLatestByDirection returns one direction's movers from the most recent
// snapshot date.
func (r *Repository) GetLatestByDirection(direction Direction, limit int) ([]Mover, error) {
	latest, err := r.latestDate()
	if err != nil {
		return nil, err
	}
	if latest == "" {
		return []Mover{}, nil
	}

	return r.getByDirection(latest, direction, limit)
}

// latestDate returns the most recent snapshot date, or "" when the table is
// empty (MAX over no rows is NULL).
func (r *Repository) latestDate() (string, error) {
	var latest sql.NullString
	err := r.db.QueryRow(`SELECT MAX(date) FROM premarket_movers`).Scan(&latest)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to query latest mover date: %w", err)
	}

	return latest.String, nil
}

func (r *Repository) getByDirection(date string, direction Direction, limit int) ([]Mover, error) {
	order := "DESC"
	if direction == Loser {
		order = "ASC"
	}

	query := fmt.Sprintf(`
		SELECT symbol, price, change, change_percent, volume, direction, date
		FROM premarket_movers
		WHERE date = ? AND direction = ?
		ORDER BY change_percent %s
		LIMIT ?`, order)

	rows, err := r.db.Query(query, date, string(direction), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query premarket movers: %w", err)
	}
	defer rows.Close()

	movers := []Mover{}
	for rows.Next() {
		var m Mover
		var dir string
		err := rows.Scan(&m.Symbol, &m.Price, &m.Change, &m.ChangePercent, &m.Volume, &dir, &m.Date)
		if err != nil {
			return nil, fmt.Errorf("failed to scan premarket mover: %w", err)
		}
		m.Direction = Direction(dir)
		movers = append(movers, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating premarket movers: %w", err)
	}

	return movers, nil
}
