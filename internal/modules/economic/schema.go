package economic

import "database/sql"

const Schema = `
CREATE TABLE IF NOT EXISTS economic_events (
    id INTEGER PRIMARY KEY,
    event_date TEXT NOT NULL,
    event_time TEXT,
    country TEXT NOT NULL,
    event TEXT NOT NULL,
    actual_value TEXT,
    forecast_value TEXT,
    prior_value TEXT,
    created_at TEXT NOT NULL DEFAULT (datetime('now')),
    UNIQUE (event_date, event, country)
);

CREATE INDEX IF NOT EXISTS idx_economic_events_date ON economic_events(event_date);
`

// InitSchema ensures the economic_events table exists
func InitSchema(db *sql.DB) error {
	_, err := db.Exec(Schema)
	return err
}
