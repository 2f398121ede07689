package holidays

import "database/sql"

const Schema = `
CREATE TABLE IF NOT EXISTS market_holidays (
    id INTEGER PRIMARY KEY,
    name TEXT NOT NULL,
    date TEXT NOT NULL,
    status TEXT NOT NULL,
    exchange TEXT NOT NULL,
    year INTEGER NOT NULL,
    created_at TEXT NOT NULL DEFAULT (datetime('now')),
    UNIQUE (name, date, exchange)
);

CREATE INDEX IF NOT EXISTS idx_market_holidays_date ON market_holidays(date);
`

// InitSchema ensures the market_holidays table exists
func InitSchema(db *sql.DB) error {
	_, err := db.Exec(Schema)
	return err
}
