package premarket

import "database/sql"

const Schema = `
CREATE TABLE IF NOT EXISTS premarket_movers (
    id INTEGER PRIMARY KEY,
    symbol TEXT NOT NULL,
    price REAL NOT NULL,
    change REAL NOT NULL,
    change_percent REAL NOT NULL,
    volume INTEGER NOT NULL,
    direction TEXT NOT NULL,
    date TEXT NOT NULL,
    UNIQUE (symbol, date, direction)
);

CREATE INDEX IF NOT EXISTS idx_premarket_movers_date ON premarket_movers(date);
`

// InitSchema ensures the premarket_movers table exists
func InitSchema(db *sql.DB) error {
	_, err := db.Exec(Schema)
	return err
}
