package sentiment

import "database/sql"

const Schema = `
CREATE TABLE IF NOT EXISTS fear_greed_index (
    id INTEGER PRIMARY KEY,
    date TEXT NOT NULL UNIQUE,
    fear_value INTEGER NOT NULL,
    category TEXT NOT NULL
);
`

// InitSchema ensures the fear_greed_index table exists
func InitSchema(db *sql.DB) error {
	_, err := db.Exec(Schema)
	return err
}
