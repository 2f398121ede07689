package earnings

import "database/sql"

const Schema = `
CREATE TABLE IF NOT EXISTS earnings_reports (
    id INTEGER PRIMARY KEY,
    ticker TEXT NOT NULL,
    report_date TEXT NOT NULL,
    eps_estimate TEXT,
    reported_eps TEXT,
    revenue_forecast TEXT,
    reported_revenue TEXT,
    time TEXT NOT NULL DEFAULT 'Unknown',
    market_cap TEXT,
    UNIQUE (ticker, report_date, time)
);

CREATE INDEX IF NOT EXISTS idx_earnings_report_date ON earnings_reports(report_date);
`

// InitSchema ensures the earnings_reports table exists
func InitSchema(db *sql.DB) error {
	_, err := db.Exec(Schema)
	return err
}
