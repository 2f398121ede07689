package earnings

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/marketdash/marketdash/internal/browser"
	"github.com/marketdash/marketdash/internal/scrape"
)

const (
	calendarURL      = "https://www.tradingview.com/markets/stocks-usa/earnings/"
	readySelector    = ".tv-data-table"
	rowSelector      = ".tv-data-table__row"
	loadMoreSelector = ".tv-load-more__btn"
)

// Week selects which calendar tab the scraper clicks
type Week int

const (
	ThisWeek Week = iota
	NextWeek
)

func (w Week) label() string {
	if w == NextWeek {
		return "Next Week"
	}
	return "This Week"
}

func (w Week) jobName() string {
	if w == NextWeek {
		return "next_week_earnings"
	}
	return "earnings"
}

// Scraper pulls the TradingView earnings calendar into earnings_reports
type Scraper struct {
	driver *browser.Driver
	repo   *Repository
	week   Week
	log    zerolog.Logger
}

// NewScraper creates a new earnings scraper for one week tab
func NewScraper(driver *browser.Driver, repo *Repository, week Week, log zerolog.Logger) *Scraper {
	return &Scraper{
		driver: driver,
		repo:   repo,
		week:   week,
		log:    log.With().Str("job", week.jobName()).Logger(),
	}
}

// Name implements scheduler.Job
func (s *Scraper) Name() string {
	return s.week.jobName()
}

// Run implements scheduler.Job: scrape the calendar and upsert the results
func (s *Scraper) Run() error {
	start := time.Now()

	reports, err := s.Scrape(context.Background())
	if err != nil {
		s.log.Error().Err(err).Dur("elapsed", time.Since(start)).Msg("Earnings scrape failed")
		return err
	}
	if len(reports) == 0 {
		s.log.Warn().Msg("No earnings data found to store")
		return nil
	}

	if err := s.repo.Upsert(reports); err != nil {
		return fmt.Errorf("failed to store earnings reports: %w", err)
	}

	s.log.Info().
		Int("count", len(reports)).
		Dur("elapsed", time.Since(start)).
		Msg("Earnings scrape finished")

	return nil
}

// Scrape opens the calendar, applies the week filter, pages through the table
// and extracts one report per row. Malformed rows are skipped, not fatal.
func (s *Scraper) Scrape(ctx context.Context) ([]Report, error) {
	page, err := s.driver.Open(ctx, browser.PageSpec{
		URL:           calendarURL,
		ReadySelector: readySelector,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open earnings calendar: %w", err)
	}
	defer page.Close()

	// Week filter is best-effort: on failure the default view is scraped.
	filter := browser.FilterAction{
		Selector: fmt.Sprintf("//div[contains(@class, 'itemContent') and contains(text(), '%s')]", s.week.label()),
		Settle:   2 * time.Second,
	}
	if err := page.Click(filter); err != nil {
		s.log.Error().Err(err).Str("week", s.week.label()).Msg("Failed to apply week filter")
	}

	if clicks := page.ClickWhileVisible(loadMoreSelector, time.Second); clicks > 0 {
		s.log.Info().Int("clicks", clicks).Msg("Loaded more earnings rows")
	}

	rows, err := page.Rows(rowSelector)
	if err != nil {
		return nil, fmt.Errorf("failed to locate earnings rows: %w", err)
	}
	s.log.Info().Int("rows", len(rows)).Msg("Scraping earnings rows")

	results := make([]scrape.RowResult[Report], 0, len(rows))
	for i, row := range rows {
		report, err := ExtractReport(row)
		if err != nil {
			results = append(results, scrape.Skip[Report](i, err))
			continue
		}
		results = append(results, scrape.Ok(i, report))
	}

	return scrape.Collect(s.log, results), nil
}

// ExtractReport normalizes one calendar row. Missing sub-fields become
// sentinels; only the ticker cell is mandatory.
func ExtractReport(row browser.RowHandle) (Report, error) {
	nameText, err := row.Text("[data-field-key='name']")
	if err != nil {
		return Report{}, fmt.Errorf("ticker cell: %w", err)
	}

	reportDate, err := scrape.Field(row, "[data-field-key='earnings_release_next_date']", "N/A")
	if err != nil {
		return Report{}, fmt.Errorf("report date: %w", err)
	}

	epsEstimate, err := scrape.Field(row, "[data-field-key='earnings_per_share_forecast_next_fq']", "N/A")
	if err != nil {
		return Report{}, fmt.Errorf("eps estimate: %w", err)
	}

	reportedEPS, err := scrape.Field(row, "[data-field-key='earnings_per_share_fq']", "N/A")
	if err != nil {
		return Report{}, fmt.Errorf("reported eps: %w", err)
	}

	revenueForecast, err := scrape.Field(row, "[data-field-key='revenue_forecast_next_fq']", "N/A")
	if err != nil {
		return Report{}, fmt.Errorf("revenue forecast: %w", err)
	}

	reportedRevenue, err := scrape.Field(row, "[data-field-key='revenue_fq']", "N/A")
	if err != nil {
		return Report{}, fmt.Errorf("reported revenue: %w", err)
	}

	timeOfDay, err := scrape.AttrField(row, "[data-field-key='earnings_release_next_time']", "title", "Unknown")
	if err != nil {
		return Report{}, fmt.Errorf("time of day: %w", err)
	}

	marketCap, err := scrape.Field(row, "[data-field-key='market_cap_basic']", "N/A")
	if err != nil {
		return Report{}, fmt.Errorf("market cap: %w", err)
	}

	return Report{
		Ticker:          NormalizeTicker(nameText),
		ReportDate:      reportDate,
		EPSEstimate:     trimCurrency(epsEstimate),
		ReportedEPS:     trimCurrency(reportedEPS),
		RevenueForecast: trimCurrency(revenueForecast),
		ReportedRevenue: trimCurrency(reportedRevenue),
		Time:            timeOfDay,
		MarketCap:       trimCurrency(marketCap),
	}, nil
}

// NormalizeTicker keeps the first line of the name cell and strips the single
// trailing "D" marker TradingView appends to a specific listing class. This
// is a documented quirk of this source, not a general rule.
func NormalizeTicker(raw string) string {
	ticker := raw
	if i := strings.IndexByte(ticker, '\n'); i >= 0 {
		ticker = ticker[:i]
	}
	ticker = strings.TrimSpace(ticker)
	ticker = strings.TrimSuffix(ticker, "D")
	return ticker
}

// trimCurrency drops the source's currency-unit suffix; the value itself
// stays as display text.
func trimCurrency(v string) string {
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(v), "USD"))
}
