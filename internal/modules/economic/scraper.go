package economic

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/marketdash/marketdash/internal/browser"
	"github.com/marketdash/marketdash/internal/scrape"
)

const (
	calendarURL   = "https://www.tradingview.com/symbols/USDCAD/economic-calendar/?exchange=FX_IDC"
	readySelector = "div[data-name*='economic-calendar-item']"
	rowSelector   = "div[data-name*='economic-calendar-item']"

	// Source timestamp format, ISO-8601 with milliseconds
	sourceTimeLayout = "2006-01-02T15:04:05.000Z"
	storedTimeLayout = "2006-01-02 15:04:05"
)

// Scraper pulls the TradingView economic calendar into economic_events
type Scraper struct {
	driver *browser.Driver
	repo   *Repository
	log    zerolog.Logger
}

// NewScraper creates a new economic events scraper
func NewScraper(driver *browser.Driver, repo *Repository, log zerolog.Logger) *Scraper {
	return &Scraper{
		driver: driver,
		repo:   repo,
		log:    log.With().Str("job", "economic_data").Logger(),
	}
}

// Name implements scheduler.Job
func (s *Scraper) Name() string {
	return "economic_data"
}

// Run implements scheduler.Job: scrape the calendar and upsert the results
func (s *Scraper) Run() error {
	start := time.Now()

	events, err := s.Scrape(context.Background())
	if err != nil {
		s.log.Error().Err(err).Dur("elapsed", time.Since(start)).Msg("Economic scrape failed")
		return err
	}
	if len(events) == 0 {
		s.log.Warn().Msg("No economic calendar data available")
		return nil
	}

	if err := s.repo.Upsert(events); err != nil {
		return fmt.Errorf("failed to store economic events: %w", err)
	}

	s.log.Info().
		Int("count", len(events)).
		Dur("elapsed", time.Since(start)).
		Msg("Economic scrape finished")

	return nil
}

// Scrape opens the calendar, applies the importance and timeframe filters
// (best-effort), and extracts one event per row.
func (s *Scraper) Scrape(ctx context.Context) ([]Event, error) {
	page, err := s.driver.Open(ctx, browser.PageSpec{
		URL:           calendarURL,
		ReadySelector: readySelector,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open economic calendar: %w", err)
	}
	defer page.Close()

	// Both filters are best-effort. A missed click means the default view is
	// scraped, not an aborted run.
	filters := []browser.FilterAction{
		{Selector: "//button[contains(., 'Importance')]", Settle: time.Second},
		{Selector: "//button[contains(., 'This week')]", Settle: 2 * time.Second},
	}
	for _, filter := range filters {
		if err := page.Click(filter); err != nil {
			s.log.Error().Err(err).Str("selector", filter.Selector).Msg("Failed to apply filter")
		}
	}

	rows, err := page.Rows(rowSelector)
	if err != nil {
		return nil, fmt.Errorf("failed to locate calendar rows: %w", err)
	}
	if len(rows) == 0 {
		s.log.Warn().Msg("No economic calendar rows found")
		return nil, nil
	}
	s.log.Info().Int("rows", len(rows)).Msg("Scraping economic events")

	results := make([]scrape.RowResult[Event], 0, len(rows))
	for i, row := range rows {
		event, err := ExtractEvent(row)
		if err != nil {
			results = append(results, scrape.Skip[Event](i, err))
			continue
		}
		results = append(results, scrape.Ok(i, event))
	}

	return scrape.Collect(s.log, results), nil
}

// ExtractEvent normalizes one calendar row. Every field falls back to "N/A"
// when its sub-element is absent.
func ExtractEvent(row browser.RowHandle) (Event, error) {
	rawDate, err := scrape.AttrField(row, "time", "datetime", "N/A")
	if err != nil {
		return Event{}, fmt.Errorf("event date: %w", err)
	}

	eventTime, err := scrape.Field(row, "span[class*='eventTime']", "N/A")
	if err != nil {
		return Event{}, fmt.Errorf("event time: %w", err)
	}

	country, err := scrape.Field(row, "span[class*='countryName']", "N/A")
	if err != nil {
		return Event{}, fmt.Errorf("country: %w", err)
	}

	name, err := scrape.Field(row, "span[class*='titleText']", "N/A")
	if err != nil {
		return Event{}, fmt.Errorf("event name: %w", err)
	}

	values, err := row.TextAll("span[class*='valueWithUnit']")
	if err != nil {
		return Event{}, fmt.Errorf("values: %w", err)
	}

	return Event{
		Date:     FormatTimestamp(rawDate),
		Time:     eventTime,
		Country:  country,
		Event:    name,
		Actual:   valueAt(values, 0),
		Forecast: valueAt(values, 1),
		Prior:    valueAt(values, 2),
	}, nil
}

// FormatTimestamp converts the source's ISO-8601-with-millis timestamp into
// the stored layout, returning the raw string when parsing fails.
func FormatTimestamp(raw string) string {
	ts, err := time.Parse(sourceTimeLayout, raw)
	if err != nil {
		return raw
	}
	return ts.Format(storedTimeLayout)
}

func valueAt(values []string, i int) string {
	if i >= len(values) || values[i] == "" {
		return "N/A"
	}
	return values[i]
}
