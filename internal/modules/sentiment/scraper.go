package sentiment

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/marketdash/marketdash/internal/browser"
)

const gaugeURL = "https://www.cnn.com/markets/fear-and-greed"

// valueSelectors is the ordered fallback chain for the gauge readout. The
// page's markup drifts; the first selector yielding a pure-digit string wins.
var valueSelectors = []string{
	"span.dial-number-value",
	".market-fng-gauge__dial-number-value",
	"[class*='dial-number-value']",
}

var digitsOnly = regexp.MustCompile(`^\d+$`)

// pageOpener is the slice of browser.Driver this scraper needs. An interface
// so the readiness fallback is testable without a live browser.
type pageOpener interface {
	Open(ctx context.Context, spec browser.PageSpec) (*browser.Page, error)
}

// Scraper samples the CNN fear & greed gauge into fear_greed_index
type Scraper struct {
	driver pageOpener
	repo   *Repository
	log    zerolog.Logger
	now    func() time.Time
}

// NewScraper creates a new sentiment scraper
func NewScraper(driver *browser.Driver, repo *Repository, log zerolog.Logger) *Scraper {
	return &Scraper{
		driver: driver,
		repo:   repo,
		log:    log.With().Str("job", "fear_index").Logger(),
		now:    time.Now,
	}
}

// Name implements scheduler.Job
func (s *Scraper) Name() string {
	return "fear_index"
}

// Run implements scheduler.Job: sample the gauge and store the reading
func (s *Scraper) Run() error {
	start := time.Now()

	reading, err := s.Scrape(context.Background())
	if err != nil {
		s.log.Error().Err(err).Dur("elapsed", time.Since(start)).Msg("Sentiment scrape failed")
		return err
	}

	if err := s.repo.Upsert(reading); err != nil {
		return fmt.Errorf("failed to store fear greed reading: %w", err)
	}

	s.log.Info().
		Int("value", reading.Value).
		Str("category", reading.Category).
		Dur("elapsed", time.Since(start)).
		Msg("Sentiment scrape finished")

	return nil
}

// Scrape opens the gauge page and reads the dial through the selector
// fallback chain.
func (s *Scraper) Scrape(ctx context.Context) (Reading, error) {
	page, err := s.openGauge(ctx)
	if err != nil {
		return Reading{}, err
	}
	defer page.Close()

	value, err := readValue(page)
	if err != nil {
		return Reading{}, err
	}

	return Reading{
		Date:     s.now().UTC().Format("2006-01-02 15:04:05"),
		Value:    value,
		Category: Categorize(value),
	}, nil
}

// openGauge navigates to the gauge page, trying each selector in the
// fallback chain as the readiness gate. The page's markup drifts, so a
// missing first selector must not keep the later selectors from being tried.
func (s *Scraper) openGauge(ctx context.Context) (*browser.Page, error) {
	var lastErr error
	for _, selector := range valueSelectors {
		page, err := s.driver.Open(ctx, browser.PageSpec{
			URL:           gaugeURL,
			ReadySelector: selector,
		})
		if err == nil {
			return page, nil
		}
		lastErr = err
		s.log.Warn().Err(err).Str("selector", selector).Msg("Gauge readiness selector not found")
	}

	return nil, fmt.Errorf("failed to open fear greed gauge: %w", lastErr)
}

// readValue tries each selector in order and returns the first pure-digit
// readout.
func readValue(page *browser.Page) (int, error) {
	var lastErr error
	for _, selector := range valueSelectors {
		text, err := page.Text(selector)
		if err != nil {
			if !errors.Is(err, browser.ErrFieldMissing) {
				lastErr = err
			}
			continue
		}
		if !digitsOnly.MatchString(text) {
			continue
		}
		return strconv.Atoi(text)
	}

	if lastErr != nil {
		return 0, fmt.Errorf("unable to locate fear value: %w", lastErr)
	}
	return 0, fmt.Errorf("unable to locate fear value: no selector matched a numeric readout")
}
