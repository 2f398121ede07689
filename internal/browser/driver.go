package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog"
)

// Config holds headless browser settings
type Config struct {
	Headless        bool
	NavigateTimeout time.Duration // initial navigation + readiness wait
	SelectorTimeout time.Duration // individual selector waits
}

// Driver owns a headless Chrome process shared by the browser-driven scrapers.
// Each Open() call gets its own tab; jobs never share page state.
type Driver struct {
	allocCtx    context.Context
	allocCancel context.CancelFunc
	cfg         Config
	log         zerolog.Logger
}

// NewDriver creates a new browser driver
func NewDriver(cfg Config, log zerolog.Logger) *Driver {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.Headless),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-setuid-sandbox", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("ignore-certificate-errors", true),
		chromedp.Flag("window-size", "1920,1080"),
	)

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)

	return &Driver{
		allocCtx:    allocCtx,
		allocCancel: allocCancel,
		cfg:         cfg,
		log:         log.With().Str("component", "browser").Logger(),
	}
}

// Close releases the browser process
func (d *Driver) Close() {
	d.allocCancel()
}

// PageSpec describes how to reach a scrapeable page
type PageSpec struct {
	URL string
	// ReadySelector is the DOM landmark that must be visible before any
	// extraction happens. Navigation never relies on a fixed sleep alone.
	ReadySelector string
}

// Open navigates a fresh tab to the target URL and waits for the readiness
// marker. On any failure the tab is released and the caller must not proceed
// to extraction.
func (d *Driver) Open(ctx context.Context, spec PageSpec) (*Page, error) {
	tabCtx, tabCancel := chromedp.NewContext(d.allocCtx)

	start := time.Now()
	navCtx, navCancel := context.WithTimeout(tabCtx, d.cfg.NavigateTimeout)
	defer navCancel()

	err := chromedp.Run(navCtx,
		chromedp.Navigate(spec.URL),
		chromedp.WaitVisible(spec.ReadySelector, chromedp.ByQuery),
	)
	if err != nil {
		tabCancel()
		return nil, fmt.Errorf("page not scrapeable after %.2fs: %w", time.Since(start).Seconds(), err)
	}

	d.log.Debug().
		Str("url", spec.URL).
		Dur("elapsed", time.Since(start)).
		Msg("Page ready")

	return &Page{
		ctx:             tabCtx,
		cancel:          tabCancel,
		selectorTimeout: d.cfg.SelectorTimeout,
		log:             d.log,
	}, nil
}
