package sentiment

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marketdash/marketdash/internal/browser"
)

// failingOpener records every readiness selector it is asked to wait for
type failingOpener struct {
	selectors []string
}

func (o *failingOpener) Open(ctx context.Context, spec browser.PageSpec) (*browser.Page, error) {
	o.selectors = append(o.selectors, spec.ReadySelector)
	return nil, errors.New("page not scrapeable after 60.00s")
}

func TestOpenGaugeTriesEveryReadinessSelector(t *testing.T) {
	opener := &failingOpener{}
	s := &Scraper{driver: opener, log: zerolog.Nop()}

	_, err := s.openGauge(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fear greed gauge")

	// Markup drift in the first selector must not short-circuit the chain
	assert.Equal(t, valueSelectors, opener.selectors)
}
