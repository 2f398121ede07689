package earnings

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marketdash/marketdash/internal/browser"
)

// fakeRow implements browser.RowHandle without a live page
type fakeRow struct {
	text  map[string]string
	attrs map[string]string
	errs  map[string]error
}

func (f fakeRow) Text(selector string) (string, error) {
	if err, ok := f.errs[selector]; ok {
		return "", err
	}
	v, ok := f.text[selector]
	if !ok {
		return "", browser.ErrFieldMissing
	}
	return v, nil
}

func (f fakeRow) TextAll(selector string) ([]string, error) {
	v, err := f.Text(selector)
	if errors.Is(err, browser.ErrFieldMissing) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return []string{v}, nil
}

func (f fakeRow) Attr(selector, name string) (string, error) {
	v, ok := f.attrs[selector+"@"+name]
	if !ok {
		return "", browser.ErrFieldMissing
	}
	return v, nil
}

func TestNormalizeTicker(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "first line of multi-line cell",
			raw:  "AAPL\nApple Inc",
			want: "AAPL",
		},
		{
			name: "trailing D marker stripped",
			raw:  "ABCD\nSome Company",
			want: "ABC",
		},
		{
			name: "plain ticker unchanged",
			raw:  "MSFT",
			want: "MSFT",
		},
		{
			name: "surrounding whitespace trimmed",
			raw:  " TSLA ",
			want: "TSLA",
		},
		{
			name: "single line with D marker",
			raw:  "XYZD",
			want: "XYZ",
		},
		{
			name: "empty cell",
			raw:  "",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeTicker(tt.raw))
		})
	}
}

func TestTrimCurrency(t *testing.T) {
	assert.Equal(t, "3.45", trimCurrency("3.45 USD"))
	assert.Equal(t, "3.45", trimCurrency("3.45USD"))
	assert.Equal(t, "12.5B", trimCurrency("12.5B"))
	assert.Equal(t, "N/A", trimCurrency("N/A"))
}

func TestExtractReport(t *testing.T) {
	row := fakeRow{
		text: map[string]string{
			"[data-field-key='name']":                                "NVDA\nNVIDIA Corporation",
			"[data-field-key='earnings_release_next_date']":          "2026-08-26",
			"[data-field-key='earnings_per_share_forecast_next_fq']": "1.01 USD",
			"[data-field-key='earnings_per_share_fq']":               "0.89 USD",
			"[data-field-key='revenue_forecast_next_fq']":            "46.02B USD",
			"[data-field-key='revenue_fq']":                          "44.06B USD",
			"[data-field-key='market_cap_basic']":                    "4.34T USD",
		},
		attrs: map[string]string{
			"[data-field-key='earnings_release_next_time']@title": "After Market Close",
		},
	}

	report, err := ExtractReport(row)
	require.NoError(t, err)

	assert.Equal(t, "NVDA", report.Ticker)
	assert.Equal(t, "2026-08-26", report.ReportDate)
	assert.Equal(t, "1.01", report.EPSEstimate)
	assert.Equal(t, "0.89", report.ReportedEPS)
	assert.Equal(t, "46.02B", report.RevenueForecast)
	assert.Equal(t, "44.06B", report.ReportedRevenue)
	assert.Equal(t, "After Market Close", report.Time)
	assert.Equal(t, "4.34T", report.MarketCap)
}

func TestExtractReportMissingFieldsBecomeSentinels(t *testing.T) {
	row := fakeRow{
		text: map[string]string{
			"[data-field-key='name']": "AAPL\nApple Inc",
		},
	}

	report, err := ExtractReport(row)
	require.NoError(t, err)

	assert.Equal(t, "AAPL", report.Ticker)
	assert.Equal(t, "N/A", report.ReportDate)
	assert.Equal(t, "N/A", report.EPSEstimate)
	assert.Equal(t, "N/A", report.ReportedEPS)
	assert.Equal(t, "N/A", report.RevenueForecast)
	assert.Equal(t, "N/A", report.ReportedRevenue)
	assert.Equal(t, "Unknown", report.Time)
	assert.Equal(t, "N/A", report.MarketCap)
}

func TestExtractReportMissingTickerFailsRow(t *testing.T) {
	_, err := ExtractReport(fakeRow{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ticker cell")
}

func TestExtractReportLookupFailureFailsRow(t *testing.T) {
	row := fakeRow{
		text: map[string]string{
			"[data-field-key='name']": "AAPL",
		},
		errs: map[string]error{
			"[data-field-key='earnings_per_share_fq']": errors.New("tab crashed"),
		},
	}

	_, err := ExtractReport(row)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reported eps")
}
