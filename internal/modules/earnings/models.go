package earnings

// Report is one company's earnings calendar entry. Numeric columns stay as
// display text (currency suffix stripped); nothing downstream sorts on them.
type Report struct {
	Ticker          string `json:"ticker"`
	ReportDate      string `json:"report_date"`
	EPSEstimate     string `json:"eps_estimate"`
	ReportedEPS     string `json:"reported_eps"`
	RevenueForecast string `json:"revenue_forecast"`
	ReportedRevenue string `json:"reported_revenue"`
	Time            string `json:"time"`
	MarketCap       string `json:"market_cap"`
}
