package economic

// Event is one economic calendar entry. Actual/forecast/prior keep the
// source's display text, units included.
type Event struct {
	Date     string `json:"date"`
	Time     string `json:"time"`
	Country  string `json:"country"`
	Event    string `json:"event"`
	Actual   string `json:"actual"`
	Forecast string `json:"forecast"`
	Prior    string `json:"prior"`
}
