package premarket

// Direction tags a mover as a pre-market gainer or loser. It lives on the
// row (not a separate table) so one latest-date query covers both lists.
type Direction string

const (
	Gainer Direction = "gainer"
	Loser  Direction = "loser"
)

// Mover is one pre-market gainer or loser snapshot. Price fields are numeric
// because consumers sort and filter on them.
type Mover struct {
	Symbol        string    `json:"symbol"`
	Price         float64   `json:"price"`
	Change        float64   `json:"change"`
	ChangePercent float64   `json:"change_percent"`
	Volume        int64     `json:"volume"`
	Direction     Direction `json:"direction"`
	Date          string    `json:"date"`
}

// Movers groups a day's movers by direction for the read API
type Movers struct {
	Gainers []Mover `json:"gainers"`
	Losers  []Mover `json:"losers"`
}
