package sentiment

// Reading is one fear & greed gauge sample
type Reading struct {
	Date     string `json:"date"`
	Value    int    `json:"fear_value"`
	Category string `json:"category"`
}

// Categorize maps a gauge value to its category. Total over all integers:
// anything outside [0,100] is "Unknown".
func Categorize(value int) string {
	switch {
	case value >= 0 && value <= 25:
		return "Extreme Fear"
	case value >= 26 && value <= 44:
		return "Fear"
	case value >= 45 && value <= 55:
		return "Neutral"
	case value >= 56 && value <= 74:
		return "Greed"
	case value >= 75 && value <= 100:
		return "Extreme Greed"
	default:
		return "Unknown"
	}
}
