package holidays

// Holiday is one exchange holiday or short session
type Holiday struct {
	Name     string `json:"name"`
	Date     string `json:"date"`
	Status   string `json:"status"`
	Exchange string `json:"exchange"`
	Year     int    `json:"year"`
}
