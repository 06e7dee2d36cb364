package models

// MPriceTick is one price observation as it arrives on the event stream.
type MPriceTick struct {
	Symbol    string  `json:"symbol"`
	Price     float64 `json:"price"`
	Timestamp string  `json:"timestamp"`
}

// MChartPoint is a tick projected for display.
type MChartPoint struct {
	Label string  `json:"label"`
	Price float64 `json:"price"`
}
