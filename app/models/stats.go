package models

// DailyStats represents registration counts for a single day
type DailyStats struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}
