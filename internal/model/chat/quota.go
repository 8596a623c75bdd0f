package chat

// QuotaRecord tracks how many doubts a user has submitted today. LastReset is
// a calendar date in "2006-01-02" form; when it differs from the current day
// the counter is hard-reset, not incremented.
type QuotaRecord struct {
	UserID     string `json:"userId"`
	DailyCount int    `json:"dailyCount"`
	LastReset  string `json:"lastReset"`
}
