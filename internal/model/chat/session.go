package chat

import "time"

// Session statuses. Closing a session is an external concern; this core only
// creates open sessions and appends to them.
const (
	StatusOpen   = "open"
	StatusClosed = "closed"
)

// Session is one persisted doubt conversation owned by a single student.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Title     string    `json:"title"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}
