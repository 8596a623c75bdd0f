package chat

import "time"

// Turn roles. Every accepted request produces exactly one user turn and one
// mentor turn, in that order.
const (
	RoleUser   = "user"
	RoleMentor = "mentor"
)

// Turn persists a single message of a session transcript. Insertion order is
// significant: the sequence is replayed to providers as conversation context.
type Turn struct {
	ID        string    `json:"id"`
	SessionID string    `json:"sessionId"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}
