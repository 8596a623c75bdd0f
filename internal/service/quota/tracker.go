// Package quota enforces the per-user daily doubt limit.
package quota

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/arjunvk/mentorloop/internal/model/chat"
	"github.com/arjunvk/mentorloop/internal/store"
)

// ErrLimitReached reports that the user has spent today's quota.
var ErrLimitReached = errors.New("daily doubt limit reached")

const dayLayout = "2006-01-02"

// Status is the outcome of an accepted or rejected quota check.
type Status struct {
	Allowed   bool
	Remaining int
}

// Tracker gates requests against a daily per-user counter with midnight
// rollover. All mutation goes through the repository's atomic read-modify-
// write, so racing requests for the same user serialize at the store.
type Tracker struct {
	repo  store.Repository
	limit int
}

// NewTracker builds a Tracker with the configured daily limit.
func NewTracker(repo store.Repository, limit int) *Tracker {
	return &Tracker{repo: repo, limit: limit}
}

// CheckAndIncrement consumes one unit of today's quota. A stored date other
// than today hard-resets the counter to 1. A store failure fails closed: the
// caller must reject the request rather than silently allow it.
func (t *Tracker) CheckAndIncrement(ctx context.Context, userID string, today time.Time) (Status, error) {
	day := today.Format(dayLayout)

	rec, err := t.repo.MutateQuota(ctx, userID, func(rec *chat.QuotaRecord) error {
		if rec.LastReset != day {
			rec.DailyCount = 1
			rec.LastReset = day
			return nil
		}
		if rec.DailyCount >= t.limit {
			return ErrLimitReached
		}
		rec.DailyCount++
		return nil
	})
	if errors.Is(err, ErrLimitReached) {
		return Status{Allowed: false, Remaining: 0}, ErrLimitReached
	}
	if err != nil {
		return Status{}, fmt.Errorf("quota check: %w", err)
	}

	return Status{Allowed: true, Remaining: t.limit - rec.DailyCount}, nil
}

// Limit returns the configured daily limit.
func (t *Tracker) Limit() int {
	return t.limit
}
