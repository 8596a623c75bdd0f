package quota_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/arjunvk/mentorloop/internal/model/chat"
	"github.com/arjunvk/mentorloop/internal/service/quota"
	"github.com/arjunvk/mentorloop/internal/store"
)

func TestCheckAndIncrementMonotonic(t *testing.T) {
	repo := store.NewMemory()
	tracker := quota.NewTracker(repo, 3)
	ctx := context.Background()
	today := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)

	for i := 1; i <= 3; i++ {
		st, err := tracker.CheckAndIncrement(ctx, "stu_1", today)
		if err != nil {
			t.Fatalf("request %d: unexpected err: %v", i, err)
		}
		if !st.Allowed {
			t.Fatalf("request %d: expected allowed", i)
		}
		if st.Remaining != 3-i {
			t.Fatalf("request %d: remaining = %d, want %d", i, st.Remaining, 3-i)
		}
	}

	rec, err := repo.GetQuota(ctx, "stu_1")
	if err != nil {
		t.Fatalf("GetQuota err: %v", err)
	}
	if rec.DailyCount != 3 {
		t.Fatalf("dailyCount = %d, want 3", rec.DailyCount)
	}

	st, err := tracker.CheckAndIncrement(ctx, "stu_1", today)
	if !errors.Is(err, quota.ErrLimitReached) {
		t.Fatalf("expected ErrLimitReached, got %v", err)
	}
	if st.Allowed {
		t.Fatal("expected not allowed past the limit")
	}

	// Rejection must not mutate the counter.
	rec, _ = repo.GetQuota(ctx, "stu_1")
	if rec.DailyCount != 3 {
		t.Fatalf("dailyCount after rejection = %d, want 3", rec.DailyCount)
	}
}

func TestRolloverHardResets(t *testing.T) {
	repo := store.NewMemory()
	tracker := quota.NewTracker(repo, 50)
	ctx := context.Background()

	yesterday := time.Date(2026, 8, 29, 23, 0, 0, 0, time.UTC)
	for i := 0; i < 50; i++ {
		if _, err := tracker.CheckAndIncrement(ctx, "stu_1", yesterday); err != nil {
			t.Fatalf("warm-up request %d: %v", i, err)
		}
	}
	if _, err := tracker.CheckAndIncrement(ctx, "stu_1", yesterday); !errors.Is(err, quota.ErrLimitReached) {
		t.Fatalf("expected limit on day one, got %v", err)
	}

	today := yesterday.Add(2 * time.Hour) // past midnight
	st, err := tracker.CheckAndIncrement(ctx, "stu_1", today)
	if err != nil {
		t.Fatalf("first request of new day: %v", err)
	}
	if !st.Allowed || st.Remaining != 49 {
		t.Fatalf("got %+v, want allowed with 49 remaining", st)
	}

	rec, _ := repo.GetQuota(ctx, "stu_1")
	if rec.DailyCount != 1 {
		t.Fatalf("dailyCount after rollover = %d, want 1", rec.DailyCount)
	}
	if rec.LastReset != today.Format("2006-01-02") {
		t.Fatalf("lastReset = %q, want today", rec.LastReset)
	}
}

type brokenQuotaRepo struct {
	store.Repository
}

func (brokenQuotaRepo) MutateQuota(context.Context, string, func(*chat.QuotaRecord) error) (chat.QuotaRecord, error) {
	return chat.QuotaRecord{}, errors.New("store offline")
}

func TestStoreFailureFailsClosed(t *testing.T) {
	tracker := quota.NewTracker(brokenQuotaRepo{}, 50)

	st, err := tracker.CheckAndIncrement(context.Background(), "stu_1", time.Now())
	if err == nil {
		t.Fatal("expected error when the store is unreachable")
	}
	if errors.Is(err, quota.ErrLimitReached) {
		t.Fatal("store failure must not masquerade as quota exhaustion")
	}
	if st.Allowed {
		t.Fatal("store failure must never allow the request")
	}
}
