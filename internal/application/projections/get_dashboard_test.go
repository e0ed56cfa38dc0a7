package projections

import (
	"context"
	"errors"
	"testing"
	"time"
)

type countFunc func(ctx context.Context, clubID string) (int, error)

func (f countFunc) CountByClubID(ctx context.Context, clubID string) (int, error) {
	return f(ctx, clubID)
}

func (f countFunc) CountActiveByClubID(ctx context.Context, clubID string) (int, error) {
	return f(ctx, clubID)
}

type rangeCountFunc func(ctx context.Context, clubID, startDate, endDate string) (int, error)

func (f rangeCountFunc) CountByClubIDAndDateRange(ctx context.Context, clubID, startDate, endDate string) (int, error) {
	return f(ctx, clubID, startDate, endDate)
}

func fixedCount(n int) countFunc {
	return func(context.Context, string) (int, error) { return n, nil }
}

func TestQueryDashboard(t *testing.T) {
	origNow := timeNow
	timeNow = func() time.Time { return time.Date(2026, 3, 8, 12, 0, 0, 0, time.UTC) }
	defer func() { timeNow = origNow }()

	var gotStart, gotEnd string
	deps := DashboardDeps{
		MemberStore:       fixedCount(12),
		ClassStore:        fixedCount(3),
		SubscriptionStore: fixedCount(9),
		AttendanceStore: rangeCountFunc(func(_ context.Context, _ string, start, end string) (int, error) {
			gotStart, gotEnd = start, end
			return 41, nil
		}),
	}

	dash, err := QueryDashboard(context.Background(), "club_1", deps)
	if err != nil {
		t.Fatalf("QueryDashboard: %v", err)
	}
	want := Dashboard{Members: 12, Classes: 3, ActiveSubscriptions: 9, AttendanceThisWeek: 41}
	if dash != want {
		t.Errorf("dashboard = %+v, want %+v", dash, want)
	}

	// The attendance window is the trailing seven days, inclusive.
	if gotStart != "2026-03-02" || gotEnd != "2026-03-08" {
		t.Errorf("window = %s..%s, want 2026-03-02..2026-03-08", gotStart, gotEnd)
	}
}

func TestQueryDashboard_PropagatesError(t *testing.T) {
	boom := errors.New("db down")
	deps := DashboardDeps{
		MemberStore:       fixedCount(1),
		ClassStore:        countFunc(func(context.Context, string) (int, error) { return 0, boom }),
		SubscriptionStore: fixedCount(1),
		AttendanceStore: rangeCountFunc(func(context.Context, string, string, string) (int, error) {
			return 1, nil
		}),
	}
	if _, err := QueryDashboard(context.Background(), "club_1", deps); !errors.Is(err, boom) {
		t.Fatalf("error = %v, want db down", err)
	}
}
