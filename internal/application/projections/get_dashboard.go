package projections

import (
	"context"
	"sync"
	"time"
)

// DashboardMemberStore defines the member store interface for the dashboard.
type DashboardMemberStore interface {
	CountByClubID(ctx context.Context, clubID string) (int, error)
}

// DashboardClassStore defines the class store interface for the dashboard.
type DashboardClassStore interface {
	CountByClubID(ctx context.Context, clubID string) (int, error)
}

// DashboardSubscriptionStore defines the subscription store interface for the dashboard.
type DashboardSubscriptionStore interface {
	CountActiveByClubID(ctx context.Context, clubID string) (int, error)
}

// DashboardAttendanceStore defines the attendance store interface for the dashboard.
type DashboardAttendanceStore interface {
	CountByClubIDAndDateRange(ctx context.Context, clubID, startDate, endDate string) (int, error)
}

// DashboardDeps holds dependencies for the dashboard projection.
type DashboardDeps struct {
	MemberStore       DashboardMemberStore
	ClassStore        DashboardClassStore
	SubscriptionStore DashboardSubscriptionStore
	AttendanceStore   DashboardAttendanceStore
}

// Dashboard carries the aggregate counts for a club owner's overview.
type Dashboard struct {
	Members             int `json:"members"`
	Classes             int `json:"classes"`
	ActiveSubscriptions int `json:"activeSubscriptions"`
	AttendanceThisWeek  int `json:"attendanceThisWeek"`
}

// timeNow is a variable for testability.
var timeNow = time.Now

// QueryDashboard computes the aggregate counts for a club. The four counts
// are independent reads issued concurrently; the response is produced only
// once all of them complete.
// PRE: clubID identifies the authenticated staff principal's own club
// POST: Returns all counts, or the first error encountered
func QueryDashboard(ctx context.Context, clubID string, deps DashboardDeps) (Dashboard, error) {
	var (
		dash Dashboard
		errs [4]error
		wg   sync.WaitGroup
	)

	now := timeNow()
	weekStart := now.AddDate(0, 0, -6).Format("2006-01-02")
	today := now.Format("2006-01-02")

	wg.Add(4)
	go func() {
		defer wg.Done()
		dash.Members, errs[0] = deps.MemberStore.CountByClubID(ctx, clubID)
	}()
	go func() {
		defer wg.Done()
		dash.Classes, errs[1] = deps.ClassStore.CountByClubID(ctx, clubID)
	}()
	go func() {
		defer wg.Done()
		dash.ActiveSubscriptions, errs[2] = deps.SubscriptionStore.CountActiveByClubID(ctx, clubID)
	}()
	go func() {
		defer wg.Done()
		dash.AttendanceThisWeek, errs[3] = deps.AttendanceStore.CountByClubIDAndDateRange(ctx, clubID, weekStart, today)
	}()
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return Dashboard{}, err
		}
	}
	return dash, nil
}
