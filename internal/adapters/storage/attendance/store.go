package attendance

import (
	"context"

	domain "clubhouse/internal/domain/attendance"
)

// Store persists Attendance state.
type Store interface {
	Save(ctx context.Context, value domain.Attendance) error
	ListRecentByMemberID(ctx context.Context, memberID string, limit int) ([]domain.Attendance, error)
	CountByClubIDAndDateRange(ctx context.Context, clubID, startDate, endDate string) (int, error)
}
