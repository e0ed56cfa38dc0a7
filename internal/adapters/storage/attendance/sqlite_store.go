package attendance

import (
	"context"
	"database/sql"

	domain "clubhouse/internal/domain/attendance"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new AttendanceStore.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

const attendanceColumns = "id, club_id, member_id, class_id, date, status"

// Save persists an Attendance record to the database.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Attendance) error {
	query := `INSERT INTO attendance (id, club_id, member_id, class_id, date, status)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			class_id=excluded.class_id,
			date=excluded.date,
			status=excluded.status`

	var classID interface{}
	if entity.ClassID != "" {
		classID = entity.ClassID
	}
	_, err := s.db.ExecContext(ctx, query,
		entity.ID,
		entity.ClubID,
		entity.MemberID,
		classID,
		entity.Date,
		entity.Status,
	)
	return err
}

// ListRecentByMemberID retrieves a member's newest attendance records,
// newest first.
// PRE: memberID is non-empty, limit > 0
// POST: Returns at most limit entities ordered by date descending
func (s *SQLiteStore) ListRecentByMemberID(ctx context.Context, memberID string, limit int) ([]domain.Attendance, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+attendanceColumns+" FROM attendance WHERE member_id = ? ORDER BY date DESC, id DESC LIMIT ?",
		memberID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Attendance
	for rows.Next() {
		var entity domain.Attendance
		var classID sql.NullString
		if err := rows.Scan(&entity.ID, &entity.ClubID, &entity.MemberID, &classID, &entity.Date, &entity.Status); err != nil {
			return nil, err
		}
		entity.ClassID = classID.String
		results = append(results, entity)
	}
	return results, rows.Err()
}

// CountByClubIDAndDateRange counts attendance records in a club within an
// inclusive date range.
// PRE: dates are YYYY-MM-DD
// POST: Returns matching record count
func (s *SQLiteStore) CountByClubIDAndDateRange(ctx context.Context, clubID, startDate, endDate string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM attendance WHERE club_id = ? AND date >= ? AND date <= ?",
		clubID, startDate, endDate).Scan(&count)
	return count, err
}
