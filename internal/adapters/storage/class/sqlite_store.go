package class

import (
	"context"
	"database/sql"
	"fmt"

	domain "clubhouse/internal/domain/class"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new ClassStore.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

const classColumns = "id, club_id, name, day, start_time, end_time, capacity, coach"

// GetByID retrieves a Class by its ID. The caller is responsible for the
// tenant ownership check against the returned ClubID.
// PRE: id is non-empty
// POST: Returns the entity or an error if not found
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Class, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+classColumns+" FROM class WHERE id = ?", id)
	entity, err := scanClass(row.Scan)
	if err == sql.ErrNoRows {
		return domain.Class{}, fmt.Errorf("class not found: %w", err)
	}
	return entity, err
}

// Save persists a Class to the database.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Class) error {
	query := `INSERT INTO class (id, club_id, name, day, start_time, end_time, capacity, coach)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name=excluded.name,
			day=excluded.day,
			start_time=excluded.start_time,
			end_time=excluded.end_time,
			capacity=excluded.capacity,
			coach=excluded.coach`
	_, err := s.db.ExecContext(ctx, query,
		entity.ID,
		entity.ClubID,
		entity.Name,
		entity.Day,
		entity.StartTime,
		entity.EndTime,
		entity.Capacity,
		entity.Coach,
	)
	return err
}

// Delete removes a Class from the database.
// PRE: id is non-empty
// POST: Entity with given id is removed
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM class WHERE id = ?", id)
	return err
}

// ListByClubID retrieves all Classes for a club, ordered by day and start.
// PRE: clubID is non-empty
// POST: Returns matching entities
func (s *SQLiteStore) ListByClubID(ctx context.Context, clubID string) ([]domain.Class, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+classColumns+" FROM class WHERE club_id = ? ORDER BY day, start_time", clubID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Class
	for rows.Next() {
		entity, err := scanClass(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}

// CountByClubID returns the number of classes in a club.
// PRE: clubID is non-empty
// POST: Returns class count
func (s *SQLiteStore) CountByClubID(ctx context.Context, clubID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM class WHERE club_id = ?", clubID).Scan(&count)
	return count, err
}

// scanClass extracts a Class from a row scanner function.
func scanClass(scan func(dest ...interface{}) error) (domain.Class, error) {
	var entity domain.Class
	err := scan(
		&entity.ID,
		&entity.ClubID,
		&entity.Name,
		&entity.Day,
		&entity.StartTime,
		&entity.EndTime,
		&entity.Capacity,
		&entity.Coach,
	)
	if err != nil {
		return domain.Class{}, err
	}
	return entity, nil
}
