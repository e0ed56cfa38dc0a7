package member

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	domain "clubhouse/internal/domain/member"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new MemberStore.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

const memberColumns = "id, club_id, parent_id, account_id, first_name, last_name, date_of_birth, class_id, status"

// GetByID retrieves a Member by its ID.
// PRE: id is non-empty
// POST: Returns the entity or an error if not found
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Member, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+memberColumns+" FROM member WHERE id = ?", id)
	entity, err := scanMember(row.Scan)
	if err == sql.ErrNoRows {
		return domain.Member{}, fmt.Errorf("member not found: %w", err)
	}
	return entity, err
}

// Save persists a Member to the database.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Member) error {
	query := `INSERT INTO member (id, club_id, parent_id, account_id, first_name, last_name, date_of_birth, class_id, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			parent_id=excluded.parent_id,
			account_id=excluded.account_id,
			first_name=excluded.first_name,
			last_name=excluded.last_name,
			date_of_birth=excluded.date_of_birth,
			class_id=excluded.class_id,
			status=excluded.status`

	var dob interface{}
	if !entity.DateOfBirth.IsZero() {
		dob = entity.DateOfBirth.Format("2006-01-02")
	}
	_, err := s.db.ExecContext(ctx, query,
		entity.ID,
		entity.ClubID,
		nullable(entity.ParentID),
		nullable(entity.AccountID),
		entity.FirstName,
		entity.LastName,
		dob,
		nullable(entity.ClassID),
		entity.Status,
	)
	return err
}

// Delete removes a Member from the database.
// PRE: id is non-empty
// POST: Entity with given id is removed
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM member WHERE id = ?", id)
	return err
}

// ListByClubID retrieves all Members of a club.
// PRE: clubID is non-empty
// POST: Returns matching entities ordered by name
func (s *SQLiteStore) ListByClubID(ctx context.Context, clubID string) ([]domain.Member, error) {
	return s.list(ctx, "SELECT "+memberColumns+" FROM member WHERE club_id = ? ORDER BY last_name, first_name", clubID)
}

// ListByParentID retrieves the members linked to a parent account, scoped to
// the parent's club. Both ids come from the validated principal, never from
// client input.
// PRE: parentID and clubID are non-empty
// POST: Returns matching entities
func (s *SQLiteStore) ListByParentID(ctx context.Context, parentID, clubID string) ([]domain.Member, error) {
	return s.list(ctx, "SELECT "+memberColumns+" FROM member WHERE parent_id = ? AND club_id = ? ORDER BY last_name, first_name", parentID, clubID)
}

// ListByAccountID retrieves the members linked to a self-service account,
// scoped to the account's club.
// PRE: accountID and clubID are non-empty
// POST: Returns matching entities
func (s *SQLiteStore) ListByAccountID(ctx context.Context, accountID, clubID string) ([]domain.Member, error) {
	return s.list(ctx, "SELECT "+memberColumns+" FROM member WHERE account_id = ? AND club_id = ? ORDER BY last_name, first_name", accountID, clubID)
}

// CountByClubID returns the number of members in a club.
// PRE: clubID is non-empty
// POST: Returns member count
func (s *SQLiteStore) CountByClubID(ctx context.Context, clubID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM member WHERE club_id = ?", clubID).Scan(&count)
	return count, err
}

func (s *SQLiteStore) list(ctx context.Context, query string, args ...interface{}) ([]domain.Member, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Member
	for rows.Next() {
		entity, err := scanMember(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}

// scanMember extracts a Member from a row scanner function.
func scanMember(scan func(dest ...interface{}) error) (domain.Member, error) {
	var entity domain.Member
	var parentID, accountID, dob, classID sql.NullString
	err := scan(
		&entity.ID,
		&entity.ClubID,
		&parentID,
		&accountID,
		&entity.FirstName,
		&entity.LastName,
		&dob,
		&classID,
		&entity.Status,
	)
	if err != nil {
		return domain.Member{}, err
	}
	entity.ParentID = parentID.String
	entity.AccountID = accountID.String
	entity.ClassID = classID.String
	if dob.Valid && dob.String != "" {
		entity.DateOfBirth, _ = time.Parse("2006-01-02", dob.String)
	}
	return entity, nil
}

// nullable maps an empty string to NULL so foreign keys stay consistent.
func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
