package club

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	domain "clubhouse/internal/domain/club"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new ClubStore.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

const clubColumns = "id, name, slug, owner_subject, contact_email, created_at"

// GetByID retrieves a Club by its ID.
// PRE: id is non-empty
// POST: Returns the entity or an error if not found
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Club, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+clubColumns+" FROM club WHERE id = ?", id)
	entity, err := scanClub(row.Scan)
	if err == sql.ErrNoRows {
		return domain.Club{}, fmt.Errorf("club not found: %w", err)
	}
	return entity, err
}

// GetByOwnerSubject retrieves the Club owned by an external identity subject.
// PRE: subject is non-empty
// POST: Returns the entity or an error if not found
func (s *SQLiteStore) GetByOwnerSubject(ctx context.Context, subject string) (domain.Club, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+clubColumns+" FROM club WHERE owner_subject = ?", subject)
	entity, err := scanClub(row.Scan)
	if err == sql.ErrNoRows {
		return domain.Club{}, fmt.Errorf("club not found: %w", err)
	}
	return entity, err
}

// Save persists a Club to the database.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Club) error {
	query := `INSERT INTO club (id, name, slug, owner_subject, contact_email, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name=excluded.name,
			slug=excluded.slug,
			owner_subject=excluded.owner_subject,
			contact_email=excluded.contact_email`
	_, err := s.db.ExecContext(ctx, query,
		entity.ID,
		entity.Name,
		entity.Slug,
		entity.OwnerSubject,
		entity.ContactEmail,
		entity.CreatedAt.Format(time.RFC3339Nano),
	)
	return err
}

// scanClub extracts a Club from a row scanner function.
func scanClub(scan func(dest ...interface{}) error) (domain.Club, error) {
	var entity domain.Club
	var createdAt string
	err := scan(
		&entity.ID,
		&entity.Name,
		&entity.Slug,
		&entity.OwnerSubject,
		&entity.ContactEmail,
		&createdAt,
	)
	if err != nil {
		return domain.Club{}, err
	}
	entity.CreatedAt, _ = parseTime(createdAt)
	return entity, nil
}

func parseTime(s string) (time.Time, error) {
	formats := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02 15:04:05",
	}
	for _, f := range formats {
		t, err := time.Parse(f, s)
		if err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse time: %s", s)
}
