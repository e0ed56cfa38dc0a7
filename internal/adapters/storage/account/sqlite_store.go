package account

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	domain "clubhouse/internal/domain/account"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new AccountStore.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

const accountColumns = "id, club_id, email, name, phone, password_hash, session_token, session_expires_at, created_at"

// GetByIDAndClub retrieves an Account by id, scoped to a club. Lookups are
// always club-scoped so a descriptor naming another club's account id never
// resolves.
// PRE: id and clubID are non-empty
// POST: Returns the entity or an error if not found in that club
func (s *SQLiteStore) GetByIDAndClub(ctx context.Context, id, clubID string) (domain.Account, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+accountColumns+" FROM account WHERE id = ? AND club_id = ?", id, clubID)
	entity, err := scanAccount(row.Scan)
	if err == sql.ErrNoRows {
		return domain.Account{}, fmt.Errorf("account not found: %w", err)
	}
	return entity, err
}

// GetByEmailAndClub retrieves an Account by email within a club.
// PRE: email and clubID are non-empty
// POST: Returns the entity or an error if not found
func (s *SQLiteStore) GetByEmailAndClub(ctx context.Context, email, clubID string) (domain.Account, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+accountColumns+" FROM account WHERE email = ? AND club_id = ?", email, clubID)
	entity, err := scanAccount(row.Scan)
	if err == sql.ErrNoRows {
		return domain.Account{}, fmt.Errorf("account not found: %w", err)
	}
	return entity, err
}

// Save persists an Account to the database.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Account) error {
	query := `INSERT INTO account (id, club_id, email, name, phone, password_hash, session_token, session_expires_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			email=excluded.email,
			name=excluded.name,
			phone=excluded.phone,
			password_hash=excluded.password_hash,
			session_token=excluded.session_token,
			session_expires_at=excluded.session_expires_at`

	var expiresAt interface{}
	if !entity.SessionExpiresAt.IsZero() {
		expiresAt = entity.SessionExpiresAt.Format(time.RFC3339Nano)
	}
	_, err := s.db.ExecContext(ctx, query,
		entity.ID,
		entity.ClubID,
		entity.Email,
		entity.Name,
		entity.Phone,
		entity.PasswordHash,
		entity.SessionToken,
		expiresAt,
		entity.CreatedAt.Format(time.RFC3339Nano),
	)
	return err
}

// scanAccount extracts an Account from a row scanner function.
func scanAccount(scan func(dest ...interface{}) error) (domain.Account, error) {
	var entity domain.Account
	var expiresAt sql.NullString
	var createdAt string
	err := scan(
		&entity.ID,
		&entity.ClubID,
		&entity.Email,
		&entity.Name,
		&entity.Phone,
		&entity.PasswordHash,
		&entity.SessionToken,
		&expiresAt,
		&createdAt,
	)
	if err != nil {
		return domain.Account{}, err
	}
	if expiresAt.Valid && expiresAt.String != "" {
		entity.SessionExpiresAt, _ = parseTime(expiresAt.String)
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
