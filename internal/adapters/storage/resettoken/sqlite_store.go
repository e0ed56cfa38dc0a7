package resettoken

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	domain "clubhouse/internal/domain/resettoken"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new ResetTokenStore.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Save persists a ResetToken to the database.
// PRE: entity is populated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, entity domain.ResetToken) error {
	query := `INSERT INTO reset_token (id, club_id, principal_kind, principal_id, token, expires_at, used, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET used=excluded.used`
	used := 0
	if entity.Used {
		used = 1
	}
	_, err := s.db.ExecContext(ctx, query,
		entity.ID,
		entity.ClubID,
		entity.PrincipalKind,
		entity.PrincipalID,
		entity.Token,
		entity.ExpiresAt.Format(time.RFC3339Nano),
		used,
		entity.CreatedAt.Format(time.RFC3339Nano),
	)
	return err
}

// GetByToken retrieves a ResetToken by its token value.
// PRE: token is non-empty
// POST: Returns the entity or an error if not found
func (s *SQLiteStore) GetByToken(ctx context.Context, token string) (domain.ResetToken, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, club_id, principal_kind, principal_id, token, expires_at, used, created_at FROM reset_token WHERE token = ?", token)

	var entity domain.ResetToken
	var expiresAt, createdAt string
	var used int
	err := row.Scan(&entity.ID, &entity.ClubID, &entity.PrincipalKind, &entity.PrincipalID, &entity.Token, &expiresAt, &used, &createdAt)
	if err == sql.ErrNoRows {
		return domain.ResetToken{}, fmt.Errorf("reset token not found: %w", err)
	}
	if err != nil {
		return domain.ResetToken{}, err
	}
	entity.Used = used != 0
	entity.ExpiresAt, _ = parseTime(expiresAt)
	entity.CreatedAt, _ = parseTime(createdAt)
	return entity, nil
}

// InvalidateForPrincipal marks all outstanding tokens for a principal as
// used, so only the newest requested link stays redeemable.
// PRE: kind and principalID are non-empty
// POST: All tokens for the principal are marked used
func (s *SQLiteStore) InvalidateForPrincipal(ctx context.Context, kind, principalID string) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE reset_token SET used = 1 WHERE principal_kind = ? AND principal_id = ?", kind, principalID)
	return err
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
