package subscription

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	domain "clubhouse/internal/domain/subscription"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SubscriptionStore.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

const subscriptionColumns = "id, club_id, member_id, status, amount_cents, currency, period_end, payment_method"

// GetByID retrieves a Subscription by its ID.
// PRE: id is non-empty
// POST: Returns the entity or an error if not found
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Subscription, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+subscriptionColumns+" FROM subscription WHERE id = ?", id)
	entity, err := scanSubscription(row.Scan)
	if err == sql.ErrNoRows {
		return domain.Subscription{}, fmt.Errorf("subscription not found: %w", err)
	}
	return entity, err
}

// GetByMemberID retrieves the current Subscription for a member.
// PRE: memberID is non-empty
// POST: Returns the newest subscription or an error if none exists
func (s *SQLiteStore) GetByMemberID(ctx context.Context, memberID string) (domain.Subscription, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+subscriptionColumns+" FROM subscription WHERE member_id = ? ORDER BY period_end DESC LIMIT 1", memberID)
	entity, err := scanSubscription(row.Scan)
	if err == sql.ErrNoRows {
		return domain.Subscription{}, fmt.Errorf("subscription not found: %w", err)
	}
	return entity, err
}

// Save persists a Subscription to the database.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Subscription) error {
	query := `INSERT INTO subscription (id, club_id, member_id, status, amount_cents, currency, period_end, payment_method)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			status=excluded.status,
			amount_cents=excluded.amount_cents,
			currency=excluded.currency,
			period_end=excluded.period_end,
			payment_method=excluded.payment_method`

	var periodEnd interface{}
	if !entity.PeriodEnd.IsZero() {
		periodEnd = entity.PeriodEnd.Format(time.RFC3339Nano)
	}
	_, err := s.db.ExecContext(ctx, query,
		entity.ID,
		entity.ClubID,
		entity.MemberID,
		entity.Status,
		entity.AmountCents,
		entity.Currency,
		periodEnd,
		entity.PaymentMethod,
	)
	return err
}

// CountActiveByClubID returns the number of active subscriptions in a club.
// PRE: clubID is non-empty
// POST: Returns active subscription count
func (s *SQLiteStore) CountActiveByClubID(ctx context.Context, clubID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM subscription WHERE club_id = ? AND status = ?", clubID, domain.StatusActive).Scan(&count)
	return count, err
}

// scanSubscription extracts a Subscription from a row scanner function.
func scanSubscription(scan func(dest ...interface{}) error) (domain.Subscription, error) {
	var entity domain.Subscription
	var periodEnd sql.NullString
	err := scan(
		&entity.ID,
		&entity.ClubID,
		&entity.MemberID,
		&entity.Status,
		&entity.AmountCents,
		&entity.Currency,
		&periodEnd,
		&entity.PaymentMethod,
	)
	if err != nil {
		return domain.Subscription{}, err
	}
	if periodEnd.Valid && periodEnd.String != "" {
		entity.PeriodEnd, _ = parseTime(periodEnd.String)
	}
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
