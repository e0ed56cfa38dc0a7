package subscription

import (
	"context"

	domain "clubhouse/internal/domain/subscription"
)

// Store persists Subscription state.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Subscription, error)
	GetByMemberID(ctx context.Context, memberID string) (domain.Subscription, error)
	Save(ctx context.Context, value domain.Subscription) error
	CountActiveByClubID(ctx context.Context, clubID string) (int, error)
}
