package account

import (
	"context"

	domain "clubhouse/internal/domain/account"
)

// Store persists Account state.
type Store interface {
	GetByIDAndClub(ctx context.Context, id, clubID string) (domain.Account, error)
	GetByEmailAndClub(ctx context.Context, email, clubID string) (domain.Account, error)
	Save(ctx context.Context, value domain.Account) error
}
