package member

import (
	"context"

	domain "clubhouse/internal/domain/member"
)

// Store persists Member state.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Member, error)
	Save(ctx context.Context, value domain.Member) error
	Delete(ctx context.Context, id string) error
	ListByClubID(ctx context.Context, clubID string) ([]domain.Member, error)
	ListByParentID(ctx context.Context, parentID, clubID string) ([]domain.Member, error)
	ListByAccountID(ctx context.Context, accountID, clubID string) ([]domain.Member, error)
	CountByClubID(ctx context.Context, clubID string) (int, error)
}
