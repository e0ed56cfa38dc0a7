package class

import (
	"context"

	domain "clubhouse/internal/domain/class"
)

// Store persists Class state.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Class, error)
	Save(ctx context.Context, value domain.Class) error
	Delete(ctx context.Context, id string) error
	ListByClubID(ctx context.Context, clubID string) ([]domain.Class, error)
	CountByClubID(ctx context.Context, clubID string) (int, error)
}
