package parent

import (
	"context"

	domain "clubhouse/internal/domain/parent"
)

// Store persists Parent state.
type Store interface {
	GetByIDAndClub(ctx context.Context, id, clubID string) (domain.Parent, error)
	GetByEmailAndClub(ctx context.Context, email, clubID string) (domain.Parent, error)
	Save(ctx context.Context, value domain.Parent) error
}
