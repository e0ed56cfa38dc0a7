package club

import (
	"context"

	domain "clubhouse/internal/domain/club"
)

// Store persists Club state.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Club, error)
	GetByOwnerSubject(ctx context.Context, subject string) (domain.Club, error)
	Save(ctx context.Context, value domain.Club) error
}
