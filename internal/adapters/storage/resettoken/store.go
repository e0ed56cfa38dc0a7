package resettoken

import (
	"context"

	domain "clubhouse/internal/domain/resettoken"
)

// Store persists ResetToken state.
type Store interface {
	Save(ctx context.Context, value domain.ResetToken) error
	GetByToken(ctx context.Context, token string) (domain.ResetToken, error)
	InvalidateForPrincipal(ctx context.Context, kind, principalID string) error
}
