package resettoken

import (
	"errors"
	"time"
)

// Principal kinds a reset token can belong to.
const (
	KindParent  = "parent"
	KindAccount = "account"
)

// Domain errors
var (
	ErrExpired = errors.New("reset link has expired")
	ErrUsed    = errors.New("reset link has already been used")
)

// ResetToken is a single-use, time-limited credential-reset token for a
// portal principal.
type ResetToken struct {
	ID            string
	ClubID        string
	PrincipalKind string
	PrincipalID   string
	Token         string
	ExpiresAt     time.Time
	Used          bool
	CreatedAt     time.Time
}

// Usable reports whether the token can still redeem a reset.
// INVARIANT: Token fields are not mutated
func (t *ResetToken) Usable(now time.Time) error {
	if t.Used {
		return ErrUsed
	}
	if now.After(t.ExpiresAt) {
		return ErrExpired
	}
	return nil
}

// Invalidate marks the token as used.
// POST: Used is set to true
func (t *ResetToken) Invalidate() {
	t.Used = true
}
