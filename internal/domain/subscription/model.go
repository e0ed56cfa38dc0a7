package subscription

import (
	"errors"
	"time"
)

// Subscription status constants
const (
	StatusActive   = "active"
	StatusPastDue  = "past_due"
	StatusCanceled = "canceled"
)

// Domain errors
var (
	ErrInvalidStatus = errors.New("status must be 'active', 'past_due', or 'canceled'")
	ErrBadAmount     = errors.New("amount cannot be negative")
)

// Subscription is a member's billing subscription. PaymentMethod is staff-only
// detail and must never appear in portal projections.
type Subscription struct {
	ID            string
	ClubID        string
	MemberID      string
	Status        string
	AmountCents   int
	Currency      string
	PeriodEnd     time.Time
	PaymentMethod string
}

// Snapshot is the redacted view of a subscription safe to show portal users.
type Snapshot struct {
	Status      string    `json:"status"`
	AmountCents int       `json:"amountCents"`
	PeriodEnd   time.Time `json:"periodEnd"`
}

// Validate checks if the Subscription has valid data.
// PRE: Subscription struct is initialized
// POST: Returns error if validation fails, nil otherwise
func (s *Subscription) Validate() error {
	if s.MemberID == "" {
		return errors.New("subscription must be associated with a member")
	}
	if s.ClubID == "" {
		return errors.New("subscription must belong to a club")
	}
	if s.Status != StatusActive && s.Status != StatusPastDue && s.Status != StatusCanceled {
		return ErrInvalidStatus
	}
	if s.AmountCents < 0 {
		return ErrBadAmount
	}
	return nil
}

// Redact projects the subscription down to the fields portal users may see.
// INVARIANT: Subscription fields are not mutated; PaymentMethod is dropped
func (s *Subscription) Redact() Snapshot {
	return Snapshot{
		Status:      s.Status,
		AmountCents: s.AmountCents,
		PeriodEnd:   s.PeriodEnd,
	}
}
