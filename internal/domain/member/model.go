package member

import (
	"errors"
	"strings"
	"time"
)

// Max length constants for user-editable fields.
const (
	MaxNameLength = 100
)

// Member status constants
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
	StatusArchived = "archived"
)

// Domain errors
var (
	ErrEmptyFirstName = errors.New("member first name cannot be empty")
	ErrEmptyClub      = errors.New("member must belong to a club")
	ErrInvalidStatus  = errors.New("status must be 'active', 'inactive', or 'archived'")
)

// Member holds state for a club member. A member may be linked to a parent
// portal account, a self-service portal account, both, or neither.
type Member struct {
	ID          string
	ClubID      string
	ParentID    string
	AccountID   string
	FirstName   string
	LastName    string
	DateOfBirth time.Time
	ClassID     string
	Status      string
}

// Validate checks if the Member has valid data.
// PRE: Member struct is initialized
// POST: Returns error if validation fails, nil otherwise
func (m *Member) Validate() error {
	if strings.TrimSpace(m.FirstName) == "" {
		return ErrEmptyFirstName
	}
	if len(m.FirstName) > MaxNameLength || len(m.LastName) > MaxNameLength {
		return errors.New("member name cannot exceed 100 characters")
	}
	if m.ClubID == "" {
		return ErrEmptyClub
	}
	if m.Status != StatusActive && m.Status != StatusInactive && m.Status != StatusArchived {
		return ErrInvalidStatus
	}
	return nil
}

// IsActive returns true if the member is currently active.
// INVARIANT: Status field is not mutated
func (m *Member) IsActive() bool {
	return m.Status == StatusActive
}
