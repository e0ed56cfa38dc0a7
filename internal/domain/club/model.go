package club

import (
	"errors"
	"strings"
	"time"
)

// Max length constants for user-editable fields.
const (
	MaxNameLength = 120
)

// Domain errors
var (
	ErrEmptyName      = errors.New("club name cannot be empty")
	ErrEmptyOwner     = errors.New("club owner subject cannot be empty")
	ErrInvalidContact = errors.New("club contact email must contain '@'")
)

// Club is the tenant boundary: every class, member, subscription, and
// attendance row belongs to exactly one club.
type Club struct {
	ID           string
	Name         string
	Slug         string
	OwnerSubject string
	ContactEmail string
	CreatedAt    time.Time
}

// Validate checks if the Club has valid data.
// PRE: Club struct is populated
// POST: Returns nil if valid, error otherwise
func (c *Club) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if len(c.Name) > MaxNameLength {
		return errors.New("club name cannot exceed 120 characters")
	}
	if strings.TrimSpace(c.OwnerSubject) == "" {
		return ErrEmptyOwner
	}
	if c.ContactEmail != "" && !strings.Contains(c.ContactEmail, "@") {
		return ErrInvalidContact
	}
	return nil
}

// OwnedBy returns true if the given external identity subject owns this club.
// Every staff operation must pass this check before touching club data.
// INVARIANT: Club fields are not mutated
func (c *Club) OwnedBy(subject string) bool {
	return subject != "" && c.OwnerSubject == subject
}
