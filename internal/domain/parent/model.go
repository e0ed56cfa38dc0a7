package parent

import (
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Max length constants for user-editable fields.
const (
	MaxEmailLength = 254
	MaxNameLength  = 100
	MaxPhoneLength = 30
)

// Domain errors
var (
	ErrEmptyEmail       = errors.New("email cannot be empty")
	ErrInvalidEmail     = errors.New("email must contain '@'")
	ErrEmptyClub        = errors.New("parent must belong to a club")
	ErrEmptyPassword    = errors.New("password cannot be empty")
	ErrPasswordTooShort = errors.New("password must be at least 12 characters")
	ErrWrongPassword    = errors.New("incorrect password")
)

// Parent is a parent portal account scoped to exactly one club. The stored
// session token and expiry are the single source of truth for portal
// authentication: the cookie is only a claim checked against them.
type Parent struct {
	ID               string
	ClubID           string
	Email            string
	Name             string
	Phone            string
	PasswordHash     string
	SessionToken     string
	SessionExpiresAt time.Time
	CreatedAt        time.Time
}

// Validate checks if the Parent has valid data.
// PRE: Parent struct is populated
// POST: Returns nil if valid, error otherwise
func (p *Parent) Validate() error {
	if strings.TrimSpace(p.Email) == "" {
		return ErrEmptyEmail
	}
	if len(p.Email) > MaxEmailLength {
		return errors.New("email cannot exceed 254 characters")
	}
	if !strings.Contains(p.Email, "@") {
		return ErrInvalidEmail
	}
	if p.ClubID == "" {
		return ErrEmptyClub
	}
	if len(p.Name) > MaxNameLength {
		return errors.New("name cannot exceed 100 characters")
	}
	if len(p.Phone) > MaxPhoneLength {
		return errors.New("phone cannot exceed 30 characters")
	}
	return nil
}

// SetPassword hashes and stores a password using bcrypt with cost 12.
// PRE: plaintext is non-empty and >= 12 characters
// POST: PasswordHash is set to bcrypt hash
func (p *Parent) SetPassword(plaintext string) error {
	if plaintext == "" {
		return ErrEmptyPassword
	}
	if len(plaintext) < 12 {
		return ErrPasswordTooShort
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), 12)
	if err != nil {
		return err
	}
	p.PasswordHash = string(hash)
	return nil
}

// CheckPassword verifies a plaintext password against the stored hash.
// PRE: PasswordHash is set
// INVARIANT: Parent fields are not mutated
func (p *Parent) CheckPassword(plaintext string) error {
	if p.PasswordHash == "" {
		return ErrWrongPassword
	}
	if bcrypt.CompareHashAndPassword([]byte(p.PasswordHash), []byte(plaintext)) != nil {
		return ErrWrongPassword
	}
	return nil
}

// StartSession stores a fresh session token valid for the given duration.
// PRE: token is non-empty
// POST: SessionToken and SessionExpiresAt are replaced; any previously issued
// cookie stops validating on its next request
func (p *Parent) StartSession(token string, now time.Time, ttl time.Duration) {
	p.SessionToken = token
	p.SessionExpiresAt = now.Add(ttl)
}

// EndSession clears the stored session token and expiry.
// POST: no cookie can validate against this account until the next login
func (p *Parent) EndSession() {
	p.SessionToken = ""
	p.SessionExpiresAt = time.Time{}
}
