package account

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
	ErrEmptyClub        = errors.New("account must belong to a club")
	ErrEmptyPassword    = errors.New("password cannot be empty")
	ErrPasswordTooShort = errors.New("password must be at least 12 characters")
	ErrWrongPassword    = errors.New("incorrect password")
)

// Account is a member self-service portal account scoped to exactly one club.
// It mirrors the parent account mechanism: a stored session token plus expiry
// that presented cookies are checked against on every request.
type Account struct {
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

// Validate checks if the Account has valid data.
// PRE: Account struct is populated
// POST: Returns nil if valid, error otherwise
func (a *Account) Validate() error {
	if strings.TrimSpace(a.Email) == "" {
		return ErrEmptyEmail
	}
	if len(a.Email) > MaxEmailLength {
		return errors.New("email cannot exceed 254 characters")
	}
	if !strings.Contains(a.Email, "@") {
		return ErrInvalidEmail
	}
	if a.ClubID == "" {
		return ErrEmptyClub
	}
	if len(a.Name) > MaxNameLength {
		return errors.New("name cannot exceed 100 characters")
	}
	if len(a.Phone) > MaxPhoneLength {
		return errors.New("phone cannot exceed 30 characters")
	}
	return nil
}

// SetPassword hashes and stores a password using bcrypt with cost 12.
// PRE: plaintext is non-empty and >= 12 characters
// POST: PasswordHash is set to bcrypt hash
func (a *Account) SetPassword(plaintext string) error {
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
	a.PasswordHash = string(hash)
	return nil
}

// CheckPassword verifies a plaintext password against the stored hash.
// PRE: PasswordHash is set
// INVARIANT: Account fields are not mutated
func (a *Account) CheckPassword(plaintext string) error {
	if a.PasswordHash == "" {
		return ErrWrongPassword
	}
	if bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(plaintext)) != nil {
		return ErrWrongPassword
	}
	return nil
}

// StartSession stores a fresh session token valid for the given duration.
// PRE: token is non-empty
// POST: SessionToken and SessionExpiresAt are replaced
func (a *Account) StartSession(token string, now time.Time, ttl time.Duration) {
	a.SessionToken = token
	a.SessionExpiresAt = now.Add(ttl)
}

// EndSession clears the stored session token and expiry.
// POST: no cookie can validate against this account until the next login
func (a *Account) EndSession() {
	a.SessionToken = ""
	a.SessionExpiresAt = time.Time{}
}
