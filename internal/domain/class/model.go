package class

import (
	"errors"
	"strings"
)

// Max length constants for user-editable fields.
const (
	MaxNameLength = 100
)

// Valid days for a scheduled class.
var ValidDays = []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

// Domain errors
var (
	ErrEmptyName   = errors.New("class name cannot be empty")
	ErrEmptyClub   = errors.New("class must belong to a club")
	ErrInvalidDay  = errors.New("day must be a lowercase weekday name")
	ErrBadCapacity = errors.New("capacity cannot be negative")
)

// Class is a recurring scheduled class within a club.
type Class struct {
	ID        string
	ClubID    string
	Name      string
	Day       string
	StartTime string
	EndTime   string
	Capacity  int
	Coach     string
}

// Validate checks if the Class has valid data.
// PRE: Class struct is populated
// POST: Returns nil if valid, error otherwise
func (c *Class) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if len(c.Name) > MaxNameLength {
		return errors.New("class name cannot exceed 100 characters")
	}
	if c.ClubID == "" {
		return ErrEmptyClub
	}
	if c.Day != "" && !isValidDay(c.Day) {
		return ErrInvalidDay
	}
	if c.Capacity < 0 {
		return ErrBadCapacity
	}
	return nil
}

func isValidDay(day string) bool {
	for _, d := range ValidDays {
		if d == day {
			return true
		}
	}
	return false
}
