package attendance

import (
	"errors"
)

// Attendance status constants
const (
	StatusPresent = "present"
	StatusAbsent  = "absent"
	StatusLate    = "late"
)

// Attendance records whether a member attended a class on a given date.
type Attendance struct {
	ID       string
	ClubID   string
	MemberID string
	ClassID  string
	Date     string // YYYY-MM-DD format
	Status   string
}

// Validate checks if the Attendance has valid data.
// PRE: Attendance struct is initialized
// POST: Returns error if validation fails, nil otherwise
func (a *Attendance) Validate() error {
	if a.MemberID == "" {
		return errors.New("attendance must be associated with a member")
	}
	if a.ClubID == "" {
		return errors.New("attendance must belong to a club")
	}
	if a.Date == "" {
		return errors.New("attendance date must be set")
	}
	if a.Status != StatusPresent && a.Status != StatusAbsent && a.Status != StatusLate {
		return errors.New("status must be 'present', 'absent', or 'late'")
	}
	return nil
}
