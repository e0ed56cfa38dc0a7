package projections

import (
	"context"
	"database/sql"
	"errors"

	accountDomain "clubhouse/internal/domain/account"
	"clubhouse/internal/domain/attendance"
	classDomain "clubhouse/internal/domain/class"
	clubDomain "clubhouse/internal/domain/club"
	memberDomain "clubhouse/internal/domain/member"
	parentDomain "clubhouse/internal/domain/parent"
	"clubhouse/internal/domain/subscription"
)

// RecentAttendanceLimit caps how many attendance entries a profile carries.
const RecentAttendanceLimit = 10

// ProfileClubStore defines the club store interface for profile queries.
type ProfileClubStore interface {
	GetByID(ctx context.Context, id string) (clubDomain.Club, error)
}

// ProfileMemberStore defines the member store interface for profile queries.
type ProfileMemberStore interface {
	ListByParentID(ctx context.Context, parentID, clubID string) ([]memberDomain.Member, error)
	ListByAccountID(ctx context.Context, accountID, clubID string) ([]memberDomain.Member, error)
}

// ProfileClassStore defines the class store interface for profile queries.
type ProfileClassStore interface {
	GetByID(ctx context.Context, id string) (classDomain.Class, error)
}

// ProfileSubscriptionStore defines the subscription store interface for profile queries.
type ProfileSubscriptionStore interface {
	GetByMemberID(ctx context.Context, memberID string) (subscription.Subscription, error)
}

// ProfileAttendanceStore defines the attendance store interface for profile queries.
type ProfileAttendanceStore interface {
	ListRecentByMemberID(ctx context.Context, memberID string, limit int) ([]attendance.Attendance, error)
}

// ProfileDeps holds dependencies for the portal profile projection.
type ProfileDeps struct {
	ClubStore         ProfileClubStore
	MemberStore       ProfileMemberStore
	ClassStore        ProfileClassStore
	SubscriptionStore ProfileSubscriptionStore
	AttendanceStore   ProfileAttendanceStore
}

// ClubRef is a tenant summary embedded in a profile.
type ClubRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ClassRef is a class reference embedded in a profile member.
type ClassRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// AttendanceEntry is one recent attendance record in a profile member.
type AttendanceEntry struct {
	Date      string `json:"date"`
	Status    string `json:"status"`
	ClassName string `json:"className"`
}

// ProfileMember is the portal view of a linked member. The subscription is
// the redacted snapshot: no payment-method detail ever crosses this
// projection.
type ProfileMember struct {
	ID           string                 `json:"id"`
	FirstName    string                 `json:"firstName"`
	LastName     string                 `json:"lastName"`
	DateOfBirth  string                 `json:"dateOfBirth,omitempty"`
	Class        *ClassRef              `json:"class,omitempty"`
	Status       string                 `json:"status"`
	Subscription *subscription.Snapshot `json:"subscription,omitempty"`
	Attendance   []AttendanceEntry      `json:"attendance"`
}

// Profile is the calling principal's own record plus linked members.
type Profile struct {
	ID      string          `json:"id"`
	Email   string          `json:"email"`
	Name    string          `json:"name"`
	Phone   string          `json:"phone"`
	Club    ClubRef         `json:"club"`
	Members []ProfileMember `json:"members"`
}

// QueryParentProfile builds the profile for an authenticated parent. The
// parent value comes from the session validator; no client-supplied id is
// consulted.
// PRE: p was returned by a successful session validation
// POST: Returns the parent's record and its linked members
func QueryParentProfile(ctx context.Context, p parentDomain.Parent, deps ProfileDeps) (Profile, error) {
	members, err := deps.MemberStore.ListByParentID(ctx, p.ID, p.ClubID)
	if err != nil {
		return Profile{}, err
	}
	return buildProfile(ctx, p.ID, p.ClubID, p.Email, p.Name, p.Phone, members, deps)
}

// QueryAccountProfile builds the profile for an authenticated self-service
// member account.
// PRE: a was returned by a successful session validation
// POST: Returns the account's record and its linked members
func QueryAccountProfile(ctx context.Context, a accountDomain.Account, deps ProfileDeps) (Profile, error) {
	members, err := deps.MemberStore.ListByAccountID(ctx, a.ID, a.ClubID)
	if err != nil {
		return Profile{}, err
	}
	return buildProfile(ctx, a.ID, a.ClubID, a.Email, a.Name, a.Phone, members, deps)
}

func buildProfile(ctx context.Context, id, clubID, email, name, phone string, members []memberDomain.Member, deps ProfileDeps) (Profile, error) {
	clb, err := deps.ClubStore.GetByID(ctx, clubID)
	if err != nil {
		return Profile{}, err
	}

	profile := Profile{
		ID:      id,
		Email:   email,
		Name:    name,
		Phone:   phone,
		Club:    ClubRef{ID: clb.ID, Name: clb.Name},
		Members: []ProfileMember{},
	}

	// Class names are shared across members and attendance entries.
	classNames := make(map[string]string)
	className := func(classID string) (string, error) {
		if classID == "" {
			return "", nil
		}
		if name, ok := classNames[classID]; ok {
			return name, nil
		}
		cls, err := deps.ClassStore.GetByID(ctx, classID)
		if errors.Is(err, sql.ErrNoRows) {
			classNames[classID] = ""
			return "", nil
		}
		if err != nil {
			return "", err
		}
		classNames[classID] = cls.Name
		return cls.Name, nil
	}

	for _, m := range members {
		pm := ProfileMember{
			ID:         m.ID,
			FirstName:  m.FirstName,
			LastName:   m.LastName,
			Status:     m.Status,
			Attendance: []AttendanceEntry{},
		}
		if !m.DateOfBirth.IsZero() {
			pm.DateOfBirth = m.DateOfBirth.Format("2006-01-02")
		}

		if m.ClassID != "" {
			name, err := className(m.ClassID)
			if err != nil {
				return Profile{}, err
			}
			if name != "" {
				pm.Class = &ClassRef{ID: m.ClassID, Name: name}
			}
		}

		sub, err := deps.SubscriptionStore.GetByMemberID(ctx, m.ID)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return Profile{}, err
		}
		if err == nil {
			snapshot := sub.Redact()
			pm.Subscription = &snapshot
		}

		recent, err := deps.AttendanceStore.ListRecentByMemberID(ctx, m.ID, RecentAttendanceLimit)
		if err != nil {
			return Profile{}, err
		}
		for _, a := range recent {
			name, err := className(a.ClassID)
			if err != nil {
				return Profile{}, err
			}
			pm.Attendance = append(pm.Attendance, AttendanceEntry{
				Date:      a.Date,
				Status:    a.Status,
				ClassName: name,
			})
		}

		profile.Members = append(profile.Members, pm)
	}

	return profile, nil
}
