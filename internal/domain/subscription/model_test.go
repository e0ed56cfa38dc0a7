package subscription

import (
	"testing"
	"time"
)

func TestValidate(t *testing.T) {
	valid := Subscription{ID: "sub_1", ClubID: "club_1", MemberID: "m_1", Status: StatusActive, AmountCents: 4500, Currency: "NZD"}

	tests := []struct {
		name    string
		mutate  func(*Subscription)
		wantErr bool
	}{
		{"valid active", func(s *Subscription) {}, false},
		{"valid past_due", func(s *Subscription) { s.Status = StatusPastDue }, false},
		{"valid canceled", func(s *Subscription) { s.Status = StatusCanceled }, false},
		{"unknown status", func(s *Subscription) { s.Status = "refunded" }, true},
		{"no member", func(s *Subscription) { s.MemberID = "" }, true},
		{"no club", func(s *Subscription) { s.ClubID = "" }, true},
		{"negative amount", func(s *Subscription) { s.AmountCents = -1 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := valid
			tt.mutate(&s)
			if err := s.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestRedactDropsPaymentMethod(t *testing.T) {
	s := Subscription{
		ID: "sub_1", ClubID: "club_1", MemberID: "m_1",
		Status: StatusActive, AmountCents: 4500, Currency: "NZD",
		PeriodEnd:     time.Date(2026, 9, 30, 0, 0, 0, 0, time.UTC),
		PaymentMethod: "visa •••• 4242",
	}

	snap := s.Redact()
	if snap.Status != StatusActive || snap.AmountCents != 4500 {
		t.Errorf("snapshot = %+v", snap)
	}
	if !snap.PeriodEnd.Equal(s.PeriodEnd) {
		t.Errorf("period end = %v", snap.PeriodEnd)
	}
	if s.PaymentMethod != "visa •••• 4242" {
		t.Error("Redact must not mutate the subscription")
	}
}
