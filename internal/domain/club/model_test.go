package club

import (
	"testing"
	"time"
)

func TestValidate(t *testing.T) {
	valid := Club{ID: "club_1", Name: "Harbour Gymnastics", Slug: "harbour", OwnerSubject: "staff_42", CreatedAt: time.Now()}

	tests := []struct {
		name    string
		mutate  func(*Club)
		wantErr error
	}{
		{"valid", func(c *Club) {}, nil},
		{"empty name", func(c *Club) { c.Name = "" }, ErrEmptyName},
		{"whitespace name", func(c *Club) { c.Name = "   " }, ErrEmptyName},
		{"empty owner", func(c *Club) { c.OwnerSubject = "" }, ErrEmptyOwner},
		{"bad contact email", func(c *Club) { c.ContactEmail = "not-an-email" }, ErrInvalidContact},
		{"empty contact email ok", func(c *Club) { c.ContactEmail = "" }, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid
			tt.mutate(&c)
			if err := c.Validate(); err != tt.wantErr {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestOwnedBy(t *testing.T) {
	c := Club{ID: "club_1", Name: "Harbour Gymnastics", OwnerSubject: "staff_42"}

	if !c.OwnedBy("staff_42") {
		t.Error("owner subject must match")
	}
	if c.OwnedBy("staff_99") {
		t.Error("foreign subject must not match")
	}
	if c.OwnedBy("") {
		t.Error("empty subject must never match")
	}

	// An empty owner never matches, even against an empty subject.
	unowned := Club{ID: "club_2", Name: "Orphan"}
	if unowned.OwnedBy("") {
		t.Error("empty owner must never match")
	}
}
