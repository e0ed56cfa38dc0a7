package orchestrators

import (
	"context"
	"errors"
	"testing"
	"time"

	"clubhouse/internal/adapters/email"
	parentDomain "clubhouse/internal/domain/parent"
	resetDomain "clubhouse/internal/domain/resettoken"
)

type mockParentStore struct {
	parents map[string]parentDomain.Parent // keyed by id
	saveErr error
	saved   []parentDomain.Parent
}

func (m *mockParentStore) GetByIDAndClub(_ context.Context, id, clubID string) (parentDomain.Parent, error) {
	p, ok := m.parents[id]
	if !ok || p.ClubID != clubID {
		return parentDomain.Parent{}, errors.New("parent not found")
	}
	return p, nil
}

func (m *mockParentStore) GetByEmailAndClub(_ context.Context, emailAddr, clubID string) (parentDomain.Parent, error) {
	for _, p := range m.parents {
		if p.Email == emailAddr && p.ClubID == clubID {
			return p, nil
		}
	}
	return parentDomain.Parent{}, errors.New("parent not found")
}

func (m *mockParentStore) Save(_ context.Context, p parentDomain.Parent) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saved = append(m.saved, p)
	m.parents[p.ID] = p
	return nil
}

type mockResetTokenStore struct {
	tokens      map[string]resetDomain.ResetToken // keyed by token
	invalidated []string
}

func (m *mockResetTokenStore) Save(_ context.Context, t resetDomain.ResetToken) error {
	m.tokens[t.Token] = t
	return nil
}

func (m *mockResetTokenStore) GetByToken(_ context.Context, token string) (resetDomain.ResetToken, error) {
	t, ok := m.tokens[token]
	if !ok {
		return resetDomain.ResetToken{}, errors.New("reset token not found")
	}
	return t, nil
}

func (m *mockResetTokenStore) InvalidateForPrincipal(_ context.Context, kind, principalID string) error {
	m.invalidated = append(m.invalidated, kind+"/"+principalID)
	for k, t := range m.tokens {
		if t.PrincipalKind == kind && t.PrincipalID == principalID {
			t.Used = true
			m.tokens[k] = t
		}
	}
	return nil
}

type mockSender struct {
	sent []email.SendRequest
}

func (m *mockSender) Send(_ context.Context, req email.SendRequest) (email.SendResult, error) {
	m.sent = append(m.sent, req)
	return email.SendResult{MessageID: "email_1", SentAt: time.Now()}, nil
}

func newTestParent(t *testing.T, id, clubID, emailAddr, password string) parentDomain.Parent {
	t.Helper()
	p := parentDomain.Parent{
		ID:        id,
		ClubID:    clubID,
		Email:     emailAddr,
		Name:      "Test Parent",
		CreatedAt: time.Now(),
	}
	if err := p.SetPassword(password); err != nil {
		t.Fatalf("SetPassword: %v", err)
	}
	return p
}

func TestExecuteParentLogin(t *testing.T) {
	ctx := context.Background()
	const password = "correct-horse-battery"

	tests := []struct {
		name    string
		input   ParentLoginInput
		wantErr error
	}{
		{
			name:  "valid credentials",
			input: ParentLoginInput{ClubID: "club_1", Email: "p@example.com", Password: password},
		},
		{
			name:    "wrong password",
			input:   ParentLoginInput{ClubID: "club_1", Email: "p@example.com", Password: "wrong"},
			wantErr: ErrInvalidCredentials,
		},
		{
			name:    "unknown email",
			input:   ParentLoginInput{ClubID: "club_1", Email: "other@example.com", Password: password},
			wantErr: ErrInvalidCredentials,
		},
		{
			name:    "right email wrong club",
			input:   ParentLoginInput{ClubID: "club_2", Email: "p@example.com", Password: password},
			wantErr: ErrInvalidCredentials,
		},
		{
			name:    "empty password",
			input:   ParentLoginInput{ClubID: "club_1", Email: "p@example.com", Password: ""},
			wantErr: ErrInvalidCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &mockParentStore{parents: map[string]parentDomain.Parent{
				"parent_1": newTestParent(t, "parent_1", "club_1", "p@example.com", password),
			}}
			p, token, err := ExecuteParentLogin(ctx, tt.input, ParentLoginDeps{ParentStore: store})
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr != nil {
				if len(store.saved) != 0 {
					t.Errorf("expected no save on failed login, got %d", len(store.saved))
				}
				return
			}
			if token == "" {
				t.Error("expected a session token")
			}
			if p.SessionToken != token {
				t.Errorf("returned parent token %q does not match issued %q", p.SessionToken, token)
			}
			if saved := store.parents["parent_1"]; saved.SessionToken != token {
				t.Errorf("persisted token = %q, want %q", saved.SessionToken, token)
			}
		})
	}
}

func TestExecuteParentLogin_RotatesToken(t *testing.T) {
	ctx := context.Background()
	const password = "correct-horse-battery"
	store := &mockParentStore{parents: map[string]parentDomain.Parent{
		"parent_1": newTestParent(t, "parent_1", "club_1", "p@example.com", password),
	}}
	deps := ParentLoginDeps{ParentStore: store}
	input := ParentLoginInput{ClubID: "club_1", Email: "p@example.com", Password: password}

	_, t1, err := ExecuteParentLogin(ctx, input, deps)
	if err != nil {
		t.Fatalf("first login: %v", err)
	}
	_, t2, err := ExecuteParentLogin(ctx, input, deps)
	if err != nil {
		t.Fatalf("second login: %v", err)
	}
	if t1 == t2 {
		t.Fatal("second login reused the first session token")
	}
	if got := store.parents["parent_1"].SessionToken; got != t2 {
		t.Errorf("stored token = %q, want newest %q", got, t2)
	}
}

func TestExecuteParentLogout(t *testing.T) {
	ctx := context.Background()
	p := newTestParent(t, "parent_1", "club_1", "p@example.com", "correct-horse-battery")
	p.StartSession("tok_abc", time.Now(), time.Hour)
	store := &mockParentStore{parents: map[string]parentDomain.Parent{"parent_1": p}}

	if err := ExecuteParentLogout(ctx, p, ParentLoginDeps{ParentStore: store}); err != nil {
		t.Fatalf("ExecuteParentLogout: %v", err)
	}
	saved := store.parents["parent_1"]
	if saved.SessionToken != "" {
		t.Errorf("stored token = %q, want empty", saved.SessionToken)
	}
	if !saved.SessionExpiresAt.IsZero() {
		t.Errorf("stored expiry = %v, want zero", saved.SessionExpiresAt)
	}
}

func TestExecuteParentProfileUpdate(t *testing.T) {
	ctx := context.Background()
	p := newTestParent(t, "parent_1", "club_1", "p@example.com", "correct-horse-battery")
	store := &mockParentStore{parents: map[string]parentDomain.Parent{"parent_1": p}}

	name := "New Name"
	phone := "021 555 1234"
	updated, err := ExecuteParentProfileUpdate(ctx, p, ProfilePatch{Name: &name, Phone: &phone}, ParentLoginDeps{ParentStore: store})
	if err != nil {
		t.Fatalf("ExecuteParentProfileUpdate: %v", err)
	}
	if updated.Name != name || updated.Phone != phone {
		t.Errorf("updated = %q/%q, want %q/%q", updated.Name, updated.Phone, name, phone)
	}
	if updated.Email != "p@example.com" {
		t.Errorf("email changed to %q, must be immutable through this flow", updated.Email)
	}

	// Nil fields leave the current values alone.
	again, err := ExecuteParentProfileUpdate(ctx, updated, ProfilePatch{}, ParentLoginDeps{ParentStore: store})
	if err != nil {
		t.Fatalf("empty patch: %v", err)
	}
	if again.Name != name || again.Phone != phone {
		t.Errorf("empty patch changed fields: %q/%q", again.Name, again.Phone)
	}
}

func TestExecuteParentResetRequest(t *testing.T) {
	ctx := context.Background()
	store := &mockParentStore{parents: map[string]parentDomain.Parent{
		"parent_1": newTestParent(t, "parent_1", "club_1", "p@example.com", "correct-horse-battery"),
	}}
	tokens := &mockResetTokenStore{tokens: map[string]resetDomain.ResetToken{}}
	sender := &mockSender{}
	deps := ParentResetDeps{ParentStore: store, ResetTokenStore: tokens, Sender: sender, PortalBaseURL: "https://club.example.com"}

	if err := ExecuteParentResetRequest(ctx, "club_1", "p@example.com", deps); err != nil {
		t.Fatalf("ExecuteParentResetRequest: %v", err)
	}
	if len(sender.sent) != 1 {
		t.Fatalf("sent %d emails, want 1", len(sender.sent))
	}
	if len(tokens.tokens) != 1 {
		t.Fatalf("saved %d tokens, want 1", len(tokens.tokens))
	}
	if len(tokens.invalidated) != 1 || tokens.invalidated[0] != "parent/parent_1" {
		t.Errorf("invalidated = %v, want prior tokens for parent_1", tokens.invalidated)
	}

	// Unknown email: silent success, nothing sent.
	if err := ExecuteParentResetRequest(ctx, "club_1", "nobody@example.com", deps); err != nil {
		t.Fatalf("unknown email must not error: %v", err)
	}
	if len(sender.sent) != 1 {
		t.Errorf("unknown email sent an email")
	}
}

func TestExecuteParentReset(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	setup := func(t *testing.T) (*mockParentStore, *mockResetTokenStore, ParentResetDeps) {
		p := newTestParent(t, "parent_1", "club_1", "p@example.com", "old-password-123")
		p.StartSession("tok_live", now, time.Hour)
		store := &mockParentStore{parents: map[string]parentDomain.Parent{"parent_1": p}}
		tokens := &mockResetTokenStore{tokens: map[string]resetDomain.ResetToken{}}
		return store, tokens, ParentResetDeps{ParentStore: store, ResetTokenStore: tokens, Sender: &mockSender{}}
	}

	t.Run("valid token resets password and ends sessions", func(t *testing.T) {
		store, tokens, deps := setup(t)
		tokens.tokens["rt_1"] = resetDomain.ResetToken{
			ID: "reset_1", ClubID: "club_1", PrincipalKind: resetDomain.KindParent,
			PrincipalID: "parent_1", Token: "rt_1", ExpiresAt: now.Add(time.Hour), CreatedAt: now,
		}
		if err := ExecuteParentReset(ctx, "rt_1", "new-password-123", deps); err != nil {
			t.Fatalf("ExecuteParentReset: %v", err)
		}
		saved := store.parents["parent_1"]
		if err := saved.CheckPassword("new-password-123"); err != nil {
			t.Errorf("new password rejected: %v", err)
		}
		if saved.SessionToken != "" {
			t.Error("session token must be cleared on reset")
		}
		if !tokens.tokens["rt_1"].Used {
			t.Error("reset token must be marked used")
		}
	})

	t.Run("expired token", func(t *testing.T) {
		_, tokens, deps := setup(t)
		tokens.tokens["rt_old"] = resetDomain.ResetToken{
			ID: "reset_2", ClubID: "club_1", PrincipalKind: resetDomain.KindParent,
			PrincipalID: "parent_1", Token: "rt_old", ExpiresAt: now.Add(-time.Minute), CreatedAt: now.Add(-2 * time.Hour),
		}
		if err := ExecuteParentReset(ctx, "rt_old", "new-password-123", deps); !errors.Is(err, ErrInvalidResetToken) {
			t.Fatalf("error = %v, want ErrInvalidResetToken", err)
		}
	})

	t.Run("used token", func(t *testing.T) {
		_, tokens, deps := setup(t)
		tokens.tokens["rt_used"] = resetDomain.ResetToken{
			ID: "reset_3", ClubID: "club_1", PrincipalKind: resetDomain.KindParent,
			PrincipalID: "parent_1", Token: "rt_used", ExpiresAt: now.Add(time.Hour), Used: true, CreatedAt: now,
		}
		if err := ExecuteParentReset(ctx, "rt_used", "new-password-123", deps); !errors.Is(err, ErrInvalidResetToken) {
			t.Fatalf("error = %v, want ErrInvalidResetToken", err)
		}
	})

	t.Run("unknown token", func(t *testing.T) {
		_, _, deps := setup(t)
		if err := ExecuteParentReset(ctx, "rt_missing", "new-password-123", deps); !errors.Is(err, ErrInvalidResetToken) {
			t.Fatalf("error = %v, want ErrInvalidResetToken", err)
		}
	})

	t.Run("account-kind token rejected for parent flow", func(t *testing.T) {
		_, tokens, deps := setup(t)
		tokens.tokens["rt_acct"] = resetDomain.ResetToken{
			ID: "reset_4", ClubID: "club_1", PrincipalKind: resetDomain.KindAccount,
			PrincipalID: "acct_1", Token: "rt_acct", ExpiresAt: now.Add(time.Hour), CreatedAt: now,
		}
		if err := ExecuteParentReset(ctx, "rt_acct", "new-password-123", deps); !errors.Is(err, ErrInvalidResetToken) {
			t.Fatalf("error = %v, want ErrInvalidResetToken", err)
		}
	})
}
