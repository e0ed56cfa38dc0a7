package orchestrators

import (
	"context"
	"errors"
	"testing"
	"time"

	accountDomain "clubhouse/internal/domain/account"
	resetDomain "clubhouse/internal/domain/resettoken"
)

type mockAccountStore struct {
	accounts map[string]accountDomain.Account
}

func (m *mockAccountStore) GetByIDAndClub(_ context.Context, id, clubID string) (accountDomain.Account, error) {
	a, ok := m.accounts[id]
	if !ok || a.ClubID != clubID {
		return accountDomain.Account{}, errors.New("account not found")
	}
	return a, nil
}

func (m *mockAccountStore) GetByEmailAndClub(_ context.Context, emailAddr, clubID string) (accountDomain.Account, error) {
	for _, a := range m.accounts {
		if a.Email == emailAddr && a.ClubID == clubID {
			return a, nil
		}
	}
	return accountDomain.Account{}, errors.New("account not found")
}

func (m *mockAccountStore) Save(_ context.Context, a accountDomain.Account) error {
	m.accounts[a.ID] = a
	return nil
}

func newTestAccount(t *testing.T, id, clubID, emailAddr, password string) accountDomain.Account {
	t.Helper()
	a := accountDomain.Account{
		ID:        id,
		ClubID:    clubID,
		Email:     emailAddr,
		Name:      "Test Member",
		CreatedAt: time.Now(),
	}
	if err := a.SetPassword(password); err != nil {
		t.Fatalf("SetPassword: %v", err)
	}
	return a
}

func TestExecuteAccountLogin_RotatesToken(t *testing.T) {
	ctx := context.Background()
	const password = "correct-horse-battery"
	store := &mockAccountStore{accounts: map[string]accountDomain.Account{
		"acct_1": newTestAccount(t, "acct_1", "club_1", "m@example.com", password),
	}}
	deps := AccountLoginDeps{AccountStore: store}
	input := AccountLoginInput{ClubID: "club_1", Email: "m@example.com", Password: password}

	_, t1, err := ExecuteAccountLogin(ctx, input, deps)
	if err != nil {
		t.Fatalf("first login: %v", err)
	}
	_, t2, err := ExecuteAccountLogin(ctx, input, deps)
	if err != nil {
		t.Fatalf("second login: %v", err)
	}
	if t1 == t2 {
		t.Fatal("second login reused the first session token")
	}
	if got := store.accounts["acct_1"].SessionToken; got != t2 {
		t.Errorf("stored token = %q, want newest %q", got, t2)
	}

	// Wrong club never authenticates even with the right password.
	if _, _, err := ExecuteAccountLogin(ctx, AccountLoginInput{ClubID: "club_2", Email: "m@example.com", Password: password}, deps); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("cross-club login error = %v, want ErrInvalidCredentials", err)
	}
}

func TestExecuteAccountReset_RejectsParentToken(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	store := &mockAccountStore{accounts: map[string]accountDomain.Account{
		"acct_1": newTestAccount(t, "acct_1", "club_1", "m@example.com", "old-password-123"),
	}}
	tokens := &mockResetTokenStore{tokens: map[string]resetDomain.ResetToken{
		"rt_parent": {
			ID: "reset_1", ClubID: "club_1", PrincipalKind: resetDomain.KindParent,
			PrincipalID: "parent_1", Token: "rt_parent", ExpiresAt: now.Add(time.Hour), CreatedAt: now,
		},
	}}
	deps := AccountResetDeps{AccountStore: store, ResetTokenStore: tokens, Sender: &mockSender{}}

	if err := ExecuteAccountReset(ctx, "rt_parent", "new-password-123", deps); !errors.Is(err, ErrInvalidResetToken) {
		t.Fatalf("error = %v, want ErrInvalidResetToken", err)
	}
}

func TestExecuteAccountReset_Succeeds(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	a := newTestAccount(t, "acct_1", "club_1", "m@example.com", "old-password-123")
	a.StartSession("tok_live", now, time.Hour)
	store := &mockAccountStore{accounts: map[string]accountDomain.Account{"acct_1": a}}
	tokens := &mockResetTokenStore{tokens: map[string]resetDomain.ResetToken{
		"rt_1": {
			ID: "reset_1", ClubID: "club_1", PrincipalKind: resetDomain.KindAccount,
			PrincipalID: "acct_1", Token: "rt_1", ExpiresAt: now.Add(time.Hour), CreatedAt: now,
		},
	}}
	deps := AccountResetDeps{AccountStore: store, ResetTokenStore: tokens, Sender: &mockSender{}}

	if err := ExecuteAccountReset(ctx, "rt_1", "new-password-123", deps); err != nil {
		t.Fatalf("ExecuteAccountReset: %v", err)
	}
	saved := store.accounts["acct_1"]
	if err := saved.CheckPassword("new-password-123"); err != nil {
		t.Errorf("new password rejected: %v", err)
	}
	if saved.SessionToken != "" {
		t.Error("session token must be cleared on reset")
	}
	if !tokens.tokens["rt_1"].Used {
		t.Error("reset token must be marked used")
	}
}
