package orchestrators

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"clubhouse/internal/adapters/email"
	accountDomain "clubhouse/internal/domain/account"
	resetDomain "clubhouse/internal/domain/resettoken"
	"clubhouse/internal/session"
)

// AccountStoreForPortal defines the member account store interface for
// portal flows.
type AccountStoreForPortal interface {
	GetByIDAndClub(ctx context.Context, id, clubID string) (accountDomain.Account, error)
	GetByEmailAndClub(ctx context.Context, email, clubID string) (accountDomain.Account, error)
	Save(ctx context.Context, a accountDomain.Account) error
}

// AccountLoginInput carries input for the member account login orchestrator.
type AccountLoginInput struct {
	ClubID   string
	Email    string
	Password string
}

// AccountLoginDeps holds dependencies for member account portal flows.
type AccountLoginDeps struct {
	AccountStore AccountStoreForPortal
}

// ExecuteAccountLogin validates credentials and issues a fresh session
// token for a self-managed member account.
// PRE: input fields are provided by the portal login form
// POST: On success the account row holds the new token and expiry
func ExecuteAccountLogin(ctx context.Context, input AccountLoginInput, deps AccountLoginDeps) (accountDomain.Account, string, error) {
	if input.ClubID == "" || input.Email == "" || input.Password == "" {
		return accountDomain.Account{}, "", ErrInvalidCredentials
	}

	a, err := deps.AccountStore.GetByEmailAndClub(ctx, input.Email, input.ClubID)
	if err != nil {
		slog.Info("auth_event", "event", "account_login_failed", "club_id", input.ClubID, "reason", "not_found")
		return accountDomain.Account{}, "", ErrInvalidCredentials
	}

	if err := a.CheckPassword(input.Password); err != nil {
		slog.Info("auth_event", "event", "account_login_failed", "club_id", input.ClubID, "account_id", a.ID, "reason", "wrong_password")
		return accountDomain.Account{}, "", ErrInvalidCredentials
	}

	token, err := session.NewToken()
	if err != nil {
		return accountDomain.Account{}, "", fmt.Errorf("failed to generate session token: %w", err)
	}
	a.StartSession(token, timeNow(), session.SessionTTL)
	if err := deps.AccountStore.Save(ctx, a); err != nil {
		return accountDomain.Account{}, "", fmt.Errorf("failed to persist session: %w", err)
	}

	slog.Info("auth_event", "event", "account_login_success", "club_id", a.ClubID, "account_id", a.ID)
	return a, token, nil
}

// ExecuteAccountLogout clears the stored session token.
// PRE: a was returned by a successful session validation
// POST: The stored token is cleared; every outstanding cookie stops validating
func ExecuteAccountLogout(ctx context.Context, a accountDomain.Account, deps AccountLoginDeps) error {
	a.EndSession()
	if err := deps.AccountStore.Save(ctx, a); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	slog.Info("auth_event", "event", "account_logout", "club_id", a.ClubID, "account_id", a.ID)
	return nil
}

// ExecuteAccountProfileUpdate applies the allow-listed fields to the
// caller's own record.
// PRE: a was returned by a successful session validation
// POST: Allowed fields are updated; the updated account is returned
func ExecuteAccountProfileUpdate(ctx context.Context, a accountDomain.Account, patch ProfilePatch, deps AccountLoginDeps) (accountDomain.Account, error) {
	if patch.Name != nil {
		a.Name = *patch.Name
	}
	if patch.Phone != nil {
		a.Phone = *patch.Phone
	}
	if err := a.Validate(); err != nil {
		return accountDomain.Account{}, err
	}
	if err := deps.AccountStore.Save(ctx, a); err != nil {
		return accountDomain.Account{}, fmt.Errorf("failed to update profile: %w", err)
	}
	return a, nil
}

// AccountResetDeps holds dependencies for the member account
// credential-reset flow.
type AccountResetDeps struct {
	AccountStore    AccountStoreForPortal
	ResetTokenStore ResetTokenStoreForPortal
	Sender          email.Sender
	From            string
	ReplyTo         string
	PortalBaseURL   string
}

// ExecuteAccountResetRequest issues a single-use reset link by email. An
// unknown email is not an error: the response must not reveal whether an
// account exists.
// PRE: clubID and emailAddr come from the public reset form
// POST: For a known account, older links are invalidated and a fresh one
// is emailed
func ExecuteAccountResetRequest(ctx context.Context, clubID, emailAddr string, deps AccountResetDeps) error {
	a, err := deps.AccountStore.GetByEmailAndClub(ctx, emailAddr, clubID)
	if err != nil {
		slog.Info("auth_event", "event", "account_reset_requested", "club_id", clubID, "reason", "not_found")
		return nil
	}

	token, err := session.NewToken()
	if err != nil {
		return fmt.Errorf("failed to generate reset token: %w", err)
	}
	if err := deps.ResetTokenStore.InvalidateForPrincipal(ctx, resetDomain.KindAccount, a.ID); err != nil {
		return fmt.Errorf("failed to invalidate old reset tokens: %w", err)
	}
	now := timeNow()
	if err := deps.ResetTokenStore.Save(ctx, resetDomain.ResetToken{
		ID:            uuid.New().String(),
		ClubID:        a.ClubID,
		PrincipalKind: resetDomain.KindAccount,
		PrincipalID:   a.ID,
		Token:         token,
		ExpiresAt:     now.Add(ResetTokenTTL),
		CreatedAt:     now,
	}); err != nil {
		return fmt.Errorf("failed to save reset token: %w", err)
	}

	link := fmt.Sprintf("%s/portal/reset?token=%s", deps.PortalBaseURL, token)
	_, err = deps.Sender.Send(ctx, email.SendRequest{
		To:      []string{a.Email},
		From:    deps.From,
		ReplyTo: deps.ReplyTo,
		Subject: "Reset your portal password",
		HTML:    fmt.Sprintf(`<p>Hi %s,</p><p><a href="%s">Click here to reset your password</a>. The link expires in one hour.</p>`, a.Name, link),
	})
	if err != nil {
		return fmt.Errorf("failed to send reset email: %w", err)
	}
	slog.Info("auth_event", "event", "account_reset_requested", "club_id", a.ClubID, "account_id", a.ID)
	return nil
}

// ExecuteAccountReset redeems a reset link: sets the new password and ends
// every outstanding session for the account.
// PRE: token and newPassword come from the reset form
// POST: Password is replaced, reset token marked used, stored session cleared
func ExecuteAccountReset(ctx context.Context, token, newPassword string, deps AccountResetDeps) error {
	rt, err := deps.ResetTokenStore.GetByToken(ctx, token)
	if err != nil || rt.PrincipalKind != resetDomain.KindAccount {
		return ErrInvalidResetToken
	}
	if err := rt.Usable(timeNow()); err != nil {
		return ErrInvalidResetToken
	}

	a, err := deps.AccountStore.GetByIDAndClub(ctx, rt.PrincipalID, rt.ClubID)
	if err != nil {
		return ErrInvalidResetToken
	}
	if err := a.SetPassword(newPassword); err != nil {
		return err
	}
	a.EndSession()
	if err := deps.AccountStore.Save(ctx, a); err != nil {
		return fmt.Errorf("failed to save new password: %w", err)
	}

	rt.Invalidate()
	if err := deps.ResetTokenStore.Save(ctx, rt); err != nil {
		return fmt.Errorf("failed to invalidate reset token: %w", err)
	}
	slog.Info("auth_event", "event", "account_reset_completed", "club_id", a.ClubID, "account_id", a.ID)
	return nil
}
