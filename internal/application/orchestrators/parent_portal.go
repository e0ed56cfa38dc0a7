package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"clubhouse/internal/adapters/email"
	parentDomain "clubhouse/internal/domain/parent"
	resetDomain "clubhouse/internal/domain/resettoken"
	"clubhouse/internal/session"
)

// Shared orchestrator errors.
var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidResetToken  = errors.New("reset link is invalid or has expired")
)

// ResetTokenTTL is how long a credential-reset link stays redeemable.
const ResetTokenTTL = time.Hour

// timeNow is a variable for testability.
var timeNow = time.Now

// ParentStoreForPortal defines the parent store interface for portal flows.
type ParentStoreForPortal interface {
	GetByIDAndClub(ctx context.Context, id, clubID string) (parentDomain.Parent, error)
	GetByEmailAndClub(ctx context.Context, email, clubID string) (parentDomain.Parent, error)
	Save(ctx context.Context, p parentDomain.Parent) error
}

// ResetTokenStoreForPortal defines the reset token store interface.
type ResetTokenStoreForPortal interface {
	Save(ctx context.Context, t resetDomain.ResetToken) error
	GetByToken(ctx context.Context, token string) (resetDomain.ResetToken, error)
	InvalidateForPrincipal(ctx context.Context, kind, principalID string) error
}

// ParentLoginInput carries input for the parent login orchestrator.
type ParentLoginInput struct {
	ClubID   string
	Email    string
	Password string
}

// ParentLoginDeps holds dependencies for parent portal flows.
type ParentLoginDeps struct {
	ParentStore ParentStoreForPortal
}

// ExecuteParentLogin validates credentials and issues a fresh session token.
// The stored token is replaced, so any session issued earlier stops
// validating on its next request.
// PRE: input fields are provided by the portal login form
// POST: On success the parent row holds the new token and expiry
func ExecuteParentLogin(ctx context.Context, input ParentLoginInput, deps ParentLoginDeps) (parentDomain.Parent, string, error) {
	if input.ClubID == "" || input.Email == "" || input.Password == "" {
		return parentDomain.Parent{}, "", ErrInvalidCredentials
	}

	p, err := deps.ParentStore.GetByEmailAndClub(ctx, input.Email, input.ClubID)
	if err != nil {
		slog.Info("auth_event", "event", "parent_login_failed", "club_id", input.ClubID, "reason", "not_found")
		return parentDomain.Parent{}, "", ErrInvalidCredentials
	}

	if err := p.CheckPassword(input.Password); err != nil {
		slog.Info("auth_event", "event", "parent_login_failed", "club_id", input.ClubID, "parent_id", p.ID, "reason", "wrong_password")
		return parentDomain.Parent{}, "", ErrInvalidCredentials
	}

	token, err := session.NewToken()
	if err != nil {
		return parentDomain.Parent{}, "", fmt.Errorf("failed to generate session token: %w", err)
	}
	p.StartSession(token, timeNow(), session.SessionTTL)
	if err := deps.ParentStore.Save(ctx, p); err != nil {
		return parentDomain.Parent{}, "", fmt.Errorf("failed to persist session: %w", err)
	}

	slog.Info("auth_event", "event", "parent_login_success", "club_id", p.ClubID, "parent_id", p.ID)
	return p, token, nil
}

// ExecuteParentLogout clears the stored session token.
// PRE: p was returned by a successful session validation
// POST: The stored token is cleared; every outstanding cookie stops validating
func ExecuteParentLogout(ctx context.Context, p parentDomain.Parent, deps ParentLoginDeps) error {
	p.EndSession()
	if err := deps.ParentStore.Save(ctx, p); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	slog.Info("auth_event", "event", "parent_logout", "club_id", p.ClubID, "parent_id", p.ID)
	return nil
}

// ProfilePatch is the partial update body for a portal profile. Only these
// fields are mutable; anything else submitted is ignored.
type ProfilePatch struct {
	Name  *string `json:"name"`
	Phone *string `json:"phone"`
}

// ExecuteParentProfileUpdate applies the allow-listed fields to the
// caller's own record. The target row is always the authenticated
// principal, never an id from the request.
// PRE: p was returned by a successful session validation
// POST: Allowed fields are updated; the updated parent is returned
func ExecuteParentProfileUpdate(ctx context.Context, p parentDomain.Parent, patch ProfilePatch, deps ParentLoginDeps) (parentDomain.Parent, error) {
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Phone != nil {
		p.Phone = *patch.Phone
	}
	if err := p.Validate(); err != nil {
		return parentDomain.Parent{}, err
	}
	if err := deps.ParentStore.Save(ctx, p); err != nil {
		return parentDomain.Parent{}, fmt.Errorf("failed to update profile: %w", err)
	}
	return p, nil
}

// ParentResetDeps holds dependencies for the parent credential-reset flow.
type ParentResetDeps struct {
	ParentStore     ParentStoreForPortal
	ResetTokenStore ResetTokenStoreForPortal
	Sender          email.Sender
	From            string
	ReplyTo         string
	PortalBaseURL   string
}

// ExecuteParentResetRequest issues a single-use reset link by email. An
// unknown email is not an error: the response must not reveal whether an
// account exists.
// PRE: clubID and emailAddr come from the public reset form
// POST: For a known account, older links are invalidated and a fresh one
// is emailed
func ExecuteParentResetRequest(ctx context.Context, clubID, emailAddr string, deps ParentResetDeps) error {
	p, err := deps.ParentStore.GetByEmailAndClub(ctx, emailAddr, clubID)
	if err != nil {
		slog.Info("auth_event", "event", "parent_reset_requested", "club_id", clubID, "reason", "not_found")
		return nil
	}

	token, err := session.NewToken()
	if err != nil {
		return fmt.Errorf("failed to generate reset token: %w", err)
	}
	if err := deps.ResetTokenStore.InvalidateForPrincipal(ctx, resetDomain.KindParent, p.ID); err != nil {
		return fmt.Errorf("failed to invalidate old reset tokens: %w", err)
	}
	now := timeNow()
	if err := deps.ResetTokenStore.Save(ctx, resetDomain.ResetToken{
		ID:            uuid.New().String(),
		ClubID:        p.ClubID,
		PrincipalKind: resetDomain.KindParent,
		PrincipalID:   p.ID,
		Token:         token,
		ExpiresAt:     now.Add(ResetTokenTTL),
		CreatedAt:     now,
	}); err != nil {
		return fmt.Errorf("failed to save reset token: %w", err)
	}

	link := fmt.Sprintf("%s/portal/reset?token=%s", deps.PortalBaseURL, token)
	_, err = deps.Sender.Send(ctx, email.SendRequest{
		To:      []string{p.Email},
		From:    deps.From,
		ReplyTo: deps.ReplyTo,
		Subject: "Reset your portal password",
		HTML:    fmt.Sprintf(`<p>Hi %s,</p><p><a href="%s">Click here to reset your password</a>. The link expires in one hour.</p>`, p.Name, link),
	})
	if err != nil {
		return fmt.Errorf("failed to send reset email: %w", err)
	}
	slog.Info("auth_event", "event", "parent_reset_requested", "club_id", p.ClubID, "parent_id", p.ID)
	return nil
}

// ExecuteParentReset redeems a reset link: sets the new password and ends
// every outstanding session for the account.
// PRE: token and newPassword come from the reset form
// POST: Password is replaced, reset token marked used, stored session cleared
func ExecuteParentReset(ctx context.Context, token, newPassword string, deps ParentResetDeps) error {
	rt, err := deps.ResetTokenStore.GetByToken(ctx, token)
	if err != nil || rt.PrincipalKind != resetDomain.KindParent {
		return ErrInvalidResetToken
	}
	if err := rt.Usable(timeNow()); err != nil {
		return ErrInvalidResetToken
	}

	p, err := deps.ParentStore.GetByIDAndClub(ctx, rt.PrincipalID, rt.ClubID)
	if err != nil {
		return ErrInvalidResetToken
	}
	if err := p.SetPassword(newPassword); err != nil {
		return err
	}
	p.EndSession()
	if err := deps.ParentStore.Save(ctx, p); err != nil {
		return fmt.Errorf("failed to save new password: %w", err)
	}

	rt.Invalidate()
	if err := deps.ResetTokenStore.Save(ctx, rt); err != nil {
		return fmt.Errorf("failed to invalidate reset token: %w", err)
	}
	slog.Info("auth_event", "event", "parent_reset_completed", "club_id", p.ClubID, "parent_id", p.ID)
	return nil
}
