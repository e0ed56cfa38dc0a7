package web

import (
	"errors"
	"net/http"

	"clubhouse/internal/application/orchestrators"
	"clubhouse/internal/application/projections"
	accountDomain "clubhouse/internal/domain/account"
	parentDomain "clubhouse/internal/domain/parent"
	"clubhouse/internal/session"
)

// profileDeps assembles the projection dependencies from the global stores.
func profileDeps() projections.ProfileDeps {
	return projections.ProfileDeps{
		ClubStore:         stores.ClubStore,
		MemberStore:       stores.MemberStore,
		ClassStore:        stores.ClassStore,
		SubscriptionStore: stores.SubscriptionStore,
		AttendanceStore:   stores.AttendanceStore,
	}
}

// requireParent validates the parent session cookie. Missing or invalid
// sessions get 401, never 404: the handler must not reveal whether the
// claimed account exists.
func requireParent(w http.ResponseWriter, r *http.Request) (parentDomain.Parent, bool) {
	p, err := parentSessions.Validate(r)
	if errors.Is(err, session.ErrUnauthenticated) {
		metricsCollector.RecordAuth("parent", "unauthenticated")
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return parentDomain.Parent{}, false
	}
	if err != nil {
		metricsCollector.RecordAuth("parent", "error")
		internalError(w, err)
		return parentDomain.Parent{}, false
	}
	metricsCollector.RecordAuth("parent", "ok")
	return p, true
}

// requireAccount validates the member account session cookie.
func requireAccount(w http.ResponseWriter, r *http.Request) (accountDomain.Account, bool) {
	a, err := accountSessions.Validate(r)
	if errors.Is(err, session.ErrUnauthenticated) {
		metricsCollector.RecordAuth("member", "unauthenticated")
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return accountDomain.Account{}, false
	}
	if err != nil {
		metricsCollector.RecordAuth("member", "error")
		internalError(w, err)
		return accountDomain.Account{}, false
	}
	metricsCollector.RecordAuth("member", "ok")
	return a, true
}

// loginRequest is the shared login body for both portal principals.
type loginRequest struct {
	ClubID   string `json:"clubId"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func handleParentLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := strictDecode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	p, token, err := orchestrators.ExecuteParentLogin(r.Context(), orchestrators.ParentLoginInput{
		ClubID:   req.ClubID,
		Email:    req.Email,
		Password: req.Password,
	}, orchestrators.ParentLoginDeps{ParentStore: stores.ParentStore})
	if errors.Is(err, orchestrators.ErrInvalidCredentials) {
		metricsCollector.RecordAuth("parent", "unauthenticated")
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}
	if err != nil {
		internalError(w, err)
		return
	}

	session.WriteCookie(w, session.ParentCookieName, session.Descriptor{
		Token:     token,
		SubjectID: p.ID,
		ClubID:    p.ClubID,
	}, secureCookies)

	profile, err := projections.QueryParentProfile(r.Context(), p, profileDeps())
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// handleParentLogout ends the stored session and clears the cookie. Logout
// is idempotent: a request without a valid session still clears the cookie
// and succeeds.
func handleParentLogout(w http.ResponseWriter, r *http.Request) {
	p, err := parentSessions.Validate(r)
	switch {
	case err == nil:
		if err := orchestrators.ExecuteParentLogout(r.Context(), p, orchestrators.ParentLoginDeps{ParentStore: stores.ParentStore}); err != nil {
			internalError(w, err)
			return
		}
	case errors.Is(err, session.ErrUnauthenticated):
		// No live session to end; clearing the cookie is still the right answer.
	default:
		// A store failure means the stored token may still be live, so the
		// client must not be told the logout succeeded.
		internalError(w, err)
		return
	}
	session.ClearCookie(w, session.ParentCookieName)
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func handleParentProfile(w http.ResponseWriter, r *http.Request) {
	p, ok := requireParent(w, r)
	if !ok {
		return
	}
	profile, err := projections.QueryParentProfile(r.Context(), p, profileDeps())
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func handleParentProfileUpdate(w http.ResponseWriter, r *http.Request) {
	p, ok := requireParent(w, r)
	if !ok {
		return
	}

	// Unknown fields in the body are dropped, not applied: only the
	// allow-listed patch fields can change.
	var patch orchestrators.ProfilePatch
	if err := lenientDecode(r, &patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	updated, err := orchestrators.ExecuteParentProfileUpdate(r.Context(), p, patch, orchestrators.ParentLoginDeps{ParentStore: stores.ParentStore})
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	profile, err := projections.QueryParentProfile(r.Context(), updated, profileDeps())
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func handleParentResetRequest(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ClubID string `json:"clubId"`
		Email  string `json:"email"`
	}
	if err := strictDecode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := orchestrators.ExecuteParentResetRequest(r.Context(), req.ClubID, req.Email, parentResetDeps()); err != nil {
		internalError(w, err)
		return
	}
	// Same body whether or not the email matched an account.
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func handleParentReset(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token    string `json:"token"`
		Password string `json:"password"`
	}
	if err := strictDecode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := orchestrators.ExecuteParentReset(r.Context(), req.Token, req.Password, parentResetDeps()); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func parentResetDeps() orchestrators.ParentResetDeps {
	return orchestrators.ParentResetDeps{
		ParentStore:     stores.ParentStore,
		ResetTokenStore: stores.ResetTokenStore,
		Sender:          emailSender,
		From:            emailFromAddress,
		ReplyTo:         emailReplyTo,
		PortalBaseURL:   portalBaseURL,
	}
}

func handleAccountLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := strictDecode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	a, token, err := orchestrators.ExecuteAccountLogin(r.Context(), orchestrators.AccountLoginInput{
		ClubID:   req.ClubID,
		Email:    req.Email,
		Password: req.Password,
	}, orchestrators.AccountLoginDeps{AccountStore: stores.AccountStore})
	if errors.Is(err, orchestrators.ErrInvalidCredentials) {
		metricsCollector.RecordAuth("member", "unauthenticated")
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}
	if err != nil {
		internalError(w, err)
		return
	}

	session.WriteCookie(w, session.MemberCookieName, session.Descriptor{
		Token:     token,
		SubjectID: a.ID,
		ClubID:    a.ClubID,
	}, secureCookies)

	profile, err := projections.QueryAccountProfile(r.Context(), a, profileDeps())
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func handleAccountLogout(w http.ResponseWriter, r *http.Request) {
	a, err := accountSessions.Validate(r)
	switch {
	case err == nil:
		if err := orchestrators.ExecuteAccountLogout(r.Context(), a, orchestrators.AccountLoginDeps{AccountStore: stores.AccountStore}); err != nil {
			internalError(w, err)
			return
		}
	case errors.Is(err, session.ErrUnauthenticated):
		// No live session to end; clearing the cookie is still the right answer.
	default:
		internalError(w, err)
		return
	}
	session.ClearCookie(w, session.MemberCookieName)
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func handleAccountProfile(w http.ResponseWriter, r *http.Request) {
	a, ok := requireAccount(w, r)
	if !ok {
		return
	}
	profile, err := projections.QueryAccountProfile(r.Context(), a, profileDeps())
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func handleAccountProfileUpdate(w http.ResponseWriter, r *http.Request) {
	a, ok := requireAccount(w, r)
	if !ok {
		return
	}

	var patch orchestrators.ProfilePatch
	if err := lenientDecode(r, &patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	updated, err := orchestrators.ExecuteAccountProfileUpdate(r.Context(), a, patch, orchestrators.AccountLoginDeps{AccountStore: stores.AccountStore})
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	profile, err := projections.QueryAccountProfile(r.Context(), updated, profileDeps())
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func handleAccountResetRequest(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ClubID string `json:"clubId"`
		Email  string `json:"email"`
	}
	if err := strictDecode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := orchestrators.ExecuteAccountResetRequest(r.Context(), req.ClubID, req.Email, accountResetDeps()); err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func handleAccountReset(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token    string `json:"token"`
		Password string `json:"password"`
	}
	if err := strictDecode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := orchestrators.ExecuteAccountReset(r.Context(), req.Token, req.Password, accountResetDeps()); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func accountResetDeps() orchestrators.AccountResetDeps {
	return orchestrators.AccountResetDeps{
		AccountStore:    stores.AccountStore,
		ResetTokenStore: stores.ResetTokenStore,
		Sender:          emailSender,
		From:            emailFromAddress,
		ReplyTo:         emailReplyTo,
		PortalBaseURL:   portalBaseURL,
	}
}
