// Package session implements the portal session mechanism shared by parent
// and member self-service accounts: an opaque token carried in a cookie,
// checked on every request against the token and expiry stored on the
// account row. Nothing is cached between requests.
package session

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"time"
)

// Cookie names, one per principal class.
const (
	ParentCookieName = "parent_session"
	MemberCookieName = "member_session"
)

// SessionTTL is how long an issued portal session stays valid.
const SessionTTL = 7 * 24 * time.Hour

var (
	// ErrUnauthenticated covers every failure a client can cause: missing or
	// malformed cookie, unknown account, token mismatch, expired session.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrNotFound is returned by Lookup implementations when no account
	// matches the descriptor. The validator maps it to ErrUnauthenticated.
	ErrNotFound = errors.New("account not found")
)

// Descriptor is the unvalidated claim parsed from a session cookie. It is
// reconstructed per request and never persisted.
type Descriptor struct {
	Token     string
	SubjectID string
	ClubID    string
}

// cookiePayload is the JSON shape inside a portal session cookie. Parent
// cookies carry the subject under "parentId", member cookies under
// "accountId"; both forms decode into the same payload.
type cookiePayload struct {
	Token     string `json:"token"`
	ParentID  string `json:"parentId,omitempty"`
	AccountID string `json:"accountId,omitempty"`
	ClubID    string `json:"clubId"`
}

// ReadDescriptor extracts a session descriptor from the named cookie.
// Any failure (missing cookie, bad encoding, bad JSON, missing field)
// yields (zero, false). It never returns an error to the caller.
// POST: ok implies Token, SubjectID, and ClubID are all non-empty
func ReadDescriptor(r *http.Request, cookieName string) (Descriptor, bool) {
	cookie, err := r.Cookie(cookieName)
	if err != nil || cookie.Value == "" {
		return Descriptor{}, false
	}
	raw, err := base64.RawURLEncoding.DecodeString(cookie.Value)
	if err != nil {
		return Descriptor{}, false
	}
	var payload cookiePayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return Descriptor{}, false
	}
	subject := payload.ParentID
	if subject == "" {
		subject = payload.AccountID
	}
	if payload.Token == "" || subject == "" || payload.ClubID == "" {
		return Descriptor{}, false
	}
	return Descriptor{Token: payload.Token, SubjectID: subject, ClubID: payload.ClubID}, true
}

// WriteCookie sets the named session cookie from a descriptor. The subject
// key is chosen by cookie name so parent and member cookies keep their
// distinct wire shapes.
func WriteCookie(w http.ResponseWriter, cookieName string, d Descriptor, secure bool) {
	payload := cookiePayload{Token: d.Token, ClubID: d.ClubID}
	if cookieName == ParentCookieName {
		payload.ParentID = d.SubjectID
	} else {
		payload.AccountID = d.SubjectID
	}
	raw, _ := json.Marshal(payload)
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    base64.RawURLEncoding.EncodeToString(raw),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
		MaxAge:   int(SessionTTL / time.Second),
	})
}

// ClearCookie removes the named session cookie.
func ClearCookie(w http.ResponseWriter, cookieName string) {
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    "",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
		MaxAge:   -1,
	})
}

// Lookup loads the candidate account for a descriptor, scoped to the
// descriptor's club, and returns the populated principal together with the
// stored token and expiry the presented token must be checked against.
// Implementations return ErrNotFound when no account matches.
type Lookup[T any] func(ctx context.Context, subjectID, clubID string) (T, string, time.Time, error)

// Validator checks a request's session cookie against stored credentials.
// One generic implementation serves both parent and member principals; only
// the cookie name and lookup differ. This keeps the two structurally
// identical code paths from drifting apart.
type Validator[T any] struct {
	CookieName string
	Lookup     Lookup[T]
	Now        func() time.Time // defaults to time.Now
}

// Validate runs the full session check for a request:
//  1. no/unparseable cookie            -> ErrUnauthenticated
//  2. no matching account              -> ErrUnauthenticated
//  3. token not exactly equal          -> ErrUnauthenticated
//  4. expiry missing or not strictly
//     after now                        -> ErrUnauthenticated
//  5. otherwise the populated principal
//
// Store failures other than not-found surface as-is so callers map them to
// an internal error rather than silently failing open or closed.
// INVARIANT: nothing is cached; every request re-reads the stored token
func (v Validator[T]) Validate(r *http.Request) (T, error) {
	var zero T
	desc, ok := ReadDescriptor(r, v.CookieName)
	if !ok {
		return zero, ErrUnauthenticated
	}
	principal, storedToken, expiresAt, err := v.Lookup(r.Context(), desc.SubjectID, desc.ClubID)
	if errors.Is(err, ErrNotFound) {
		return zero, ErrUnauthenticated
	}
	if err != nil {
		return zero, err
	}
	if !tokenEqual(desc.Token, storedToken) {
		return zero, ErrUnauthenticated
	}
	now := time.Now
	if v.Now != nil {
		now = v.Now
	}
	if expiresAt.IsZero() || !expiresAt.After(now()) {
		return zero, ErrUnauthenticated
	}
	return principal, nil
}

// tokenEqual compares the presented token to the stored one in constant
// time. An empty stored token never matches: a logged-out account must not
// validate an empty presented token.
func tokenEqual(presented, stored string) bool {
	if presented == "" || stored == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(presented), []byte(stored)) == 1
}

// NewToken generates a fresh opaque session token (32 random bytes, hex).
func NewToken() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
