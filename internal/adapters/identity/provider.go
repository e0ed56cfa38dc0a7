// Package identity adapts the external identity provider used for staff
// authentication. The provider manages its own sign-in flow and issues a
// signed session cookie; this adapter only verifies that cookie and extracts
// the subject id. Staff authorization downstream (club ownership) treats the
// subject id exactly like the portal principals' ids.
package identity

import (
	"fmt"
	"net/http"

	"github.com/golang-jwt/jwt/v5"
)

// ProviderCookieName is the session cookie set by the identity provider.
const ProviderCookieName = "__session"

// Verifier yields the verified staff subject id for a request, or false when
// the request carries no valid provider session.
type Verifier interface {
	Verify(r *http.Request) (subject string, ok bool)
}

// JWTVerifier verifies the provider session cookie as an HS256 JWT signed
// with a shared secret. Expiry and signature are checked by the parser;
// anything invalid simply reads as unauthenticated.
type JWTVerifier struct {
	parser *jwt.Parser
	secret []byte
}

// NewJWTVerifier creates a verifier for the given shared secret.
// PRE: secret is non-empty
func NewJWTVerifier(secret []byte) *JWTVerifier {
	return &JWTVerifier{
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithExpirationRequired(),
		),
		secret: secret,
	}
}

// Verify extracts and checks the provider session cookie.
// POST: ok implies subject is the non-empty "sub" claim of a token with a
// valid signature and unexpired "exp"
func (v *JWTVerifier) Verify(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(ProviderCookieName)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	claims := jwt.RegisteredClaims{}
	token, err := v.parser.ParseWithClaims(cookie.Value, &claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing algorithm: %s", t.Method.Alg())
		}
		return v.secret, nil
	})
	if err != nil || !token.Valid || claims.Subject == "" {
		return "", false
	}
	return claims.Subject, true
}

// StaticVerifier returns a fixed subject for every request. Intended for
// tests and local development without a provider configured.
type StaticVerifier struct {
	Subject string
}

// Verify returns the configured subject, or false when none is set.
func (v StaticVerifier) Verify(_ *http.Request) (string, bool) {
	return v.Subject, v.Subject != ""
}
