package identity_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"clubhouse/internal/adapters/identity"
)

var testSecret = []byte("test-provider-secret")

func signedToken(t *testing.T, subject string, expiresIn time.Duration, secret []byte) string {
	t.Helper()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return token
}

func requestWithProviderCookie(value string) *http.Request {
	r := httptest.NewRequest("GET", "/api/classes", nil)
	if value != "" {
		r.AddCookie(&http.Cookie{Name: identity.ProviderCookieName, Value: value})
	}
	return r
}

// TestJWTVerifier covers the verification outcomes the gate depends on.
func TestJWTVerifier(t *testing.T) {
	v := identity.NewJWTVerifier(testSecret)

	tests := []struct {
		name        string
		cookie      string
		wantSubject string
		wantOK      bool
	}{
		{name: "valid token", cookie: signedToken(t, "staff_42", time.Hour, testSecret), wantSubject: "staff_42", wantOK: true},
		{name: "no cookie", cookie: ""},
		{name: "garbage cookie", cookie: "not-a-jwt"},
		{name: "expired token", cookie: signedToken(t, "staff_42", -time.Minute, testSecret)},
		{name: "wrong secret", cookie: signedToken(t, "staff_42", time.Hour, []byte("other-secret"))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			subject, ok := v.Verify(requestWithProviderCookie(tt.cookie))
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if subject != tt.wantSubject {
				t.Errorf("subject = %q, want %q", subject, tt.wantSubject)
			}
		})
	}
}

// TestJWTVerifier_MissingSubject rejects a validly signed token without "sub".
func TestJWTVerifier_MissingSubject(t *testing.T) {
	claims := jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSecret)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := identity.NewJWTVerifier(testSecret).Verify(requestWithProviderCookie(token)); ok {
		t.Error("token without subject must not verify")
	}
}

// TestJWTVerifier_NoneAlgorithm rejects unsigned tokens.
func TestJWTVerifier_NoneAlgorithm(t *testing.T) {
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject:   "staff_42",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := identity.NewJWTVerifier(testSecret).Verify(requestWithProviderCookie(token)); ok {
		t.Error("alg=none token must not verify")
	}
}
