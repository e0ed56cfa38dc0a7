package middleware_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"clubhouse/internal/adapters/http/middleware"
	"clubhouse/internal/adapters/identity"
)

// TestClassify covers the fixed route table, including the overlap rule:
// public always wins over API and protected.
func TestClassify(t *testing.T) {
	tests := []struct {
		path string
		want middleware.RouteClass
	}{
		{"/", middleware.RoutePublic},
		{"/sign-in", middleware.RoutePublic},
		{"/sign-in/callback", middleware.RoutePublic},
		{"/sign-up", middleware.RoutePublic},
		{"/portal", middleware.RoutePublic},
		{"/portal/children", middleware.RoutePublic},
		{"/industries/gyms", middleware.RoutePublic},
		{"/api/webhooks/payments", middleware.RoutePublic},
		{"/api/parent/profile", middleware.RoutePublic},
		{"/api/account/profile", middleware.RoutePublic},
		{"/static/js/session-watch.js", middleware.RoutePublic},
		{"/metrics", middleware.RoutePublic},
		{"/healthz", middleware.RoutePublic},
		{"/admin", middleware.RouteProtected},
		{"/admin/members", middleware.RouteProtected},
		{"/api/classes", middleware.RouteAPI},
		{"/api/classes/CL9", middleware.RouteAPI},
		{"/api/club", middleware.RouteAPI},
		{"/api/dashboard", middleware.RouteAPI},
		{"/api/auth/state", middleware.RouteAPI},
		{"/pricing", middleware.RoutePublic},
		{"/some/random/page", middleware.RoutePublic},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := middleware.Classify(tt.path); got != tt.want {
				t.Errorf("Classify(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

// spyVerifier records whether Verify was called.
type spyVerifier struct {
	subject string
	called  bool
}

func (v *spyVerifier) Verify(_ *http.Request) (string, bool) {
	v.called = true
	return v.subject, v.subject != ""
}

func runGate(t *testing.T, verifier identity.Verifier, path string) (*httptest.ResponseRecorder, bool) {
	t.Helper()
	handlerRan := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerRan = true
		w.WriteHeader(http.StatusOK)
	})
	rec := httptest.NewRecorder()
	middleware.Gate(verifier, nil)(next).ServeHTTP(rec, httptest.NewRequest("GET", path, nil))
	return rec, handlerRan
}

// TestGate_PublicSkipsVerifier verifies public paths are forwarded without
// the staff verifier ever running, including webhooks with no cookie.
func TestGate_PublicSkipsVerifier(t *testing.T) {
	for _, path := range []string{"/", "/api/webhooks/payments", "/api/parent/profile", "/portal/children"} {
		verifier := &spyVerifier{}
		rec, handlerRan := runGate(t, verifier, path)
		if verifier.called {
			t.Errorf("%s: verifier must not run for public paths", path)
		}
		if !handlerRan || rec.Code != http.StatusOK {
			t.Errorf("%s: expected forward, got %d", path, rec.Code)
		}
	}
}

// TestGate_APIUnauthorized verifies unauthenticated API requests get a 401
// JSON body and are not forwarded.
func TestGate_APIUnauthorized(t *testing.T) {
	rec, handlerRan := runGate(t, &spyVerifier{}, "/api/classes")
	if handlerRan {
		t.Error("handler must not run without staff auth")
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected JSON error body, got Content-Type %q", ct)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("error body is not JSON: %v", err)
	}
	if body["error"] == "" {
		t.Error("expected error field in body")
	}
}

// TestGate_ProtectedRedirects verifies unauthenticated browser routes get a
// redirect to sign-in instead of an error body.
func TestGate_ProtectedRedirects(t *testing.T) {
	rec, handlerRan := runGate(t, &spyVerifier{}, "/admin/members")
	if handlerRan {
		t.Error("handler must not run without staff auth")
	}
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != middleware.SignInPath {
		t.Errorf("expected redirect to %s, got %q", middleware.SignInPath, loc)
	}
}

// TestGate_AuthenticatedForwardsSubject verifies the verified subject is
// available to the handler.
func TestGate_AuthenticatedForwardsSubject(t *testing.T) {
	var gotSubject string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSubject, _ = middleware.StaffSubjectFromContext(r.Context())
	})
	rec := httptest.NewRecorder()
	middleware.Gate(&spyVerifier{subject: "staff_42"}, nil)(next).ServeHTTP(rec, httptest.NewRequest("GET", "/api/classes", nil))
	if gotSubject != "staff_42" {
		t.Errorf("expected subject staff_42 in context, got %q", gotSubject)
	}
}
