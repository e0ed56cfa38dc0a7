package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"clubhouse/internal/adapters/identity"
	"clubhouse/internal/metrics"
)

// RouteClass is the coarse protection category of a request path.
type RouteClass int

const (
	// RoutePublic paths are forwarded with no auth check at the gate.
	// Portal pages and APIs are gate-public: their handlers run their own
	// session validation.
	RoutePublic RouteClass = iota
	// RouteAPI paths are machine endpoints: missing staff auth yields a
	// 401 JSON body.
	RouteAPI
	// RouteProtected paths are browser-navigable staff pages: missing
	// staff auth yields a redirect to sign-in.
	RouteProtected
)

// String returns the metrics label for a route class.
func (c RouteClass) String() string {
	switch c {
	case RouteAPI:
		return "api"
	case RouteProtected:
		return "protected"
	default:
		return "public"
	}
}

// publicPatterns are checked first: on any overlap, public wins, so webhook
// and portal endpoints can never be accidentally gated. A trailing '*'
// matches any suffix; otherwise the match is exact.
var publicPatterns = []string{
	"/",
	"/sign-in*",
	"/sign-up*",
	"/portal*",
	"/industries*",
	"/api/webhooks*",
	"/api/parent*",
	"/api/account*",
	"/static/*",
	"/favicon.ico",
	"/metrics",
	"/healthz",
}

// Classify maps a request path to exactly one route class. Classification
// is total: staff pages under /admin are protected, remaining /api paths
// are API, everything else is public.
func Classify(path string) RouteClass {
	for _, pattern := range publicPatterns {
		if matchPattern(pattern, path) {
			return RoutePublic
		}
	}
	if matchPattern("/admin*", path) {
		return RouteProtected
	}
	if matchPattern("/api/*", path) {
		return RouteAPI
	}
	return RoutePublic
}

func matchPattern(pattern, path string) bool {
	if strings.HasSuffix(pattern, "*") {
		return strings.HasPrefix(path, strings.TrimSuffix(pattern, "*"))
	}
	return path == pattern
}

// contextKey is an unexported type for context keys in this package.
type contextKey string

const staffSubjectContextKey contextKey = "staff_subject"

// SignInPath is where unauthenticated browser requests are redirected.
const SignInPath = "/sign-in"

// Gate returns the request-boundary authorization middleware. For every
// request it classifies the path and enforces staff authentication on API
// and protected routes; public routes pass through without the verifier
// ever running.
func Gate(verifier identity.Verifier, collector *metrics.Collector) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			class := Classify(r.URL.Path)
			if class == RoutePublic {
				next.ServeHTTP(w, r)
				return
			}

			subject, ok := verifier.Verify(r)
			if !ok {
				collector.RecordAuth("staff", "unauthenticated")
				if class == RouteAPI {
					writeUnauthorized(w)
					return
				}
				http.Redirect(w, r, SignInPath, http.StatusSeeOther)
				return
			}

			collector.RecordAuth("staff", "ok")
			ctx := context.WithValue(r.Context(), staffSubjectContextKey, subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// StaffSubjectFromContext extracts the verified staff subject id set by the
// gate. Handlers behind the gate can rely on it being present.
func StaffSubjectFromContext(ctx context.Context) (string, bool) {
	subject, ok := ctx.Value(staffSubjectContextKey).(string)
	return subject, ok && subject != ""
}

// ContextWithStaffSubject returns a context with the given subject set.
// Intended for use in tests.
func ContextWithStaffSubject(ctx context.Context, subject string) context.Context {
	return context.WithValue(ctx, staffSubjectContextKey, subject)
}

func writeUnauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"error": "unauthorized"})
}
