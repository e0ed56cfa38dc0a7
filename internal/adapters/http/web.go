package web

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"log"
	"net/http"
	"os"
	"time"

	"clubhouse/internal/adapters/email"
	"clubhouse/internal/adapters/http/middleware"
	"clubhouse/internal/adapters/identity"
	accountStore "clubhouse/internal/adapters/storage/account"
	attendanceStore "clubhouse/internal/adapters/storage/attendance"
	classStore "clubhouse/internal/adapters/storage/class"
	clubStore "clubhouse/internal/adapters/storage/club"
	memberStore "clubhouse/internal/adapters/storage/member"
	parentStore "clubhouse/internal/adapters/storage/parent"
	resetTokenStore "clubhouse/internal/adapters/storage/resettoken"
	subscriptionStore "clubhouse/internal/adapters/storage/subscription"
	accountDomain "clubhouse/internal/domain/account"
	parentDomain "clubhouse/internal/domain/parent"
	"clubhouse/internal/metrics"
	"clubhouse/internal/session"
)

// Stores holds all storage dependencies.
type Stores struct {
	ClubStore         clubStore.Store
	ClassStore        classStore.Store
	MemberStore       memberStore.Store
	SubscriptionStore subscriptionStore.Store
	AttendanceStore   attendanceStore.Store
	ParentStore       parentStore.Store
	AccountStore      accountStore.Store
	ResetTokenStore   resetTokenStore.Store
}

// loadCSRFKey reads the CSRF secret from CLUBHOUSE_CSRF_KEY (hex-encoded, 32 bytes).
// In production, the key MUST be set. In development, a random key is generated per startup.
func loadCSRFKey() []byte {
	if keyHex := os.Getenv("CLUBHOUSE_CSRF_KEY"); keyHex != "" {
		key, err := hex.DecodeString(keyHex)
		if err != nil || len(key) != 32 {
			log.Fatal("CLUBHOUSE_CSRF_KEY must be 64 hex characters (32 bytes)")
		}
		return key
	}
	if os.Getenv("CLUBHOUSE_ENV") == "production" {
		log.Fatal("CLUBHOUSE_CSRF_KEY is required in production")
	}
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		log.Fatalf("failed to generate CSRF key: %v", err)
	}
	log.Println("WARNING: using random CSRF key (tokens won't survive restart). Set CLUBHOUSE_CSRF_KEY for production.")
	return key
}

// Global stores instance (set by NewMux)
var stores *Stores

// Global metrics collector (set by NewMux)
var metricsCollector *metrics.Collector

// Portal session validators (set by NewMux)
var (
	parentSessions  session.Validator[parentDomain.Parent]
	accountSessions session.Validator[accountDomain.Account]
)

// secureCookies marks session cookies Secure. Enabled in production.
var secureCookies bool

// RateLimitPerSecond controls the per-IP rate limit. Tests can increase this.
var RateLimitPerSecond = 10.0

// RateLimitBurst controls the per-IP burst size.
var RateLimitBurst = 20

// Global email sender instance (set by SetEmailSender)
var emailSender email.Sender

// Email configuration
var emailFromAddress string
var emailReplyTo string

// portalBaseURL is the absolute URL reset links are built against.
var portalBaseURL string

// SetEmailSender sets the global email sender for the application.
func SetEmailSender(sender email.Sender, from, replyTo string) {
	emailSender = sender
	emailFromAddress = from
	emailReplyTo = replyTo
}

// SetPortalBaseURL sets the base URL used in credential-reset emails.
func SetPortalBaseURL(base string) {
	portalBaseURL = base
}

// parentLookup adapts the parent store to the session validator. A
// not-found row maps to ErrNotFound so the validator treats it as an
// authentication failure rather than an internal error.
func parentLookup(ctx context.Context, subjectID, clubID string) (parentDomain.Parent, string, time.Time, error) {
	p, err := stores.ParentStore.GetByIDAndClub(ctx, subjectID, clubID)
	if errors.Is(err, sql.ErrNoRows) {
		return parentDomain.Parent{}, "", time.Time{}, session.ErrNotFound
	}
	if err != nil {
		return parentDomain.Parent{}, "", time.Time{}, err
	}
	return p, p.SessionToken, p.SessionExpiresAt, nil
}

// accountLookup adapts the member account store to the session validator.
func accountLookup(ctx context.Context, subjectID, clubID string) (accountDomain.Account, string, time.Time, error) {
	a, err := stores.AccountStore.GetByIDAndClub(ctx, subjectID, clubID)
	if errors.Is(err, sql.ErrNoRows) {
		return accountDomain.Account{}, "", time.Time{}, session.ErrNotFound
	}
	if err != nil {
		return accountDomain.Account{}, "", time.Time{}, err
	}
	return a, a.SessionToken, a.SessionExpiresAt, nil
}

// NewMux wires HTTP handlers for the app. The verifier authenticates staff
// at the gate; portal handlers run their own session validation.
func NewMux(staticDir string, s *Stores, verifier identity.Verifier, collector *metrics.Collector, metricsHandler http.Handler) http.Handler {
	stores = s
	metricsCollector = collector
	secureCookies = os.Getenv("CLUBHOUSE_ENV") == "production"
	parentSessions = session.Validator[parentDomain.Parent]{
		CookieName: session.ParentCookieName,
		Lookup:     parentLookup,
	}
	accountSessions = session.Validator[accountDomain.Account]{
		CookieName: session.MemberCookieName,
		Lookup:     accountLookup,
	}

	mux := http.NewServeMux()
	assets := http.FileServer(http.Dir(staticDir))
	mux.Handle("/", assets)
	mux.Handle("/static/", http.StripPrefix("/static/", assets))
	mux.Handle("GET /metrics", metricsHandler)
	registerRoutes(mux)

	// CSRF key: 32-byte hex-encoded secret from env var
	csrfKey := loadCSRFKey()

	// Rate limiter: configurable requests per second per IP (OWASP A04)
	limiter := middleware.NewRateLimiter(RateLimitPerSecond, RateLimitBurst)

	// Apply middleware: Instrument -> RateLimit -> Gate -> CSRF -> SecurityHeaders -> Mux
	return middleware.Chain(mux,
		middleware.SecurityHeaders,
		middleware.CSRF(csrfKey, secureCookies),
		middleware.Gate(verifier, collector),
		middleware.RateLimit(limiter),
		middleware.Instrument(collector),
	)
}

// registerRoutes attaches every application handler to the mux. The gate
// has already enforced staff authentication for /api routes outside the
// public patterns; portal and webhook handlers do their own checks.
func registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", handleHealthz)

	// Staff API (behind the gate)
	mux.HandleFunc("GET /api/auth/state", handleAuthState)
	mux.HandleFunc("GET /api/dashboard", handleGetDashboard)
	mux.HandleFunc("GET /api/club", handleGetClub)
	mux.HandleFunc("PATCH /api/club", handleUpdateClub)
	mux.HandleFunc("GET /api/classes", handleListClasses)
	mux.HandleFunc("POST /api/classes", handleCreateClass)
	mux.HandleFunc("GET /api/classes/{id}", handleGetClass)
	mux.HandleFunc("PATCH /api/classes/{id}", handleUpdateClass)
	mux.HandleFunc("DELETE /api/classes/{id}", handleDeleteClass)

	// Parent portal (gate-public, session-validated per handler)
	mux.HandleFunc("POST /api/parent/login", handleParentLogin)
	mux.HandleFunc("POST /api/parent/logout", handleParentLogout)
	mux.HandleFunc("GET /api/parent/profile", handleParentProfile)
	mux.HandleFunc("PATCH /api/parent/profile", handleParentProfileUpdate)
	mux.HandleFunc("POST /api/parent/reset-request", handleParentResetRequest)
	mux.HandleFunc("POST /api/parent/reset", handleParentReset)

	// Member account portal
	mux.HandleFunc("POST /api/account/login", handleAccountLogin)
	mux.HandleFunc("POST /api/account/logout", handleAccountLogout)
	mux.HandleFunc("GET /api/account/profile", handleAccountProfile)
	mux.HandleFunc("PATCH /api/account/profile", handleAccountProfileUpdate)
	mux.HandleFunc("POST /api/account/reset-request", handleAccountResetRequest)
	mux.HandleFunc("POST /api/account/reset", handleAccountReset)

	// Billing provider callbacks (no session; idempotent)
	mux.HandleFunc("POST /api/webhooks/payments", handlePaymentsWebhook)
}

func handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
