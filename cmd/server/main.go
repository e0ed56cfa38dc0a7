package main

import (
	"database/sql"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	_ "modernc.org/sqlite"

	emailPkg "clubhouse/internal/adapters/email"
	web "clubhouse/internal/adapters/http"
	"clubhouse/internal/adapters/identity"
	"clubhouse/internal/adapters/storage"
	accountStore "clubhouse/internal/adapters/storage/account"
	attendanceStore "clubhouse/internal/adapters/storage/attendance"
	classStore "clubhouse/internal/adapters/storage/class"
	clubStore "clubhouse/internal/adapters/storage/club"
	memberStore "clubhouse/internal/adapters/storage/member"
	parentStore "clubhouse/internal/adapters/storage/parent"
	resetTokenStore "clubhouse/internal/adapters/storage/resettoken"
	subscriptionStore "clubhouse/internal/adapters/storage/subscription"
	"clubhouse/internal/metrics"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	// Initialize database with WAL mode, foreign keys, and busy timeout
	dbPath := envOrDefault("CLUBHOUSE_DB", "clubhouse.db")
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	// Connection pool settings for WAL mode
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)

	if err := db.Ping(); err != nil {
		log.Fatalf("database unreachable: %v", err)
	}
	if err := storage.InitDB(db); err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}
	log.Println("Database initialized successfully!")

	stores := &web.Stores{
		ClubStore:         clubStore.NewSQLiteStore(db),
		ClassStore:        classStore.NewSQLiteStore(db),
		MemberStore:       memberStore.NewSQLiteStore(db),
		SubscriptionStore: subscriptionStore.NewSQLiteStore(db),
		AttendanceStore:   attendanceStore.NewSQLiteStore(db),
		ParentStore:       parentStore.NewSQLiteStore(db),
		AccountStore:      accountStore.NewSQLiteStore(db),
		ResetTokenStore:   resetTokenStore.NewSQLiteStore(db),
	}

	// Staff identity provider: verify the provider's signed session cookie.
	// Without a secret the server falls back to a fixed development subject.
	var verifier identity.Verifier
	if secret := os.Getenv("CLUBHOUSE_SESSION_SECRET"); secret != "" {
		verifier = identity.NewJWTVerifier([]byte(secret))
		log.Println("Staff identity verifier configured (JWT)")
	} else {
		if os.Getenv("CLUBHOUSE_ENV") == "production" {
			log.Fatal("CLUBHOUSE_SESSION_SECRET is required in production")
		}
		verifier = identity.StaticVerifier{Subject: envOrDefault("CLUBHOUSE_DEV_STAFF_SUBJECT", "dev_staff")}
		log.Println("WARNING: using static staff identity (dev only). Set CLUBHOUSE_SESSION_SECRET for production.")
	}

	// Configure email sender
	resendKey := os.Getenv("CLUBHOUSE_RESEND_KEY")
	emailFrom := envOrDefault("CLUBHOUSE_RESEND_FROM", "Clubhouse <noreply@clubhouse.app>")
	emailReply := envOrDefault("CLUBHOUSE_REPLY_TO", "support@clubhouse.app")
	if resendKey != "" {
		web.SetEmailSender(emailPkg.NewResendSender(resendKey, emailFrom), emailFrom, emailReply)
		log.Println("Email sender configured (Resend)")
	} else {
		web.SetEmailSender(emailPkg.NewNoopSender(), emailFrom, emailReply)
		if os.Getenv("CLUBHOUSE_ENV") == "production" {
			log.Println("WARNING: CLUBHOUSE_RESEND_KEY is not set, email delivery is DISABLED in production")
		} else {
			log.Println("Email sender configured (noop, set CLUBHOUSE_RESEND_KEY for real delivery)")
		}
	}
	web.SetPortalBaseURL(envOrDefault("CLUBHOUSE_PORTAL_URL", "http://localhost:8080"))

	// Prometheus metrics
	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	mux := web.NewMux("static", stores, verifier, collector, metrics.Handler(registry))

	addr := envOrDefault("CLUBHOUSE_ADDR", ":8080")
	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("Clubhouse %s starting on %s (env=%s)", version, addr, envOrDefault("CLUBHOUSE_ENV", "development"))
	if err := server.ListenAndServe(); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
