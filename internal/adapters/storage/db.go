package storage

import (
	"database/sql"
	"fmt"
)

// InitDB initializes the database schema.
// PRE: db is a valid database connection
// POST: All tables are created, WAL mode enabled
func InitDB(db *sql.DB) error {
	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	// Enable foreign key enforcement
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	// Every table except club carries a club_id: the tenant isolation
	// boundary. Queries must always filter by it.
	schema := `
	CREATE TABLE IF NOT EXISTS club (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		slug TEXT NOT NULL UNIQUE,
		owner_subject TEXT NOT NULL UNIQUE,
		contact_email TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS class (
		id TEXT PRIMARY KEY,
		club_id TEXT NOT NULL,
		name TEXT NOT NULL,
		day TEXT NOT NULL DEFAULT '',
		start_time TEXT NOT NULL DEFAULT '',
		end_time TEXT NOT NULL DEFAULT '',
		capacity INTEGER NOT NULL DEFAULT 0,
		coach TEXT NOT NULL DEFAULT '',
		FOREIGN KEY (club_id) REFERENCES club(id)
	);

	CREATE TABLE IF NOT EXISTS parent (
		id TEXT PRIMARY KEY,
		club_id TEXT NOT NULL,
		email TEXT NOT NULL,
		name TEXT NOT NULL DEFAULT '',
		phone TEXT NOT NULL DEFAULT '',
		password_hash TEXT NOT NULL DEFAULT '',
		session_token TEXT NOT NULL DEFAULT '',
		session_expires_at TEXT,
		created_at TEXT NOT NULL,
		UNIQUE (club_id, email),
		FOREIGN KEY (club_id) REFERENCES club(id)
	);

	CREATE TABLE IF NOT EXISTS account (
		id TEXT PRIMARY KEY,
		club_id TEXT NOT NULL,
		email TEXT NOT NULL,
		name TEXT NOT NULL DEFAULT '',
		phone TEXT NOT NULL DEFAULT '',
		password_hash TEXT NOT NULL DEFAULT '',
		session_token TEXT NOT NULL DEFAULT '',
		session_expires_at TEXT,
		created_at TEXT NOT NULL,
		UNIQUE (club_id, email),
		FOREIGN KEY (club_id) REFERENCES club(id)
	);

	CREATE TABLE IF NOT EXISTS member (
		id TEXT PRIMARY KEY,
		club_id TEXT NOT NULL,
		parent_id TEXT,
		account_id TEXT,
		first_name TEXT NOT NULL,
		last_name TEXT NOT NULL DEFAULT '',
		date_of_birth TEXT,
		class_id TEXT,
		status TEXT NOT NULL,
		FOREIGN KEY (club_id) REFERENCES club(id),
		FOREIGN KEY (parent_id) REFERENCES parent(id),
		FOREIGN KEY (account_id) REFERENCES account(id),
		FOREIGN KEY (class_id) REFERENCES class(id)
	);

	CREATE TABLE IF NOT EXISTS subscription (
		id TEXT PRIMARY KEY,
		club_id TEXT NOT NULL,
		member_id TEXT NOT NULL,
		status TEXT NOT NULL,
		amount_cents INTEGER NOT NULL DEFAULT 0,
		currency TEXT NOT NULL DEFAULT 'NZD',
		period_end TEXT,
		payment_method TEXT NOT NULL DEFAULT '',
		FOREIGN KEY (club_id) REFERENCES club(id),
		FOREIGN KEY (member_id) REFERENCES member(id)
	);

	CREATE TABLE IF NOT EXISTS attendance (
		id TEXT PRIMARY KEY,
		club_id TEXT NOT NULL,
		member_id TEXT NOT NULL,
		class_id TEXT,
		date TEXT NOT NULL,
		status TEXT NOT NULL,
		FOREIGN KEY (club_id) REFERENCES club(id),
		FOREIGN KEY (member_id) REFERENCES member(id),
		FOREIGN KEY (class_id) REFERENCES class(id)
	);

	CREATE TABLE IF NOT EXISTS reset_token (
		id TEXT PRIMARY KEY,
		club_id TEXT NOT NULL,
		principal_kind TEXT NOT NULL,
		principal_id TEXT NOT NULL,
		token TEXT NOT NULL UNIQUE,
		expires_at TEXT NOT NULL,
		used INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_member_club ON member(club_id);
	CREATE INDEX IF NOT EXISTS idx_member_parent ON member(parent_id);
	CREATE INDEX IF NOT EXISTS idx_member_account ON member(account_id);
	CREATE INDEX IF NOT EXISTS idx_class_club ON class(club_id);
	CREATE INDEX IF NOT EXISTS idx_subscription_member ON subscription(member_id);
	CREATE INDEX IF NOT EXISTS idx_attendance_member ON attendance(member_id, date);
	CREATE INDEX IF NOT EXISTS idx_attendance_club_date ON attendance(club_id, date);
	`

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}
