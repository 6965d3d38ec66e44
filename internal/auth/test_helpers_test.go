package auth

import (
	"context"
	"database/sql"
	"os"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

// testDB creates a temporary SQLite database with the principals schema
// applied. The database file is cleaned up when the test completes.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	// Use a temp file so WAL mode works (in-memory doesn't support it)
	f, err := os.CreateTemp("", "auth-test-*.db")
	if err != nil {
		t.Fatalf("creating temp db: %v", err)
	}
	dbPath := f.Name()
	f.Close()
	t.Cleanup(func() { os.Remove(dbPath) })

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=ON")
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	schemaSQL := `
		CREATE TABLE principals (
			id            TEXT PRIMARY KEY,
			email         TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			is_active     INTEGER NOT NULL DEFAULT 1,
			is_admin      INTEGER NOT NULL DEFAULT 0,
			created_at    TEXT NOT NULL,
			updated_at    TEXT NOT NULL
		) STRICT;
	`
	if _, err := db.Exec(schemaSQL); err != nil {
		t.Fatalf("applying principals schema: %v", err)
	}

	return db
}

// seedTestPrincipal inserts a principal with the password "test-password"
// and returns it.
func seedTestPrincipal(t *testing.T, db *sql.DB, email string, isActive, isAdmin bool) *Principal {
	t.Helper()

	hash, err := HashPassword("test-password")
	if err != nil {
		t.Fatalf("hashing password: %v", err)
	}

	repo := NewPrincipalRepository(db)
	p := &Principal{
		Email:        email,
		PasswordHash: hash,
		IsActive:     isActive,
		IsAdmin:      isAdmin,
	}
	if err := repo.Create(context.Background(), p); err != nil {
		t.Fatalf("creating test principal %s: %v", email, err)
	}
	return p
}
