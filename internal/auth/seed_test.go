package auth

import (
	"context"
	"io"
	"log/slog"
	"testing"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSeedAdmin_FirstBoot(t *testing.T) {
	db := testDB(t)
	repo := NewPrincipalRepository(db)

	password, err := SeedAdmin(context.Background(), repo, discardLogger())
	if err != nil {
		t.Fatalf("SeedAdmin() error = %v", err)
	}
	if password == "" {
		t.Fatal("SeedAdmin() should return the generated password on first boot")
	}

	admin, err := repo.GetByEmail(context.Background(), seedAdminEmail)
	if err != nil {
		t.Fatalf("GetByEmail() error = %v", err)
	}
	if !admin.IsAdmin || !admin.IsActive {
		t.Error("seeded account should be an active admin")
	}
	if !VerifyPassword(password, admin.PasswordHash) {
		t.Error("seeded hash should verify the returned password")
	}
}

func TestSeedAdmin_SkipsWhenPrincipalsExist(t *testing.T) {
	db := testDB(t)
	repo := NewPrincipalRepository(db)

	seedTestPrincipal(t, db, "alice@example.com", true, false)

	password, err := SeedAdmin(context.Background(), repo, discardLogger())
	if err != nil {
		t.Fatalf("SeedAdmin() error = %v", err)
	}
	if password != "" {
		t.Error("SeedAdmin() should skip when principals already exist")
	}

	count, err := repo.Count(context.Background())
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 1 {
		t.Errorf("Count() = %d, want 1 (no admin added)", count)
	}
}
