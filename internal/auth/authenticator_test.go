package auth

import (
	"context"
	"errors"
	"testing"
)

func TestAuthenticate_Success(t *testing.T) {
	db := testDB(t)
	p := seedTestPrincipal(t, db, "alice@example.com", true, false)

	authn := NewAuthenticator(NewPrincipalRepository(db))

	got, err := authn.Authenticate(context.Background(), "alice@example.com", "test-password")
	if err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}
	if got.ID != p.ID {
		t.Errorf("Authenticate() returned principal %q, want %q", got.ID, p.ID)
	}
}

func TestAuthenticate_WrongPassword(t *testing.T) {
	db := testDB(t)
	seedTestPrincipal(t, db, "alice@example.com", true, false)

	authn := NewAuthenticator(NewPrincipalRepository(db))

	_, err := authn.Authenticate(context.Background(), "alice@example.com", "not-the-password")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Authenticate() with wrong password: got %v, want ErrInvalidCredentials", err)
	}
}

func TestAuthenticate_UnknownEmail(t *testing.T) {
	db := testDB(t)
	seedTestPrincipal(t, db, "alice@example.com", true, false)

	authn := NewAuthenticator(NewPrincipalRepository(db))

	_, err := authn.Authenticate(context.Background(), "nobody@example.com", "test-password")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Authenticate() with unknown email: got %v, want ErrInvalidCredentials", err)
	}

	// The unknown-email and wrong-password failures must be the same
	// sentinel, or responses leak which addresses are registered.
	_, err2 := authn.Authenticate(context.Background(), "alice@example.com", "not-the-password")
	if !errors.Is(err2, ErrInvalidCredentials) {
		t.Errorf("wrong-password error %v does not match unknown-email error %v", err2, err)
	}
}

func TestAuthenticate_InactivePrincipalStillAuthenticates(t *testing.T) {
	db := testDB(t)
	seedTestPrincipal(t, db, "dormant@example.com", false, false)

	authn := NewAuthenticator(NewPrincipalRepository(db))

	// Authentication proves identity only; activity is the Gate's concern.
	got, err := authn.Authenticate(context.Background(), "dormant@example.com", "test-password")
	if err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}
	if got.IsActive {
		t.Error("seeded principal should be inactive")
	}
}
