package auth

import (
	"errors"
	"regexp"
	"time"
)

// emailPattern is a deliberately loose check: one @ with something either
// side and a dotted domain. Real validation happens when mail is sent.
var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// maxEmailLength is the maximum allowed email address length.
const maxEmailLength = 254

// IsValidEmail checks if an email address meets format requirements.
func IsValidEmail(email string) bool {
	return len(email) <= maxEmailLength && emailPattern.MatchString(email)
}

// Principal represents an account that can authenticate and own records.
type Principal struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // never serialised
	IsActive     bool      `json:"is_active"`
	IsAdmin      bool      `json:"is_admin"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Sentinel errors for auth operations.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrPrincipalNotFound  = errors.New("principal not found")
	ErrEmailExists        = errors.New("email already registered")
	ErrInvalidToken       = errors.New("invalid token")
	ErrUnauthorized       = errors.New("not authenticated")
	ErrInactiveAccount    = errors.New("account is inactive")
	ErrForbidden          = errors.New("insufficient permissions")
	ErrHashFailure        = errors.New("password hashing failed")
)
