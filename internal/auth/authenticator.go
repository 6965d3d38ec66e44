package auth

import (
	"context"
	"errors"
	"fmt"
)

// Authenticator verifies email/password credentials against stored
// principals.
type Authenticator struct {
	principals PrincipalRepository
}

// NewAuthenticator creates an authenticator backed by the given repository.
func NewAuthenticator(principals PrincipalRepository) *Authenticator {
	return &Authenticator{principals: principals}
}

// Authenticate checks the credentials and returns the matching principal.
//
// An unknown email and a wrong password both return ErrInvalidCredentials,
// so the response cannot be used to probe which addresses are registered.
// Storage failures propagate as distinct errors: they are server faults,
// not credential rejections.
//
// Authenticate does not check IsActive. Inactive principals can prove who
// they are; what they may do is decided by the Gate.
func (a *Authenticator) Authenticate(ctx context.Context, email, password string) (*Principal, error) {
	p, err := a.principals.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrPrincipalNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("looking up principal: %w", err)
	}

	if !VerifyPassword(password, p.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	return p, nil
}
