package auth

import (
	"context"
	"errors"
	"fmt"
)

// Gate enforces the layered access checks: a valid token resolves to a
// principal, an active principal may use the API, and an admin principal
// may manage other accounts.
//
// The checks are ordered. Each level assumes the previous one passed, so
// handlers compose them without re-deciding what "logged in" means.
type Gate struct {
	tokens     *TokenService
	principals PrincipalRepository
}

// NewGate creates a gate using the given token service and repository.
func NewGate(tokens *TokenService, principals PrincipalRepository) *Gate {
	return &Gate{tokens: tokens, principals: principals}
}

// ResolvePrincipal validates a bearer token and loads the principal it
// names.
//
// A bad token and a token whose subject no longer exists both return
// ErrUnauthorized: a deleted account's old tokens behave exactly like
// forged ones. Storage failures propagate unchanged.
func (g *Gate) ResolvePrincipal(ctx context.Context, token string) (*Principal, error) {
	claims, err := g.tokens.Validate(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnauthorized, err)
	}

	p, err := g.principals.GetByEmail(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, ErrPrincipalNotFound) {
			return nil, fmt.Errorf("%w: unknown subject", ErrUnauthorized)
		}
		return nil, fmt.Errorf("resolving principal: %w", err)
	}

	return p, nil
}

// RequireActive rejects principals whose account has been deactivated.
func (g *Gate) RequireActive(p *Principal) error {
	if p == nil {
		return ErrUnauthorized
	}
	if !p.IsActive {
		return ErrInactiveAccount
	}
	return nil
}

// RequireAdmin rejects principals without the admin flag. Inactive
// admins are rejected first: deactivation always wins.
func (g *Gate) RequireAdmin(p *Principal) error {
	if err := g.RequireActive(p); err != nil {
		return err
	}
	if !p.IsAdmin {
		return ErrForbidden
	}
	return nil
}

// RequireOwnerOrAdmin allows access to a resource owned by ownerID when
// the principal is the owner or an active admin.
func (g *Gate) RequireOwnerOrAdmin(p *Principal, ownerID string) error {
	if err := g.RequireActive(p); err != nil {
		return err
	}
	if p.ID == ownerID || p.IsAdmin {
		return nil
	}
	return ErrForbidden
}
