package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// PrincipalRepository defines the interface for principal persistence.
type PrincipalRepository interface {
	Create(ctx context.Context, p *Principal) error
	GetByID(ctx context.Context, id string) (*Principal, error)
	GetByEmail(ctx context.Context, email string) (*Principal, error)
	List(ctx context.Context, limit, offset int) ([]Principal, error)
	Update(ctx context.Context, p *Principal) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
}

// SQLitePrincipalRepository implements PrincipalRepository using SQLite.
type SQLitePrincipalRepository struct {
	db *sql.DB
}

// NewPrincipalRepository creates a new SQLite-backed principal repository.
func NewPrincipalRepository(db *sql.DB) *SQLitePrincipalRepository {
	return &SQLitePrincipalRepository{db: db}
}

const principalColumns = "id, email, password_hash, is_active, is_admin, created_at, updated_at"

// Create inserts a new principal. The ID is generated if empty.
func (r *SQLitePrincipalRepository) Create(ctx context.Context, p *Principal) error {
	if p.ID == "" {
		p.ID = "prn-" + uuid.NewString()[:8]
	}

	now := time.Now().UTC().Format(time.RFC3339)
	p.CreatedAt, _ = time.Parse(time.RFC3339, now) //nolint:errcheck // format is controlled
	p.UpdatedAt = p.CreatedAt

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO principals (id, email, password_hash, is_active, is_admin, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Email, p.PasswordHash, boolToInt(p.IsActive), boolToInt(p.IsAdmin), now, now,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrEmailExists
		}
		return fmt.Errorf("creating principal: %w", err)
	}

	return nil
}

// GetByID retrieves a principal by their unique ID.
func (r *SQLitePrincipalRepository) GetByID(ctx context.Context, id string) (*Principal, error) {
	return r.getPrincipal(ctx,
		"SELECT "+principalColumns+" FROM principals WHERE id = ?", id)
}

// GetByEmail retrieves a principal by their email address.
func (r *SQLitePrincipalRepository) GetByEmail(ctx context.Context, email string) (*Principal, error) {
	return r.getPrincipal(ctx,
		"SELECT "+principalColumns+" FROM principals WHERE email = ?", email)
}

// List returns principals ordered by creation date, paginated by limit
// and offset.
func (r *SQLitePrincipalRepository) List(ctx context.Context, limit, offset int) ([]Principal, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+principalColumns+" FROM principals ORDER BY created_at ASC, id ASC LIMIT ? OFFSET ?",
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("listing principals: %w", err)
	}
	defer rows.Close()

	var principals []Principal
	for rows.Next() {
		p, err := scanPrincipalFrom(rows)
		if err != nil {
			return nil, err
		}
		principals = append(principals, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating principals: %w", err)
	}

	if principals == nil {
		principals = []Principal{}
	}
	return principals, nil
}

// Update modifies a principal's mutable fields (email, is_active, is_admin).
func (r *SQLitePrincipalRepository) Update(ctx context.Context, p *Principal) error {
	now := time.Now().UTC().Format(time.RFC3339)
	p.UpdatedAt, _ = time.Parse(time.RFC3339, now) //nolint:errcheck // format is controlled

	result, err := r.db.ExecContext(ctx,
		`UPDATE principals SET email = ?, is_active = ?, is_admin = ?, updated_at = ? WHERE id = ?`,
		p.Email, boolToInt(p.IsActive), boolToInt(p.IsAdmin), now, p.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrEmailExists
		}
		return fmt.Errorf("updating principal: %w", err)
	}

	rows, _ := result.RowsAffected() //nolint:errcheck // always succeeds on SQLite
	if rows == 0 {
		return ErrPrincipalNotFound
	}
	return nil
}

// UpdatePassword changes a principal's password hash.
func (r *SQLitePrincipalRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	now := time.Now().UTC().Format(time.RFC3339)

	result, err := r.db.ExecContext(ctx,
		`UPDATE principals SET password_hash = ?, updated_at = ? WHERE id = ?`,
		passwordHash, now, id,
	)
	if err != nil {
		return fmt.Errorf("updating password: %w", err)
	}

	rows, _ := result.RowsAffected() //nolint:errcheck // always succeeds on SQLite
	if rows == 0 {
		return ErrPrincipalNotFound
	}
	return nil
}

// Delete removes a principal by ID. Owned records are removed by the
// foreign key cascade.
func (r *SQLitePrincipalRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM principals WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting principal: %w", err)
	}

	rows, _ := result.RowsAffected() //nolint:errcheck // always succeeds on SQLite
	if rows == 0 {
		return ErrPrincipalNotFound
	}
	return nil
}

// Count returns the total number of principals.
func (r *SQLitePrincipalRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM principals").Scan(&count); err != nil {
		return 0, fmt.Errorf("counting principals: %w", err)
	}
	return count, nil
}

// getPrincipal executes a query and scans a single principal result.
func (r *SQLitePrincipalRepository) getPrincipal(ctx context.Context, query string, args ...any) (*Principal, error) {
	return scanPrincipalFrom(r.db.QueryRowContext(ctx, query, args...))
}

// scanner is an interface for sql.Row and sql.Rows Scan methods.
type scanner interface {
	Scan(dest ...any) error
}

// scanPrincipalFrom scans a principal from any scanner (Row or Rows).
func scanPrincipalFrom(s scanner) (*Principal, error) {
	var p Principal
	var isActive, isAdmin int
	var createdAt, updatedAt string

	err := s.Scan(&p.ID, &p.Email, &p.PasswordHash, &isActive, &isAdmin, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPrincipalNotFound
		}
		return nil, fmt.Errorf("scanning principal: %w", err)
	}

	p.IsActive = isActive != 0
	p.IsAdmin = isAdmin != 0
	p.CreatedAt, _ = time.Parse(time.RFC3339, createdAt) //nolint:errcheck // format is controlled
	p.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt) //nolint:errcheck // format is controlled

	return &p, nil
}

// Helper functions.

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// isUniqueViolation checks if a SQLite error is a UNIQUE constraint violation.
func isUniqueViolation(err error) bool {
	return err != nil && (strings.Contains(err.Error(), "UNIQUE constraint failed") ||
		strings.Contains(err.Error(), "unique constraint"))
}
