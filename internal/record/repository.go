package record

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Repository defines the interface for record persistence.
type Repository interface {
	Create(ctx context.Context, r *Record) error
	GetByID(ctx context.Context, id string) (*Record, error)
	List(ctx context.Context, limit, offset int) ([]Record, error)
	ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]Record, error)
	Update(ctx context.Context, r *Record) error
	Delete(ctx context.Context, id string) error
	CountByOwner(ctx context.Context, ownerID string) (int, error)
}

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewRepository creates a new SQLite-backed record repository.
func NewRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const recordColumns = "id, image, document, tags, owner_id, created_at, updated_at"

// Create inserts a new record. The ID is generated if empty.
func (r *SQLiteRepository) Create(ctx context.Context, rec *Record) error {
	if rec.ID == "" {
		rec.ID = "rec-" + uuid.NewString()[:8]
	}

	now := time.Now().UTC().Format(time.RFC3339)
	rec.CreatedAt, _ = time.Parse(time.RFC3339, now) //nolint:errcheck // format is controlled
	rec.UpdatedAt = rec.CreatedAt

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO records (id, image, document, tags, owner_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Image, nullString(rec.Document), rec.Tags, rec.OwnerID, now, now,
	)
	if err != nil {
		return fmt.Errorf("creating record: %w", err)
	}

	return nil
}

// GetByID retrieves a record by its unique ID.
func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*Record, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+recordColumns+" FROM records WHERE id = ?", id)
	return scanRecordFrom(row)
}

// List returns records across all owners ordered by creation date,
// paginated by limit and offset. Intended for admin views.
func (r *SQLiteRepository) List(ctx context.Context, limit, offset int) ([]Record, error) {
	return r.listRecords(ctx,
		"SELECT "+recordColumns+" FROM records ORDER BY created_at ASC, id ASC LIMIT ? OFFSET ?",
		limit, offset)
}

// ListByOwner returns a single owner's records ordered by creation date.
func (r *SQLiteRepository) ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]Record, error) {
	return r.listRecords(ctx,
		"SELECT "+recordColumns+" FROM records WHERE owner_id = ? ORDER BY created_at ASC, id ASC LIMIT ? OFFSET ?",
		ownerID, limit, offset)
}

// Update modifies a record's mutable fields (image, document, tags).
// Ownership never changes after creation.
func (r *SQLiteRepository) Update(ctx context.Context, rec *Record) error {
	now := time.Now().UTC().Format(time.RFC3339)
	rec.UpdatedAt, _ = time.Parse(time.RFC3339, now) //nolint:errcheck // format is controlled

	result, err := r.db.ExecContext(ctx,
		`UPDATE records SET image = ?, document = ?, tags = ?, updated_at = ? WHERE id = ?`,
		rec.Image, nullString(rec.Document), rec.Tags, now, rec.ID,
	)
	if err != nil {
		return fmt.Errorf("updating record: %w", err)
	}

	rows, _ := result.RowsAffected() //nolint:errcheck // always succeeds on SQLite
	if rows == 0 {
		return ErrRecordNotFound
	}
	return nil
}

// Delete removes a record by ID.
func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM records WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting record: %w", err)
	}

	rows, _ := result.RowsAffected() //nolint:errcheck // always succeeds on SQLite
	if rows == 0 {
		return ErrRecordNotFound
	}
	return nil
}

// CountByOwner returns the number of records belonging to an owner.
func (r *SQLiteRepository) CountByOwner(ctx context.Context, ownerID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM records WHERE owner_id = ?", ownerID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting records: %w", err)
	}
	return count, nil
}

func (r *SQLiteRepository) listRecords(ctx context.Context, query string, args ...any) ([]Record, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing records: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		rec, err := scanRecordFrom(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating records: %w", err)
	}

	if records == nil {
		records = []Record{}
	}
	return records, nil
}

// scanner is an interface for sql.Row and sql.Rows Scan methods.
type scanner interface {
	Scan(dest ...any) error
}

// scanRecordFrom scans a record from any scanner (Row or Rows).
func scanRecordFrom(s scanner) (*Record, error) {
	var rec Record
	var document sql.NullString
	var createdAt, updatedAt string

	err := s.Scan(&rec.ID, &rec.Image, &document, &rec.Tags, &rec.OwnerID, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("scanning record: %w", err)
	}

	if document.Valid {
		rec.Document = document.String
	}
	rec.CreatedAt, _ = time.Parse(time.RFC3339, createdAt) //nolint:errcheck // format is controlled
	rec.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt) //nolint:errcheck // format is controlled

	return &rec, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
