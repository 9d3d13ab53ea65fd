// Package repository persists follow-up sequences, their steps, and lead
// assignments in PostgreSQL.
package repository

import (
	"context"
	"errors"

	"bdc_backend/internal/sequences/domain"
	"bdc_backend/internal/sequences/processor"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when a sequence, step, or assignment does not exist.
var ErrNotFound = errors.New("sequences: not found")

// dbtx is satisfied by both *pgxpool.Pool and pgx.Tx.
type dbtx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository implements the processor's Store port plus sequence and step
// management. A Repository is either pool-bound or, inside WithinTx,
// transaction-bound.
type Repository struct {
	pool *pgxpool.Pool
	db   dbtx
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool, db: pool}
}

// WithinTx runs fn against a transaction-bound Repository. Nested calls
// reuse the enclosing transaction.
func (r *Repository) WithinTx(ctx context.Context, fn func(tx processor.Store) error) error {
	if r.pool == nil {
		return fn(r)
	}
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := fn(&Repository{db: tx}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

const sequenceColumns = `id, name, description, is_active, trigger_type, lead_source, created_by, created_at, updated_at`

func scanSequence(row pgx.Row) (domain.Sequence, error) {
	var s domain.Sequence
	err := row.Scan(
		&s.ID, &s.Name, &s.Description, &s.IsActive, &s.TriggerType,
		&s.LeadSource, &s.CreatedBy, &s.CreatedAt, &s.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Sequence{}, ErrNotFound
	}
	return s, err
}

// CreateSequenceParams creates a new follow-up sequence.
type CreateSequenceParams struct {
	Name        string
	Description *string
	IsActive    bool
	TriggerType domain.TriggerType
	LeadSource  *string
	CreatedBy   *uuid.UUID
}

func (r *Repository) CreateSequence(ctx context.Context, p CreateSequenceParams) (domain.Sequence, error) {
	row := r.db.QueryRow(ctx,
		`INSERT INTO follow_up_sequences (name, description, is_active, trigger_type, lead_source, created_by)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING `+sequenceColumns,
		p.Name, p.Description, p.IsActive, p.TriggerType, p.LeadSource, p.CreatedBy,
	)
	return scanSequence(row)
}

func (r *Repository) GetSequence(ctx context.Context, id uuid.UUID) (domain.Sequence, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+sequenceColumns+` FROM follow_up_sequences WHERE id = $1`, id)
	return scanSequence(row)
}

// ListSequences returns every sequence, newest first.
func (r *Repository) ListSequences(ctx context.Context) ([]domain.Sequence, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+sequenceColumns+` FROM follow_up_sequences ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Sequence
	for rows.Next() {
		s, err := scanSequence(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// ListActiveByTrigger returns active sequences with the given trigger type,
// used for auto-enrollment.
func (r *Repository) ListActiveByTrigger(ctx context.Context, trigger domain.TriggerType) ([]domain.Sequence, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+sequenceColumns+`
		 FROM follow_up_sequences
		 WHERE is_active AND trigger_type = $1`, trigger)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Sequence
	for rows.Next() {
		s, err := scanSequence(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// UpdateSequenceParams replaces a sequence's editable fields.
type UpdateSequenceParams struct {
	Name        string
	Description *string
	IsActive    bool
	TriggerType domain.TriggerType
	LeadSource  *string
}

func (r *Repository) UpdateSequence(ctx context.Context, id uuid.UUID, p UpdateSequenceParams) (domain.Sequence, error) {
	row := r.db.QueryRow(ctx,
		`UPDATE follow_up_sequences
		 SET name = $2, description = $3, is_active = $4, trigger_type = $5, lead_source = $6, updated_at = now()
		 WHERE id = $1
		 RETURNING `+sequenceColumns,
		id, p.Name, p.Description, p.IsActive, p.TriggerType, p.LeadSource,
	)
	return scanSequence(row)
}

func (r *Repository) DeleteSequence(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM follow_up_sequences WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
