package repository

import (
	"context"
	"errors"
	"time"

	"bdc_backend/internal/sequences/domain"
	"bdc_backend/internal/sequences/processor"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Postgres unique_violation, raised by the partial unique index on active
// (lead_id, sequence_id) pairs.
const pgUniqueViolation = "23505"

const assignmentColumns = `id, lead_id, sequence_id, current_step, is_active, started_at, last_step_completed_at, next_step_due_at, completed_at, paused_at, step_attempts, last_error`

func scanAssignment(row pgx.Row) (domain.Assignment, error) {
	var a domain.Assignment
	err := row.Scan(
		&a.ID, &a.LeadID, &a.SequenceID, &a.CurrentStep, &a.IsActive,
		&a.StartedAt, &a.LastStepCompletedAt, &a.NextStepDueAt,
		&a.CompletedAt, &a.PausedAt, &a.StepAttempts, &a.LastError,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Assignment{}, ErrNotFound
	}
	return a, err
}

func (r *Repository) CreateAssignment(ctx context.Context, p processor.CreateAssignmentParams) (domain.Assignment, error) {
	row := r.db.QueryRow(ctx,
		`INSERT INTO sequence_assignments (lead_id, sequence_id, next_step_due_at)
		 VALUES ($1, $2, $3)
		 RETURNING `+assignmentColumns,
		p.LeadID, p.SequenceID, p.NextStepDueAt,
	)
	a, err := scanAssignment(row)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return domain.Assignment{}, processor.ErrAlreadyEnrolled
	}
	return a, err
}

func (r *Repository) GetAssignment(ctx context.Context, id uuid.UUID) (domain.Assignment, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+assignmentColumns+` FROM sequence_assignments WHERE id = $1`, id)
	return scanAssignment(row)
}

func (r *Repository) HasActiveAssignment(ctx context.Context, leadID, sequenceID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (
			SELECT 1 FROM sequence_assignments
			WHERE lead_id = $1 AND sequence_id = $2 AND is_active
		)`, leadID, sequenceID).Scan(&exists)
	return exists, err
}

// ListByLead returns a lead's assignments, most recent first.
func (r *Repository) ListByLead(ctx context.Context, leadID uuid.UUID) ([]domain.Assignment, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+assignmentColumns+`
		 FROM sequence_assignments
		 WHERE lead_id = $1
		 ORDER BY started_at DESC`, leadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAssignments(rows)
}

// DueAssignments returns active, unpaused assignments whose next step is due,
// oldest due time first.
func (r *Repository) DueAssignments(ctx context.Context, now time.Time, limit int) ([]domain.Assignment, error) {
	if limit < 1 {
		limit = 100
	}
	rows, err := r.db.Query(ctx,
		`SELECT `+assignmentColumns+`
		 FROM sequence_assignments
		 WHERE is_active
		   AND completed_at IS NULL
		   AND paused_at IS NULL
		   AND next_step_due_at IS NOT NULL
		   AND next_step_due_at <= $1
		 ORDER BY next_step_due_at ASC
		 LIMIT $2`, now, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAssignments(rows)
}

func collectAssignments(rows pgx.Rows) ([]domain.Assignment, error) {
	var out []domain.Assignment
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// AdvanceAssignment applies one step transition. The WHERE clause is the
// optimistic guard: a concurrent advance that already moved current_step
// makes this a no-op, surfaced as ErrStaleAssignment.
func (r *Repository) AdvanceAssignment(ctx context.Context, p processor.AdvanceParams) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE sequence_assignments
		 SET current_step = $3,
		     next_step_due_at = $4,
		     completed_at = $5,
		     is_active = CASE WHEN $5::timestamptz IS NULL THEN is_active ELSE FALSE END,
		     last_step_completed_at = $6,
		     step_attempts = 0,
		     last_error = NULL
		 WHERE id = $1
		   AND current_step = $2
		   AND is_active
		   AND completed_at IS NULL`,
		p.AssignmentID, p.FromStep, p.ToStep, p.NextStepDueAt, p.CompletedAt, p.ExecutedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return processor.ErrStaleAssignment
	}
	return nil
}

// CompleteAssignment finishes an assignment without executing a step, used
// when no runnable step remains. Guarded the same way as AdvanceAssignment.
func (r *Repository) CompleteAssignment(ctx context.Context, assignmentID uuid.UUID, fromStep int, at time.Time) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE sequence_assignments
		 SET is_active = FALSE, completed_at = $3, next_step_due_at = NULL
		 WHERE id = $1
		   AND current_step = $2
		   AND is_active
		   AND completed_at IS NULL`,
		assignmentID, fromStep, at,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return processor.ErrStaleAssignment
	}
	return nil
}

// RecordStepFailure increments the retry counter and returns the new count.
func (r *Repository) RecordStepFailure(ctx context.Context, assignmentID uuid.UUID, stepError string) (int, error) {
	var attempts int
	err := r.db.QueryRow(ctx,
		`UPDATE sequence_assignments
		 SET step_attempts = step_attempts + 1, last_error = $2
		 WHERE id = $1
		 RETURNING step_attempts`,
		assignmentID, stepError,
	).Scan(&attempts)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrNotFound
	}
	return attempts, err
}

func (r *Repository) PauseAssignment(ctx context.Context, assignmentID uuid.UUID, at time.Time) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE sequence_assignments
		 SET paused_at = $2
		 WHERE id = $1 AND is_active AND completed_at IS NULL`,
		assignmentID, at,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ResumeAssignment clears the pause marker and retry state and reschedules
// the pending step.
func (r *Repository) ResumeAssignment(ctx context.Context, assignmentID uuid.UUID, nextDue time.Time) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE sequence_assignments
		 SET paused_at = NULL, step_attempts = 0, last_error = NULL, next_step_due_at = $2
		 WHERE id = $1 AND is_active AND completed_at IS NULL AND paused_at IS NOT NULL`,
		assignmentID, nextDue,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// CancelAssignment deactivates an assignment without marking it completed.
// The lead can be re-enrolled afterwards.
func (r *Repository) CancelAssignment(ctx context.Context, assignmentID uuid.UUID) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE sequence_assignments
		 SET is_active = FALSE, next_step_due_at = NULL
		 WHERE id = $1 AND is_active`,
		assignmentID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
