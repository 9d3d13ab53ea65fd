package repository

import (
	"context"
	"errors"
	"fmt"

	"bdc_backend/internal/sequences/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const stepColumns = `id, sequence_id, step_number, delay_days, delay_hours, action_type, template_id, task_description, task_assignee_role, is_active, created_at`

func scanStep(row pgx.Row) (domain.Step, error) {
	var s domain.Step
	err := row.Scan(
		&s.ID, &s.SequenceID, &s.StepNumber, &s.DelayDays, &s.DelayHours,
		&s.ActionType, &s.TemplateID, &s.TaskDescription, &s.TaskAssigneeRole,
		&s.IsActive, &s.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Step{}, ErrNotFound
	}
	return s, err
}

// CreateStepParams appends a step to a sequence. The step number is assigned
// server-side as max(step_number)+1.
type CreateStepParams struct {
	SequenceID       uuid.UUID
	DelayDays        int
	DelayHours       int
	ActionType       domain.ActionType
	TemplateID       *uuid.UUID
	TaskDescription  *string
	TaskAssigneeRole *string
}

func (r *Repository) CreateStep(ctx context.Context, p CreateStepParams) (domain.Step, error) {
	row := r.db.QueryRow(ctx,
		`INSERT INTO follow_up_steps (sequence_id, step_number, delay_days, delay_hours, action_type, template_id, task_description, task_assignee_role)
		 SELECT $1, COALESCE(MAX(step_number), 0) + 1, $2, $3, $4, $5, $6, $7
		 FROM follow_up_steps WHERE sequence_id = $1
		 RETURNING `+stepColumns,
		p.SequenceID, p.DelayDays, p.DelayHours, p.ActionType, p.TemplateID, p.TaskDescription, p.TaskAssigneeRole,
	)
	return scanStep(row)
}

func (r *Repository) GetStep(ctx context.Context, id uuid.UUID) (domain.Step, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+stepColumns+` FROM follow_up_steps WHERE id = $1`, id)
	return scanStep(row)
}

// ListSteps returns a sequence's steps in execution order.
func (r *Repository) ListSteps(ctx context.Context, sequenceID uuid.UUID) ([]domain.Step, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+stepColumns+`
		 FROM follow_up_steps
		 WHERE sequence_id = $1
		 ORDER BY step_number`, sequenceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Step
	for rows.Next() {
		s, err := scanStep(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// ActiveStep returns the active step with the exact number, or nil when the
// step does not exist or is disabled.
func (r *Repository) ActiveStep(ctx context.Context, sequenceID uuid.UUID, stepNumber int) (*domain.Step, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+stepColumns+`
		 FROM follow_up_steps
		 WHERE sequence_id = $1 AND step_number = $2 AND is_active`,
		sequenceID, stepNumber)
	s, err := scanStep(row)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// FirstActiveStep returns the lowest-numbered active step, or nil when the
// sequence has no runnable steps.
func (r *Repository) FirstActiveStep(ctx context.Context, sequenceID uuid.UUID) (*domain.Step, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+stepColumns+`
		 FROM follow_up_steps
		 WHERE sequence_id = $1 AND is_active
		 ORDER BY step_number
		 LIMIT 1`, sequenceID)
	s, err := scanStep(row)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// UpdateStepParams replaces a step's editable fields. Step numbers are not
// editable directly; reordering happens through deletion and re-creation.
type UpdateStepParams struct {
	DelayDays        int
	DelayHours       int
	ActionType       domain.ActionType
	TemplateID       *uuid.UUID
	TaskDescription  *string
	TaskAssigneeRole *string
	IsActive         bool
}

func (r *Repository) UpdateStep(ctx context.Context, id uuid.UUID, p UpdateStepParams) (domain.Step, error) {
	row := r.db.QueryRow(ctx,
		`UPDATE follow_up_steps
		 SET delay_days = $2, delay_hours = $3, action_type = $4, template_id = $5, task_description = $6, task_assignee_role = $7, is_active = $8
		 WHERE id = $1
		 RETURNING `+stepColumns,
		id, p.DelayDays, p.DelayHours, p.ActionType, p.TemplateID, p.TaskDescription, p.TaskAssigneeRole, p.IsActive,
	)
	return scanStep(row)
}

// DeleteStep removes a step and closes the numbering gap so the remaining
// steps stay contiguous from 1. Both writes commit atomically.
func (r *Repository) DeleteStep(ctx context.Context, id uuid.UUID) error {
	if r.pool == nil {
		return r.deleteStep(ctx, r.db, id)
	}
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := r.deleteStep(ctx, tx, id); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// stepRef pairs a step row with its number for renumbering.
type stepRef struct {
	id     uuid.UUID
	number int
}

// renumberSteps returns the rows whose step_number must change for the
// steps, given in their current order, to be numbered contiguously from 1.
func renumberSteps(steps []stepRef) []stepRef {
	var changed []stepRef
	for i, s := range steps {
		if want := i + 1; s.number != want {
			changed = append(changed, stepRef{id: s.id, number: want})
		}
	}
	return changed
}

func (r *Repository) deleteStep(ctx context.Context, db dbtx, id uuid.UUID) error {
	var sequenceID uuid.UUID
	err := db.QueryRow(ctx,
		`DELETE FROM follow_up_steps WHERE id = $1 RETURNING sequence_id`, id,
	).Scan(&sequenceID)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}

	rows, err := db.Query(ctx,
		`SELECT id, step_number FROM follow_up_steps
		 WHERE sequence_id = $1
		 ORDER BY step_number ASC`, sequenceID,
	)
	if err != nil {
		return err
	}
	var remaining []stepRef
	for rows.Next() {
		var s stepRef
		if err := rows.Scan(&s.id, &s.number); err != nil {
			rows.Close()
			return err
		}
		remaining = append(remaining, s)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	for _, s := range renumberSteps(remaining) {
		_, err := db.Exec(ctx,
			`UPDATE follow_up_steps SET step_number = $2 WHERE id = $1`,
			s.id, s.number,
		)
		if err != nil {
			return fmt.Errorf("renumber steps: %w", err)
		}
	}
	return nil
}
