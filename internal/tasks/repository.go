// Package tasks manages the work queue for sales staff: manual to-dos and
// the follow-up items sequence steps generate.
package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("tasks: not found")

type Status string

const (
	StatusOpen      Status = "open"
	StatusDone      Status = "done"
	StatusCancelled Status = "cancelled"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

type Task struct {
	ID                uuid.UUID
	Title             string
	Description       *string
	DueDate           time.Time
	Priority          Priority
	Status            Status
	AssignedTo        uuid.UUID
	RelatedEntityType *string
	RelatedEntityID   *uuid.UUID
	CreatedAt         time.Time
}

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const taskColumns = `id, title, description, due_date, priority, status, assigned_to, related_entity_type, related_entity_id, created_at`

func scanTask(row pgx.Row) (Task, error) {
	var t Task
	err := row.Scan(
		&t.ID, &t.Title, &t.Description, &t.DueDate, &t.Priority, &t.Status,
		&t.AssignedTo, &t.RelatedEntityType, &t.RelatedEntityID, &t.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Task{}, ErrNotFound
	}
	return t, err
}

type CreateParams struct {
	Title             string
	Description       *string
	DueDate           time.Time
	Priority          Priority
	AssignedTo        uuid.UUID
	RelatedEntityType *string
	RelatedEntityID   *uuid.UUID
}

func (r *Repository) Create(ctx context.Context, p CreateParams) (Task, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO tasks (title, description, due_date, priority, assigned_to, related_entity_type, related_entity_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING `+taskColumns,
		p.Title, p.Description, p.DueDate, p.Priority, p.AssignedTo, p.RelatedEntityType, p.RelatedEntityID,
	)
	return scanTask(row)
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (Task, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id)
	return scanTask(row)
}

// ListFilter narrows the task list. Zero values mean no filtering.
type ListFilter struct {
	AssignedTo *uuid.UUID
	Status     Status
	DueBefore  *time.Time
	Limit      int
}

func (r *Repository) List(ctx context.Context, f ListFilter) ([]Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks`
	var conditions []string
	var args []any

	addCondition := func(expr string, arg any) {
		args = append(args, arg)
		conditions = append(conditions, fmt.Sprintf(expr, len(args)))
	}

	if f.AssignedTo != nil {
		addCondition("assigned_to = $%d", *f.AssignedTo)
	}
	if f.Status != "" {
		addCondition("status = $%d", f.Status)
	}
	if f.DueBefore != nil {
		addCondition("due_date < $%d", *f.DueBefore)
	}

	for i, cond := range conditions {
		if i == 0 {
			query += " WHERE " + cond
		} else {
			query += " AND " + cond
		}
	}

	limit := f.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY due_date ASC LIMIT $%d", len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status Status) (Task, error) {
	row := r.pool.QueryRow(ctx,
		`UPDATE tasks SET status = $2 WHERE id = $1 RETURNING `+taskColumns,
		id, status)
	return scanTask(row)
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
