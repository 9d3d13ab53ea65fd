package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"bdc_backend/internal/leads/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("lead not found")

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

type Lead struct {
	ID               uuid.UUID
	FirstName        string
	LastName         string
	Email            *string
	Phone            *string
	Source           domain.Source
	Status           domain.Status
	Score            int
	LifecycleStage   domain.LifecycleStage
	AssignedTo       *uuid.UUID
	Notes            *string
	LastActivityDate *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// FullName returns the lead's display name used in outreach and tasks.
func (l Lead) FullName() string {
	return strings.TrimSpace(l.FirstName + " " + l.LastName)
}

const leadColumns = `
	id, first_name, last_name, email, phone, source, status, score,
	lifecycle_stage, assigned_to, notes, last_activity_date, created_at, updated_at
`

func scanLead(row pgx.Row) (Lead, error) {
	var l Lead
	err := row.Scan(
		&l.ID, &l.FirstName, &l.LastName, &l.Email, &l.Phone, &l.Source,
		&l.Status, &l.Score, &l.LifecycleStage, &l.AssignedTo, &l.Notes,
		&l.LastActivityDate, &l.CreatedAt, &l.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Lead{}, ErrNotFound
	}
	return l, err
}

type CreateLeadParams struct {
	FirstName  string
	LastName   string
	Email      *string
	Phone      *string
	Source     domain.Source
	Status     domain.Status
	AssignedTo *uuid.UUID
	Notes      *string
}

func (r *Repository) Create(ctx context.Context, p CreateLeadParams) (Lead, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO leads (first_name, last_name, email, phone, source, status, assigned_to, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+leadColumns,
		p.FirstName, p.LastName, p.Email, p.Phone, p.Source, p.Status, p.AssignedTo, p.Notes,
	)
	return scanLead(row)
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (Lead, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+leadColumns+` FROM leads WHERE id = $1`, id)
	return scanLead(row)
}

// ListFilter narrows the lead listing. Zero values mean "no filter".
type ListFilter struct {
	Status     domain.Status
	Stage      domain.LifecycleStage
	Source     domain.Source
	AssignedTo *uuid.UUID
	MinScore   *int
	Limit      int
	Offset     int
}

func (r *Repository) List(ctx context.Context, f ListFilter) ([]Lead, error) {
	var (
		conditions []string
		args       []any
	)
	addCondition := func(clause string, value any) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf(clause, len(args)))
	}

	if f.Status != "" {
		addCondition("status = $%d", f.Status)
	}
	if f.Stage != "" {
		addCondition("lifecycle_stage = $%d", f.Stage)
	}
	if f.Source != "" {
		addCondition("source = $%d", f.Source)
	}
	if f.AssignedTo != nil {
		addCondition("assigned_to = $%d", *f.AssignedTo)
	}
	if f.MinScore != nil {
		addCondition("score >= $%d", *f.MinScore)
	}

	query := `SELECT ` + leadColumns + ` FROM leads`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY score DESC, created_at DESC"

	limit := f.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	args = append(args, limit)
	query += fmt.Sprintf(" LIMIT $%d", len(args))
	if f.Offset > 0 {
		args = append(args, f.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	leads := make([]Lead, 0)
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, lead)
	}
	return leads, rows.Err()
}

type UpdateLeadParams struct {
	FirstName  string
	LastName   string
	Email      *string
	Phone      *string
	Source     domain.Source
	AssignedTo *uuid.UUID
	Notes      *string
}

func (r *Repository) Update(ctx context.Context, id uuid.UUID, p UpdateLeadParams) (Lead, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE leads
		SET first_name = $2, last_name = $3, email = $4, phone = $5,
		    source = $6, assigned_to = $7, notes = $8, updated_at = now()
		WHERE id = $1
		RETURNING `+leadColumns,
		id, p.FirstName, p.LastName, p.Email, p.Phone, p.Source, p.AssignedTo, p.Notes,
	)
	return scanLead(row)
}

func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.Status) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE leads SET status = $2, updated_at = now() WHERE id = $1
	`, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateDerivedState persists the recomputed score and lifecycle stage.
func (r *Repository) UpdateDerivedState(ctx context.Context, id uuid.UUID, score int, stage domain.LifecycleStage) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE leads SET score = $2, lifecycle_stage = $3, updated_at = now() WHERE id = $1
	`, id, score, stage)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// TouchActivity moves the lead's last activity marker forward.
func (r *Repository) TouchActivity(ctx context.Context, id uuid.UUID, at time.Time) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE leads SET last_activity_date = $2, updated_at = now() WHERE id = $1
	`, id, at)
	return err
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM leads WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListIDs returns every lead ID, used by the nightly full rescore job.
func (r *Repository) ListIDs(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx, `SELECT id FROM leads ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]uuid.UUID, 0)
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
