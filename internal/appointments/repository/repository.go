// Package repository persists showroom appointments.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("appointments: not found")

type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusConfirmed Status = "confirmed"
	StatusCompleted Status = "completed"
	StatusNoShow    Status = "no_show"
	StatusCancelled Status = "cancelled"
)

var validStatuses = map[Status]bool{
	StatusScheduled: true,
	StatusConfirmed: true,
	StatusCompleted: true,
	StatusNoShow:    true,
	StatusCancelled: true,
}

func IsValidStatus(s Status) bool { return validStatuses[s] }

type Appointment struct {
	ID        uuid.UUID
	LeadID    uuid.UUID
	UserID    *uuid.UUID
	Title     string
	StartTime time.Time
	EndTime   *time.Time
	Status    Status
	Notes     *string
	CreatedAt time.Time
}

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const appointmentColumns = `id, lead_id, user_id, title, start_time, end_time, status, notes, created_at`

func scanAppointment(row pgx.Row) (Appointment, error) {
	var a Appointment
	err := row.Scan(
		&a.ID, &a.LeadID, &a.UserID, &a.Title, &a.StartTime, &a.EndTime,
		&a.Status, &a.Notes, &a.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Appointment{}, ErrNotFound
	}
	return a, err
}

type CreateParams struct {
	LeadID    uuid.UUID
	UserID    *uuid.UUID
	Title     string
	StartTime time.Time
	EndTime   *time.Time
	Notes     *string
}

func (r *Repository) Create(ctx context.Context, p CreateParams) (Appointment, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO appointments (lead_id, user_id, title, start_time, end_time, notes)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING `+appointmentColumns,
		p.LeadID, p.UserID, p.Title, p.StartTime, p.EndTime, p.Notes,
	)
	return scanAppointment(row)
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (Appointment, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+appointmentColumns+` FROM appointments WHERE id = $1`, id)
	return scanAppointment(row)
}

// ListByLead returns a lead's appointments, soonest first.
func (r *Repository) ListByLead(ctx context.Context, leadID uuid.UUID) ([]Appointment, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+appointmentColumns+`
		 FROM appointments
		 WHERE lead_id = $1
		 ORDER BY start_time`, leadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collect(rows)
}

// ListUpcoming returns scheduled and confirmed appointments starting in the
// given window, optionally narrowed to one user.
func (r *Repository) ListUpcoming(ctx context.Context, from, to time.Time, userID *uuid.UUID) ([]Appointment, error) {
	query := `SELECT ` + appointmentColumns + `
		 FROM appointments
		 WHERE status IN ('scheduled', 'confirmed')
		   AND start_time >= $1 AND start_time < $2`
	args := []any{from, to}
	if userID != nil {
		query += ` AND user_id = $3`
		args = append(args, *userID)
	}
	query += ` ORDER BY start_time`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collect(rows)
}

func collect(rows pgx.Rows) ([]Appointment, error) {
	var out []Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status Status) (Appointment, error) {
	row := r.pool.QueryRow(ctx,
		`UPDATE appointments SET status = $2 WHERE id = $1 RETURNING `+appointmentColumns,
		id, status)
	return scanAppointment(row)
}

func (r *Repository) Reschedule(ctx context.Context, id uuid.UUID, start time.Time, end *time.Time) (Appointment, error) {
	row := r.pool.QueryRow(ctx,
		`UPDATE appointments
		 SET start_time = $2, end_time = $3, status = 'scheduled'
		 WHERE id = $1
		 RETURNING `+appointmentColumns,
		id, start, end)
	return scanAppointment(row)
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM appointments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
