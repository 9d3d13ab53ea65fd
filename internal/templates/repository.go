package templates

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when a template does not exist.
var ErrNotFound = errors.New("templates: not found")

// EmailTemplate is a reusable outbound email with a {lead_name} placeholder.
type EmailTemplate struct {
	ID        uuid.UUID
	Name      string
	Subject   string
	Body      string
	CreatedAt time.Time
}

// SMSTemplate is a reusable outbound text message.
type SMSTemplate struct {
	ID        uuid.UUID
	Name      string
	Body      string
	CreatedAt time.Time
}

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) CreateEmail(ctx context.Context, name, subject, body string) (EmailTemplate, error) {
	var t EmailTemplate
	err := r.pool.QueryRow(ctx,
		`INSERT INTO email_templates (name, subject, body)
		 VALUES ($1, $2, $3)
		 RETURNING id, name, subject, body, created_at`,
		name, subject, body,
	).Scan(&t.ID, &t.Name, &t.Subject, &t.Body, &t.CreatedAt)
	return t, err
}

func (r *Repository) GetEmail(ctx context.Context, id uuid.UUID) (EmailTemplate, error) {
	var t EmailTemplate
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, subject, body, created_at FROM email_templates WHERE id = $1`, id,
	).Scan(&t.ID, &t.Name, &t.Subject, &t.Body, &t.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return EmailTemplate{}, ErrNotFound
	}
	return t, err
}

func (r *Repository) ListEmail(ctx context.Context) ([]EmailTemplate, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, subject, body, created_at FROM email_templates ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []EmailTemplate
	for rows.Next() {
		var t EmailTemplate
		if err := rows.Scan(&t.ID, &t.Name, &t.Subject, &t.Body, &t.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *Repository) UpdateEmail(ctx context.Context, id uuid.UUID, name, subject, body string) (EmailTemplate, error) {
	var t EmailTemplate
	err := r.pool.QueryRow(ctx,
		`UPDATE email_templates SET name = $2, subject = $3, body = $4
		 WHERE id = $1
		 RETURNING id, name, subject, body, created_at`,
		id, name, subject, body,
	).Scan(&t.ID, &t.Name, &t.Subject, &t.Body, &t.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return EmailTemplate{}, ErrNotFound
	}
	return t, err
}

func (r *Repository) DeleteEmail(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM email_templates WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) CreateSMS(ctx context.Context, name, body string) (SMSTemplate, error) {
	var t SMSTemplate
	err := r.pool.QueryRow(ctx,
		`INSERT INTO sms_templates (name, body)
		 VALUES ($1, $2)
		 RETURNING id, name, body, created_at`,
		name, body,
	).Scan(&t.ID, &t.Name, &t.Body, &t.CreatedAt)
	return t, err
}

func (r *Repository) GetSMS(ctx context.Context, id uuid.UUID) (SMSTemplate, error) {
	var t SMSTemplate
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, body, created_at FROM sms_templates WHERE id = $1`, id,
	).Scan(&t.ID, &t.Name, &t.Body, &t.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return SMSTemplate{}, ErrNotFound
	}
	return t, err
}

func (r *Repository) ListSMS(ctx context.Context) ([]SMSTemplate, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, body, created_at FROM sms_templates ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SMSTemplate
	for rows.Next() {
		var t SMSTemplate
		if err := rows.Scan(&t.ID, &t.Name, &t.Body, &t.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *Repository) UpdateSMS(ctx context.Context, id uuid.UUID, name, body string) (SMSTemplate, error) {
	var t SMSTemplate
	err := r.pool.QueryRow(ctx,
		`UPDATE sms_templates SET name = $2, body = $3
		 WHERE id = $1
		 RETURNING id, name, body, created_at`,
		id, name, body,
	).Scan(&t.ID, &t.Name, &t.Body, &t.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return SMSTemplate{}, ErrNotFound
	}
	return t, err
}

func (r *Repository) DeleteSMS(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM sms_templates WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
