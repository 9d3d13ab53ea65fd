package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Communication struct {
	ID        uuid.UUID
	LeadID    uuid.UUID
	Direction string
	Channel   string
	Subject   *string
	Body      string
	CreatedBy *uuid.UUID
	CreatedAt time.Time
}

type CreateCommunicationParams struct {
	LeadID    uuid.UUID
	Direction string
	Channel   string
	Subject   *string
	Body      string
	CreatedBy *uuid.UUID
}

func (r *Repository) CreateCommunication(ctx context.Context, p CreateCommunicationParams) (Communication, error) {
	var c Communication
	err := r.pool.QueryRow(ctx, `
		INSERT INTO communications (lead_id, direction, channel, subject, body, created_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, lead_id, direction, channel, subject, body, created_by, created_at
	`, p.LeadID, p.Direction, p.Channel, p.Subject, p.Body, p.CreatedBy).Scan(
		&c.ID, &c.LeadID, &c.Direction, &c.Channel, &c.Subject, &c.Body, &c.CreatedBy, &c.CreatedAt,
	)
	return c, err
}

func (r *Repository) ListCommunications(ctx context.Context, leadID uuid.UUID, limit int) ([]Communication, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, lead_id, direction, channel, subject, body, created_by, created_at
		FROM communications
		WHERE lead_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, leadID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]Communication, 0)
	for rows.Next() {
		var c Communication
		if err := rows.Scan(&c.ID, &c.LeadID, &c.Direction, &c.Channel, &c.Subject, &c.Body, &c.CreatedBy, &c.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

func (r *Repository) CountCommunications(ctx context.Context, leadID uuid.UUID) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM communications WHERE lead_id = $1
	`, leadID).Scan(&count)
	return count, err
}
