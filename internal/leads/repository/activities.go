package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Activity is one immutable entry in a lead's audit trail. Rows are only
// ever inserted; there is no update or delete path.
type Activity struct {
	ID                uuid.UUID
	LeadID            uuid.UUID
	ActivityType      string
	Description       string
	PerformedBy       *uuid.UUID
	RelatedEntityType *string
	RelatedEntityID   *uuid.UUID
	CreatedAt         time.Time
}

type CreateActivityParams struct {
	LeadID            uuid.UUID
	ActivityType      string
	Description       string
	PerformedBy       *uuid.UUID
	RelatedEntityType *string
	RelatedEntityID   *uuid.UUID
}

// CreateActivity appends an entry to the lead's activity log.
func (r *Repository) CreateActivity(ctx context.Context, p CreateActivityParams) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO lead_activities (lead_id, activity_type, description, performed_by, related_entity_type, related_entity_id)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, p.LeadID, p.ActivityType, p.Description, p.PerformedBy, p.RelatedEntityType, p.RelatedEntityID)
	return err
}

// ListActivities returns a lead's activity log, newest first.
func (r *Repository) ListActivities(ctx context.Context, leadID uuid.UUID, limit int) ([]Activity, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, lead_id, activity_type, description, performed_by, related_entity_type, related_entity_id, created_at
		FROM lead_activities
		WHERE lead_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, leadID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]Activity, 0)
	for rows.Next() {
		var a Activity
		if err := rows.Scan(
			&a.ID, &a.LeadID, &a.ActivityType, &a.Description,
			&a.PerformedBy, &a.RelatedEntityType, &a.RelatedEntityID, &a.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, a)
	}
	return items, rows.Err()
}
