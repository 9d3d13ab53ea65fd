package reports

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// LeadRow is one line of the lead-book export.
type LeadRow struct {
	ID             string
	FirstName      string
	LastName       string
	Email          *string
	Phone          *string
	Source         string
	Status         string
	Score          int
	LifecycleStage string
	AssignedTo     *string
	LastActivity   *time.Time
	CreatedAt      time.Time
}

// Filter narrows the export. Zero values mean no constraint.
type Filter struct {
	Status      string
	Source      string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) LeadBook(ctx context.Context, filter Filter) ([]LeadRow, error) {
	query := `
		SELECT l.id, l.first_name, l.last_name, l.email, l.phone, l.source,
		       l.status, l.score, l.lifecycle_stage,
		       u.first_name || ' ' || u.last_name,
		       l.last_activity_date, l.created_at
		FROM leads l
		LEFT JOIN users u ON u.id = l.assigned_to
		WHERE 1=1`
	var args []any
	addCondition := func(expr string, value any) {
		args = append(args, value)
		query += fmt.Sprintf(" AND "+expr, len(args))
	}

	if filter.Status != "" {
		addCondition("l.status = $%d", filter.Status)
	}
	if filter.Source != "" {
		addCondition("l.source = $%d", filter.Source)
	}
	if filter.CreatedFrom != nil {
		addCondition("l.created_at >= $%d", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		addCondition("l.created_at < $%d", *filter.CreatedTo)
	}
	query += " ORDER BY l.created_at DESC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []LeadRow
	for rows.Next() {
		var row LeadRow
		if err := rows.Scan(
			&row.ID, &row.FirstName, &row.LastName, &row.Email, &row.Phone,
			&row.Source, &row.Status, &row.Score, &row.LifecycleStage,
			&row.AssignedTo, &row.LastActivity, &row.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
