package analytics

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Bucket is a grouped count keyed by a column value.
type Bucket struct {
	Key   string
	Count int
}

// LeadTotals summarizes the whole lead book.
type LeadTotals struct {
	Total        int
	AverageScore float64
	CreatedSince int
}

// TaskTotals counts the open task backlog.
type TaskTotals struct {
	Open    int
	Overdue int
}

// SequencePerformance reports per-sequence assignment outcomes.
type SequencePerformance struct {
	SequenceID    string
	Name          string
	Active        int
	Paused        int
	Completed     int
	StepsExecuted int
}

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) LeadsByStatus(ctx context.Context) ([]Bucket, error) {
	return r.buckets(ctx, `SELECT status, COUNT(*) FROM leads GROUP BY status ORDER BY status`)
}

func (r *Repository) LeadsBySource(ctx context.Context) ([]Bucket, error) {
	return r.buckets(ctx, `SELECT source, COUNT(*) FROM leads GROUP BY source ORDER BY source`)
}

func (r *Repository) LeadsByStage(ctx context.Context) ([]Bucket, error) {
	return r.buckets(ctx, `SELECT lifecycle_stage, COUNT(*) FROM leads GROUP BY lifecycle_stage`)
}

func (r *Repository) AppointmentsByStatus(ctx context.Context) ([]Bucket, error) {
	return r.buckets(ctx, `SELECT status, COUNT(*) FROM appointments GROUP BY status ORDER BY status`)
}

func (r *Repository) LeadTotals(ctx context.Context, createdSince time.Time) (LeadTotals, error) {
	var t LeadTotals
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*),
		       COALESCE(AVG(score), 0),
		       COUNT(*) FILTER (WHERE created_at >= $1)
		FROM leads`,
		createdSince,
	).Scan(&t.Total, &t.AverageScore, &t.CreatedSince)
	return t, err
}

func (r *Repository) TaskTotals(ctx context.Context, now time.Time) (TaskTotals, error) {
	var t TaskTotals
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FILTER (WHERE status = 'open'),
		       COUNT(*) FILTER (WHERE status = 'open' AND due_date < $1)
		FROM tasks`,
		now,
	).Scan(&t.Open, &t.Overdue)
	return t, err
}

// SequencePerformance joins assignments onto sequences. current_step holds
// the number of the last executed step, so its sum over assignments counts
// executed steps.
func (r *Repository) SequencePerformance(ctx context.Context) ([]SequencePerformance, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT s.id, s.name,
		       COUNT(a.id) FILTER (WHERE a.is_active AND a.completed_at IS NULL AND a.paused_at IS NULL),
		       COUNT(a.id) FILTER (WHERE a.paused_at IS NOT NULL AND a.completed_at IS NULL),
		       COUNT(a.id) FILTER (WHERE a.completed_at IS NOT NULL),
		       COALESCE(SUM(a.current_step), 0)
		FROM follow_up_sequences s
		LEFT JOIN sequence_assignments a ON a.sequence_id = s.id
		GROUP BY s.id, s.name
		ORDER BY s.name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SequencePerformance
	for rows.Next() {
		var p SequencePerformance
		if err := rows.Scan(&p.SequenceID, &p.Name, &p.Active, &p.Paused, &p.Completed, &p.StepsExecuted); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *Repository) buckets(ctx context.Context, query string) ([]Bucket, error) {
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Bucket
	for rows.Next() {
		var b Bucket
		if err := rows.Scan(&b.Key, &b.Count); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
