package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ScoringStats are the engagement counts the score derives from.
type ScoringStats struct {
	VehicleInterests int
	Communications   int
	Appointments     int
}

// GetScoringStats gathers the per-lead counts feeding the score in one round trip.
func (r *Repository) GetScoringStats(ctx context.Context, leadID uuid.UUID) (ScoringStats, error) {
	var stats ScoringStats
	err := r.pool.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM vehicle_interests WHERE lead_id = $1),
			(SELECT COUNT(*) FROM communications WHERE lead_id = $1),
			(SELECT COUNT(*) FROM appointments WHERE lead_id = $1)
	`, leadID).Scan(&stats.VehicleInterests, &stats.Communications, &stats.Appointments)
	return stats, err
}

// ListStale lists leads whose last activity predates the cutoff, or
// that never had any activity, for re-engagement reporting.
func (r *Repository) ListStale(ctx context.Context, cutoff time.Time, limit int) ([]Lead, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+leadColumns+`
		FROM leads
		WHERE status NOT IN ('Closed Won', 'Closed Lost')
		  AND (last_activity_date IS NULL OR last_activity_date < $1)
		ORDER BY score DESC
		LIMIT $2
	`, cutoff, limit)
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
