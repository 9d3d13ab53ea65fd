package repository

import (
	"context"
	"errors"
	"time"

	leadsrepo "bdc_backend/internal/leads/repository"
	"bdc_backend/internal/sequences/processor"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// The processor reads leads, templates, and users and writes activities and
// tasks inside its advancing transaction. These queries go through r.db so
// they share the transaction when one is open.

func (r *Repository) GetLead(ctx context.Context, id uuid.UUID) (leadsrepo.Lead, error) {
	var l leadsrepo.Lead
	err := r.db.QueryRow(ctx,
		`SELECT id, first_name, last_name, email, phone, source, status, score,
		        lifecycle_stage, assigned_to, notes, last_activity_date, created_at, updated_at
		 FROM leads WHERE id = $1`, id,
	).Scan(
		&l.ID, &l.FirstName, &l.LastName, &l.Email, &l.Phone, &l.Source,
		&l.Status, &l.Score, &l.LifecycleStage, &l.AssignedTo, &l.Notes,
		&l.LastActivityDate, &l.CreatedAt, &l.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return leadsrepo.Lead{}, leadsrepo.ErrNotFound
	}
	return l, err
}

func (r *Repository) ScoringStats(ctx context.Context, leadID uuid.UUID) (leadsrepo.ScoringStats, error) {
	var s leadsrepo.ScoringStats
	err := r.db.QueryRow(ctx,
		`SELECT
			(SELECT COUNT(*) FROM vehicle_interests WHERE lead_id = $1),
			(SELECT COUNT(*) FROM communications WHERE lead_id = $1),
			(SELECT COUNT(*) FROM appointments WHERE lead_id = $1)`,
		leadID,
	).Scan(&s.VehicleInterests, &s.Communications, &s.Appointments)
	return s, err
}

func (r *Repository) TouchLeadActivity(ctx context.Context, leadID uuid.UUID, at time.Time) error {
	_, err := r.db.Exec(ctx,
		`UPDATE leads SET last_activity_date = $2, updated_at = now() WHERE id = $1`,
		leadID, at)
	return err
}

func (r *Repository) UpdateLeadDerivedState(ctx context.Context, leadID uuid.UUID, score int, stage string) error {
	_, err := r.db.Exec(ctx,
		`UPDATE leads SET score = $2, lifecycle_stage = $3, updated_at = now() WHERE id = $1`,
		leadID, score, stage)
	return err
}

func (r *Repository) EmailTemplate(ctx context.Context, id uuid.UUID) (*processor.EmailTemplate, error) {
	var t processor.EmailTemplate
	err := r.db.QueryRow(ctx,
		`SELECT id, name, subject, body FROM email_templates WHERE id = $1`, id,
	).Scan(&t.ID, &t.Name, &t.Subject, &t.Body)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *Repository) SMSTemplate(ctx context.Context, id uuid.UUID) (*processor.SMSTemplate, error) {
	var t processor.SMSTemplate
	err := r.db.QueryRow(ctx,
		`SELECT id, name, body FROM sms_templates WHERE id = $1`, id,
	).Scan(&t.ID, &t.Name, &t.Body)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// FirstUserWithRole picks the longest-tenured active user holding the role.
func (r *Repository) FirstUserWithRole(ctx context.Context, role string) (*processor.User, error) {
	var u processor.User
	err := r.db.QueryRow(ctx,
		`SELECT id, role FROM users
		 WHERE role = $1 AND is_active
		 ORDER BY created_at ASC
		 LIMIT 1`, role,
	).Scan(&u.ID, &u.Role)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *Repository) CreateActivity(ctx context.Context, p processor.ActivityParams) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO lead_activities (lead_id, activity_type, description, performed_by, related_entity_type, related_entity_id)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		p.LeadID, p.ActivityType, p.Description, p.PerformedBy, p.RelatedEntityType, p.RelatedEntityID,
	)
	return err
}

func (r *Repository) CreateTask(ctx context.Context, p processor.TaskParams) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO tasks (title, description, due_date, priority, assigned_to, related_entity_type, related_entity_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		p.Title, p.Description, p.DueDate, p.Priority, p.AssignedTo, p.RelatedEntityType, p.RelatedEntityID,
	)
	return err
}

// compile-time conformance with the processor's persistence port
var _ processor.Store = (*Repository)(nil)
