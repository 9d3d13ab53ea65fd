package scoring

import (
	"context"
	"fmt"
	"time"

	"bdc_backend/internal/leads/domain"
	"bdc_backend/internal/leads/repository"
	"bdc_backend/platform/logger"

	"github.com/google/uuid"
)

// Result is the outcome of a full recalculation.
type Result struct {
	Score          int                   `json:"score"`
	LifecycleStage domain.LifecycleStage `json:"lifecycleStage"`
	Components     Components            `json:"components"`
	Version        string                `json:"version"`
}

// Service recomputes and persists lead scores and lifecycle stages.
type Service struct {
	repo *repository.Repository
	log  *logger.Logger
	now  func() time.Time
}

func New(repo *repository.Repository, log *logger.Logger) *Service {
	return &Service{repo: repo, log: log, now: time.Now}
}

// WithClock overrides the service clock. Intended for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Recalculate gathers the lead's current snapshot, computes score and
// lifecycle stage, persists both, and returns the breakdown.
func (s *Service) Recalculate(ctx context.Context, leadID uuid.UUID) (*Result, error) {
	lead, err := s.repo.GetByID(ctx, leadID)
	if err != nil {
		return nil, err
	}

	stats, err := s.repo.GetScoringStats(ctx, leadID)
	if err != nil {
		return nil, fmt.Errorf("load scoring stats: %w", err)
	}

	components := Breakdown(Inputs{
		Source:           lead.Source,
		HasEmail:         lead.Email != nil && *lead.Email != "",
		HasPhone:         lead.Phone != nil && *lead.Phone != "",
		VehicleInterests: stats.VehicleInterests,
		Communications:   stats.Communications,
		Appointments:     stats.Appointments,
		LastActivity:     lead.LastActivityDate,
		Now:              s.now(),
	})
	stage := domain.DeriveLifecycleStage(lead.Status, stats.Communications)

	if err := s.repo.UpdateDerivedState(ctx, leadID, components.Total, stage); err != nil {
		return nil, fmt.Errorf("persist derived state: %w", err)
	}

	s.log.Debug("lead rescored",
		"lead_id", leadID.String(),
		"score", components.Total,
		"stage", string(stage),
	)

	return &Result{
		Score:          components.Total,
		LifecycleStage: stage,
		Components:     components,
		Version:        scoreVersion,
	}, nil
}
