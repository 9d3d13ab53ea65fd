// Package leads provides the leads bounded context module: lead records,
// the activity log, communications, scoring, and lifecycle stages.
package leads

import (
	"bdc_backend/internal/events"
	apphttp "bdc_backend/internal/http"
	"bdc_backend/internal/leads/handler"
	"bdc_backend/internal/leads/repository"
	"bdc_backend/internal/leads/scoring"
	"bdc_backend/internal/leads/service"
	"bdc_backend/platform/logger"
	"bdc_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the leads bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	scorer  *scoring.Service
	repo    *repository.Repository
}

// NewModule creates and initializes the leads module with all its dependencies.
func NewModule(pool *pgxpool.Pool, bus events.Bus, val *validator.Validator, log *logger.Logger, region string) *Module {
	repo := repository.New(pool)
	scorer := scoring.New(repo, log)
	svc := service.New(repo, scorer, bus, log, region)
	h := handler.New(svc, val)

	return &Module{
		handler: h,
		service: svc,
		scorer:  scorer,
		repo:    repo,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "leads"
}

// Service returns the service layer for cross-module wiring.
func (m *Module) Service() *service.Service {
	return m.service
}

// Scorer returns the scoring service for background rescore jobs.
func (m *Module) Scorer() *scoring.Service {
	return m.scorer
}

// Repository returns the repository for direct access if needed.
func (m *Module) Repository() *repository.Repository {
	return m.repo
}

// RegisterRoutes mounts lead routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Protected.Group("/leads")
	group.POST("", m.handler.Create)
	group.GET("", m.handler.List)
	group.GET("/:id", m.handler.Get)
	group.PUT("/:id", m.handler.Update)
	group.DELETE("/:id", m.handler.Delete)
	group.PATCH("/:id/status", m.handler.ChangeStatus)
	group.POST("/:id/communications", m.handler.LogCommunication)
	group.GET("/:id/communications", m.handler.ListCommunications)
	group.GET("/:id/activity", m.handler.ListActivities)
	group.POST("/:id/recalculate", m.handler.Recalculate)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
