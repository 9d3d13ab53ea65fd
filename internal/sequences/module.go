// Package sequences wires follow-up sequence management, enrollment, and
// the step processor into the application.
package sequences

import (
	"bdc_backend/internal/events"
	apphttp "bdc_backend/internal/http"
	"bdc_backend/internal/sequences/handler"
	"bdc_backend/internal/sequences/processor"
	"bdc_backend/internal/sequences/repository"
	"bdc_backend/internal/sequences/service"
	"bdc_backend/platform/logger"
	"bdc_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Config carries the processor tuning knobs.
type Config interface {
	GetSequenceBatchSize() int
	GetMaxStepAttempts() int
}

type Module struct {
	handler   *handler.Handler
	service   *service.Service
	processor *processor.Processor
	repo      *repository.Repository
}

// NewModule builds the sequences module. The notifier delivers email and
// SMS steps; registration of auto-enrollment handlers happens here so lead
// events recorded anywhere in the app reach the processor.
func NewModule(pool *pgxpool.Pool, bus events.Bus, notifier processor.Notifier, cfg Config, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	proc := processor.New(repo, notifier, log, processor.Config{
		BatchSize:   cfg.GetSequenceBatchSize(),
		MaxAttempts: cfg.GetMaxStepAttempts(),
	}).WithBus(bus)
	svc := service.New(repo, proc, log)
	svc.RegisterEventHandlers(bus)

	return &Module{
		handler:   handler.New(svc, val),
		service:   svc,
		processor: proc,
		repo:      repo,
	}
}

// Name returns the module's identifier for logging purposes.
func (m *Module) Name() string {
	return "sequences"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// Processor returns the step processor, used by the scheduler's tick.
func (m *Module) Processor() *processor.Processor {
	return m.processor
}

// RegisterRoutes registers the module's routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	seq := ctx.Protected.Group("/sequences")
	seq.POST("", m.handler.Create)
	seq.GET("", m.handler.List)
	seq.POST("/process", m.handler.Process)
	seq.GET("/:id", m.handler.Get)
	seq.PUT("/:id", m.handler.Update)
	seq.DELETE("/:id", m.handler.Delete)
	seq.POST("/:id/steps", m.handler.AddStep)
	seq.PUT("/steps/:stepId", m.handler.UpdateStep)
	seq.DELETE("/steps/:stepId", m.handler.DeleteStep)
	seq.POST("/:id/enroll", m.handler.Enroll)
	seq.POST("/assignments/:assignmentId/pause", m.handler.PauseAssignment)
	seq.POST("/assignments/:assignmentId/resume", m.handler.ResumeAssignment)
	seq.POST("/assignments/:assignmentId/cancel", m.handler.CancelAssignment)

	ctx.Protected.GET("/leads/:id/sequences", m.handler.ListLeadAssignments)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
