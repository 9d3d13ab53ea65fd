// Package appointments wires showroom appointment booking into the
// application.
package appointments

import (
	"bdc_backend/internal/appointments/handler"
	"bdc_backend/internal/appointments/repository"
	"bdc_backend/internal/appointments/service"
	apphttp "bdc_backend/internal/http"
	leadsrepo "bdc_backend/internal/leads/repository"
	"bdc_backend/internal/leads/scoring"
	"bdc_backend/platform/logger"
	"bdc_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Module struct {
	handler *handler.Handler
	service *service.Service
}

func NewModule(pool *pgxpool.Pool, leads *leadsrepo.Repository, scorer *scoring.Service, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, leads, scorer, log)
	return &Module{
		handler: handler.New(svc, val),
		service: svc,
	}
}

// Name returns the module's identifier for logging purposes.
func (m *Module) Name() string {
	return "appointments"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes registers the module's routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	appts := ctx.Protected.Group("/appointments")
	appts.POST("", m.handler.Create)
	appts.GET("/upcoming", m.handler.ListUpcoming)
	appts.GET("/:id", m.handler.Get)
	appts.PATCH("/:id/status", m.handler.ChangeStatus)
	appts.PATCH("/:id/schedule", m.handler.Reschedule)
	appts.DELETE("/:id", m.handler.Delete)

	ctx.Protected.GET("/leads/:id/appointments", m.handler.ListByLead)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
