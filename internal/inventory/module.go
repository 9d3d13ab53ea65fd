package inventory

import (
	"github.com/jackc/pgx/v5/pgxpool"

	internalhttp "bdc_backend/internal/http"
	"bdc_backend/internal/leads/scoring"
	"bdc_backend/platform/logger"
	"bdc_backend/platform/validator"
)

// Module wires stock and lead-interest endpoints.
type Module struct {
	repo    *Repository
	handler *Handler
}

func NewModule(pool *pgxpool.Pool, scorer *scoring.Service, val *validator.Validator, log *logger.Logger) *Module {
	repo := NewRepository(pool)
	return &Module{
		repo:    repo,
		handler: NewHandler(repo, scorer, val, log),
	}
}

func (m *Module) Name() string { return "inventory" }

// Repository exposes the inventory store to other modules.
func (m *Module) Repository() *Repository { return m.repo }

func (m *Module) RegisterRoutes(ctx *internalhttp.RouterContext) {
	vehicles := ctx.Protected.Group("/vehicles")
	{
		vehicles.POST("", m.handler.CreateVehicle)
		vehicles.GET("", m.handler.ListVehicles)
		vehicles.GET("/:id", m.handler.GetVehicle)
		vehicles.PATCH("/:id/status", m.handler.ChangeVehicleStatus)
		vehicles.DELETE("/:id", m.handler.DeleteVehicle)
	}

	leads := ctx.Protected.Group("/leads/:id")
	{
		leads.POST("/interests", m.handler.AddInterest)
		leads.GET("/interests", m.handler.ListInterests)
		leads.GET("/matches", m.handler.MatchForLead)
	}

	ctx.Protected.DELETE("/interests/:id", m.handler.DeleteInterest)
}
