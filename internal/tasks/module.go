package tasks

import (
	apphttp "bdc_backend/internal/http"
	"bdc_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Module struct {
	handler *Handler
	repo    *Repository
}

func NewModule(pool *pgxpool.Pool, val *validator.Validator) *Module {
	repo := NewRepository(pool)
	return &Module{
		handler: NewHandler(repo, val),
		repo:    repo,
	}
}

// Name returns the module's identifier for logging purposes.
func (m *Module) Name() string {
	return "tasks"
}

// Repository returns the task store for external use.
func (m *Module) Repository() *Repository {
	return m.repo
}

// RegisterRoutes registers the module's routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	tasks := ctx.Protected.Group("/tasks")
	tasks.POST("", m.handler.Create)
	tasks.GET("", m.handler.List)
	tasks.GET("/:id", m.handler.Get)
	tasks.PATCH("/:id/status", m.handler.ChangeStatus)
	tasks.DELETE("/:id", m.handler.Delete)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
