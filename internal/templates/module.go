package templates

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
	return "templates"
}

// Repository returns the template store for external use.
func (m *Module) Repository() *Repository {
	return m.repo
}

// RegisterRoutes registers the module's routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	email := ctx.Protected.Group("/templates/email")
	email.POST("", m.handler.CreateEmail)
	email.GET("", m.handler.ListEmail)
	email.GET("/:id", m.handler.GetEmail)
	email.PUT("/:id", m.handler.UpdateEmail)
	email.DELETE("/:id", m.handler.DeleteEmail)

	sms := ctx.Protected.Group("/templates/sms")
	sms.POST("", m.handler.CreateSMS)
	sms.GET("", m.handler.ListSMS)
	sms.GET("/:id", m.handler.GetSMS)
	sms.PUT("/:id", m.handler.UpdateSMS)
	sms.DELETE("/:id", m.handler.DeleteSMS)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
