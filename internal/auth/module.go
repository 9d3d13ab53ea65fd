// Package auth provides the authentication bounded context module.
package auth

import (
	"bdc_backend/internal/auth/handler"
	"bdc_backend/internal/auth/repository"
	"bdc_backend/internal/auth/service"
	apphttp "bdc_backend/internal/http"
	"bdc_backend/platform/config"
	"bdc_backend/platform/logger"
	"bdc_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Module struct {
	handler *handler.Handler
	service *service.Service
}

func NewModule(pool *pgxpool.Pool, cfg config.AuthServiceConfig, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, cfg, log)
	return &Module{
		handler: handler.New(svc, val),
		service: svc,
	}
}

// Name returns the module's identifier for logging purposes.
func (m *Module) Name() string {
	return "auth"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes registers the module's routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	public := ctx.V1.Group("/auth")
	public.Use(ctx.AuthRateLimiter.RateLimit())
	public.POST("/login", m.handler.Login)

	me := ctx.Protected.Group("/auth")
	me.GET("/me", m.handler.Me)
	me.POST("/change-password", m.handler.ChangePassword)

	admin := ctx.Admin.Group("/users")
	admin.POST("", m.handler.Register)
	admin.GET("", m.handler.ListUsers)
	admin.PATCH("/:id/active", m.handler.SetActive)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
