package analytics

import (
	"github.com/jackc/pgx/v5/pgxpool"

	internalhttp "bdc_backend/internal/http"
)

type Module struct {
	handler *Handler
}

func NewModule(pool *pgxpool.Pool) *Module {
	return &Module{handler: NewHandler(NewService(NewRepository(pool)))}
}

func (m *Module) Name() string { return "analytics" }

func (m *Module) RegisterRoutes(ctx *internalhttp.RouterContext) {
	group := ctx.Protected.Group("/analytics")
	group.GET("/dashboard", m.handler.Dashboard)
	group.GET("/sequences", m.handler.SequencePerformance)
}
