package reports

import (
	"github.com/jackc/pgx/v5/pgxpool"

	internalhttp "bdc_backend/internal/http"
	"bdc_backend/platform/config"
	"bdc_backend/platform/logger"
)

type Module struct {
	handler *Handler
}

func NewModule(pool *pgxpool.Pool, cfg config.MinIOConfig, log *logger.Logger) (*Module, error) {
	archiver, err := NewArchiver(cfg)
	if err != nil {
		return nil, err
	}
	return &Module{handler: NewHandler(NewRepository(pool), archiver, log)}, nil
}

func (m *Module) Name() string { return "reports" }

func (m *Module) RegisterRoutes(ctx *internalhttp.RouterContext) {
	group := ctx.Protected.Group("/reports")
	group.GET("/leads.csv", m.handler.ExportLeadsCSV)
	group.GET("/leads.xlsx", m.handler.ExportLeadsXLSX)
	group.POST("/leads/archive", m.handler.ArchiveLeads)
}
