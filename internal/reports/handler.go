package reports

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"bdc_backend/platform/httpkit"
	"bdc_backend/platform/logger"
)

type archiveResponse struct {
	FileKey     string `json:"fileKey"`
	DownloadURL string `json:"downloadUrl"`
	ExpiresAt   string `json:"expiresAt"`
	RowCount    int    `json:"rowCount"`
}

type Handler struct {
	repo     *Repository
	archiver *Archiver
	log      *logger.Logger
}

func NewHandler(repo *Repository, archiver *Archiver, log *logger.Logger) *Handler {
	return &Handler{repo: repo, archiver: archiver, log: log}
}

// ExportLeadsCSV streams the lead book as a CSV download.
// GET /api/v1/reports/leads.csv
func (h *Handler) ExportLeadsCSV(c *gin.Context) {
	rows, ok := h.fetch(c)
	if !ok {
		return
	}

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", "attachment; filename=leads.csv")
	c.Status(http.StatusOK)

	if err := WriteLeadBookCSV(c.Writer, rows); err != nil {
		h.log.Error("lead book CSV export failed", "error", err.Error())
	}
}

// ExportLeadsXLSX streams the lead book as an XLSX download.
// GET /api/v1/reports/leads.xlsx
func (h *Handler) ExportLeadsXLSX(c *gin.Context) {
	rows, ok := h.fetch(c)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := WriteLeadBookXLSX(&buf, rows); err != nil {
		httpkit.Error(c, http.StatusInternalServerError, "report generation failed", nil)
		return
	}

	c.Header("Content-Type", xlsxContentType)
	c.Header("Content-Disposition", "attachment; filename=leads.xlsx")
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// ArchiveLeads generates an XLSX lead book, stores it in object storage,
// and returns a time-limited download link.
// POST /api/v1/reports/leads/archive
func (h *Handler) ArchiveLeads(c *gin.Context) {
	if h.archiver == nil {
		httpkit.Error(c, http.StatusServiceUnavailable, "report archival is not configured", nil)
		return
	}

	rows, ok := h.fetch(c)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := WriteLeadBookXLSX(&buf, rows); err != nil {
		httpkit.Error(c, http.StatusInternalServerError, "report generation failed", nil)
		return
	}

	key := fmt.Sprintf("lead-book/%s.xlsx", time.Now().UTC().Format("2006-01-02T15-04-05Z"))
	if err := h.archiver.Store(c.Request.Context(), key, buf.Bytes(), xlsxContentType); err != nil {
		h.log.Error("report archive upload failed", "file_key", key, "error", err.Error())
		httpkit.Error(c, http.StatusBadGateway, "report archival failed", nil)
		return
	}

	url, expiresAt, err := h.archiver.DownloadURL(c.Request.Context(), key)
	if err != nil {
		httpkit.Error(c, http.StatusBadGateway, "report archival failed", nil)
		return
	}

	httpkit.JSON(c, http.StatusCreated, archiveResponse{
		FileKey:     key,
		DownloadURL: url,
		ExpiresAt:   expiresAt.UTC().Format(time.RFC3339),
		RowCount:    len(rows),
	})
}

func (h *Handler) fetch(c *gin.Context) ([]LeadRow, bool) {
	filter := Filter{
		Status: c.Query("status"),
		Source: c.Query("source"),
	}
	if from := c.Query("createdFrom"); from != "" {
		t, err := time.Parse(time.RFC3339, from)
		if err != nil {
			httpkit.Error(c, http.StatusBadRequest, "createdFrom must be RFC 3339", nil)
			return nil, false
		}
		filter.CreatedFrom = &t
	}
	if to := c.Query("createdTo"); to != "" {
		t, err := time.Parse(time.RFC3339, to)
		if err != nil {
			httpkit.Error(c, http.StatusBadRequest, "createdTo must be RFC 3339", nil)
			return nil, false
		}
		filter.CreatedTo = &t
	}

	rows, err := h.repo.LeadBook(c.Request.Context(), filter)
	if httpkit.HandleError(c, err) {
		return nil, false
	}
	return rows, true
}
