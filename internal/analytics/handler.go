package analytics

import (
	"github.com/gin-gonic/gin"

	"bdc_backend/platform/httpkit"
)

type sequencePerformanceResponse struct {
	SequenceID    string `json:"sequenceId"`
	Name          string `json:"name"`
	Active        int    `json:"active"`
	Paused        int    `json:"paused"`
	Completed     int    `json:"completed"`
	StepsExecuted int    `json:"stepsExecuted"`
}

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Dashboard returns the aggregate lead-book metrics.
// GET /api/v1/analytics/dashboard
func (h *Handler) Dashboard(c *gin.Context) {
	dash, err := h.svc.Dashboard(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, dash)
}

// SequencePerformance returns per-sequence assignment outcomes.
// GET /api/v1/analytics/sequences
func (h *Handler) SequencePerformance(c *gin.Context) {
	list, err := h.svc.SequencePerformance(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	out := make([]sequencePerformanceResponse, len(list))
	for i, p := range list {
		out[i] = sequencePerformanceResponse(p)
	}
	httpkit.OK(c, out)
}
