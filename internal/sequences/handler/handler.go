package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"bdc_backend/internal/sequences/service"
	"bdc_backend/internal/sequences/transport"
	"bdc_backend/platform/httpkit"
	"bdc_backend/platform/validator"
)

// Handler handles HTTP requests for follow-up sequences.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	msgInvalidID        = "invalid ID"
)

func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// Create creates a follow-up sequence.
// POST /api/v1/sequences
func (h *Handler) Create(c *gin.Context) {
	var req transport.CreateSequenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	createdBy := identity.UserID()

	result, err := h.svc.CreateSequence(c.Request.Context(), req, &createdBy)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, result)
}

// List returns all sequences.
// GET /api/v1/sequences
func (h *Handler) List(c *gin.Context) {
	result, err := h.svc.ListSequences(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Get returns a sequence with its steps.
// GET /api/v1/sequences/:id
func (h *Handler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	result, err := h.svc.GetSequence(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Update replaces a sequence's settings.
// PUT /api/v1/sequences/:id
func (h *Handler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req transport.UpdateSequenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.UpdateSequence(c.Request.Context(), id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Delete removes a sequence, its steps, and its assignments.
// DELETE /api/v1/sequences/:id
func (h *Handler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if httpkit.HandleError(c, h.svc.DeleteSequence(c.Request.Context(), id)) {
		return
	}
	c.Status(http.StatusNoContent)
}

// AddStep appends a step to a sequence.
// POST /api/v1/sequences/:id/steps
func (h *Handler) AddStep(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req transport.CreateStepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.AddStep(c.Request.Context(), id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, result)
}

// UpdateStep replaces a step's settings.
// PUT /api/v1/sequences/steps/:stepId
func (h *Handler) UpdateStep(c *gin.Context) {
	stepID, ok := parseID(c, "stepId")
	if !ok {
		return
	}
	var req transport.UpdateStepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.UpdateStep(c.Request.Context(), stepID, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// DeleteStep removes a step and renumbers the ones after it.
// DELETE /api/v1/sequences/steps/:stepId
func (h *Handler) DeleteStep(c *gin.Context) {
	stepID, ok := parseID(c, "stepId")
	if !ok {
		return
	}
	if httpkit.HandleError(c, h.svc.DeleteStep(c.Request.Context(), stepID)) {
		return
	}
	c.Status(http.StatusNoContent)
}

// Enroll starts a lead on a sequence.
// POST /api/v1/sequences/:id/enroll
func (h *Handler) Enroll(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req transport.EnrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}
	leadID, err := uuid.Parse(req.LeadID)
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}

	identity := httpkit.MustGetIdentity(c)
	performedBy := identity.UserID()

	result, err := h.svc.Enroll(c.Request.Context(), id, leadID, &performedBy)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, result)
}

// ListLeadAssignments returns a lead's enrollment history.
// GET /api/v1/leads/:id/sequences
func (h *Handler) ListLeadAssignments(c *gin.Context) {
	leadID, ok := parseID(c, "id")
	if !ok {
		return
	}
	result, err := h.svc.ListLeadAssignments(c.Request.Context(), leadID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// PauseAssignment pauses a running assignment.
// POST /api/v1/sequences/assignments/:assignmentId/pause
func (h *Handler) PauseAssignment(c *gin.Context) {
	id, ok := parseID(c, "assignmentId")
	if !ok {
		return
	}
	if httpkit.HandleError(c, h.svc.PauseAssignment(c.Request.Context(), id)) {
		return
	}
	c.Status(http.StatusNoContent)
}

// ResumeAssignment resumes a paused assignment.
// POST /api/v1/sequences/assignments/:assignmentId/resume
func (h *Handler) ResumeAssignment(c *gin.Context) {
	id, ok := parseID(c, "assignmentId")
	if !ok {
		return
	}
	if httpkit.HandleError(c, h.svc.ResumeAssignment(c.Request.Context(), id)) {
		return
	}
	c.Status(http.StatusNoContent)
}

// CancelAssignment cancels an assignment before completion.
// POST /api/v1/sequences/assignments/:assignmentId/cancel
func (h *Handler) CancelAssignment(c *gin.Context) {
	id, ok := parseID(c, "assignmentId")
	if !ok {
		return
	}
	if httpkit.HandleError(c, h.svc.CancelAssignment(c.Request.Context(), id)) {
		return
	}
	c.Status(http.StatusNoContent)
}

// Process runs one batch pass over due assignments.
// POST /api/v1/sequences/process
func (h *Handler) Process(c *gin.Context) {
	result, err := h.svc.ProcessDue(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

func parseID(c *gin.Context, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return uuid.Nil, false
	}
	return id, true
}
