package tasks

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"bdc_backend/platform/apperr"
	"bdc_backend/platform/httpkit"
	"bdc_backend/platform/validator"
)

type createTaskRequest struct {
	Title             string     `json:"title" validate:"required,max=300"`
	Description       *string    `json:"description" validate:"omitempty,max=2000"`
	DueDate           time.Time  `json:"dueDate" validate:"required"`
	Priority          string     `json:"priority" validate:"omitempty,oneof=low medium high"`
	AssignedTo        string     `json:"assignedTo" validate:"required,uuid"`
	RelatedEntityType *string    `json:"relatedEntityType" validate:"omitempty,oneof=lead appointment"`
	RelatedEntityID   *string    `json:"relatedEntityId" validate:"omitempty,uuid"`
}

type changeStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=open done cancelled"`
}

type taskResponse struct {
	ID                string     `json:"id"`
	Title             string     `json:"title"`
	Description       *string    `json:"description,omitempty"`
	DueDate           time.Time  `json:"dueDate"`
	Priority          string     `json:"priority"`
	Status            string     `json:"status"`
	AssignedTo        string     `json:"assignedTo"`
	RelatedEntityType *string    `json:"relatedEntityType,omitempty"`
	RelatedEntityID   *string    `json:"relatedEntityId,omitempty"`
	CreatedAt         time.Time  `json:"createdAt"`
}

// Handler handles HTTP requests for tasks.
type Handler struct {
	repo *Repository
	val  *validator.Validator
}

func NewHandler(repo *Repository, val *validator.Validator) *Handler {
	return &Handler{repo: repo, val: val}
}

// Create adds a task.
// POST /api/v1/tasks
func (h *Handler) Create(c *gin.Context) {
	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	assignedTo, err := uuid.Parse(req.AssignedTo)
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid assignee ID", nil)
		return
	}
	var relatedID *uuid.UUID
	if req.RelatedEntityID != nil {
		id, err := uuid.Parse(*req.RelatedEntityID)
		if err != nil {
			httpkit.Error(c, http.StatusBadRequest, "invalid related entity ID", nil)
			return
		}
		relatedID = &id
	}

	priority := Priority(req.Priority)
	if priority == "" {
		priority = PriorityMedium
	}

	task, err := h.repo.Create(c.Request.Context(), CreateParams{
		Title:             req.Title,
		Description:       req.Description,
		DueDate:           req.DueDate,
		Priority:          priority,
		AssignedTo:        assignedTo,
		RelatedEntityType: req.RelatedEntityType,
		RelatedEntityID:   relatedID,
	})
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, toResponse(task))
}

// List returns tasks filtered by assignee, status, and due date.
// GET /api/v1/tasks
func (h *Handler) List(c *gin.Context) {
	var filter ListFilter

	if raw := c.Query("assignedTo"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			httpkit.Error(c, http.StatusBadRequest, "invalid assignee ID", nil)
			return
		}
		filter.AssignedTo = &id
	}
	filter.Status = Status(c.Query("status"))
	if c.Query("overdue") == "true" {
		now := time.Now()
		filter.DueBefore = &now
		filter.Status = StatusOpen
	}

	list, err := h.repo.List(c.Request.Context(), filter)
	if httpkit.HandleError(c, err) {
		return
	}
	out := make([]taskResponse, len(list))
	for i, t := range list {
		out[i] = toResponse(t)
	}
	httpkit.OK(c, out)
}

// Get returns a single task.
// GET /api/v1/tasks/:id
func (h *Handler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	task, err := h.repo.GetByID(c.Request.Context(), id)
	if httpkit.HandleError(c, mapErr(err)) {
		return
	}
	httpkit.OK(c, toResponse(task))
}

// ChangeStatus marks a task open, done, or cancelled.
// PATCH /api/v1/tasks/:id/status
func (h *Handler) ChangeStatus(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req changeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	task, err := h.repo.UpdateStatus(c.Request.Context(), id, Status(req.Status))
	if httpkit.HandleError(c, mapErr(err)) {
		return
	}
	httpkit.OK(c, toResponse(task))
}

// Delete removes a task.
// DELETE /api/v1/tasks/:id
func (h *Handler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if httpkit.HandleError(c, mapErr(h.repo.Delete(c.Request.Context(), id))) {
		return
	}
	c.Status(http.StatusNoContent)
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid task ID", nil)
		return uuid.Nil, false
	}
	return id, true
}

func mapErr(err error) error {
	if errors.Is(err, ErrNotFound) {
		return apperr.NotFound("task not found")
	}
	return err
}

func toResponse(t Task) taskResponse {
	resp := taskResponse{
		ID:                t.ID.String(),
		Title:             t.Title,
		Description:       t.Description,
		DueDate:           t.DueDate,
		Priority:          string(t.Priority),
		Status:            string(t.Status),
		AssignedTo:        t.AssignedTo.String(),
		RelatedEntityType: t.RelatedEntityType,
		CreatedAt:         t.CreatedAt,
	}
	if t.RelatedEntityID != nil {
		id := t.RelatedEntityID.String()
		resp.RelatedEntityID = &id
	}
	return resp
}
