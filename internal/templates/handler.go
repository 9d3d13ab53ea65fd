package templates

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"bdc_backend/platform/apperr"
	"bdc_backend/platform/httpkit"
	"bdc_backend/platform/validator"
)

type emailTemplateRequest struct {
	Name    string `json:"name" validate:"required,max=200"`
	Subject string `json:"subject" validate:"required,max=500"`
	Body    string `json:"body" validate:"required"`
}

type smsTemplateRequest struct {
	Name string `json:"name" validate:"required,max=200"`
	Body string `json:"body" validate:"required,max=1600"`
}

type emailTemplateResponse struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

type smsTemplateResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Body string `json:"body"`
}

// Handler handles HTTP requests for message templates.
type Handler struct {
	repo *Repository
	val  *validator.Validator
}

func NewHandler(repo *Repository, val *validator.Validator) *Handler {
	return &Handler{repo: repo, val: val}
}

func (h *Handler) CreateEmail(c *gin.Context) {
	req, ok := bindTemplate[emailTemplateRequest](c, h.val)
	if !ok {
		return
	}
	t, err := h.repo.CreateEmail(c.Request.Context(), req.Name, req.Subject, req.Body)
	if httpkit.HandleError(c, mapErr(err)) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, toEmailResponse(t))
}

func (h *Handler) ListEmail(c *gin.Context) {
	list, err := h.repo.ListEmail(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	out := make([]emailTemplateResponse, len(list))
	for i, t := range list {
		out[i] = toEmailResponse(t)
	}
	httpkit.OK(c, out)
}

func (h *Handler) GetEmail(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	t, err := h.repo.GetEmail(c.Request.Context(), id)
	if httpkit.HandleError(c, mapErr(err)) {
		return
	}
	httpkit.OK(c, toEmailResponse(t))
}

func (h *Handler) UpdateEmail(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	req, ok := bindTemplate[emailTemplateRequest](c, h.val)
	if !ok {
		return
	}
	t, err := h.repo.UpdateEmail(c.Request.Context(), id, req.Name, req.Subject, req.Body)
	if httpkit.HandleError(c, mapErr(err)) {
		return
	}
	httpkit.OK(c, toEmailResponse(t))
}

func (h *Handler) DeleteEmail(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if httpkit.HandleError(c, mapErr(h.repo.DeleteEmail(c.Request.Context(), id))) {
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) CreateSMS(c *gin.Context) {
	req, ok := bindTemplate[smsTemplateRequest](c, h.val)
	if !ok {
		return
	}
	t, err := h.repo.CreateSMS(c.Request.Context(), req.Name, req.Body)
	if httpkit.HandleError(c, mapErr(err)) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, toSMSResponse(t))
}

func (h *Handler) ListSMS(c *gin.Context) {
	list, err := h.repo.ListSMS(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	out := make([]smsTemplateResponse, len(list))
	for i, t := range list {
		out[i] = toSMSResponse(t)
	}
	httpkit.OK(c, out)
}

func (h *Handler) GetSMS(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	t, err := h.repo.GetSMS(c.Request.Context(), id)
	if httpkit.HandleError(c, mapErr(err)) {
		return
	}
	httpkit.OK(c, toSMSResponse(t))
}

func (h *Handler) UpdateSMS(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	req, ok := bindTemplate[smsTemplateRequest](c, h.val)
	if !ok {
		return
	}
	t, err := h.repo.UpdateSMS(c.Request.Context(), id, req.Name, req.Body)
	if httpkit.HandleError(c, mapErr(err)) {
		return
	}
	httpkit.OK(c, toSMSResponse(t))
}

func (h *Handler) DeleteSMS(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if httpkit.HandleError(c, mapErr(h.repo.DeleteSMS(c.Request.Context(), id))) {
		return
	}
	c.Status(http.StatusNoContent)
}

func bindTemplate[T any](c *gin.Context, val *validator.Validator) (T, bool) {
	var req T
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request", nil)
		return req, false
	}
	if err := val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation failed", err.Error())
		return req, false
	}
	return req, true
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid template ID", nil)
		return uuid.Nil, false
	}
	return id, true
}

func mapErr(err error) error {
	if errors.Is(err, ErrNotFound) {
		return apperr.NotFound("template not found")
	}
	return err
}

func toEmailResponse(t EmailTemplate) emailTemplateResponse {
	return emailTemplateResponse{ID: t.ID.String(), Name: t.Name, Subject: t.Subject, Body: t.Body}
}

func toSMSResponse(t SMSTemplate) smsTemplateResponse {
	return smsTemplateResponse{ID: t.ID.String(), Name: t.Name, Body: t.Body}
}
