package inventory

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"bdc_backend/internal/leads/scoring"
	"bdc_backend/platform/apperr"
	"bdc_backend/platform/httpkit"
	"bdc_backend/platform/logger"
	"bdc_backend/platform/validator"
)

type createVehicleRequest struct {
	Make    string   `json:"make" validate:"required,max=100"`
	Model   string   `json:"model" validate:"required,max=100"`
	Year    int      `json:"year" validate:"required,min=1950,max=2100"`
	Price   float64  `json:"price" validate:"required,gt=0"`
	Mileage *int     `json:"mileage" validate:"omitempty,min=0"`
	VIN     *string  `json:"vin" validate:"omitempty,len=17"`
}

type changeVehicleStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=in_stock on_hold sold"`
}

type createInterestRequest struct {
	VehicleID *string  `json:"vehicleId" validate:"omitempty,uuid"`
	Make      *string  `json:"make" validate:"omitempty,max=100"`
	Model     *string  `json:"model" validate:"omitempty,max=100"`
	MinYear   *int     `json:"minYear" validate:"omitempty,min=1950,max=2100"`
	MaxPrice  *float64 `json:"maxPrice" validate:"omitempty,gt=0"`
}

type vehicleResponse struct {
	ID        string    `json:"id"`
	Make      string    `json:"make"`
	Model     string    `json:"model"`
	Year      int       `json:"year"`
	Price     float64   `json:"price"`
	Mileage   *int      `json:"mileage,omitempty"`
	VIN       *string   `json:"vin,omitempty"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

type interestResponse struct {
	ID        string   `json:"id"`
	LeadID    string   `json:"leadId"`
	VehicleID *string  `json:"vehicleId,omitempty"`
	Make      *string  `json:"make,omitempty"`
	Model     *string  `json:"model,omitempty"`
	MinYear   *int     `json:"minYear,omitempty"`
	MaxPrice  *float64 `json:"maxPrice,omitempty"`
}

type matchResponse struct {
	Vehicle vehicleResponse `json:"vehicle"`
	Score   int             `json:"score"`
}

// Handler handles HTTP requests for stock and lead interests.
type Handler struct {
	repo   *Repository
	scorer *scoring.Service
	val    *validator.Validator
	log    *logger.Logger
}

func NewHandler(repo *Repository, scorer *scoring.Service, val *validator.Validator, log *logger.Logger) *Handler {
	return &Handler{repo: repo, scorer: scorer, val: val, log: log}
}

// CreateVehicle adds a vehicle to stock.
// POST /api/v1/vehicles
func (h *Handler) CreateVehicle(c *gin.Context) {
	var req createVehicleRequest
	if !bind(c, h.val, &req) {
		return
	}

	v, err := h.repo.CreateVehicle(c.Request.Context(), CreateVehicleParams{
		Make:    req.Make,
		Model:   req.Model,
		Year:    req.Year,
		Price:   req.Price,
		Mileage: req.Mileage,
		VIN:     req.VIN,
	})
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, toVehicleResponse(v))
}

// ListVehicles returns stock filtered by status, make, and price.
// GET /api/v1/vehicles
func (h *Handler) ListVehicles(c *gin.Context) {
	filter := VehicleFilter{
		Status: VehicleStatus(c.Query("status")),
		Make:   c.Query("make"),
	}
	if filter.Status != "" && !IsValidVehicleStatus(filter.Status) {
		httpkit.Error(c, http.StatusBadRequest, "invalid vehicle status", nil)
		return
	}

	list, err := h.repo.ListVehicles(c.Request.Context(), filter)
	if httpkit.HandleError(c, err) {
		return
	}
	out := make([]vehicleResponse, len(list))
	for i, v := range list {
		out[i] = toVehicleResponse(v)
	}
	httpkit.OK(c, out)
}

// GetVehicle returns a single vehicle.
// GET /api/v1/vehicles/:id
func (h *Handler) GetVehicle(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	v, err := h.repo.GetVehicle(c.Request.Context(), id)
	if httpkit.HandleError(c, mapErr(err)) {
		return
	}
	httpkit.OK(c, toVehicleResponse(v))
}

// ChangeVehicleStatus moves a vehicle between in_stock, on_hold, and sold.
// PATCH /api/v1/vehicles/:id/status
func (h *Handler) ChangeVehicleStatus(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req changeVehicleStatusRequest
	if !bind(c, h.val, &req) {
		return
	}

	v, err := h.repo.UpdateVehicleStatus(c.Request.Context(), id, VehicleStatus(req.Status))
	if httpkit.HandleError(c, mapErr(err)) {
		return
	}
	httpkit.OK(c, toVehicleResponse(v))
}

// DeleteVehicle removes a vehicle from stock.
// DELETE /api/v1/vehicles/:id
func (h *Handler) DeleteVehicle(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if httpkit.HandleError(c, mapErr(h.repo.DeleteVehicle(c.Request.Context(), id))) {
		return
	}
	c.Status(http.StatusNoContent)
}

// AddInterest records what a lead is shopping for and rescores the lead.
// POST /api/v1/leads/:id/interests
func (h *Handler) AddInterest(c *gin.Context) {
	leadID, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req createInterestRequest
	if !bind(c, h.val, &req) {
		return
	}
	if req.VehicleID == nil && req.Make == nil && req.Model == nil && req.MinYear == nil && req.MaxPrice == nil {
		httpkit.Error(c, http.StatusBadRequest, "interest needs at least one criterion", nil)
		return
	}

	var vehicleID *uuid.UUID
	if req.VehicleID != nil {
		id, err := uuid.Parse(*req.VehicleID)
		if err != nil {
			httpkit.Error(c, http.StatusBadRequest, "invalid vehicle ID", nil)
			return
		}
		vehicleID = &id
	}

	in, err := h.repo.CreateInterest(c.Request.Context(), CreateInterestParams{
		LeadID:    leadID,
		VehicleID: vehicleID,
		Make:      req.Make,
		Model:     req.Model,
		MinYear:   req.MinYear,
		MaxPrice:  req.MaxPrice,
	})
	if httpkit.HandleError(c, err) {
		return
	}

	if _, err := h.scorer.Recalculate(c.Request.Context(), leadID); err != nil {
		h.log.Warn("rescore after interest change failed",
			"lead_id", leadID.String(),
			"error", err.Error(),
		)
	}
	httpkit.JSON(c, http.StatusCreated, toInterestResponse(in))
}

// ListInterests returns a lead's recorded interests.
// GET /api/v1/leads/:id/interests
func (h *Handler) ListInterests(c *gin.Context) {
	leadID, ok := parseID(c, "id")
	if !ok {
		return
	}
	list, err := h.repo.ListInterests(c.Request.Context(), leadID)
	if httpkit.HandleError(c, err) {
		return
	}
	out := make([]interestResponse, len(list))
	for i, in := range list {
		out[i] = toInterestResponse(in)
	}
	httpkit.OK(c, out)
}

// DeleteInterest removes an interest.
// DELETE /api/v1/interests/:id
func (h *Handler) DeleteInterest(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if httpkit.HandleError(c, mapErr(h.repo.DeleteInterest(c.Request.Context(), id))) {
		return
	}
	c.Status(http.StatusNoContent)
}

// MatchForLead ranks the in-stock vehicles against a lead's interests.
// GET /api/v1/leads/:id/matches
func (h *Handler) MatchForLead(c *gin.Context) {
	leadID, ok := parseID(c, "id")
	if !ok {
		return
	}

	interests, err := h.repo.ListInterests(c.Request.Context(), leadID)
	if httpkit.HandleError(c, err) {
		return
	}
	stock, err := h.repo.ListInStock(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}

	matches := MatchVehicles(stock, interests)
	out := make([]matchResponse, len(matches))
	for i, m := range matches {
		out[i] = matchResponse{Vehicle: toVehicleResponse(m.Vehicle), Score: m.Score}
	}
	httpkit.OK(c, out)
}

func bind[T any](c *gin.Context, val *validator.Validator, req *T) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request", nil)
		return false
	}
	if err := val.Struct(*req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation failed", err.Error())
		return false
	}
	return true
}

func parseID(c *gin.Context, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid ID", nil)
		return uuid.Nil, false
	}
	return id, true
}

func mapErr(err error) error {
	if errors.Is(err, ErrNotFound) {
		return apperr.NotFound("not found")
	}
	return err
}

func toVehicleResponse(v Vehicle) vehicleResponse {
	return vehicleResponse{
		ID:        v.ID.String(),
		Make:      v.Make,
		Model:     v.Model,
		Year:      v.Year,
		Price:     v.Price,
		Mileage:   v.Mileage,
		VIN:       v.VIN,
		Status:    string(v.Status),
		CreatedAt: v.CreatedAt,
	}
}

func toInterestResponse(in Interest) interestResponse {
	resp := interestResponse{
		ID:       in.ID.String(),
		LeadID:   in.LeadID.String(),
		Make:     in.Make,
		Model:    in.Model,
		MinYear:  in.MinYear,
		MaxPrice: in.MaxPrice,
	}
	if in.VehicleID != nil {
		id := in.VehicleID.String()
		resp.VehicleID = &id
	}
	return resp
}
