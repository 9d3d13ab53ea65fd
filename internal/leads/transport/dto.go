package transport

import (
	"time"

	"github.com/google/uuid"
)

// CreateLeadRequest contains data for creating a new lead.
type CreateLeadRequest struct {
	FirstName  string     `json:"firstName" validate:"required,min=1,max=100"`
	LastName   string     `json:"lastName" validate:"required,min=1,max=100"`
	Email      *string    `json:"email,omitempty" validate:"omitempty,email"`
	Phone      *string    `json:"phone,omitempty" validate:"omitempty,max=32"`
	Source     string     `json:"source" validate:"required"`
	AssignedTo *uuid.UUID `json:"assignedTo,omitempty"`
	Notes      *string    `json:"notes,omitempty" validate:"omitempty,max=4000"`
}

// UpdateLeadRequest contains data for updating an existing lead.
type UpdateLeadRequest struct {
	FirstName  *string    `json:"firstName,omitempty" validate:"omitempty,min=1,max=100"`
	LastName   *string    `json:"lastName,omitempty" validate:"omitempty,min=1,max=100"`
	Email      *string    `json:"email,omitempty" validate:"omitempty,email"`
	Phone      *string    `json:"phone,omitempty" validate:"omitempty,max=32"`
	Source     *string    `json:"source,omitempty"`
	AssignedTo *uuid.UUID `json:"assignedTo,omitempty"`
	Notes      *string    `json:"notes,omitempty" validate:"omitempty,max=4000"`
}

// ChangeStatusRequest moves a lead to a new pipeline status.
type ChangeStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// LogCommunicationRequest records an interaction with the lead.
type LogCommunicationRequest struct {
	Direction string  `json:"direction" validate:"required,oneof=inbound outbound"`
	Channel   string  `json:"channel" validate:"required,oneof=email sms phone in_person"`
	Subject   *string `json:"subject,omitempty" validate:"omitempty,max=200"`
	Body      string  `json:"body" validate:"required,max=10000"`
}

// ListLeadsRequest carries listing filters.
type ListLeadsRequest struct {
	Status     string `form:"status"`
	Stage      string `form:"stage"`
	Source     string `form:"source"`
	AssignedTo string `form:"assignedTo"`
	MinScore   *int   `form:"minScore"`
	Limit      int    `form:"limit"`
	Offset     int    `form:"offset"`
}

// LeadResponse represents a lead in API responses.
type LeadResponse struct {
	ID               uuid.UUID  `json:"id"`
	FirstName        string     `json:"firstName"`
	LastName         string     `json:"lastName"`
	Email            *string    `json:"email,omitempty"`
	Phone            *string    `json:"phone,omitempty"`
	Source           string     `json:"source"`
	Status           string     `json:"status"`
	Score            int        `json:"score"`
	LifecycleStage   string     `json:"lifecycleStage"`
	AssignedTo       *uuid.UUID `json:"assignedTo,omitempty"`
	Notes            *string    `json:"notes,omitempty"`
	LastActivityDate *time.Time `json:"lastActivityDate,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

// LeadListResponse wraps a list of leads.
type LeadListResponse struct {
	Items []LeadResponse `json:"items"`
	Total int            `json:"total"`
}

// ActivityResponse is one audit trail entry.
type ActivityResponse struct {
	ID           uuid.UUID  `json:"id"`
	ActivityType string     `json:"activityType"`
	Description  string     `json:"description"`
	PerformedBy  *uuid.UUID `json:"performedBy,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
}

// CommunicationResponse is one logged interaction.
type CommunicationResponse struct {
	ID        uuid.UUID  `json:"id"`
	Direction string     `json:"direction"`
	Channel   string     `json:"channel"`
	Subject   *string    `json:"subject,omitempty"`
	Body      string     `json:"body"`
	CreatedBy *uuid.UUID `json:"createdBy,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}
