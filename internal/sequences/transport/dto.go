// Package transport defines the HTTP request and response shapes for
// follow-up sequence management.
package transport

import "time"

type CreateSequenceRequest struct {
	Name        string  `json:"name" validate:"required,max=200"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	TriggerType string  `json:"triggerType" validate:"omitempty,oneof=manual new_lead status_change"`
	LeadSource  *string `json:"leadSource" validate:"omitempty,max=100"`
	IsActive    *bool   `json:"isActive"`
}

type UpdateSequenceRequest struct {
	Name        string  `json:"name" validate:"required,max=200"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	TriggerType string  `json:"triggerType" validate:"required,oneof=manual new_lead status_change"`
	LeadSource  *string `json:"leadSource" validate:"omitempty,max=100"`
	IsActive    bool    `json:"isActive"`
}

type CreateStepRequest struct {
	DelayDays        int     `json:"delayDays" validate:"min=0,max=365"`
	DelayHours       int     `json:"delayHours" validate:"min=0,max=23"`
	ActionType       string  `json:"actionType" validate:"required,oneof=email sms task"`
	TemplateID       *string `json:"templateId" validate:"omitempty,uuid"`
	TaskDescription  *string `json:"taskDescription" validate:"omitempty,max=2000"`
	TaskAssigneeRole *string `json:"taskAssigneeRole" validate:"omitempty,max=50"`
}

type UpdateStepRequest struct {
	DelayDays        int     `json:"delayDays" validate:"min=0,max=365"`
	DelayHours       int     `json:"delayHours" validate:"min=0,max=23"`
	ActionType       string  `json:"actionType" validate:"required,oneof=email sms task"`
	TemplateID       *string `json:"templateId" validate:"omitempty,uuid"`
	TaskDescription  *string `json:"taskDescription" validate:"omitempty,max=2000"`
	TaskAssigneeRole *string `json:"taskAssigneeRole" validate:"omitempty,max=50"`
	IsActive         bool    `json:"isActive"`
}

type EnrollRequest struct {
	LeadID string `json:"leadId" validate:"required,uuid"`
}

type SequenceResponse struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description *string        `json:"description,omitempty"`
	IsActive    bool           `json:"isActive"`
	TriggerType string         `json:"triggerType"`
	LeadSource  *string        `json:"leadSource,omitempty"`
	Steps       []StepResponse `json:"steps,omitempty"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

type StepResponse struct {
	ID               string  `json:"id"`
	StepNumber       int     `json:"stepNumber"`
	DelayDays        int     `json:"delayDays"`
	DelayHours       int     `json:"delayHours"`
	ActionType       string  `json:"actionType"`
	TemplateID       *string `json:"templateId,omitempty"`
	TaskDescription  *string `json:"taskDescription,omitempty"`
	TaskAssigneeRole *string `json:"taskAssigneeRole,omitempty"`
	IsActive         bool    `json:"isActive"`
}

type AssignmentResponse struct {
	ID            string     `json:"id"`
	LeadID        string     `json:"leadId"`
	SequenceID    string     `json:"sequenceId"`
	CurrentStep   int        `json:"currentStep"`
	IsActive      bool       `json:"isActive"`
	StartedAt     time.Time  `json:"startedAt"`
	NextStepDueAt *time.Time `json:"nextStepDueAt,omitempty"`
	CompletedAt   *time.Time `json:"completedAt,omitempty"`
	PausedAt      *time.Time `json:"pausedAt,omitempty"`
	StepAttempts  int        `json:"stepAttempts"`
	LastError     *string    `json:"lastError,omitempty"`
}

type ProcessResponse struct {
	ProcessedCount int `json:"processedCount"`
}
