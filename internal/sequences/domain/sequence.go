// Package domain provides core types and rules for follow-up sequences.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// TriggerType controls how leads get enrolled into a sequence.
type TriggerType string

const (
	TriggerManual       TriggerType = "manual"
	TriggerNewLead      TriggerType = "new_lead"
	TriggerStatusChange TriggerType = "status_change"
)

// ActionType is what a step does when it fires.
type ActionType string

const (
	ActionEmail ActionType = "email"
	ActionSMS   ActionType = "sms"
	ActionTask  ActionType = "task"
)

var validActionTypes = map[ActionType]bool{
	ActionEmail: true,
	ActionSMS:   true,
	ActionTask:  true,
}

var validTriggerTypes = map[TriggerType]bool{
	TriggerManual:       true,
	TriggerNewLead:      true,
	TriggerStatusChange: true,
}

// IsValidActionType reports whether t is a known step action.
func IsValidActionType(t ActionType) bool { return validActionTypes[t] }

// IsValidTriggerType reports whether t is a known enrollment trigger.
func IsValidTriggerType(t TriggerType) bool { return validTriggerTypes[t] }

// Sequence is an ordered follow-up cadence leads can be enrolled into.
type Sequence struct {
	ID          uuid.UUID
	Name        string
	Description *string
	IsActive    bool
	TriggerType TriggerType
	LeadSource  *string
	CreatedBy   *uuid.UUID
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// AppliesTo reports whether the sequence auto-enrolls leads from the given
// source for the given trigger. A nil LeadSource matches every source.
func (s Sequence) AppliesTo(trigger TriggerType, leadSource string) bool {
	if !s.IsActive || s.TriggerType != trigger {
		return false
	}
	return s.LeadSource == nil || *s.LeadSource == leadSource
}

// Step is one timed action within a sequence. Step numbers are contiguous
// from 1 within their sequence; deleting a step renumbers those after it.
type Step struct {
	ID               uuid.UUID
	SequenceID       uuid.UUID
	StepNumber       int
	DelayDays        int
	DelayHours       int
	ActionType       ActionType
	TemplateID       *uuid.UUID
	TaskDescription  *string
	TaskAssigneeRole *string
	IsActive         bool
	CreatedAt        time.Time
}

// Delay is the wait between the previous step (or enrollment) and this one.
func (s Step) Delay() time.Duration {
	return time.Duration(s.DelayDays)*24*time.Hour + time.Duration(s.DelayHours)*time.Hour
}

// Assignment tracks one lead's progress through one sequence.
//
// current_step is the number of the last executed step, 0 before any step
// has fired. An assignment is terminal once is_active is false and
// completed_at is set; a paused assignment keeps is_active true and can be
// resumed.
type Assignment struct {
	ID                  uuid.UUID
	LeadID              uuid.UUID
	SequenceID          uuid.UUID
	CurrentStep         int
	IsActive            bool
	StartedAt           time.Time
	LastStepCompletedAt *time.Time
	NextStepDueAt       *time.Time
	CompletedAt         *time.Time
	PausedAt            *time.Time
	StepAttempts        int
	LastError           *string
}

// IsTerminal reports whether the assignment has finished its sequence.
func (a Assignment) IsTerminal() bool {
	return !a.IsActive && a.CompletedAt != nil
}

// IsDue reports whether the assignment should be advanced at the given time.
func (a Assignment) IsDue(now time.Time) bool {
	return a.IsActive &&
		a.CompletedAt == nil &&
		a.PausedAt == nil &&
		a.NextStepDueAt != nil &&
		!a.NextStepDueAt.After(now)
}
