// Package processor executes follow-up sequences: enrollment, timed step
// advancement, and the periodic batch tick.
package processor

import (
	"context"
	"time"

	leadsrepo "bdc_backend/internal/leads/repository"
	"bdc_backend/internal/sequences/domain"

	"github.com/google/uuid"
)

// EmailTemplate is the snapshot of an email template a step renders.
type EmailTemplate struct {
	ID      uuid.UUID
	Name    string
	Subject string
	Body    string
}

// SMSTemplate is the snapshot of an SMS template a step renders.
type SMSTemplate struct {
	ID   uuid.UUID
	Name string
	Body string
}

// User is the minimal user view needed for task assignment.
type User struct {
	ID   uuid.UUID
	Role string
}

// ActivityParams describes one entry appended to a lead's activity log.
type ActivityParams struct {
	LeadID            uuid.UUID
	ActivityType      string
	Description       string
	PerformedBy       *uuid.UUID
	RelatedEntityType *string
	RelatedEntityID   *uuid.UUID
}

// TaskParams describes a task created by a task step.
type TaskParams struct {
	Title             string
	Description       *string
	DueDate           time.Time
	Priority          string
	AssignedTo        uuid.UUID
	RelatedEntityType string
	RelatedEntityID   uuid.UUID
}

// CreateAssignmentParams starts a lead on a sequence.
type CreateAssignmentParams struct {
	LeadID        uuid.UUID
	SequenceID    uuid.UUID
	NextStepDueAt *time.Time
}

// AdvanceParams moves an assignment forward after a successful step
// execution. FromStep is the optimistic guard: the update must only apply
// while current_step still equals it.
type AdvanceParams struct {
	AssignmentID  uuid.UUID
	FromStep      int
	ToStep        int
	NextStepDueAt *time.Time
	CompletedAt   *time.Time
	ExecutedAt    time.Time
}

// Store is the persistence port for the processor. WithinTx runs fn against
// a transaction-bound Store; every write inside fn commits or rolls back
// atomically.
type Store interface {
	WithinTx(ctx context.Context, fn func(tx Store) error) error

	DueAssignments(ctx context.Context, now time.Time, limit int) ([]domain.Assignment, error)
	GetAssignment(ctx context.Context, id uuid.UUID) (domain.Assignment, error)
	HasActiveAssignment(ctx context.Context, leadID, sequenceID uuid.UUID) (bool, error)
	CreateAssignment(ctx context.Context, p CreateAssignmentParams) (domain.Assignment, error)
	AdvanceAssignment(ctx context.Context, p AdvanceParams) error
	CompleteAssignment(ctx context.Context, assignmentID uuid.UUID, fromStep int, at time.Time) error
	RecordStepFailure(ctx context.Context, assignmentID uuid.UUID, stepError string) (attempts int, err error)
	PauseAssignment(ctx context.Context, assignmentID uuid.UUID, at time.Time) error

	GetSequence(ctx context.Context, id uuid.UUID) (domain.Sequence, error)
	ActiveStep(ctx context.Context, sequenceID uuid.UUID, stepNumber int) (*domain.Step, error)
	FirstActiveStep(ctx context.Context, sequenceID uuid.UUID) (*domain.Step, error)

	GetLead(ctx context.Context, id uuid.UUID) (leadsrepo.Lead, error)
	ScoringStats(ctx context.Context, leadID uuid.UUID) (leadsrepo.ScoringStats, error)
	TouchLeadActivity(ctx context.Context, leadID uuid.UUID, at time.Time) error
	UpdateLeadDerivedState(ctx context.Context, leadID uuid.UUID, score int, stage string) error

	EmailTemplate(ctx context.Context, id uuid.UUID) (*EmailTemplate, error)
	SMSTemplate(ctx context.Context, id uuid.UUID) (*SMSTemplate, error)
	FirstUserWithRole(ctx context.Context, role string) (*User, error)

	CreateActivity(ctx context.Context, p ActivityParams) error
	CreateTask(ctx context.Context, p TaskParams) error
}

// Notifier sends outbound messages for email and SMS steps.
type Notifier interface {
	SendEmail(ctx context.Context, to, subject, body string) error
	SendSMS(ctx context.Context, to, body string) error
}
