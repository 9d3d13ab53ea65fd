// Package service exposes follow-up sequence management and enrollment on
// top of the processor and repository.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bdc_backend/internal/events"
	leadsdomain "bdc_backend/internal/leads/domain"
	"bdc_backend/internal/sequences/domain"
	"bdc_backend/internal/sequences/processor"
	"bdc_backend/internal/sequences/repository"
	"bdc_backend/internal/sequences/transport"
	"bdc_backend/platform/apperr"
	"bdc_backend/platform/logger"

	"github.com/google/uuid"
)

type Service struct {
	repo *repository.Repository
	proc *processor.Processor
	log  *logger.Logger
	now  func() time.Time
}

func New(repo *repository.Repository, proc *processor.Processor, log *logger.Logger) *Service {
	return &Service{repo: repo, proc: proc, log: log, now: time.Now}
}

// CreateSequence creates a follow-up sequence. New sequences default to
// active with a manual trigger.
func (s *Service) CreateSequence(ctx context.Context, req transport.CreateSequenceRequest, createdBy *uuid.UUID) (transport.SequenceResponse, error) {
	trigger := domain.TriggerManual
	if req.TriggerType != "" {
		trigger = domain.TriggerType(req.TriggerType)
	}
	if err := validateSourceFilter(trigger, req.LeadSource); err != nil {
		return transport.SequenceResponse{}, err
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	seq, err := s.repo.CreateSequence(ctx, repository.CreateSequenceParams{
		Name:        req.Name,
		Description: req.Description,
		IsActive:    active,
		TriggerType: trigger,
		LeadSource:  req.LeadSource,
		CreatedBy:   createdBy,
	})
	if err != nil {
		return transport.SequenceResponse{}, err
	}
	return toSequenceResponse(seq, nil), nil
}

// GetSequence returns a sequence with its steps in execution order.
func (s *Service) GetSequence(ctx context.Context, id uuid.UUID) (transport.SequenceResponse, error) {
	seq, err := s.repo.GetSequence(ctx, id)
	if err != nil {
		return transport.SequenceResponse{}, s.mapErr(err)
	}
	steps, err := s.repo.ListSteps(ctx, id)
	if err != nil {
		return transport.SequenceResponse{}, err
	}
	return toSequenceResponse(seq, steps), nil
}

func (s *Service) ListSequences(ctx context.Context) ([]transport.SequenceResponse, error) {
	seqs, err := s.repo.ListSequences(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]transport.SequenceResponse, len(seqs))
	for i, seq := range seqs {
		out[i] = toSequenceResponse(seq, nil)
	}
	return out, nil
}

func (s *Service) UpdateSequence(ctx context.Context, id uuid.UUID, req transport.UpdateSequenceRequest) (transport.SequenceResponse, error) {
	trigger := domain.TriggerType(req.TriggerType)
	if err := validateSourceFilter(trigger, req.LeadSource); err != nil {
		return transport.SequenceResponse{}, err
	}

	seq, err := s.repo.UpdateSequence(ctx, id, repository.UpdateSequenceParams{
		Name:        req.Name,
		Description: req.Description,
		IsActive:    req.IsActive,
		TriggerType: trigger,
		LeadSource:  req.LeadSource,
	})
	if err != nil {
		return transport.SequenceResponse{}, s.mapErr(err)
	}
	return toSequenceResponse(seq, nil), nil
}

func (s *Service) DeleteSequence(ctx context.Context, id uuid.UUID) error {
	return s.mapErr(s.repo.DeleteSequence(ctx, id))
}

// AddStep appends a step to a sequence. The step number is assigned
// automatically.
func (s *Service) AddStep(ctx context.Context, sequenceID uuid.UUID, req transport.CreateStepRequest) (transport.StepResponse, error) {
	if _, err := s.repo.GetSequence(ctx, sequenceID); err != nil {
		return transport.StepResponse{}, s.mapErr(err)
	}

	action := domain.ActionType(req.ActionType)
	templateID, err := stepTemplateID(action, req.TemplateID)
	if err != nil {
		return transport.StepResponse{}, err
	}

	step, err := s.repo.CreateStep(ctx, repository.CreateStepParams{
		SequenceID:       sequenceID,
		DelayDays:        req.DelayDays,
		DelayHours:       req.DelayHours,
		ActionType:       action,
		TemplateID:       templateID,
		TaskDescription:  req.TaskDescription,
		TaskAssigneeRole: req.TaskAssigneeRole,
	})
	if err != nil {
		return transport.StepResponse{}, err
	}
	return toStepResponse(step), nil
}

func (s *Service) UpdateStep(ctx context.Context, stepID uuid.UUID, req transport.UpdateStepRequest) (transport.StepResponse, error) {
	action := domain.ActionType(req.ActionType)
	templateID, err := stepTemplateID(action, req.TemplateID)
	if err != nil {
		return transport.StepResponse{}, err
	}

	step, err := s.repo.UpdateStep(ctx, stepID, repository.UpdateStepParams{
		DelayDays:        req.DelayDays,
		DelayHours:       req.DelayHours,
		ActionType:       action,
		TemplateID:       templateID,
		TaskDescription:  req.TaskDescription,
		TaskAssigneeRole: req.TaskAssigneeRole,
		IsActive:         req.IsActive,
	})
	if err != nil {
		return transport.StepResponse{}, s.mapErr(err)
	}
	return toStepResponse(step), nil
}

func (s *Service) DeleteStep(ctx context.Context, stepID uuid.UUID) error {
	return s.mapErr(s.repo.DeleteStep(ctx, stepID))
}

// Enroll starts a lead on a sequence on behalf of the acting user.
func (s *Service) Enroll(ctx context.Context, sequenceID, leadID uuid.UUID, performedBy *uuid.UUID) (transport.AssignmentResponse, error) {
	assignment, err := s.proc.Enroll(ctx, leadID, sequenceID, performedBy)
	if err != nil {
		return transport.AssignmentResponse{}, s.mapErr(err)
	}
	return toAssignmentResponse(assignment), nil
}

// ListLeadAssignments returns a lead's sequence history, most recent first.
func (s *Service) ListLeadAssignments(ctx context.Context, leadID uuid.UUID) ([]transport.AssignmentResponse, error) {
	assignments, err := s.repo.ListByLead(ctx, leadID)
	if err != nil {
		return nil, err
	}
	out := make([]transport.AssignmentResponse, len(assignments))
	for i, a := range assignments {
		out[i] = toAssignmentResponse(a)
	}
	return out, nil
}

func (s *Service) PauseAssignment(ctx context.Context, id uuid.UUID) error {
	return s.mapErr(s.repo.PauseAssignment(ctx, id, s.now()))
}

// ResumeAssignment clears a pause and makes the pending step due immediately.
func (s *Service) ResumeAssignment(ctx context.Context, id uuid.UUID) error {
	return s.mapErr(s.repo.ResumeAssignment(ctx, id, s.now()))
}

func (s *Service) CancelAssignment(ctx context.Context, id uuid.UUID) error {
	return s.mapErr(s.repo.CancelAssignment(ctx, id))
}

// ProcessDue advances every due assignment once and returns the number of
// executed step actions.
func (s *Service) ProcessDue(ctx context.Context) (transport.ProcessResponse, error) {
	n, err := s.proc.ProcessDue(ctx)
	if err != nil {
		return transport.ProcessResponse{}, err
	}
	return transport.ProcessResponse{ProcessedCount: n}, nil
}

// RegisterEventHandlers wires auto-enrollment to lead lifecycle events.
func (s *Service) RegisterEventHandlers(bus events.Bus) {
	handler := events.HandlerFunc(func(ctx context.Context, e events.Event) error {
		leadID, trigger, source, ok := enrollmentTrigger(e)
		if !ok {
			return nil
		}
		return s.autoEnroll(ctx, leadID, trigger, source)
	})
	bus.Subscribe(events.LeadCreated{}.EventName(), handler)
	bus.Subscribe(events.LeadStatusChanged{}.EventName(), handler)
}

// enrollmentTrigger maps a lead lifecycle event to auto-enrollment inputs.
// The event's lead source feeds the sequences' source filters.
func enrollmentTrigger(e events.Event) (leadID uuid.UUID, trigger domain.TriggerType, source string, ok bool) {
	switch ev := e.(type) {
	case events.LeadCreated:
		return ev.LeadID, domain.TriggerNewLead, ev.Source, true
	case events.LeadStatusChanged:
		return ev.LeadID, domain.TriggerStatusChange, ev.Source, true
	default:
		return uuid.Nil, "", "", false
	}
}

// autoEnroll enrolls the lead into every active sequence matching the
// trigger. An existing active enrollment is not an error.
func (s *Service) autoEnroll(ctx context.Context, leadID uuid.UUID, trigger domain.TriggerType, source string) error {
	seqs, err := s.repo.ListActiveByTrigger(ctx, trigger)
	if err != nil {
		return fmt.Errorf("list sequences for trigger %s: %w", trigger, err)
	}

	for _, seq := range seqs {
		if !seq.AppliesTo(trigger, source) {
			continue
		}
		_, err := s.proc.Enroll(ctx, leadID, seq.ID, nil)
		if err != nil && !errors.Is(err, processor.ErrAlreadyEnrolled) {
			s.log.Error("auto-enrollment failed",
				"lead_id", leadID.String(),
				"sequence_id", seq.ID.String(),
				"error", err.Error(),
			)
		}
	}
	return nil
}

func validateSourceFilter(trigger domain.TriggerType, leadSource *string) error {
	if !domain.IsValidTriggerType(trigger) {
		return apperr.Validation(fmt.Sprintf("invalid trigger type: %s", trigger))
	}
	if leadSource != nil && !leadsdomain.IsValidSource(leadsdomain.Source(*leadSource)) {
		return apperr.Validation(fmt.Sprintf("invalid lead source filter: %s", *leadSource))
	}
	return nil
}

// stepTemplateID enforces that message steps carry a template reference.
func stepTemplateID(action domain.ActionType, raw *string) (*uuid.UUID, error) {
	if !domain.IsValidActionType(action) {
		return nil, apperr.Validation(fmt.Sprintf("invalid action type: %s", action))
	}
	if action == domain.ActionTask {
		return nil, nil
	}
	if raw == nil {
		return nil, apperr.Validation("templateId is required for email and sms steps")
	}
	id, err := uuid.Parse(*raw)
	if err != nil {
		return nil, apperr.Validation("invalid templateId")
	}
	return &id, nil
}

func (s *Service) mapErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return apperr.NotFound("not found")
	case errors.Is(err, processor.ErrAlreadyEnrolled):
		return apperr.Conflict("lead is already enrolled in this sequence")
	case errors.Is(err, processor.ErrSequenceInactive):
		return apperr.Validation("sequence is not active")
	default:
		return err
	}
}

func toSequenceResponse(seq domain.Sequence, steps []domain.Step) transport.SequenceResponse {
	resp := transport.SequenceResponse{
		ID:          seq.ID.String(),
		Name:        seq.Name,
		Description: seq.Description,
		IsActive:    seq.IsActive,
		TriggerType: string(seq.TriggerType),
		LeadSource:  seq.LeadSource,
		CreatedAt:   seq.CreatedAt,
		UpdatedAt:   seq.UpdatedAt,
	}
	for _, step := range steps {
		resp.Steps = append(resp.Steps, toStepResponse(step))
	}
	return resp
}

func toStepResponse(step domain.Step) transport.StepResponse {
	resp := transport.StepResponse{
		ID:               step.ID.String(),
		StepNumber:       step.StepNumber,
		DelayDays:        step.DelayDays,
		DelayHours:       step.DelayHours,
		ActionType:       string(step.ActionType),
		TaskDescription:  step.TaskDescription,
		TaskAssigneeRole: step.TaskAssigneeRole,
		IsActive:         step.IsActive,
	}
	if step.TemplateID != nil {
		id := step.TemplateID.String()
		resp.TemplateID = &id
	}
	return resp
}

func toAssignmentResponse(a domain.Assignment) transport.AssignmentResponse {
	return transport.AssignmentResponse{
		ID:            a.ID.String(),
		LeadID:        a.LeadID.String(),
		SequenceID:    a.SequenceID.String(),
		CurrentStep:   a.CurrentStep,
		IsActive:      a.IsActive,
		StartedAt:     a.StartedAt,
		NextStepDueAt: a.NextStepDueAt,
		CompletedAt:   a.CompletedAt,
		PausedAt:      a.PausedAt,
		StepAttempts:  a.StepAttempts,
		LastError:     a.LastError,
	}
}
