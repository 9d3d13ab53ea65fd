package processor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bdc_backend/internal/events"
	leadsdomain "bdc_backend/internal/leads/domain"
	leadsrepo "bdc_backend/internal/leads/repository"
	"bdc_backend/internal/leads/scoring"
	"bdc_backend/internal/sequences/domain"
	"bdc_backend/internal/templates"
	"bdc_backend/platform/logger"

	"github.com/google/uuid"
)

const (
	relatedEntityAssignment = "sequence_assignment"
	relatedEntityLead       = "lead"

	taskDuePeriod = 24 * time.Hour
	taskPriority  = "high"

	// roleLeadOwner routes a task step to the lead's assigned user instead
	// of a role lookup.
	roleLeadOwner = "lead_owner"
)

// Processor drives follow-up sequence execution.
type Processor struct {
	store       Store
	notifier    Notifier
	bus         events.Bus
	log         *logger.Logger
	now         func() time.Time
	batchSize   int
	maxAttempts int
}

// Config tunes the processor.
type Config struct {
	BatchSize   int
	MaxAttempts int
}

// New creates a sequence processor.
func New(store Store, notifier Notifier, log *logger.Logger, cfg Config) *Processor {
	batch := cfg.BatchSize
	if batch <= 0 {
		batch = 100
	}
	attempts := cfg.MaxAttempts
	if attempts <= 0 {
		attempts = 10
	}
	return &Processor{
		store:       store,
		notifier:    notifier,
		log:         log,
		now:         time.Now,
		batchSize:   batch,
		maxAttempts: attempts,
	}
}

// WithBus attaches an event bus; completion events are published to it.
func (p *Processor) WithBus(bus events.Bus) *Processor {
	p.bus = bus
	return p
}

// WithClock overrides the processor clock. Intended for tests.
func (p *Processor) WithClock(now func() time.Time) *Processor {
	p.now = now
	return p
}

// Enroll starts a lead on a sequence. A lead can hold at most one active
// assignment per sequence; re-enrollment is allowed only after the previous
// assignment completed or was cancelled. performedBy is nil for automatic
// enrollments.
func (p *Processor) Enroll(ctx context.Context, leadID, sequenceID uuid.UUID, performedBy *uuid.UUID) (domain.Assignment, error) {
	seq, err := p.store.GetSequence(ctx, sequenceID)
	if err != nil {
		return domain.Assignment{}, err
	}
	if !seq.IsActive {
		return domain.Assignment{}, ErrSequenceInactive
	}

	lead, err := p.store.GetLead(ctx, leadID)
	if err != nil {
		return domain.Assignment{}, err
	}

	active, err := p.store.HasActiveAssignment(ctx, leadID, sequenceID)
	if err != nil {
		return domain.Assignment{}, err
	}
	if active {
		return domain.Assignment{}, ErrAlreadyEnrolled
	}

	now := p.now()
	var due *time.Time
	first, err := p.store.FirstActiveStep(ctx, sequenceID)
	if err != nil {
		return domain.Assignment{}, err
	}
	if first != nil {
		t := now.Add(first.Delay())
		due = &t
	}

	var assignment domain.Assignment
	err = p.store.WithinTx(ctx, func(tx Store) error {
		assignment, err = tx.CreateAssignment(ctx, CreateAssignmentParams{
			LeadID:        leadID,
			SequenceID:    sequenceID,
			NextStepDueAt: due,
		})
		if err != nil {
			return err
		}
		return tx.CreateActivity(ctx, ActivityParams{
			LeadID:            leadID,
			ActivityType:      "sequence_assigned",
			Description:       fmt.Sprintf("Assigned to follow-up sequence: %s", seq.Name),
			PerformedBy:       performedBy,
			RelatedEntityType: ptr(relatedEntityAssignment),
			RelatedEntityID:   &assignment.ID,
		})
	})
	if err != nil {
		return domain.Assignment{}, err
	}

	p.log.Info("sequence_enrolled",
		"lead_id", lead.ID.String(),
		"sequence_id", sequenceID.String(),
		"assignment_id", assignment.ID.String(),
	)
	return assignment, nil
}

// Advance moves a single assignment forward by one step. It is safe to call
// on assignments that are not due; they are skipped.
func (p *Processor) Advance(ctx context.Context, assignmentID uuid.UUID) error {
	assignment, err := p.store.GetAssignment(ctx, assignmentID)
	if err != nil {
		return err
	}
	if !assignment.IsDue(p.now()) {
		return nil
	}
	_, err = p.advance(ctx, assignment)
	return err
}

// ProcessDue advances every due assignment once, oldest due time first.
// A failure on one assignment never blocks the others. The returned count
// is the number of successfully executed step actions; assignments that
// merely transitioned to completed are not counted.
func (p *Processor) ProcessDue(ctx context.Context) (int, error) {
	due, err := p.store.DueAssignments(ctx, p.now(), p.batchSize)
	if err != nil {
		return 0, fmt.Errorf("load due assignments: %w", err)
	}

	processed := 0
	for _, assignment := range due {
		if ctx.Err() != nil {
			return processed, ctx.Err()
		}
		executed, err := p.advance(ctx, assignment)
		if err != nil {
			p.recordFailure(ctx, assignment, err)
			continue
		}
		if executed {
			processed++
		}
	}
	return processed, nil
}

// advance performs one processing pass over a single assignment: either
// executes the next step or completes the sequence. It reports whether a
// step action was executed.
func (p *Processor) advance(ctx context.Context, assignment domain.Assignment) (bool, error) {
	now := p.now()

	seq, err := p.store.GetSequence(ctx, assignment.SequenceID)
	if err != nil {
		return false, err
	}

	step, err := p.store.ActiveStep(ctx, assignment.SequenceID, assignment.CurrentStep+1)
	if err != nil {
		return false, err
	}

	if step == nil {
		// No runnable step remains: terminal completion without execution.
		err := p.store.WithinTx(ctx, func(tx Store) error {
			if err := tx.CompleteAssignment(ctx, assignment.ID, assignment.CurrentStep, now); err != nil {
				return err
			}
			return tx.CreateActivity(ctx, completionActivity(assignment, seq))
		})
		if err == nil {
			p.publishCompleted(ctx, assignment)
		}
		return false, err
	}

	completed := false
	err = p.store.WithinTx(ctx, func(tx Store) error {
		lead, err := tx.GetLead(ctx, assignment.LeadID)
		if err != nil {
			return err
		}

		touched, err := p.executeStep(ctx, tx, lead, assignment, *step, now)
		if err != nil {
			return err
		}

		next, err := tx.ActiveStep(ctx, assignment.SequenceID, step.StepNumber+1)
		if err != nil {
			return err
		}
		var nextDue, completedAt *time.Time
		if next != nil {
			t := now.Add(next.Delay())
			nextDue = &t
		} else {
			completedAt = &now
		}

		if err := tx.AdvanceAssignment(ctx, AdvanceParams{
			AssignmentID:  assignment.ID,
			FromStep:      assignment.CurrentStep,
			ToStep:        step.StepNumber,
			NextStepDueAt: nextDue,
			CompletedAt:   completedAt,
			ExecutedAt:    now,
		}); err != nil {
			return err
		}

		if completedAt != nil {
			completed = true
			if err := tx.CreateActivity(ctx, completionActivity(assignment, seq)); err != nil {
				return err
			}
		}

		return p.refreshDerivedState(ctx, tx, lead, now, touched)
	})
	if err != nil {
		return false, err
	}

	if completed {
		p.publishCompleted(ctx, assignment)
	}
	p.log.SequenceStep(assignment.ID.String(), assignment.LeadID.String(), step.StepNumber, string(step.ActionType), nil)
	return true, nil
}

func (p *Processor) publishCompleted(ctx context.Context, assignment domain.Assignment) {
	if p.bus == nil {
		return
	}
	p.bus.Publish(ctx, events.SequenceCompleted{
		BaseEvent:    events.NewBaseEvent(),
		AssignmentID: assignment.ID,
		LeadID:       assignment.LeadID,
		SequenceID:   assignment.SequenceID,
	})
}

// executeStep performs the step's side effect and records its activity.
// It reports whether the lead's last activity marker was touched.
func (p *Processor) executeStep(ctx context.Context, tx Store, lead leadsrepo.Lead, assignment domain.Assignment, step domain.Step, now time.Time) (bool, error) {
	switch step.ActionType {
	case domain.ActionEmail:
		return true, p.executeEmailStep(ctx, tx, lead, step, now)
	case domain.ActionSMS:
		return true, p.executeSMSStep(ctx, tx, lead, step, now)
	case domain.ActionTask:
		return false, p.executeTaskStep(ctx, tx, lead, assignment, step, now)
	default:
		return false, fmt.Errorf("unknown step action %q", step.ActionType)
	}
}

func (p *Processor) executeEmailStep(ctx context.Context, tx Store, lead leadsrepo.Lead, step domain.Step, now time.Time) error {
	if step.TemplateID == nil {
		return ErrTemplateNotFound
	}
	tmpl, err := tx.EmailTemplate(ctx, *step.TemplateID)
	if err != nil {
		return err
	}
	if tmpl == nil {
		return ErrTemplateNotFound
	}
	if lead.Email == nil || *lead.Email == "" {
		return ErrMissingContactInfo
	}

	subject := templates.Render(tmpl.Subject, lead.FullName())
	body := templates.Render(tmpl.Body, lead.FullName())
	if err := p.notifier.SendEmail(ctx, *lead.Email, subject, body); err != nil {
		return &SendError{Channel: "email", Err: err}
	}

	if err := tx.CreateActivity(ctx, ActivityParams{
		LeadID:       lead.ID,
		ActivityType: "email_sent",
		Description:  fmt.Sprintf("Automated email sent: %s", tmpl.Name),
	}); err != nil {
		return err
	}
	return tx.TouchLeadActivity(ctx, lead.ID, now)
}

func (p *Processor) executeSMSStep(ctx context.Context, tx Store, lead leadsrepo.Lead, step domain.Step, now time.Time) error {
	if step.TemplateID == nil {
		return ErrTemplateNotFound
	}
	tmpl, err := tx.SMSTemplate(ctx, *step.TemplateID)
	if err != nil {
		return err
	}
	if tmpl == nil {
		return ErrTemplateNotFound
	}
	if lead.Phone == nil || *lead.Phone == "" {
		return ErrMissingContactInfo
	}

	body := templates.Render(tmpl.Body, lead.FullName())
	if err := p.notifier.SendSMS(ctx, *lead.Phone, body); err != nil {
		return &SendError{Channel: "sms", Err: err}
	}

	if err := tx.CreateActivity(ctx, ActivityParams{
		LeadID:       lead.ID,
		ActivityType: "sms_sent",
		Description:  fmt.Sprintf("Automated SMS sent: %s", tmpl.Name),
	}); err != nil {
		return err
	}
	return tx.TouchLeadActivity(ctx, lead.ID, now)
}

func (p *Processor) executeTaskStep(ctx context.Context, tx Store, lead leadsrepo.Lead, assignment domain.Assignment, step domain.Step, now time.Time) error {
	role := roleLeadOwner
	if step.TaskAssigneeRole != nil && *step.TaskAssigneeRole != "" {
		role = *step.TaskAssigneeRole
	}

	var assigneeID uuid.UUID
	if role == roleLeadOwner {
		if lead.AssignedTo == nil {
			return ErrAssigneeNotFound
		}
		assigneeID = *lead.AssignedTo
	} else {
		user, err := tx.FirstUserWithRole(ctx, role)
		if err != nil {
			return err
		}
		if user == nil {
			return ErrAssigneeNotFound
		}
		assigneeID = user.ID
	}

	title := fmt.Sprintf("Follow up with %s", lead.FullName())
	description := step.TaskDescription
	if description != nil {
		description = ptr(templates.Render(*description, lead.FullName()))
	}
	if err := tx.CreateTask(ctx, TaskParams{
		Title:             title,
		Description:       description,
		DueDate:           now.Add(taskDuePeriod),
		Priority:          taskPriority,
		AssignedTo:        assigneeID,
		RelatedEntityType: relatedEntityLead,
		RelatedEntityID:   lead.ID,
	}); err != nil {
		return err
	}

	return tx.CreateActivity(ctx, ActivityParams{
		LeadID:            lead.ID,
		ActivityType:      "task_created",
		Description:       fmt.Sprintf("Task created: %s", title),
		RelatedEntityType: ptr(relatedEntityAssignment),
		RelatedEntityID:   &assignment.ID,
	})
}

// refreshDerivedState recomputes score and lifecycle stage inside the
// advancing transaction, using the post-step last activity when touched.
func (p *Processor) refreshDerivedState(ctx context.Context, tx Store, lead leadsrepo.Lead, now time.Time, touched bool) error {
	stats, err := tx.ScoringStats(ctx, lead.ID)
	if err != nil {
		return err
	}

	lastActivity := lead.LastActivityDate
	if touched {
		lastActivity = &now
	}

	score := scoring.Calculate(scoring.Inputs{
		Source:           lead.Source,
		HasEmail:         lead.Email != nil && *lead.Email != "",
		HasPhone:         lead.Phone != nil && *lead.Phone != "",
		VehicleInterests: stats.VehicleInterests,
		Communications:   stats.Communications,
		Appointments:     stats.Appointments,
		LastActivity:     lastActivity,
		Now:              now,
	})
	stage := leadsdomain.DeriveLifecycleStage(lead.Status, stats.Communications)

	return tx.UpdateLeadDerivedState(ctx, lead.ID, score, string(stage))
}

// recordFailure handles a failed advance: stale advances are logged and
// dropped, step failures increment the bounded retry counter and pause the
// assignment once the limit is reached. Scheduling state is left untouched
// so the next tick retries the same step.
func (p *Processor) recordFailure(ctx context.Context, assignment domain.Assignment, stepErr error) {
	p.log.SequenceStep(assignment.ID.String(), assignment.LeadID.String(), assignment.CurrentStep+1, "", stepErr)

	if errors.Is(stepErr, ErrStaleAssignment) {
		return
	}

	attempts, err := p.store.RecordStepFailure(ctx, assignment.ID, stepErr.Error())
	if err != nil {
		p.log.DatabaseError("record step failure", err)
		return
	}
	if attempts < p.maxAttempts {
		return
	}

	err = p.store.WithinTx(ctx, func(tx Store) error {
		if err := tx.PauseAssignment(ctx, assignment.ID, p.now()); err != nil {
			return err
		}
		return tx.CreateActivity(ctx, ActivityParams{
			LeadID:            assignment.LeadID,
			ActivityType:      "sequence_paused",
			Description:       fmt.Sprintf("Follow-up sequence paused after %d failed attempts", attempts),
			RelatedEntityType: ptr(relatedEntityAssignment),
			RelatedEntityID:   &assignment.ID,
		})
	})
	if err != nil {
		p.log.DatabaseError("pause assignment", err)
	}
}

func completionActivity(assignment domain.Assignment, seq domain.Sequence) ActivityParams {
	return ActivityParams{
		LeadID:            assignment.LeadID,
		ActivityType:      "sequence_completed",
		Description:       fmt.Sprintf("Completed follow-up sequence: %s", seq.Name),
		RelatedEntityType: ptr(relatedEntityAssignment),
		RelatedEntityID:   &assignment.ID,
	}
}

func ptr[T any](v T) *T { return &v }
