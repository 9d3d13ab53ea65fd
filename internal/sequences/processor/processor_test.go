package processor

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"testing"
	"time"

	leadsdomain "bdc_backend/internal/leads/domain"
	leadsrepo "bdc_backend/internal/leads/repository"
	"bdc_backend/internal/sequences/domain"
	"bdc_backend/platform/logger"

	"github.com/google/uuid"
)

var testNow = time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)

// fakeStore is an in-memory Store with transactional rollback, enough to
// exercise the processor without a database.
type fakeStore struct {
	sequences   map[uuid.UUID]domain.Sequence
	steps       map[uuid.UUID][]domain.Step
	assignments map[uuid.UUID]domain.Assignment
	leads       map[uuid.UUID]leadsrepo.Lead
	stats       map[uuid.UUID]leadsrepo.ScoringStats
	emailTmpls  map[uuid.UUID]EmailTemplate
	smsTmpls    map[uuid.UUID]SMSTemplate
	users       []User
	activities  []ActivityParams
	tasks       []TaskParams

	derived map[uuid.UUID]struct {
		score int
		stage string
	}

	advanceErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		sequences:   map[uuid.UUID]domain.Sequence{},
		steps:       map[uuid.UUID][]domain.Step{},
		assignments: map[uuid.UUID]domain.Assignment{},
		leads:       map[uuid.UUID]leadsrepo.Lead{},
		stats:       map[uuid.UUID]leadsrepo.ScoringStats{},
		emailTmpls:  map[uuid.UUID]EmailTemplate{},
		smsTmpls:    map[uuid.UUID]SMSTemplate{},
		derived: map[uuid.UUID]struct {
			score int
			stage string
		}{},
	}
}

func (s *fakeStore) WithinTx(ctx context.Context, fn func(tx Store) error) error {
	snapAssignments := make(map[uuid.UUID]domain.Assignment, len(s.assignments))
	for k, v := range s.assignments {
		snapAssignments[k] = v
	}
	snapLeads := make(map[uuid.UUID]leadsrepo.Lead, len(s.leads))
	for k, v := range s.leads {
		snapLeads[k] = v
	}
	snapActivities := len(s.activities)
	snapTasks := len(s.tasks)

	if err := fn(s); err != nil {
		s.assignments = snapAssignments
		s.leads = snapLeads
		s.activities = s.activities[:snapActivities]
		s.tasks = s.tasks[:snapTasks]
		return err
	}
	return nil
}

func (s *fakeStore) DueAssignments(_ context.Context, now time.Time, limit int) ([]domain.Assignment, error) {
	var due []domain.Assignment
	for _, a := range s.assignments {
		if a.IsDue(now) {
			due = append(due, a)
		}
	}
	sort.Slice(due, func(i, j int) bool {
		return due[i].NextStepDueAt.Before(*due[j].NextStepDueAt)
	})
	if len(due) > limit {
		due = due[:limit]
	}
	return due, nil
}

func (s *fakeStore) GetAssignment(_ context.Context, id uuid.UUID) (domain.Assignment, error) {
	a, ok := s.assignments[id]
	if !ok {
		return domain.Assignment{}, leadsrepo.ErrNotFound
	}
	return a, nil
}

func (s *fakeStore) HasActiveAssignment(_ context.Context, leadID, sequenceID uuid.UUID) (bool, error) {
	for _, a := range s.assignments {
		if a.LeadID == leadID && a.SequenceID == sequenceID && a.IsActive {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeStore) CreateAssignment(_ context.Context, p CreateAssignmentParams) (domain.Assignment, error) {
	for _, a := range s.assignments {
		if a.LeadID == p.LeadID && a.SequenceID == p.SequenceID && a.IsActive {
			return domain.Assignment{}, ErrAlreadyEnrolled
		}
	}
	a := domain.Assignment{
		ID:            uuid.New(),
		LeadID:        p.LeadID,
		SequenceID:    p.SequenceID,
		CurrentStep:   0,
		IsActive:      true,
		StartedAt:     testNow,
		NextStepDueAt: p.NextStepDueAt,
	}
	s.assignments[a.ID] = a
	return a, nil
}

func (s *fakeStore) AdvanceAssignment(_ context.Context, p AdvanceParams) error {
	if s.advanceErr != nil {
		return s.advanceErr
	}
	a, ok := s.assignments[p.AssignmentID]
	if !ok || a.CurrentStep != p.FromStep || !a.IsActive || a.CompletedAt != nil {
		return ErrStaleAssignment
	}
	a.CurrentStep = p.ToStep
	a.NextStepDueAt = p.NextStepDueAt
	executed := p.ExecutedAt
	a.LastStepCompletedAt = &executed
	a.StepAttempts = 0
	a.LastError = nil
	if p.CompletedAt != nil {
		a.CompletedAt = p.CompletedAt
		a.IsActive = false
	}
	s.assignments[p.AssignmentID] = a
	return nil
}

func (s *fakeStore) CompleteAssignment(_ context.Context, assignmentID uuid.UUID, fromStep int, at time.Time) error {
	a, ok := s.assignments[assignmentID]
	if !ok || a.CurrentStep != fromStep || !a.IsActive {
		return ErrStaleAssignment
	}
	a.IsActive = false
	a.CompletedAt = &at
	a.NextStepDueAt = nil
	s.assignments[assignmentID] = a
	return nil
}

func (s *fakeStore) RecordStepFailure(_ context.Context, assignmentID uuid.UUID, stepError string) (int, error) {
	a, ok := s.assignments[assignmentID]
	if !ok {
		return 0, leadsrepo.ErrNotFound
	}
	a.StepAttempts++
	a.LastError = &stepError
	s.assignments[assignmentID] = a
	return a.StepAttempts, nil
}

func (s *fakeStore) PauseAssignment(_ context.Context, assignmentID uuid.UUID, at time.Time) error {
	a, ok := s.assignments[assignmentID]
	if !ok {
		return leadsrepo.ErrNotFound
	}
	a.PausedAt = &at
	s.assignments[assignmentID] = a
	return nil
}

func (s *fakeStore) GetSequence(_ context.Context, id uuid.UUID) (domain.Sequence, error) {
	seq, ok := s.sequences[id]
	if !ok {
		return domain.Sequence{}, leadsrepo.ErrNotFound
	}
	return seq, nil
}

func (s *fakeStore) ActiveStep(_ context.Context, sequenceID uuid.UUID, stepNumber int) (*domain.Step, error) {
	for _, step := range s.steps[sequenceID] {
		if step.StepNumber == stepNumber && step.IsActive {
			st := step
			return &st, nil
		}
	}
	return nil, nil
}

func (s *fakeStore) FirstActiveStep(_ context.Context, sequenceID uuid.UUID) (*domain.Step, error) {
	var first *domain.Step
	for _, step := range s.steps[sequenceID] {
		if !step.IsActive {
			continue
		}
		if first == nil || step.StepNumber < first.StepNumber {
			st := step
			first = &st
		}
	}
	return first, nil
}

func (s *fakeStore) GetLead(_ context.Context, id uuid.UUID) (leadsrepo.Lead, error) {
	l, ok := s.leads[id]
	if !ok {
		return leadsrepo.Lead{}, leadsrepo.ErrNotFound
	}
	return l, nil
}

func (s *fakeStore) ScoringStats(_ context.Context, leadID uuid.UUID) (leadsrepo.ScoringStats, error) {
	return s.stats[leadID], nil
}

func (s *fakeStore) TouchLeadActivity(_ context.Context, leadID uuid.UUID, at time.Time) error {
	l, ok := s.leads[leadID]
	if !ok {
		return leadsrepo.ErrNotFound
	}
	touched := at
	l.LastActivityDate = &touched
	s.leads[leadID] = l
	return nil
}

func (s *fakeStore) UpdateLeadDerivedState(_ context.Context, leadID uuid.UUID, score int, stage string) error {
	s.derived[leadID] = struct {
		score int
		stage string
	}{score, stage}
	return nil
}

func (s *fakeStore) EmailTemplate(_ context.Context, id uuid.UUID) (*EmailTemplate, error) {
	t, ok := s.emailTmpls[id]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (s *fakeStore) SMSTemplate(_ context.Context, id uuid.UUID) (*SMSTemplate, error) {
	t, ok := s.smsTmpls[id]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (s *fakeStore) FirstUserWithRole(_ context.Context, role string) (*User, error) {
	for _, u := range s.users {
		if u.Role == role {
			user := u
			return &user, nil
		}
	}
	return nil, nil
}

func (s *fakeStore) CreateActivity(_ context.Context, p ActivityParams) error {
	s.activities = append(s.activities, p)
	return nil
}

func (s *fakeStore) CreateTask(_ context.Context, p TaskParams) error {
	s.tasks = append(s.tasks, p)
	return nil
}

func (s *fakeStore) activityTypes() []string {
	types := make([]string, len(s.activities))
	for i, a := range s.activities {
		types[i] = a.ActivityType
	}
	return types
}

type sentEmail struct {
	to, subject, body string
}

type sentSMS struct {
	to, body string
}

type fakeNotifier struct {
	emails   []sentEmail
	messages []sentSMS
	emailErr error
	smsErr   error
}

func (n *fakeNotifier) SendEmail(_ context.Context, to, subject, body string) error {
	if n.emailErr != nil {
		return n.emailErr
	}
	n.emails = append(n.emails, sentEmail{to, subject, body})
	return nil
}

func (n *fakeNotifier) SendSMS(_ context.Context, to, body string) error {
	if n.smsErr != nil {
		return n.smsErr
	}
	n.messages = append(n.messages, sentSMS{to, body})
	return nil
}

type fixture struct {
	store    *fakeStore
	notifier *fakeNotifier
	proc     *Processor
	seq      domain.Sequence
	lead     leadsrepo.Lead
	tmpl     EmailTemplate
}

// newFixture builds a store with one active sequence (email step 1, SMS
// step 2), one email template, one SMS template, and one lead with full
// contact details.
func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := newFakeStore()
	notifier := &fakeNotifier{}

	seq := domain.Sequence{ID: uuid.New(), Name: "New Lead Welcome", TriggerType: domain.TriggerManual, IsActive: true}
	store.sequences[seq.ID] = seq

	emailTmpl := EmailTemplate{ID: uuid.New(), Name: "Welcome Email", Subject: "Hi {lead_name}", Body: "Hello {lead_name}, thanks for reaching out."}
	store.emailTmpls[emailTmpl.ID] = emailTmpl
	smsTmpl := SMSTemplate{ID: uuid.New(), Name: "Welcome SMS", Body: "Hi {lead_name}, quick question for you."}
	store.smsTmpls[smsTmpl.ID] = smsTmpl

	store.steps[seq.ID] = []domain.Step{
		{ID: uuid.New(), SequenceID: seq.ID, StepNumber: 1, DelayHours: 1, ActionType: domain.ActionEmail, TemplateID: &emailTmpl.ID, IsActive: true},
		{ID: uuid.New(), SequenceID: seq.ID, StepNumber: 2, DelayDays: 2, ActionType: domain.ActionSMS, TemplateID: &smsTmpl.ID, IsActive: true},
	}

	email := "jordan@example.com"
	phone := "+15551234567"
	lead := leadsrepo.Lead{
		ID:        uuid.New(),
		FirstName: "Jordan",
		LastName:  "Avery",
		Email:     &email,
		Phone:     &phone,
		Source:    leadsdomain.SourceWebsite,
		Status:    leadsdomain.StatusContacted,
	}
	store.leads[lead.ID] = lead

	proc := New(store, notifier, logger.New("development"), Config{BatchSize: 100, MaxAttempts: 3})
	proc.WithClock(func() time.Time { return testNow })

	return &fixture{store: store, notifier: notifier, proc: proc, seq: seq, lead: lead, tmpl: emailTmpl}
}

func (f *fixture) enroll(t *testing.T) domain.Assignment {
	t.Helper()
	a, err := f.proc.Enroll(context.Background(), f.lead.ID, f.seq.ID, nil)
	if err != nil {
		t.Fatalf("Enroll: %v", err)
	}
	return a
}

func (f *fixture) makeDue(t *testing.T, id uuid.UUID) {
	t.Helper()
	a := f.store.assignments[id]
	due := testNow.Add(-time.Minute)
	a.NextStepDueAt = &due
	f.store.assignments[id] = a
}

func TestEnroll(t *testing.T) {
	f := newFixture(t)

	a := f.enroll(t)
	if a.CurrentStep != 0 {
		t.Errorf("CurrentStep = %d, want 0", a.CurrentStep)
	}
	if !a.IsActive {
		t.Error("new assignment should be active")
	}
	wantDue := testNow.Add(time.Hour)
	if a.NextStepDueAt == nil || !a.NextStepDueAt.Equal(wantDue) {
		t.Errorf("NextStepDueAt = %v, want %v", a.NextStepDueAt, wantDue)
	}
	if got := f.store.activityTypes(); len(got) != 1 || got[0] != "sequence_assigned" {
		t.Errorf("activities = %v, want [sequence_assigned]", got)
	}
}

func TestEnrollRecordsActingUser(t *testing.T) {
	f := newFixture(t)

	actor := uuid.New()
	if _, err := f.proc.Enroll(context.Background(), f.lead.ID, f.seq.ID, &actor); err != nil {
		t.Fatalf("Enroll: %v", err)
	}

	if len(f.store.activities) != 1 {
		t.Fatalf("activities = %d, want 1", len(f.store.activities))
	}
	got := f.store.activities[0]
	if got.PerformedBy == nil || *got.PerformedBy != actor {
		t.Errorf("PerformedBy = %v, want %s", got.PerformedBy, actor)
	}
}

func TestEnrollRejectsDuplicate(t *testing.T) {
	f := newFixture(t)
	f.enroll(t)

	_, err := f.proc.Enroll(context.Background(), f.lead.ID, f.seq.ID, nil)
	if !errors.Is(err, ErrAlreadyEnrolled) {
		t.Fatalf("err = %v, want ErrAlreadyEnrolled", err)
	}
}

func TestEnrollAllowsReenrollmentAfterCompletion(t *testing.T) {
	f := newFixture(t)
	a := f.enroll(t)

	done := a
	done.IsActive = false
	completed := testNow
	done.CompletedAt = &completed
	f.store.assignments[a.ID] = done

	if _, err := f.proc.Enroll(context.Background(), f.lead.ID, f.seq.ID, nil); err != nil {
		t.Fatalf("re-enroll after completion: %v", err)
	}
}

func TestEnrollInactiveSequence(t *testing.T) {
	f := newFixture(t)
	seq := f.store.sequences[f.seq.ID]
	seq.IsActive = false
	f.store.sequences[f.seq.ID] = seq

	_, err := f.proc.Enroll(context.Background(), f.lead.ID, f.seq.ID, nil)
	if !errors.Is(err, ErrSequenceInactive) {
		t.Fatalf("err = %v, want ErrSequenceInactive", err)
	}
}

func TestEnrollSequenceWithoutActiveSteps(t *testing.T) {
	f := newFixture(t)
	steps := f.store.steps[f.seq.ID]
	for i := range steps {
		steps[i].IsActive = false
	}
	f.store.steps[f.seq.ID] = steps

	a := f.enroll(t)
	if a.NextStepDueAt != nil {
		t.Errorf("NextStepDueAt = %v, want nil when no step can run", a.NextStepDueAt)
	}
}

func TestProcessDueExecutesEmailStep(t *testing.T) {
	f := newFixture(t)
	a := f.enroll(t)
	f.makeDue(t, a.ID)

	n, err := f.proc.ProcessDue(context.Background())
	if err != nil {
		t.Fatalf("ProcessDue: %v", err)
	}
	if n != 1 {
		t.Fatalf("processed = %d, want 1", n)
	}

	if len(f.notifier.emails) != 1 {
		t.Fatalf("emails sent = %d, want 1", len(f.notifier.emails))
	}
	sent := f.notifier.emails[0]
	if sent.to != "jordan@example.com" {
		t.Errorf("to = %q", sent.to)
	}
	if sent.subject != "Hi Jordan Avery" {
		t.Errorf("subject = %q, placeholder not rendered", sent.subject)
	}
	if strings.Contains(sent.body, "{lead_name}") {
		t.Errorf("body still contains placeholder: %q", sent.body)
	}

	got := f.store.assignments[a.ID]
	if got.CurrentStep != 1 {
		t.Errorf("CurrentStep = %d, want 1", got.CurrentStep)
	}
	wantDue := testNow.Add(48 * time.Hour)
	if got.NextStepDueAt == nil || !got.NextStepDueAt.Equal(wantDue) {
		t.Errorf("NextStepDueAt = %v, want %v", got.NextStepDueAt, wantDue)
	}
	if got.CompletedAt != nil {
		t.Error("assignment completed early")
	}

	lead := f.store.leads[f.lead.ID]
	if lead.LastActivityDate == nil || !lead.LastActivityDate.Equal(testNow) {
		t.Errorf("LastActivityDate = %v, want %v", lead.LastActivityDate, testNow)
	}
	if _, ok := f.store.derived[f.lead.ID]; !ok {
		t.Error("score and stage were not recomputed")
	}
}

func TestProcessDueCompletesOnLastStep(t *testing.T) {
	f := newFixture(t)
	a := f.enroll(t)

	advanced := f.store.assignments[a.ID]
	advanced.CurrentStep = 1
	f.store.assignments[a.ID] = advanced
	f.makeDue(t, a.ID)

	n, err := f.proc.ProcessDue(context.Background())
	if err != nil {
		t.Fatalf("ProcessDue: %v", err)
	}
	if n != 1 {
		t.Fatalf("processed = %d, want 1", n)
	}
	if len(f.notifier.messages) != 1 {
		t.Fatalf("sms sent = %d, want 1", len(f.notifier.messages))
	}

	got := f.store.assignments[a.ID]
	if got.IsActive {
		t.Error("assignment still active after final step")
	}
	if got.CompletedAt == nil || !got.CompletedAt.Equal(testNow) {
		t.Errorf("CompletedAt = %v, want %v", got.CompletedAt, testNow)
	}

	types := f.store.activityTypes()
	if types[len(types)-1] != "sequence_completed" {
		t.Errorf("last activity = %q, want sequence_completed", types[len(types)-1])
	}
}

func TestProcessDueCompletesWhenNextStepMissing(t *testing.T) {
	f := newFixture(t)
	a := f.enroll(t)

	steps := f.store.steps[f.seq.ID]
	steps[0].IsActive = false
	steps[1].IsActive = false
	f.store.steps[f.seq.ID] = steps
	f.makeDue(t, a.ID)

	n, err := f.proc.ProcessDue(context.Background())
	if err != nil {
		t.Fatalf("ProcessDue: %v", err)
	}
	if n != 0 {
		t.Errorf("processed = %d, want 0 for completion without execution", n)
	}

	got := f.store.assignments[a.ID]
	if got.IsActive || got.CompletedAt == nil {
		t.Error("assignment should be completed")
	}
	if got.CurrentStep != 0 {
		t.Errorf("CurrentStep = %d, want unchanged 0", got.CurrentStep)
	}
}

func TestProcessDueFailureLeavesSchedulingUntouched(t *testing.T) {
	f := newFixture(t)
	a := f.enroll(t)
	f.makeDue(t, a.ID)
	before := f.store.assignments[a.ID]

	f.notifier.emailErr = errors.New("smtp: connection refused")

	n, err := f.proc.ProcessDue(context.Background())
	if err != nil {
		t.Fatalf("ProcessDue: %v", err)
	}
	if n != 0 {
		t.Errorf("processed = %d, want 0", n)
	}

	got := f.store.assignments[a.ID]
	if got.CurrentStep != before.CurrentStep {
		t.Errorf("CurrentStep changed on failure: %d -> %d", before.CurrentStep, got.CurrentStep)
	}
	if !got.NextStepDueAt.Equal(*before.NextStepDueAt) {
		t.Errorf("NextStepDueAt changed on failure: %v -> %v", before.NextStepDueAt, got.NextStepDueAt)
	}
	if got.StepAttempts != 1 {
		t.Errorf("StepAttempts = %d, want 1", got.StepAttempts)
	}
	if got.LastError == nil || !strings.Contains(*got.LastError, "connection refused") {
		t.Errorf("LastError = %v", got.LastError)
	}

	for _, typ := range f.store.activityTypes() {
		if typ == "email_sent" {
			t.Error("email_sent activity recorded for a failed send")
		}
	}
}

func TestProcessDuePausesAfterRepeatedFailures(t *testing.T) {
	f := newFixture(t)
	a := f.enroll(t)
	f.makeDue(t, a.ID)
	f.notifier.emailErr = errors.New("smtp: connection refused")

	for i := 0; i < 3; i++ {
		if _, err := f.proc.ProcessDue(context.Background()); err != nil {
			t.Fatalf("ProcessDue #%d: %v", i+1, err)
		}
	}

	got := f.store.assignments[a.ID]
	if got.PausedAt == nil {
		t.Fatal("assignment not paused after hitting the retry limit")
	}
	if got.IsActive != true {
		t.Error("paused assignment should stay active for manual resume")
	}

	types := f.store.activityTypes()
	if types[len(types)-1] != "sequence_paused" {
		t.Errorf("last activity = %q, want sequence_paused", types[len(types)-1])
	}

	// A paused assignment is no longer due.
	n, err := f.proc.ProcessDue(context.Background())
	if err != nil {
		t.Fatalf("ProcessDue after pause: %v", err)
	}
	if n != 0 {
		t.Errorf("processed = %d after pause, want 0", n)
	}
}

func TestProcessDueStaleAdvanceDoesNotCountAsFailure(t *testing.T) {
	f := newFixture(t)
	a := f.enroll(t)
	f.makeDue(t, a.ID)
	f.store.advanceErr = ErrStaleAssignment

	n, err := f.proc.ProcessDue(context.Background())
	if err != nil {
		t.Fatalf("ProcessDue: %v", err)
	}
	if n != 0 {
		t.Errorf("processed = %d, want 0", n)
	}

	got := f.store.assignments[a.ID]
	if got.StepAttempts != 0 {
		t.Errorf("StepAttempts = %d, want 0 for a stale advance", got.StepAttempts)
	}
	if got.PausedAt != nil {
		t.Error("stale advance must not pause the assignment")
	}
}

func TestProcessDueIsolatesFailures(t *testing.T) {
	f := newFixture(t)

	// Second lead without an email address: its step fails, the first
	// lead's step must still run.
	phone := "+15557654321"
	broken := leadsrepo.Lead{
		ID:        uuid.New(),
		FirstName: "Casey",
		LastName:  "Reed",
		Phone:     &phone,
		Source:    leadsdomain.SourceReferral,
		Status:    leadsdomain.StatusNew,
	}
	f.store.leads[broken.ID] = broken

	healthy := f.enroll(t)
	brokenAssignment, err := f.proc.Enroll(context.Background(), broken.ID, f.seq.ID, nil)
	if err != nil {
		t.Fatalf("Enroll broken lead: %v", err)
	}
	f.makeDue(t, healthy.ID)
	f.makeDue(t, brokenAssignment.ID)

	n, err := f.proc.ProcessDue(context.Background())
	if err != nil {
		t.Fatalf("ProcessDue: %v", err)
	}
	if n != 1 {
		t.Errorf("processed = %d, want 1", n)
	}
	if len(f.notifier.emails) != 1 {
		t.Errorf("emails sent = %d, want 1", len(f.notifier.emails))
	}

	got := f.store.assignments[brokenAssignment.ID]
	if got.StepAttempts != 1 {
		t.Errorf("broken assignment StepAttempts = %d, want 1", got.StepAttempts)
	}
	if got.LastError == nil || !strings.Contains(*got.LastError, ErrMissingContactInfo.Error()) {
		t.Errorf("LastError = %v, want missing contact info", got.LastError)
	}
}

func TestProcessDueRespectsBatchSize(t *testing.T) {
	f := newFixture(t)
	f.proc = New(f.store, f.notifier, logger.New("development"), Config{BatchSize: 2, MaxAttempts: 3}).
		WithClock(func() time.Time { return testNow })

	for i := 0; i < 5; i++ {
		email := fmt.Sprintf("lead%d@example.com", i)
		lead := leadsrepo.Lead{
			ID:        uuid.New(),
			FirstName: "Lead",
			LastName:  fmt.Sprintf("Number%d", i),
			Email:     &email,
			Source:    leadsdomain.SourceWebsite,
			Status:    leadsdomain.StatusNew,
		}
		f.store.leads[lead.ID] = lead
		a, err := f.proc.Enroll(context.Background(), lead.ID, f.seq.ID, nil)
		if err != nil {
			t.Fatalf("Enroll lead %d: %v", i, err)
		}
		f.makeDue(t, a.ID)
	}

	n, err := f.proc.ProcessDue(context.Background())
	if err != nil {
		t.Fatalf("ProcessDue: %v", err)
	}
	if n != 2 {
		t.Errorf("processed = %d, want batch size 2", n)
	}
}

func TestTaskStepAssignsToLeadOwner(t *testing.T) {
	f := newFixture(t)
	owner := uuid.New()
	lead := f.store.leads[f.lead.ID]
	lead.AssignedTo = &owner
	f.store.leads[f.lead.ID] = lead

	desc := "Call {lead_name} to confirm interest"
	f.store.steps[f.seq.ID] = []domain.Step{
		{ID: uuid.New(), SequenceID: f.seq.ID, StepNumber: 1, ActionType: domain.ActionTask, TaskDescription: &desc, IsActive: true},
	}

	a := f.enroll(t)
	f.makeDue(t, a.ID)

	n, err := f.proc.ProcessDue(context.Background())
	if err != nil {
		t.Fatalf("ProcessDue: %v", err)
	}
	if n != 1 {
		t.Fatalf("processed = %d, want 1", n)
	}
	if len(f.store.tasks) != 1 {
		t.Fatalf("tasks created = %d, want 1", len(f.store.tasks))
	}

	task := f.store.tasks[0]
	if task.AssignedTo != owner {
		t.Errorf("AssignedTo = %s, want lead owner %s", task.AssignedTo, owner)
	}
	if task.Title != "Follow up with Jordan Avery" {
		t.Errorf("Title = %q", task.Title)
	}
	if task.Description == nil || *task.Description != "Call Jordan Avery to confirm interest" {
		t.Errorf("Description = %v, want placeholder substituted", task.Description)
	}
	if !task.DueDate.Equal(testNow.Add(24 * time.Hour)) {
		t.Errorf("DueDate = %v", task.DueDate)
	}
	if task.RelatedEntityID != f.lead.ID {
		t.Errorf("RelatedEntityID = %s, want lead id", task.RelatedEntityID)
	}

	// Task steps do not count as lead contact.
	if got := f.store.leads[f.lead.ID]; got.LastActivityDate != nil {
		t.Errorf("LastActivityDate = %v, want nil after task step", got.LastActivityDate)
	}
}

func TestTaskStepAssignsByRole(t *testing.T) {
	f := newFixture(t)
	manager := User{ID: uuid.New(), Role: "manager"}
	f.store.users = []User{{ID: uuid.New(), Role: "agent"}, manager}

	role := "manager"
	f.store.steps[f.seq.ID] = []domain.Step{
		{ID: uuid.New(), SequenceID: f.seq.ID, StepNumber: 1, ActionType: domain.ActionTask, TaskAssigneeRole: &role, IsActive: true},
	}

	a := f.enroll(t)
	f.makeDue(t, a.ID)

	if _, err := f.proc.ProcessDue(context.Background()); err != nil {
		t.Fatalf("ProcessDue: %v", err)
	}
	if len(f.store.tasks) != 1 || f.store.tasks[0].AssignedTo != manager.ID {
		t.Fatalf("task not assigned to manager: %+v", f.store.tasks)
	}
}

func TestTaskStepWithoutAssignee(t *testing.T) {
	f := newFixture(t)
	f.store.steps[f.seq.ID] = []domain.Step{
		{ID: uuid.New(), SequenceID: f.seq.ID, StepNumber: 1, ActionType: domain.ActionTask, IsActive: true},
	}

	a := f.enroll(t)
	f.makeDue(t, a.ID)

	n, err := f.proc.ProcessDue(context.Background())
	if err != nil {
		t.Fatalf("ProcessDue: %v", err)
	}
	if n != 0 {
		t.Errorf("processed = %d, want 0", n)
	}

	got := f.store.assignments[a.ID]
	if got.LastError == nil || !strings.Contains(*got.LastError, ErrAssigneeNotFound.Error()) {
		t.Errorf("LastError = %v, want assignee not found", got.LastError)
	}
	if len(f.store.tasks) != 0 {
		t.Errorf("tasks created = %d, want 0", len(f.store.tasks))
	}
}

func TestEmailStepWithoutTemplate(t *testing.T) {
	f := newFixture(t)
	f.store.steps[f.seq.ID] = []domain.Step{
		{ID: uuid.New(), SequenceID: f.seq.ID, StepNumber: 1, ActionType: domain.ActionEmail, IsActive: true},
	}

	a := f.enroll(t)
	f.makeDue(t, a.ID)

	n, err := f.proc.ProcessDue(context.Background())
	if err != nil {
		t.Fatalf("ProcessDue: %v", err)
	}
	if n != 0 {
		t.Errorf("processed = %d, want 0", n)
	}
	got := f.store.assignments[a.ID]
	if got.LastError == nil || !strings.Contains(*got.LastError, ErrTemplateNotFound.Error()) {
		t.Errorf("LastError = %v, want template not found", got.LastError)
	}
}

func TestSendErrorWrapsChannel(t *testing.T) {
	cause := errors.New("gateway timeout")
	err := &SendError{Channel: "sms", Err: cause}
	if !errors.Is(err, cause) {
		t.Error("SendError must unwrap to its cause")
	}
	if !strings.Contains(err.Error(), "sms") {
		t.Errorf("Error() = %q, want channel name", err.Error())
	}
}

func TestAdvanceSkipsNotDueAssignment(t *testing.T) {
	f := newFixture(t)
	a := f.enroll(t)

	// Due one hour from now; Advance must be a no-op.
	if err := f.proc.Advance(context.Background(), a.ID); err != nil {
		t.Fatalf("Advance: %v", err)
	}
	if len(f.notifier.emails) != 0 {
		t.Error("step executed before its due time")
	}
}
