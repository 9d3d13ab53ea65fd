package service

import (
	"testing"

	"bdc_backend/internal/events"
	"bdc_backend/internal/sequences/domain"

	"github.com/google/uuid"
)

func TestEnrollmentTriggerCarriesLeadSource(t *testing.T) {
	leadID := uuid.New()

	cases := []struct {
		name        string
		event       events.Event
		wantTrigger domain.TriggerType
		wantSource  string
	}{
		{
			name: "lead created",
			event: events.LeadCreated{
				BaseEvent: events.NewBaseEvent(),
				LeadID:    leadID,
				Source:    "Referral",
			},
			wantTrigger: domain.TriggerNewLead,
			wantSource:  "Referral",
		},
		{
			name: "status changed",
			event: events.LeadStatusChanged{
				BaseEvent: events.NewBaseEvent(),
				LeadID:    leadID,
				Source:    "Website",
				OldStatus: "New",
				NewStatus: "Qualified",
			},
			wantTrigger: domain.TriggerStatusChange,
			wantSource:  "Website",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gotID, trigger, source, ok := enrollmentTrigger(tc.event)
			if !ok {
				t.Fatal("event should map to an enrollment trigger")
			}
			if gotID != leadID {
				t.Errorf("leadID = %s, want %s", gotID, leadID)
			}
			if trigger != tc.wantTrigger {
				t.Errorf("trigger = %s, want %s", trigger, tc.wantTrigger)
			}
			if source != tc.wantSource {
				t.Errorf("source = %q, want %q", source, tc.wantSource)
			}
		})
	}
}

func TestEnrollmentTriggerIgnoresUnrelatedEvents(t *testing.T) {
	event := events.SequenceCompleted{
		BaseEvent:    events.NewBaseEvent(),
		AssignmentID: uuid.New(),
		LeadID:       uuid.New(),
		SequenceID:   uuid.New(),
	}

	if _, _, _, ok := enrollmentTrigger(event); ok {
		t.Error("completion events should not trigger enrollment")
	}
}

func TestSourceFilteredStatusChangeSequenceMatchesEventSource(t *testing.T) {
	website := "Website"
	seq := domain.Sequence{
		ID:          uuid.New(),
		Name:        "Hot lead follow-up",
		IsActive:    true,
		TriggerType: domain.TriggerStatusChange,
		LeadSource:  &website,
	}

	event := events.LeadStatusChanged{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    uuid.New(),
		Source:    "Website",
		OldStatus: "New",
		NewStatus: "Qualified",
	}
	_, trigger, source, ok := enrollmentTrigger(event)
	if !ok {
		t.Fatal("status change should map to an enrollment trigger")
	}
	if !seq.AppliesTo(trigger, source) {
		t.Error("source-filtered sequence should match a lead from that source")
	}

	other := event
	other.Source = "Walk-in"
	_, trigger, source, _ = enrollmentTrigger(other)
	if seq.AppliesTo(trigger, source) {
		t.Error("source-filtered sequence should not match a lead from another source")
	}
}
