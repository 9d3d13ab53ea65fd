package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestStepDelay(t *testing.T) {
	cases := []struct {
		days, hours int
		want        time.Duration
	}{
		{0, 0, 0},
		{0, 4, 4 * time.Hour},
		{1, 0, 24 * time.Hour},
		{2, 6, 54 * time.Hour},
	}
	for _, tc := range cases {
		step := Step{DelayDays: tc.days, DelayHours: tc.hours}
		if got := step.Delay(); got != tc.want {
			t.Errorf("Delay(%dd %dh) = %v, want %v", tc.days, tc.hours, got, tc.want)
		}
	}
}

func TestAssignmentIsDue(t *testing.T) {
	now := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	past := now.Add(-time.Minute)
	future := now.Add(time.Minute)

	base := Assignment{IsActive: true, NextStepDueAt: &past}

	if !base.IsDue(now) {
		t.Error("active assignment past its due time must be due")
	}

	exact := base
	exact.NextStepDueAt = &now
	if !exact.IsDue(now) {
		t.Error("assignment due exactly now must be due")
	}

	notYet := base
	notYet.NextStepDueAt = &future
	if notYet.IsDue(now) {
		t.Error("assignment due in the future must not be due")
	}

	inactive := base
	inactive.IsActive = false
	if inactive.IsDue(now) {
		t.Error("inactive assignment must not be due")
	}

	completed := base
	completed.CompletedAt = &past
	if completed.IsDue(now) {
		t.Error("completed assignment must not be due")
	}

	paused := base
	paused.PausedAt = &past
	if paused.IsDue(now) {
		t.Error("paused assignment must not be due")
	}

	unscheduled := base
	unscheduled.NextStepDueAt = nil
	if unscheduled.IsDue(now) {
		t.Error("assignment without a due time must not be due")
	}
}

func TestSequenceAppliesTo(t *testing.T) {
	website := "Website"
	seq := Sequence{ID: uuid.New(), IsActive: true, TriggerType: TriggerNewLead}

	if !seq.AppliesTo(TriggerNewLead, "Website") {
		t.Error("nil lead source must match any source")
	}
	if seq.AppliesTo(TriggerStatusChange, "Website") {
		t.Error("trigger mismatch must not apply")
	}

	seq.LeadSource = &website
	if !seq.AppliesTo(TriggerNewLead, "Website") {
		t.Error("matching source must apply")
	}
	if seq.AppliesTo(TriggerNewLead, "Referral") {
		t.Error("non-matching source must not apply")
	}

	seq.IsActive = false
	if seq.AppliesTo(TriggerNewLead, "Website") {
		t.Error("inactive sequence must not apply")
	}
}
