package domain

import "testing"

func TestDeriveLifecycleStage(t *testing.T) {
	cases := []struct {
		name      string
		status    Status
		commCount int
		want      LifecycleStage
	}{
		{"closed won maps to customer", StatusClosedWon, 0, StageCustomer},
		{"closed lost maps to closed", StatusClosedLost, 0, StageClosed},
		{"appointment set maps to opportunity", StatusAppointmentSet, 0, StageOpportunity},
		{"appointment confirmed maps to opportunity", StatusAppointmentConfirmed, 0, StageOpportunity},
		{"qualified maps to qualified", StatusQualified, 0, StageQualified},
		{"contacted with communications maps to engaged", StatusContacted, 3, StageEngaged},
		{"new with communications maps to engaged", StatusNew, 1, StageEngaged},
		{"new without communications stays new", StatusNew, 0, StageNew},
		{"contacted without communications stays new", StatusContacted, 0, StageNew},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := DeriveLifecycleStage(tc.status, tc.commCount)
			if got != tc.want {
				t.Errorf("DeriveLifecycleStage(%q, %d) = %q, want %q", tc.status, tc.commCount, got, tc.want)
			}
		})
	}
}

// Status rules must win over the communication-count rule regardless of
// engagement volume.
func TestDeriveLifecycleStageStatusPrecedence(t *testing.T) {
	cases := []struct {
		status Status
		want   LifecycleStage
	}{
		{StatusClosedWon, StageCustomer},
		{StatusClosedLost, StageClosed},
		{StatusAppointmentSet, StageOpportunity},
		{StatusAppointmentConfirmed, StageOpportunity},
		{StatusQualified, StageQualified},
	}

	for _, tc := range cases {
		got := DeriveLifecycleStage(tc.status, 25)
		if got != tc.want {
			t.Errorf("DeriveLifecycleStage(%q, 25) = %q, want %q", tc.status, got, tc.want)
		}
	}
}

func TestIsTerminalStatus(t *testing.T) {
	if !IsTerminalStatus(StatusClosedWon) || !IsTerminalStatus(StatusClosedLost) {
		t.Error("closed statuses must be terminal")
	}
	if IsTerminalStatus(StatusSold) {
		t.Error("Sold is not terminal; Closed Won is the terminal success status")
	}
	if IsTerminalStatus(StatusNew) || IsTerminalStatus(StatusQualified) {
		t.Error("open pipeline statuses must not be terminal")
	}
}

func TestIsValidStatus(t *testing.T) {
	for _, s := range []Status{
		StatusNew, StatusContacted, StatusQualified, StatusAppointmentSet,
		StatusAppointmentConfirmed, StatusSold, StatusClosedWon, StatusClosedLost,
	} {
		if !IsValidStatus(s) {
			t.Errorf("expected %q to be valid", s)
		}
	}
	if IsValidStatus("Ghosted") {
		t.Error("unknown status accepted")
	}
}
