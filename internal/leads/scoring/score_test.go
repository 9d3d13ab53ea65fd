package scoring

import (
	"testing"
	"time"

	"bdc_backend/internal/leads/domain"
)

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func hoursAgo(h int) *time.Time {
	t := testNow.Add(-time.Duration(h) * time.Hour)
	return &t
}

func TestCalculateSourceBase(t *testing.T) {
	cases := []struct {
		source domain.Source
		want   int
	}{
		{domain.SourceWebsite, 10},
		{domain.SourceReferral, 30},
		{domain.SourceWalkIn, 40},
		{domain.SourcePhone, 20},
		{domain.SourceEmail, 15},
		{domain.SourceSocial, 10},
		{domain.SourceThirdParty, 5},
		{domain.Source("Carrier Pigeon"), 0},
	}

	for _, tc := range cases {
		got := Calculate(Inputs{Source: tc.source, Now: testNow})
		if got != tc.want {
			t.Errorf("Calculate(source=%q) = %d, want %d", tc.source, got, tc.want)
		}
	}
}

func TestCalculateContactCompleteness(t *testing.T) {
	base := Inputs{Source: domain.SourceWebsite, Now: testNow}

	withEmail := base
	withEmail.HasEmail = true
	if got := Calculate(withEmail); got != 20 {
		t.Errorf("email bonus: got %d, want 20", got)
	}

	withBoth := withEmail
	withBoth.HasPhone = true
	if got := Calculate(withBoth); got != 30 {
		t.Errorf("email+phone bonus: got %d, want 30", got)
	}
}

func TestCalculateEngagementCaps(t *testing.T) {
	cases := []struct {
		name string
		in   Inputs
		want int
	}{
		{"interests below cap", Inputs{VehicleInterests: 2, Now: testNow}, 10},
		{"interests at cap", Inputs{VehicleInterests: 3, Now: testNow}, 15},
		{"interests capped", Inputs{VehicleInterests: 10, Now: testNow}, 15},
		{"communications below cap", Inputs{Communications: 4, Now: testNow}, 8},
		{"communications capped", Inputs{Communications: 50, Now: testNow}, 20},
		{"appointments below cap", Inputs{Appointments: 2, Now: testNow}, 20},
		{"appointments capped", Inputs{Appointments: 7, Now: testNow}, 30},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Calculate(tc.in); got != tc.want {
				t.Errorf("got %d, want %d", got, tc.want)
			}
		})
	}
}

func TestCalculateRecencyBuckets(t *testing.T) {
	cases := []struct {
		name         string
		lastActivity *time.Time
		want         int
	}{
		{"under a day", hoursAgo(6), 15},
		{"under three days", hoursAgo(48), 10},
		{"under seven days", hoursAgo(144), 5},
		{"over seven days", hoursAgo(200), 0},
		{"never active", nil, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Calculate(Inputs{LastActivity: tc.lastActivity, Now: testNow})
			if got != tc.want {
				t.Errorf("got %d, want %d", got, tc.want)
			}
		})
	}
}

// A maxed-out lead would earn 40+20+15+20+30+15 = 140 raw points; the score
// must clamp at 100.
func TestCalculateClampsAt100(t *testing.T) {
	in := Inputs{
		Source:           domain.SourceWalkIn,
		HasEmail:         true,
		HasPhone:         true,
		VehicleInterests: 10,
		Communications:   50,
		Appointments:     10,
		LastActivity:     hoursAgo(1),
		Now:              testNow,
	}
	if got := Calculate(in); got != 100 {
		t.Errorf("got %d, want 100", got)
	}
}

func TestCalculateDeterministic(t *testing.T) {
	in := Inputs{
		Source:         domain.SourceReferral,
		HasEmail:       true,
		Communications: 3,
		LastActivity:   hoursAgo(30),
		Now:            testNow,
	}
	first := Calculate(in)
	for i := 0; i < 5; i++ {
		if got := Calculate(in); got != first {
			t.Fatalf("score not deterministic: %d != %d", got, first)
		}
	}
}

// Walk-in lead with phone only and no history scores exactly 50.
func TestCalculateWalkInScenario(t *testing.T) {
	in := Inputs{
		Source:   domain.SourceWalkIn,
		HasPhone: true,
		Now:      testNow,
	}
	if got := Calculate(in); got != 50 {
		t.Errorf("got %d, want 50", got)
	}
}

func TestBreakdownTotalsMatch(t *testing.T) {
	in := Inputs{
		Source:           domain.SourceEmail,
		HasEmail:         true,
		HasPhone:         true,
		VehicleInterests: 1,
		Communications:   2,
		Appointments:     1,
		LastActivity:     hoursAgo(40),
		Now:              testNow,
	}
	b := Breakdown(in)
	sum := b.Source + b.Contact + b.Interests + b.Communications + b.Appointments + b.Recency
	if b.Total != sum {
		t.Errorf("total %d does not match component sum %d", b.Total, sum)
	}
	if b.Total != Calculate(in) {
		t.Errorf("Breakdown total %d disagrees with Calculate %d", b.Total, Calculate(in))
	}
}
