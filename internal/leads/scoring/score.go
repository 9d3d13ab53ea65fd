// Package scoring computes lead engagement scores.
//
// The score is an additive 0-100 signal used for work prioritization. It is
// always recomputed from the full input snapshot; nothing in the system
// increments a stored score.
package scoring

import (
	"time"

	"bdc_backend/internal/leads/domain"
)

const (
	// scoreVersion tracks the scoring model for debugging and analysis.
	// Bump this when changing scoring logic significantly.
	scoreVersion = "2026-v1"

	contactPointBonus = 10

	interestPoints = 5
	interestCap    = 15

	communicationPoints = 2
	communicationCap    = 20

	appointmentPoints = 10
	appointmentCap    = 30
)

// sourceScores maps a lead source to its base score contribution.
// Unknown sources contribute nothing.
var sourceScores = map[domain.Source]int{
	domain.SourceWebsite:    10,
	domain.SourceReferral:   30,
	domain.SourceWalkIn:     40,
	domain.SourcePhone:      20,
	domain.SourceEmail:      15,
	domain.SourceSocial:     10,
	domain.SourceThirdParty: 5,
}

// Inputs is the snapshot of lead state the score derives from.
type Inputs struct {
	Source           domain.Source
	HasEmail         bool
	HasPhone         bool
	VehicleInterests int
	Communications   int
	Appointments     int
	LastActivity     *time.Time
	Now              time.Time
}

// Components itemizes each factor's contribution for score transparency.
type Components struct {
	Source         int `json:"source"`
	Contact        int `json:"contactCompleteness"`
	Interests      int `json:"vehicleInterest"`
	Communications int `json:"communications"`
	Appointments   int `json:"appointments"`
	Recency        int `json:"recency"`
	Total          int `json:"total"`
}

// Calculate computes the lead score from a full input snapshot.
func Calculate(in Inputs) int {
	return Breakdown(in).Total
}

// Breakdown computes the score with its per-factor components.
func Breakdown(in Inputs) Components {
	c := Components{
		Source:         sourceScores[in.Source],
		Contact:        scoreContact(in),
		Interests:      capped(in.VehicleInterests*interestPoints, interestCap),
		Communications: capped(in.Communications*communicationPoints, communicationCap),
		Appointments:   capped(in.Appointments*appointmentPoints, appointmentCap),
		Recency:        scoreRecency(in.LastActivity, in.Now),
	}
	c.Total = clampScore(c.Source + c.Contact + c.Interests + c.Communications + c.Appointments + c.Recency)
	return c
}

func scoreContact(in Inputs) int {
	points := 0
	if in.HasEmail {
		points += contactPointBonus
	}
	if in.HasPhone {
		points += contactPointBonus
	}
	return points
}

// scoreRecency rewards recent activity. A lead that has never been touched
// gets no recency contribution.
func scoreRecency(lastActivity *time.Time, now time.Time) int {
	if lastActivity == nil {
		return 0
	}
	elapsed := now.Sub(*lastActivity)
	switch {
	case elapsed < 24*time.Hour:
		return 15
	case elapsed < 3*24*time.Hour:
		return 10
	case elapsed < 7*24*time.Hour:
		return 5
	default:
		return 0
	}
}

func capped(points, limit int) int {
	if points > limit {
		return limit
	}
	return points
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
