package inventory

import (
	"sort"
	"strings"
)

// Match pairs a stocked vehicle with how well it fits a lead's interests.
type Match struct {
	Vehicle Vehicle
	Score   int
}

// Per-criterion match weights. Make and model agreement dominate; year and
// budget refine the ordering.
const (
	makeWeight   = 4
	modelWeight  = 4
	yearWeight   = 2
	budgetWeight = 2
)

// MatchVehicles scores each vehicle against every interest and keeps the
// best interest score per vehicle. A vehicle that contradicts an interest's
// stated make, model, year floor, or budget scores zero for that interest;
// vehicles with no positive score are dropped. Results come back highest
// score first, ties broken by lower price.
func MatchVehicles(vehicles []Vehicle, interests []Interest) []Match {
	var out []Match
	for _, v := range vehicles {
		best := 0
		for _, in := range interests {
			if s := scoreInterest(v, in); s > best {
				best = s
			}
		}
		if best > 0 {
			out = append(out, Match{Vehicle: v, Score: best})
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Vehicle.Price < out[j].Vehicle.Price
	})
	return out
}

func scoreInterest(v Vehicle, in Interest) int {
	// A direct vehicle reference overrides the criteria fields.
	if in.VehicleID != nil {
		if *in.VehicleID == v.ID {
			return makeWeight + modelWeight + yearWeight + budgetWeight
		}
		return 0
	}

	score := 0
	if in.Make != nil {
		if !strings.EqualFold(*in.Make, v.Make) {
			return 0
		}
		score += makeWeight
	}
	if in.Model != nil {
		if !strings.EqualFold(*in.Model, v.Model) {
			return 0
		}
		score += modelWeight
	}
	if in.MinYear != nil {
		if v.Year < *in.MinYear {
			return 0
		}
		score += yearWeight
	}
	if in.MaxPrice != nil {
		if v.Price > *in.MaxPrice {
			return 0
		}
		score += budgetWeight
	}
	return score
}
