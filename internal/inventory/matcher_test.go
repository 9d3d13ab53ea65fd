package inventory

import (
	"testing"

	"github.com/google/uuid"
)

func vehicle(make, model string, year int, price float64) Vehicle {
	return Vehicle{ID: uuid.New(), Make: make, Model: model, Year: year, Price: price, Status: StatusInStock}
}

func TestMatchVehicles(t *testing.T) {
	camry := vehicle("Toyota", "Camry", 2023, 28000)
	corolla := vehicle("Toyota", "Corolla", 2021, 21000)
	f150 := vehicle("Ford", "F-150", 2022, 45000)
	stock := []Vehicle{camry, corolla, f150}

	toyota := "Toyota"
	camryModel := "Camry"
	year2022 := 2022
	budget30k := 30000.0

	tests := []struct {
		name      string
		interests []Interest
		wantIDs   []uuid.UUID
	}{
		{
			name:      "make and model pins one vehicle first",
			interests: []Interest{{Make: &toyota, Model: &camryModel}},
			wantIDs:   []uuid.UUID{camry.ID},
		},
		{
			name:      "make only matches both, cheaper ties first",
			interests: []Interest{{Make: &toyota}},
			wantIDs:   []uuid.UUID{corolla.ID, camry.ID},
		},
		{
			name:      "year floor excludes older stock",
			interests: []Interest{{Make: &toyota, MinYear: &year2022}},
			wantIDs:   []uuid.UUID{camry.ID},
		},
		{
			name:      "budget cap excludes expensive stock",
			interests: []Interest{{MaxPrice: &budget30k}},
			wantIDs:   []uuid.UUID{corolla.ID, camry.ID},
		},
		{
			name:      "wrong make matches nothing",
			interests: []Interest{{Make: ptrOf("Honda")}},
			wantIDs:   nil,
		},
		{
			name:      "empty interest matches nothing",
			interests: []Interest{{}},
			wantIDs:   nil,
		},
		{
			name:      "no interests matches nothing",
			interests: nil,
			wantIDs:   nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MatchVehicles(stock, tt.interests)
			if len(got) != len(tt.wantIDs) {
				t.Fatalf("got %d matches, want %d", len(got), len(tt.wantIDs))
			}
			for i, want := range tt.wantIDs {
				if got[i].Vehicle.ID != want {
					t.Errorf("match[%d] = %s %s, want vehicle %s",
						i, got[i].Vehicle.Make, got[i].Vehicle.Model, want)
				}
			}
		})
	}
}

func TestMatchVehiclesDirectReference(t *testing.T) {
	camry := vehicle("Toyota", "Camry", 2023, 28000)
	corolla := vehicle("Toyota", "Corolla", 2021, 21000)
	toyota := "Toyota"

	// The pinned Corolla must outrank the criteria match on the Camry.
	matches := MatchVehicles([]Vehicle{camry, corolla}, []Interest{
		{VehicleID: &corolla.ID},
		{Make: &toyota, Model: ptrOf("Camry")},
	})
	if len(matches) != 2 {
		t.Fatalf("got %d matches, want 2", len(matches))
	}
	if matches[0].Vehicle.ID != corolla.ID {
		t.Errorf("first match = %s, want pinned vehicle", matches[0].Vehicle.Model)
	}
	if matches[0].Score <= matches[1].Score {
		t.Errorf("pinned score %d not above criteria score %d", matches[0].Score, matches[1].Score)
	}
}

func TestMatchVehiclesBestInterestWins(t *testing.T) {
	camry := vehicle("Toyota", "Camry", 2023, 28000)
	toyota := "Toyota"

	// Same vehicle hit by a weak and a strong interest; score keeps the max,
	// and the vehicle appears once.
	matches := MatchVehicles([]Vehicle{camry}, []Interest{
		{Make: &toyota},
		{Make: &toyota, Model: ptrOf("Camry"), MaxPrice: ptrOf(30000.0)},
	})
	if len(matches) != 1 {
		t.Fatalf("got %d matches, want 1", len(matches))
	}
	want := makeWeight + modelWeight + budgetWeight
	if matches[0].Score != want {
		t.Errorf("score = %d, want %d", matches[0].Score, want)
	}
}

func ptrOf[T any](v T) *T { return &v }
