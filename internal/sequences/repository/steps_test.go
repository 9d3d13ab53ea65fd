package repository

import (
	"testing"

	"github.com/google/uuid"
)

func TestRenumberStepsClosesGapAfterDelete(t *testing.T) {
	first := uuid.New()
	third := uuid.New()
	fourth := uuid.New()

	// steps 1,2,3,4 with step 2 deleted
	remaining := []stepRef{
		{id: first, number: 1},
		{id: third, number: 3},
		{id: fourth, number: 4},
	}

	changed := renumberSteps(remaining)
	if len(changed) != 2 {
		t.Fatalf("changed = %d rows, want 2", len(changed))
	}
	if changed[0].id != third || changed[0].number != 2 {
		t.Errorf("changed[0] = {%s %d}, want step 3 renumbered to 2", changed[0].id, changed[0].number)
	}
	if changed[1].id != fourth || changed[1].number != 3 {
		t.Errorf("changed[1] = {%s %d}, want step 4 renumbered to 3", changed[1].id, changed[1].number)
	}
}

func TestRenumberStepsShiftsAllAfterFirstDeleted(t *testing.T) {
	remaining := []stepRef{
		{id: uuid.New(), number: 2},
		{id: uuid.New(), number: 3},
	}

	changed := renumberSteps(remaining)
	if len(changed) != 2 {
		t.Fatalf("changed = %d rows, want 2", len(changed))
	}
	for i, s := range changed {
		if s.number != i+1 {
			t.Errorf("changed[%d].number = %d, want %d", i, s.number, i+1)
		}
	}
}

func TestRenumberStepsNoopWhenContiguous(t *testing.T) {
	steps := []stepRef{
		{id: uuid.New(), number: 1},
		{id: uuid.New(), number: 2},
		{id: uuid.New(), number: 3},
	}

	if changed := renumberSteps(steps); changed != nil {
		t.Errorf("changed = %v, want none for contiguous numbering", changed)
	}
}

func TestRenumberStepsEmpty(t *testing.T) {
	if changed := renumberSteps(nil); changed != nil {
		t.Errorf("changed = %v, want none for empty sequence", changed)
	}
}
