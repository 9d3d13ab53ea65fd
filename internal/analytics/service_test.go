package analytics

import "testing"

func TestBuildFunnelZeroFillsMissingStages(t *testing.T) {
	funnel := buildFunnel([]Bucket{
		{Key: "engaged", Count: 4},
		{Key: "customer", Count: 1},
	})

	if len(funnel) != len(funnelOrder) {
		t.Fatalf("expected %d stages, got %d", len(funnelOrder), len(funnel))
	}
	want := map[string]int{"new": 0, "engaged": 4, "qualified": 0, "opportunity": 0, "customer": 1, "closed": 0}
	for _, stage := range funnel {
		if stage.Count != want[stage.Stage] {
			t.Errorf("stage %s: expected %d, got %d", stage.Stage, want[stage.Stage], stage.Count)
		}
	}
	if funnel[0].Stage != "new" || funnel[len(funnel)-1].Stage != "closed" {
		t.Errorf("funnel out of order: first %s, last %s", funnel[0].Stage, funnel[len(funnel)-1].Stage)
	}
}
