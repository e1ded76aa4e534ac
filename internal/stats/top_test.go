package stats

import (
	"testing"

	"github.com/verte-zerg/tasbih/internal/model"
)

func TestTopDhikr(t *testing.T) {
	totals := []model.DhikrTotal{
		{DhikrID: "b", Taps: 10, Completions: 0},
		{DhikrID: "a", Taps: 10, Completions: 1},
		{DhikrID: "c", Taps: 40},
	}
	top := TopDhikr(totals, 2)
	if len(top) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(top))
	}
	if top[0].DhikrID != "c" || top[1].DhikrID != "a" {
		t.Fatalf("unexpected order: %+v", top)
	}
	if all := TopDhikr(totals, 0); len(all) != 3 {
		t.Fatalf("expected all entries for n=0")
	}
	if totals[0].DhikrID != "b" {
		t.Fatalf("input slice was reordered")
	}
}
