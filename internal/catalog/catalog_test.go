package catalog

import (
	"errors"
	"testing"
	"time"

	"github.com/verte-zerg/tasbih/internal/model"
)

func TestBuiltinEntriesHaveValidTargets(t *testing.T) {
	seen := map[string]bool{}
	for _, d := range Default().All() {
		if d.Count < 1 {
			t.Fatalf("dhikr %q has count %d", d.ID, d.Count)
		}
		if seen[d.ID] {
			t.Fatalf("duplicate id %q", d.ID)
		}
		seen[d.ID] = true
	}
}

func TestFirstIsSubhanAllah(t *testing.T) {
	first := Default().First()
	if first.ID != "subhanallah" || first.Count != 33 {
		t.Fatalf("unexpected first entry: %+v", first)
	}
}

func TestLookupUnknown(t *testing.T) {
	_, err := Default().Lookup("nope")
	if !errors.Is(err, ErrUnknownDhikr) {
		t.Fatalf("expected ErrUnknownDhikr, got %v", err)
	}
}

func TestWithCustomResolvesCustomEntries(t *testing.T) {
	cat := Default().WithCustom([]model.CustomDhikr{{
		ID:        "c-1",
		Phrase:    "يا رب",
		Count:     11,
		Category:  model.CategoryGeneral,
		CreatedAt: time.Unix(0, 0),
	}})
	d, err := cat.Lookup("c-1")
	if err != nil {
		t.Fatalf("lookup custom: %v", err)
	}
	if !d.Custom || d.Count != 11 {
		t.Fatalf("unexpected custom entry: %+v", d)
	}
	if len(cat.All()) != len(Default().All())+1 {
		t.Fatalf("expected custom entry appended")
	}
}

func TestNeighborWraps(t *testing.T) {
	cat := Default()
	all := cat.All()
	last := all[len(all)-1]
	if got := cat.Neighbor(last.ID, 1); got.ID != all[0].ID {
		t.Fatalf("expected wrap to first, got %q", got.ID)
	}
	if got := cat.Neighbor(all[0].ID, -1); got.ID != last.ID {
		t.Fatalf("expected wrap to last, got %q", got.ID)
	}
}

func TestByCategory(t *testing.T) {
	after := Default().ByCategory(model.CategoryAfterPrayer)
	if len(after) != 3 {
		t.Fatalf("expected 3 after-prayer entries, got %d", len(after))
	}
}

func TestIsCustom(t *testing.T) {
	c := Default().WithCustom([]model.CustomDhikr{{ID: "mine", Phrase: "x", Count: 3}})
	if !c.IsCustom("mine") || c.IsCustom("subhanallah") || c.IsCustom("missing") {
		t.Fatalf("unexpected IsCustom results")
	}
	if c.Len() != Default().Len()+1 {
		t.Fatalf("len = %d", c.Len())
	}
}
