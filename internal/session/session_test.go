package session

import (
	"context"
	"errors"
	"testing"

	"github.com/verte-zerg/tasbih/internal/catalog"
	"github.com/verte-zerg/tasbih/internal/kv"
	"github.com/verte-zerg/tasbih/internal/model"
)

func newSession(t *testing.T, opts ...Option) (*Session, *kv.Memory) {
	t.Helper()
	mem := kv.NewMemory()
	s, err := Load(context.Background(), mem, catalog.Default(), opts...)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	return s, mem
}

func TestFreshSessionDefaults(t *testing.T) {
	s, _ := newSession(t)
	first := catalog.Default().First()
	st := s.Snapshot()
	if st.Total != 0 || st.Dhikr.ID != first.ID || st.Target != first.Count || st.Override {
		t.Fatalf("unexpected defaults: %+v", st)
	}
	if st.Mode != ModeContinuous {
		t.Fatalf("expected continuous mode, got %q", st.Mode)
	}
}

func TestIncrementProgressMatchesArithmetic(t *testing.T) {
	ctx := context.Background()
	for _, target := range []int{1, 7, 33, 100} {
		s, _ := newSession(t)
		if err := s.SetTarget(ctx, target); err != nil {
			t.Fatalf("set target: %v", err)
		}
		for n := 1; n <= 3*target+2; n++ {
			step, err := s.Increment(ctx)
			if err != nil {
				t.Fatalf("increment: %v", err)
			}
			p := s.Progress()
			if s.Total() != n || step.Total != n {
				t.Fatalf("target %d: total = %d, want %d", target, s.Total(), n)
			}
			if p.CompletedSets != n/target || p.InSet != n%target {
				t.Fatalf("target %d n %d: progress %+v", target, n, p)
			}
			wantComplete := n%target == 0
			if p.SetComplete != wantComplete || step.Completed != wantComplete {
				t.Fatalf("target %d n %d: complete = %v/%v, want %v", target, n, p.SetComplete, step.Completed, wantComplete)
			}
		}
	}
}

func TestZeroTotalIsNotComplete(t *testing.T) {
	s, _ := newSession(t)
	p := s.Progress()
	if p.SetComplete || p.InSet != 0 || p.CompletedSets != 0 {
		t.Fatalf("unexpected progress at zero: %+v", p)
	}
}

func TestThirtyThreeTapScenario(t *testing.T) {
	ctx := context.Background()
	s, _ := newSession(t)
	if s.Target() != 33 {
		t.Fatalf("expected default target 33, got %d", s.Target())
	}
	for i := 0; i < 33; i++ {
		if _, err := s.Increment(ctx); err != nil {
			t.Fatalf("increment: %v", err)
		}
	}
	if p := s.Progress(); !p.SetComplete || p.CompletedSets != 1 || p.InSet != 0 {
		t.Fatalf("after 33 taps: %+v", p)
	}
	step, err := s.Increment(ctx)
	if err != nil {
		t.Fatalf("increment: %v", err)
	}
	if step.Completed {
		t.Fatalf("34th tap should not complete a set")
	}
	if p := s.Progress(); p.SetComplete || p.CompletedSets != 1 || p.InSet != 1 {
		t.Fatalf("after 34 taps: %+v", p)
	}
}

func TestRestoredNinetyNineCompletesOnNextTap(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemory()
	mem.Put(KeyCounter, "99")
	mem.Put(KeyTarget, "100")
	mem.Put(KeyTargetOverride, "true")
	s, err := Load(ctx, mem, catalog.Default())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	step, err := s.Increment(ctx)
	if err != nil {
		t.Fatalf("increment: %v", err)
	}
	if !step.Completed || step.Total != 100 {
		t.Fatalf("expected completion at 100, got %+v", step)
	}
	if !step.Milestone {
		t.Fatalf("expected 100 to be a milestone")
	}
}

func TestDecrementFloor(t *testing.T) {
	ctx := context.Background()
	s, mem := newSession(t)
	for i := 0; i < 3; i++ {
		step, err := s.Decrement(ctx)
		if err != nil {
			t.Fatalf("decrement: %v", err)
		}
		if step.Changed || s.Total() != 0 {
			t.Fatalf("decrement at floor changed state: %+v", step)
		}
	}
	if _, ok := mem.Snapshot()[KeyCounter]; ok {
		t.Fatalf("decrement at floor should not write")
	}

	_, _ = s.Increment(ctx)
	_, _ = s.Increment(ctx)
	step, err := s.Decrement(ctx)
	if err != nil {
		t.Fatalf("decrement: %v", err)
	}
	if !step.Changed || step.Total != 1 {
		t.Fatalf("unexpected decrement step: %+v", step)
	}
	if got := mem.Snapshot()[KeyCounter]; got != "1" {
		t.Fatalf("persisted counter = %q, want 1", got)
	}
}

func TestResetKeepsSelection(t *testing.T) {
	ctx := context.Background()
	s, mem := newSession(t)
	d, err := catalog.Default().Lookup("astaghfirullah")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if err := s.SelectDhikr(ctx, d); err != nil {
		t.Fatalf("select: %v", err)
	}
	for i := 0; i < 42; i++ {
		_, _ = s.Increment(ctx)
	}
	before := s.Snapshot()
	if err := s.Reset(ctx); err != nil {
		t.Fatalf("reset: %v", err)
	}
	after := s.Snapshot()
	if after.Total != 0 || after.Dhikr.ID != before.Dhikr.ID || after.Target != before.Target {
		t.Fatalf("reset changed selection: before %+v after %+v", before, after)
	}
	if got := mem.Snapshot()[KeyCounter]; got != "0" {
		t.Fatalf("persisted counter = %q, want 0", got)
	}
}

func TestSelectDhikrKeepsTotal(t *testing.T) {
	ctx := context.Background()
	s, mem := newSession(t)
	for i := 0; i < 10; i++ {
		_, _ = s.Increment(ctx)
	}
	d, _ := catalog.Default().Lookup("allahu-akbar")
	if err := s.SelectDhikr(ctx, d); err != nil {
		t.Fatalf("select: %v", err)
	}
	if s.Target() != d.Count || s.Total() != 10 {
		t.Fatalf("target %d total %d", s.Target(), s.Total())
	}
	snap := mem.Snapshot()
	if snap[KeySelectedDhikr] != d.ID || snap[KeyTarget] != "34" {
		t.Fatalf("unexpected persisted state: %v", snap)
	}
}

func TestSelectDhikrRejectsInvalidCount(t *testing.T) {
	ctx := context.Background()
	s, _ := newSession(t)
	before := s.Snapshot()
	err := s.SelectDhikr(ctx, model.Dhikr{ID: "broken", Count: 0})
	if !errors.Is(err, ErrInvalidTarget) {
		t.Fatalf("expected ErrInvalidTarget, got %v", err)
	}
	if after := s.Snapshot(); after != before {
		t.Fatalf("state changed: %+v -> %+v", before, after)
	}
}

func TestSetTargetRejectsBelowOne(t *testing.T) {
	ctx := context.Background()
	s, _ := newSession(t)
	before := s.Target()
	for _, n := range []int{0, -5} {
		if err := s.SetTarget(ctx, n); !errors.Is(err, ErrInvalidTarget) {
			t.Fatalf("SetTarget(%d): expected ErrInvalidTarget, got %v", n, err)
		}
		if s.Target() != before {
			t.Fatalf("SetTarget(%d) changed target to %d", n, s.Target())
		}
	}
}

func TestTargetOverrideSurvivesSelection(t *testing.T) {
	ctx := context.Background()
	s, _ := newSession(t)
	if err := s.SetTarget(ctx, 11); err != nil {
		t.Fatalf("set target: %v", err)
	}
	d, _ := catalog.Default().Lookup("la-ilaha-illallah")
	if err := s.SelectDhikr(ctx, d); err != nil {
		t.Fatalf("select: %v", err)
	}
	if s.Target() != 11 {
		t.Fatalf("override lost: target = %d", s.Target())
	}
	if err := s.ClearTargetOverride(ctx); err != nil {
		t.Fatalf("clear override: %v", err)
	}
	if s.Target() != 100 || s.Snapshot().Override {
		t.Fatalf("clear override: %+v", s.Snapshot())
	}
}

func TestRoundTripRestoresProgress(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemory()
	mem.Put(KeyCounter, "57")
	mem.Put(KeyTarget, "33")
	mem.Put(KeySelectedDhikr, "subhanallah")

	s, err := Load(ctx, mem, catalog.Default())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := Progress{InSet: 24, CompletedSets: 1, SetComplete: false}
	if got := s.Progress(); got != want {
		t.Fatalf("progress = %+v, want %+v", got, want)
	}
}

func TestLoadUsesStoredTargetWithoutOverrideFlag(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemory()
	mem.Put(KeyCounter, "57")
	mem.Put(KeyTarget, "33")
	mem.Put(KeySelectedDhikr, "allahu-akbar")

	s, err := Load(ctx, mem, catalog.Default())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	st := s.Snapshot()
	if st.Target != 33 || st.Dhikr.ID != "allahu-akbar" || !st.Override {
		t.Fatalf("unexpected state %+v", st)
	}
	want := Progress{InSet: 24, CompletedSets: 1, SetComplete: false}
	if got := s.Progress(); got != want {
		t.Fatalf("progress = %+v, want %+v", got, want)
	}

	d, _ := catalog.Default().Lookup("subhanallah")
	if err := s.SelectDhikr(ctx, d); err != nil {
		t.Fatalf("select: %v", err)
	}
	if s.Target() != 33 {
		t.Fatalf("target should survive select, got %d", s.Target())
	}
}

func TestLoadMatchingTargetIsNotAnOverride(t *testing.T) {
	mem := kv.NewMemory()
	mem.Put(KeyTarget, "34")
	mem.Put(KeySelectedDhikr, "allahu-akbar")

	s, err := Load(context.Background(), mem, catalog.Default())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if st := s.Snapshot(); st.Target != 34 || st.Override {
		t.Fatalf("unexpected state %+v", st)
	}
}

func TestLoadDropsTargetOfMissingDhikr(t *testing.T) {
	mem := kv.NewMemory()
	mem.Put(KeyTarget, "129")
	mem.Put(KeySelectedDhikr, "deleted-custom")

	s, err := Load(context.Background(), mem, catalog.Default())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if st := s.Snapshot(); st.Target != 33 || st.Override {
		t.Fatalf("unexpected state %+v", st)
	}
}

func TestRoundTripThroughSession(t *testing.T) {
	ctx := context.Background()
	s, mem := newSession(t)
	d, _ := catalog.Default().Lookup("hasbiyallah")
	_ = s.SelectDhikr(ctx, d)
	_ = s.SetTarget(ctx, 12)
	for i := 0; i < 30; i++ {
		_, _ = s.Increment(ctx)
	}

	reloaded, err := Load(ctx, mem, catalog.Default())
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.Snapshot() != s.Snapshot() {
		t.Fatalf("reload mismatch: %+v vs %+v", reloaded.Snapshot(), s.Snapshot())
	}
}

func TestLoadFallsBackOnInvalidValues(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemory()
	mem.Put(KeyCounter, "-4")
	mem.Put(KeyTarget, "0")
	mem.Put(KeyTargetOverride, "true")
	mem.Put(KeySelectedDhikr, "no-such-dhikr")

	s, err := Load(ctx, mem, catalog.Default())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	first := catalog.Default().First()
	st := s.Snapshot()
	if st.Total != 0 || st.Target != first.Count || st.Dhikr.ID != first.ID || st.Override {
		t.Fatalf("expected defaults, got %+v", st)
	}
}

func TestLoadReportsReadFailure(t *testing.T) {
	mem := kv.NewMemory()
	mem.FailReads(errors.New("disk gone"))
	s, err := Load(context.Background(), mem, catalog.Default())
	if !errors.Is(err, ErrPersist) {
		t.Fatalf("expected ErrPersist, got %v", err)
	}
	if s == nil || s.Total() != 0 {
		t.Fatalf("expected usable default session")
	}
}

func TestPersistFailureKeepsInMemoryState(t *testing.T) {
	ctx := context.Background()
	s, mem := newSession(t)
	mem.FailWrites(errors.New("read-only"))
	step, err := s.Increment(ctx)
	if !errors.Is(err, ErrPersist) {
		t.Fatalf("expected ErrPersist, got %v", err)
	}
	if step.Total != 1 || s.Total() != 1 {
		t.Fatalf("in-memory total did not advance: %+v", step)
	}
	if err := s.Reset(ctx); !errors.Is(err, ErrPersist) {
		t.Fatalf("expected ErrPersist from reset, got %v", err)
	}
	if s.Total() != 0 {
		t.Fatalf("reset did not apply in memory")
	}
}

func TestResetOnCompleteMode(t *testing.T) {
	ctx := context.Background()
	s, _ := newSession(t, WithMode(ModeResetOnComplete))
	_ = s.SetTarget(ctx, 3)
	var last Step
	for i := 0; i < 3; i++ {
		last, _ = s.Increment(ctx)
	}
	if !last.Completed || s.Total() != 3 {
		t.Fatalf("expected completion at 3, got %+v", last)
	}
	next, _ := s.Increment(ctx)
	if next.Total != 1 || next.Progress.CompletedSets != 0 || next.Progress.InSet != 1 {
		t.Fatalf("expected new set from one, got %+v", next)
	}
}

func TestMilestones(t *testing.T) {
	ctx := context.Background()
	s, _ := newSession(t, WithMilestones([]int{5, 2, 0, 5}))
	var hits []int
	for i := 0; i < 6; i++ {
		step, _ := s.Increment(ctx)
		if step.Milestone {
			hits = append(hits, step.Total)
		}
	}
	if len(hits) != 2 || hits[0] != 2 || hits[1] != 5 {
		t.Fatalf("milestones hit = %v", hits)
	}
}

func TestProgressOfGuardsTarget(t *testing.T) {
	if p := ProgressOf(5, 0); p.CompletedSets != 5 || p.InSet != 0 || !p.SetComplete {
		t.Fatalf("unexpected progress for zero target: %+v", p)
	}
}

func TestParseMode(t *testing.T) {
	cases := map[string]Mode{
		"":                  ModeContinuous,
		"Continuous":        ModeContinuous,
		"reset-on-complete": ModeResetOnComplete,
	}
	for in, want := range cases {
		got, err := ParseMode(in)
		if err != nil || got != want {
			t.Fatalf("ParseMode(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseMode("auto"); err == nil {
		t.Fatalf("expected error for unknown mode")
	}
}
