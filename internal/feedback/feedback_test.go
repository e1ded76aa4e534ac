package feedback

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/verte-zerg/tasbih/internal/kv"
	"github.com/verte-zerg/tasbih/internal/session"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		step session.Step
		want Cue
	}{
		{"no change", session.Step{}, CueNone},
		{"tap", session.Step{Changed: true, Total: 4}, CueTap},
		{"milestone", session.Step{Changed: true, Total: 500, Milestone: true}, CueMilestone},
		{"complete", session.Step{Changed: true, Total: 33, Completed: true}, CueSetComplete},
		{"complete wins", session.Step{Changed: true, Total: 99, Completed: true, Milestone: true}, CueSetComplete},
	}
	for _, tc := range cases {
		if got := Classify(tc.step); got != tc.want {
			t.Fatalf("%s: Classify = %v, want %v", tc.name, got, tc.want)
		}
	}
	if ClassifyUndo(session.Step{}) != CueNone || ClassifyUndo(session.Step{Changed: true}) != CueUndo {
		t.Fatalf("unexpected undo classification")
	}
}

func TestPlayerRingsBellOnlyWhenSoundEnabled(t *testing.T) {
	var buf bytes.Buffer
	p := NewPlayer(&buf, Settings{Sound: true, Haptic: false}, nil)

	p.Play(CueTap)
	if buf.Len() != 0 {
		t.Fatalf("tap should be silent, got %q", buf.String())
	}
	eff := p.Play(CueSetComplete)
	if buf.String() != "\a\a" {
		t.Fatalf("expected two bells, got %q", buf.String())
	}
	if eff.Flash() != FlashNone {
		t.Fatalf("haptic disabled should not flash")
	}

	buf.Reset()
	p.SetSettings(Settings{Sound: false, Haptic: true})
	eff = p.Play(CueMilestone)
	if buf.Len() != 0 {
		t.Fatalf("sound disabled should not ring")
	}
	if eff.Flash() != FlashMedium || len(eff.Pulses) != 2 {
		t.Fatalf("unexpected milestone effect: %+v", eff)
	}
}

func TestPlayNoneIsEmpty(t *testing.T) {
	p := NewPlayer(nil, DefaultSettings(), nil)
	if eff := p.Play(CueNone); len(eff.Pulses) != 0 {
		t.Fatalf("expected no pulses, got %+v", eff)
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("closed") }

func TestPlayIgnoresWriteErrors(t *testing.T) {
	p := NewPlayer(failingWriter{}, DefaultSettings(), nil)
	if eff := p.Play(CueSetComplete); eff.Flash() != FlashHeavy {
		t.Fatalf("expected heavy flash despite write error, got %+v", eff)
	}
}

func TestSettingsRoundTrip(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemory()
	got, err := LoadSettings(ctx, mem, DefaultSettings())
	if err != nil || got != DefaultSettings() {
		t.Fatalf("fresh load = %+v, %v", got, err)
	}
	if err := SaveSettings(ctx, mem, Settings{Sound: false, Haptic: true}); err != nil {
		t.Fatalf("save: %v", err)
	}
	mem.Put(KeyHaptic, "garbage")
	got, err = LoadSettings(ctx, mem, DefaultSettings())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Sound || !got.Haptic {
		t.Fatalf("unexpected settings: %+v", got)
	}
}
