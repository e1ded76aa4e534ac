// Package feedback turns counter events into sound and visual cues.
package feedback

import (
	"context"
	"io"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/verte-zerg/tasbih/internal/session"
)

// Store keys for the feedback toggles.
const (
	KeySound  = "isSoundEnabled"
	KeyHaptic = "isHapticEnabled"
)

// Cue is a kind of counter event worth signalling.
type Cue int

const (
	CueNone Cue = iota
	CueTap
	CueUndo
	CueMilestone
	CueSetComplete
	CueReset
)

func (c Cue) String() string {
	switch c {
	case CueTap:
		return "tap"
	case CueUndo:
		return "undo"
	case CueMilestone:
		return "milestone"
	case CueSetComplete:
		return "set-complete"
	case CueReset:
		return "reset"
	default:
		return "none"
	}
}

// Classify maps an increment outcome to a cue. Set completion wins over a
// milestone when both happen on the same tap.
func Classify(step session.Step) Cue {
	switch {
	case !step.Changed:
		return CueNone
	case step.Completed:
		return CueSetComplete
	case step.Milestone:
		return CueMilestone
	default:
		return CueTap
	}
}

// ClassifyUndo maps a decrement outcome to a cue.
func ClassifyUndo(step session.Step) Cue {
	if !step.Changed {
		return CueNone
	}
	return CueUndo
}

// Intensity is the strength of a visual flash.
type Intensity int

const (
	FlashNone Intensity = iota
	FlashLight
	FlashMedium
	FlashHeavy
)

// Pulse is one beat of a cue pattern.
type Pulse struct {
	Delay     time.Duration
	Intensity Intensity
	Bell      bool
}

// Pattern returns the beats for a cue. Taps get one light beat; bigger
// events get a stronger beat followed by a confirming one.
func Pattern(c Cue) []Pulse {
	switch c {
	case CueTap, CueUndo:
		return []Pulse{{Intensity: FlashLight}}
	case CueMilestone:
		return []Pulse{{Intensity: FlashMedium, Bell: true}, {Delay: 100 * time.Millisecond, Intensity: FlashLight}}
	case CueSetComplete:
		return []Pulse{{Intensity: FlashHeavy, Bell: true}, {Delay: 150 * time.Millisecond, Intensity: FlashMedium, Bell: true}}
	case CueReset:
		return []Pulse{{Intensity: FlashHeavy}, {Delay: 100 * time.Millisecond, Intensity: FlashLight}}
	default:
		return nil
	}
}

// Settings are the user's feedback toggles.
type Settings struct {
	Sound  bool
	Haptic bool
}

// DefaultSettings enables both kinds of feedback.
func DefaultSettings() Settings {
	return Settings{Sound: true, Haptic: true}
}

// KV is the store holding the toggles.
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// LoadSettings reads the toggles, keeping fallback for missing or invalid
// values.
func LoadSettings(ctx context.Context, kv KV, fallback Settings) (Settings, error) {
	out := fallback
	for _, item := range []struct {
		key string
		dst *bool
	}{{KeySound, &out.Sound}, {KeyHaptic, &out.Haptic}} {
		raw, ok, err := kv.Get(ctx, item.key)
		if err != nil {
			return fallback, err
		}
		if !ok {
			continue
		}
		if v, err := strconv.ParseBool(strings.TrimSpace(raw)); err == nil {
			*item.dst = v
		}
	}
	return out, nil
}

// SaveSettings writes both toggles.
func SaveSettings(ctx context.Context, kv KV, s Settings) error {
	if err := kv.Set(ctx, KeySound, strconv.FormatBool(s.Sound)); err != nil {
		return err
	}
	return kv.Set(ctx, KeyHaptic, strconv.FormatBool(s.Haptic))
}

// Effect is what the UI should show for a cue.
type Effect struct {
	Cue    Cue
	Pulses []Pulse
}

// Flash reports the strongest visual beat, or FlashNone.
func (e Effect) Flash() Intensity {
	var strongest Intensity
	for _, p := range e.Pulses {
		strongest = max(strongest, p.Intensity)
	}
	return strongest
}

// Player rings the terminal bell and hands visual beats back to the caller.
type Player struct {
	out      io.Writer
	log      *zap.Logger
	settings Settings
}

// NewPlayer returns a player that writes bells to out. A nil out disables
// sound output.
func NewPlayer(out io.Writer, settings Settings, log *zap.Logger) *Player {
	if log == nil {
		log = zap.NewNop()
	}
	return &Player{out: out, log: log, settings: settings}
}

// Settings returns the current toggles.
func (p *Player) Settings() Settings { return p.settings }

// SetSettings replaces the toggles.
func (p *Player) SetSettings(s Settings) { p.settings = s }

// Play signals a cue. Bells are written immediately; the returned Effect
// holds the visual beats when haptic feedback is on. Write errors are logged
// and otherwise ignored.
func (p *Player) Play(c Cue) Effect {
	pattern := Pattern(c)
	if len(pattern) == 0 {
		return Effect{Cue: c}
	}
	if p.settings.Sound && p.out != nil {
		bells := 0
		for _, pulse := range pattern {
			if pulse.Bell {
				bells++
			}
		}
		if bells > 0 {
			if _, err := io.WriteString(p.out, strings.Repeat("\a", bells)); err != nil {
				p.log.Debug("bell failed", zap.String("cue", c.String()), zap.Error(err))
			}
		}
	}
	if !p.settings.Haptic {
		return Effect{Cue: c}
	}
	return Effect{Cue: c, Pulses: pattern}
}
