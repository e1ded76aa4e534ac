package session

import (
	"fmt"
	"strings"
)

// Mode controls what happens to the total after a set is completed.
type Mode string

const (
	// ModeContinuous keeps counting past the target.
	ModeContinuous Mode = "continuous"
	// ModeResetOnComplete starts a fresh set on the tap after a completion.
	ModeResetOnComplete Mode = "reset-on-complete"
)

// IsValid reports whether m is a known mode.
func (m Mode) IsValid() bool {
	return m == ModeContinuous || m == ModeResetOnComplete
}

// ParseMode parses a mode name. Empty input selects ModeContinuous.
func ParseMode(raw string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(raw))); m {
	case "":
		return ModeContinuous, nil
	case ModeContinuous, ModeResetOnComplete:
		return m, nil
	default:
		return "", fmt.Errorf("unknown counter mode %q (expected %s or %s)", raw, ModeContinuous, ModeResetOnComplete)
	}
}
