// Package session implements the counter session: the running tally, the
// active dhikr and its target, and the progress derived from them.
//
// A Session is owned by a single goroutine (the UI update loop or a one-shot
// CLI command) and is not safe for concurrent use. Every mutation is written
// through to a KV store; the store is read back only by Load.
package session

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"

	"go.uber.org/zap"

	"github.com/verte-zerg/tasbih/internal/model"
)

var (
	// ErrInvalidTarget is returned when a target below 1 is requested.
	ErrInvalidTarget = errors.New("session: target must be at least 1")
	// ErrPersist wraps store failures. The in-memory state stays authoritative.
	ErrPersist = errors.New("session: persist state")
)

// Store keys.
const (
	KeyCounter        = "counter"
	KeyTarget         = "target"
	KeySelectedDhikr  = "selectedDhikrID"
	KeyTargetOverride = "targetOverride"
)

// DefaultMilestones are the totals that trigger a milestone cue.
var DefaultMilestones = []int{33, 99, 100, 500, 1000}

// KV is the persistent key-value store behind a session.
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// Catalog resolves dhikr identifiers.
type Catalog interface {
	First() model.Dhikr
	Lookup(id string) (model.Dhikr, error)
}

// Progress is derived from the total and target on every read.
type Progress struct {
	InSet         int
	CompletedSets int
	SetComplete   bool
}

// Step describes the outcome of Increment or Decrement.
type Step struct {
	Total     int
	Changed   bool
	Completed bool // a set was completed by this increment
	Milestone bool // the new total is a configured milestone
	Progress  Progress
}

// State is a read-only snapshot of a session.
type State struct {
	Total    int
	Target   int
	Dhikr    model.Dhikr
	Override bool
	Mode     Mode
}

// Session is the counter state machine.
type Session struct {
	kv         KV
	log        *zap.Logger
	mode       Mode
	milestones []int

	total    int
	target   int
	dhikr    model.Dhikr
	override bool
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the logger used for non-fatal failures.
func WithLogger(l *zap.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.log = l
		}
	}
}

// WithMode selects the counting mode.
func WithMode(m Mode) Option {
	return func(s *Session) {
		if m.IsValid() {
			s.mode = m
		}
	}
}

// WithMilestones replaces the milestone totals. Values below 1 are dropped.
func WithMilestones(totals []int) Option {
	return func(s *Session) {
		out := make([]int, 0, len(totals))
		for _, v := range totals {
			if v > 0 {
				out = append(out, v)
			}
		}
		slices.Sort(out)
		s.milestones = slices.Compact(out)
	}
}

// New returns a session with first-launch defaults, without reading the store.
func New(kv KV, cat Catalog, opts ...Option) *Session {
	first := cat.First()
	s := &Session{
		kv:         kv,
		log:        zap.NewNop(),
		mode:       ModeContinuous,
		milestones: DefaultMilestones,
		dhikr:      first,
		target:     clampTarget(first.Count),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load restores a session from kv. Missing keys yield defaults and invalid
// stored values fall back to defaults. The returned session is always usable;
// a non-nil error (wrapping ErrPersist) reports keys that could not be read.
func Load(ctx context.Context, kv KV, cat Catalog, opts ...Option) (*Session, error) {
	s := New(kv, cat, opts...)
	var errs []error

	get := func(key string) (string, bool) {
		v, ok, err := kv.Get(ctx, key)
		if err != nil {
			errs = append(errs, fmt.Errorf("%w: read %s: %w", ErrPersist, key, err))
			return "", false
		}
		return v, ok
	}

	fellBack := false
	if id, ok := get(KeySelectedDhikr); ok {
		d, err := cat.Lookup(id)
		fellBack = err != nil || d.Count < 1
		switch {
		case err != nil:
			s.log.Warn("stored dhikr not found, using default", zap.String("id", id), zap.Error(err))
		case d.Count < 1:
			s.log.Warn("stored dhikr has invalid count, using default", zap.String("id", id), zap.Int("count", d.Count))
		default:
			s.dhikr = d
			s.target = d.Count
		}
	}
	explicit := false
	if raw, ok := get(KeyTargetOverride); ok {
		explicit = parseBool(raw)
	}
	// A stored target wins; it counts as an override when flagged or when it
	// differs from the dhikr's count. A target saved for a dhikr that no
	// longer resolves is kept only when flagged.
	if raw, ok := get(KeyTarget); ok && (explicit || !fellBack) {
		if n, err := strconv.Atoi(raw); err == nil && n >= 1 {
			s.target = n
			s.override = explicit || n != s.dhikr.Count
		} else {
			s.log.Warn("stored target invalid, using dhikr count", zap.String("value", raw))
		}
	}
	if raw, ok := get(KeyCounter); ok {
		if n, err := strconv.Atoi(raw); err == nil && n >= 0 {
			s.total = n
		} else {
			s.log.Warn("stored counter invalid, starting from zero", zap.String("value", raw))
		}
	}
	return s, errors.Join(errs...)
}

// Increment adds one tap. The returned Step is valid even when err is
// non-nil; err only reports a failed write (wrapping ErrPersist).
func (s *Session) Increment(ctx context.Context) (Step, error) {
	if s.mode == ModeResetOnComplete && s.Progress().SetComplete {
		s.total = 0
	}
	s.total++
	p := s.Progress()
	step := Step{
		Total:     s.total,
		Changed:   true,
		Completed: p.SetComplete,
		Milestone: s.isMilestone(s.total),
		Progress:  p,
	}
	return step, s.persist(ctx, kvPair{KeyCounter, strconv.Itoa(s.total)})
}

// Decrement removes one tap, never going below zero. At zero it is a no-op
// and nothing is written.
func (s *Session) Decrement(ctx context.Context) (Step, error) {
	if s.total == 0 {
		return Step{Progress: s.Progress()}, nil
	}
	s.total--
	step := Step{Total: s.total, Changed: true, Progress: s.Progress()}
	return step, s.persist(ctx, kvPair{KeyCounter, strconv.Itoa(s.total)})
}

// Reset zeroes the total. The active dhikr and target are kept.
func (s *Session) Reset(ctx context.Context) error {
	s.total = 0
	return s.persist(ctx, kvPair{KeyCounter, "0"})
}

// SelectDhikr makes d the active dhikr without touching the total. The target
// follows d.Count unless an explicit target override is in effect.
func (s *Session) SelectDhikr(ctx context.Context, d model.Dhikr) error {
	if d.Count < 1 {
		return fmt.Errorf("%w: dhikr %q has count %d", ErrInvalidTarget, d.ID, d.Count)
	}
	s.dhikr = d
	if !s.override {
		s.target = d.Count
	}
	return s.persist(ctx,
		kvPair{KeySelectedDhikr, d.ID},
		kvPair{KeyTarget, strconv.Itoa(s.target)},
	)
}

// SetTarget sets an explicit target that survives dhikr changes.
// Values below 1 are rejected and the previous target is kept.
func (s *Session) SetTarget(ctx context.Context, n int) error {
	if n < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidTarget, n)
	}
	s.target = n
	s.override = true
	return s.persist(ctx,
		kvPair{KeyTarget, strconv.Itoa(n)},
		kvPair{KeyTargetOverride, "true"},
	)
}

// ClearTargetOverride drops an explicit target and restores the active
// dhikr's recommended count.
func (s *Session) ClearTargetOverride(ctx context.Context) error {
	s.override = false
	s.target = clampTarget(s.dhikr.Count)
	return s.persist(ctx,
		kvPair{KeyTarget, strconv.Itoa(s.target)},
		kvPair{KeyTargetOverride, "false"},
	)
}

// Progress derives set progress from the current total and target.
func (s *Session) Progress() Progress {
	return ProgressOf(s.total, s.target)
}

// ProgressOf computes progress for an arbitrary total and target. A target
// below 1 is treated as 1.
func ProgressOf(total, target int) Progress {
	target = clampTarget(target)
	if total < 0 {
		total = 0
	}
	in := total % target
	return Progress{
		InSet:         in,
		CompletedSets: total / target,
		SetComplete:   in == 0 && total > 0,
	}
}

// Snapshot returns the current state.
func (s *Session) Snapshot() State {
	return State{
		Total:    s.total,
		Target:   s.target,
		Dhikr:    s.dhikr,
		Override: s.override,
		Mode:     s.mode,
	}
}

// Total returns the running tally.
func (s *Session) Total() int { return s.total }

// Target returns the active target.
func (s *Session) Target() int { return s.target }

// Dhikr returns the active dhikr.
func (s *Session) Dhikr() model.Dhikr { return s.dhikr }

func (s *Session) isMilestone(total int) bool {
	_, found := slices.BinarySearch(s.milestones, total)
	return found
}

type kvPair struct {
	key   string
	value string
}

func (s *Session) persist(ctx context.Context, pairs ...kvPair) error {
	var errs []error
	for _, p := range pairs {
		if err := s.kv.Set(ctx, p.key, p.value); err != nil {
			s.log.Warn("persist failed", zap.String("key", p.key), zap.Error(err))
			errs = append(errs, fmt.Errorf("%w: write %s: %w", ErrPersist, p.key, err))
		}
	}
	return errors.Join(errs...)
}

func clampTarget(n int) int {
	if n < 1 {
		return 1
	}
	return n
}

func parseBool(raw string) bool {
	v, err := strconv.ParseBool(raw)
	return err == nil && v
}
