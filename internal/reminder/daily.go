// Package reminder schedules the daily dhikr reminder and delivers it as a
// desktop notification.
package reminder

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidTime is returned for reminder times that are not HH:MM.
var ErrInvalidTime = errors.New("reminder: time must be HH:MM (24h)")

// Store keys.
const (
	KeyTime    = "reminderTime"
	KeyEnabled = "reminderEnabled"
)

// DailyID identifies the daily reminder event.
const DailyID = "dailyDhikr"

// Notification text.
const (
	Title = "Time for Dhikr"
	Body  = "Remember Allah and find peace in your heart ☪️"
)

// Daily is a reminder that fires once a day at Hour:Minute local time.
type Daily struct {
	Hour    int
	Minute  int
	Enabled bool
}

// DefaultDaily fires at 05:00 and starts disabled.
func DefaultDaily() Daily {
	return Daily{Hour: 5}
}

// ParseClock parses "HH:MM" (or "H:MM").
func ParseClock(raw string) (hour, minute int, err error) {
	h, m, ok := strings.Cut(strings.TrimSpace(raw), ":")
	if !ok {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidTime, raw)
	}
	hour, err = strconv.Atoi(h)
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidTime, raw)
	}
	if len(m) != 2 {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidTime, raw)
	}
	minute, err = strconv.Atoi(m)
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidTime, raw)
	}
	return hour, minute, nil
}

// Clock formats the reminder time as HH:MM.
func (d Daily) Clock() string {
	return fmt.Sprintf("%02d:%02d", d.Hour, d.Minute)
}

// Next returns the first trigger strictly after now, in now's location.
func (d Daily) Next(now time.Time) time.Time {
	y, mo, day := now.Date()
	at := time.Date(y, mo, day, d.Hour, d.Minute, 0, 0, now.Location())
	if !at.After(now) {
		at = time.Date(y, mo, day+1, d.Hour, d.Minute, 0, 0, now.Location())
	}
	return at
}

// Event returns the engine event for the next trigger after now.
func (d Daily) Event(now time.Time) Event {
	return Event{ID: DailyID, TriggerAt: d.Next(now)}
}

// KV is the store holding reminder settings.
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// Load reads the reminder settings. Missing or invalid values keep the
// defaults.
func Load(ctx context.Context, kv KV) (Daily, error) {
	d := DefaultDaily()
	raw, ok, err := kv.Get(ctx, KeyTime)
	if err != nil {
		return d, err
	}
	if ok {
		if h, m, perr := ParseClock(raw); perr == nil {
			d.Hour, d.Minute = h, m
		}
	}
	raw, ok, err = kv.Get(ctx, KeyEnabled)
	if err != nil {
		return d, err
	}
	if ok {
		d.Enabled, _ = strconv.ParseBool(raw)
	}
	return d, nil
}

// Save writes the reminder settings.
func Save(ctx context.Context, kv KV, d Daily) error {
	if err := kv.Set(ctx, KeyTime, d.Clock()); err != nil {
		return err
	}
	return kv.Set(ctx, KeyEnabled, strconv.FormatBool(d.Enabled))
}
