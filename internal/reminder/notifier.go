package reminder

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Notification is a desktop notification.
type Notification struct {
	Title string
	Body  string
}

// DailyNotification is the text shown for the daily reminder.
func DailyNotification() Notification {
	return Notification{Title: Title, Body: Body}
}

// Notifier delivers notifications.
type Notifier interface {
	Send(Notification) error
}

// NoopNotifier discards notifications.
type NoopNotifier struct{}

func (NoopNotifier) Send(Notification) error { return nil }

// ExecNotifier shells out to notify-send on Linux and osascript on macOS.
// Other platforms are a no-op.
type ExecNotifier struct{}

func (ExecNotifier) Send(n Notification) error {
	switch runtime.GOOS {
	case "linux":
		return exec.Command("notify-send", n.Title, n.Body).Run()
	case "darwin":
		script := fmt.Sprintf(`display notification "%s" with title "%s"`, escapeAppleScript(n.Body), escapeAppleScript(n.Title))
		return exec.Command("osascript", "-e", script).Run()
	default:
		return nil
	}
}

func escapeAppleScript(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `"`, `\"`)
}

// Watch runs a repeating reminder until ctx is done: it schedules next(now),
// sends a notification when it fires, then schedules the following one. For
// the daily reminder pass Daily.Event. onFire, if non-nil, is called after
// each delivery attempt. Delivery failures are logged and never stop the loop.
func Watch(ctx context.Context, engine *Engine, next func(time.Time) Event, notifier Notifier, log *zap.Logger, onFire func(Event, error)) error {
	if log == nil {
		log = zap.NewNop()
	}
	if err := engine.Schedule(next(time.Now())); err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-engine.C():
			if !ok {
				return ErrEngineStopped
			}
			err := notifier.Send(DailyNotification())
			if err != nil {
				log.Warn("reminder delivery failed", zap.String("id", ev.ID), zap.Error(err))
			} else {
				log.Info("reminder delivered", zap.String("id", ev.ID), zap.Time("trigger_at", ev.TriggerAt), zap.Uint64("dropped", engine.Dropped()))
			}
			if onFire != nil {
				onFire(ev, err)
			}
			if serr := engine.Schedule(next(time.Now())); serr != nil {
				return serr
			}
		}
	}
}
