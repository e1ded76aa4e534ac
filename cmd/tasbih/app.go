package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/verte-zerg/tasbih/internal/catalog"
	"github.com/verte-zerg/tasbih/internal/entitlement"
	"github.com/verte-zerg/tasbih/internal/feedback"
	"github.com/verte-zerg/tasbih/internal/kv"
	"github.com/verte-zerg/tasbih/internal/logging"
	"github.com/verte-zerg/tasbih/internal/model"
	"github.com/verte-zerg/tasbih/internal/reminder"
	"github.com/verte-zerg/tasbih/internal/session"
	"github.com/verte-zerg/tasbih/internal/store"
	"github.com/verte-zerg/tasbih/internal/theme"
)

// app holds the services shared by every command. History, custom dhikr and
// favorites always live in SQLite; counter state and settings live in the
// selected backend.
type app struct {
	cfg     model.Config
	log     *zap.Logger
	store   *store.Store
	kv      session.KV
	catalog *catalog.Catalog
	session *session.Session
	premium *entitlement.Service
	closers []func() error
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func openApp(cmd *cobra.Command) (*app, error) {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return nil, err
	}
	log, closeLog, err := logging.New(logging.Options{Path: cfg.LogPath, Level: cfg.LogLevel})
	if err != nil {
		return nil, fmt.Errorf("failed to open log: %w", err)
	}
	a := &app{cfg: cfg, log: log, closers: []func() error{closeLog}}

	st, err := store.Open(cfg.DBPath)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	a.store = st
	a.closers = append(a.closers, st.Close)

	ctx := commandContext(cmd)
	if err := a.openKV(ctx); err != nil {
		a.close()
		return nil, err
	}
	a.premium = entitlement.New(a.kv)

	if err := a.reloadCatalog(ctx); err != nil {
		a.close()
		return nil, err
	}

	mode, err := session.ParseMode(cfg.Mode)
	if err != nil {
		a.close()
		return nil, err
	}
	opts := []session.Option{session.WithLogger(log), session.WithMode(mode)}
	if len(cfg.Milestones) > 0 {
		opts = append(opts, session.WithMilestones(cfg.Milestones))
	}
	sess, err := session.Load(ctx, a.kv, a.catalog, opts...)
	if err != nil {
		log.Warn("counter state partially restored", zap.Error(err))
		logErrf("warning: %v\n", err)
	}
	a.session = sess
	a.dropLockedCustom(ctx)
	return a, nil
}

// dropLockedCustom moves off a custom dhikr once premium has been locked.
// An unreadable flag leaves the selection alone.
func (a *app) dropLockedCustom(ctx context.Context) {
	if !a.session.Dhikr().Custom {
		return
	}
	ok, err := a.premium.IsPremiumUnlocked(ctx)
	if err != nil || ok {
		return
	}
	first := a.catalog.First()
	if err := a.session.SelectDhikr(ctx, first); err != nil {
		a.log.Warn("failed to leave locked custom dhikr", zap.Error(err))
		return
	}
	logErrf("Premium is locked; switched to %s.\n", first.ID)
}

func (a *app) openKV(ctx context.Context) error {
	switch a.cfg.Backend {
	case backendRedis:
		r, err := kv.OpenRedis(ctx, kv.RedisOptions{
			Addr:     a.cfg.RedisAddr,
			Password: a.cfg.RedisPassword,
			DB:       a.cfg.RedisDB,
		}, a.log)
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		a.kv = r
		a.closers = append(a.closers, r.Close)
	case backendMemory:
		a.kv = kv.NewMemory()
	default:
		a.kv = a.store
	}
	a.log.Debug("counter backend selected", zap.String("backend", a.cfg.Backend))
	return nil
}

func (a *app) reloadCatalog(ctx context.Context) error {
	custom, err := a.store.ListCustomDhikr(ctx)
	if err != nil {
		return fmt.Errorf("failed to load custom dhikr: %w", err)
	}
	a.catalog = catalog.Default().WithCustom(custom)
	return nil
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			logErrf("failed to close: %v\n", err)
		}
	}
	a.closers = nil
}

func (a *app) player(out io.Writer) *feedback.Player {
	fallback := feedback.Settings{Sound: a.cfg.Sound, Haptic: a.cfg.Haptic}
	settings, err := feedback.LoadSettings(context.Background(), a.kv, fallback)
	if err != nil {
		a.log.Warn("feedback settings unavailable", zap.Error(err))
	}
	return feedback.NewPlayer(out, settings, a.log)
}

// theme resolves the flag/config theme first, then the saved one.
func (a *app) theme(ctx context.Context) theme.Theme {
	name := a.cfg.Theme
	if name == "" {
		saved, ok, err := a.kv.Get(ctx, theme.KeySelected)
		if err != nil {
			a.log.Warn("saved theme unavailable", zap.Error(err))
		}
		if ok {
			name = saved
		}
	}
	if name == "" {
		return theme.Default()
	}
	t, err := theme.Lookup(name)
	if err != nil {
		a.log.Warn("unknown theme, using default", zap.String("theme", name))
		return theme.Default()
	}
	return t
}

// startReminders schedules the daily reminder when it is enabled. The engine
// is nil otherwise.
func (a *app) startReminders(ctx context.Context) (*reminder.Engine, reminder.Daily) {
	daily, err := reminder.Load(ctx, a.kv)
	if err != nil {
		a.log.Warn("reminder settings unavailable", zap.Error(err))
		return nil, daily
	}
	if !daily.Enabled {
		return nil, daily
	}
	engine := reminder.NewEngine(4)
	engine.Start()
	if err := engine.Schedule(daily.Event(time.Now())); err != nil {
		a.log.Warn("reminder schedule failed", zap.Error(err))
	}
	a.log.Debug("reminder scheduled", zap.String("at", daily.Clock()), zap.Int("pending", engine.Pending()))
	return engine, daily
}

func (a *app) notifier() reminder.Notifier {
	if a.cfg.Notifier == notifierNone {
		return reminder.NoopNotifier{}
	}
	return reminder.ExecNotifier{}
}

// label names a dhikr by its transliteration, falling back to the ID.
func (a *app) label(id string) string {
	d, err := a.catalog.Lookup(id)
	if err != nil || d.Transliteration == "" {
		return id
	}
	return d.Transliteration
}
