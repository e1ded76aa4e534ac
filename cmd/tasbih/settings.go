package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/verte-zerg/tasbih/internal/reminder"
	"github.com/verte-zerg/tasbih/internal/theme"
)

func newPremiumCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "premium",
		Short: "Show or change the premium flag",
		Args:  cobra.NoArgs,
		RunE:  runPremiumStatusCmd,
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Print whether premium is unlocked",
		Args:  cobra.NoArgs,
		RunE:  runPremiumStatusCmd,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "unlock",
		Short: "Unlock premium features",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return setPremium(cmd, true)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "lock",
		Short: "Lock premium features",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return setPremium(cmd, false)
		},
	})
	return cmd
}

func runPremiumStatusCmd(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()
	return writePremium(cmd, a)
}

func writePremium(cmd *cobra.Command, a *app) error {
	ok, err := a.premium.IsPremiumUnlocked(commandContext(cmd))
	if err != nil {
		logErrf("warning: %v\n", err)
	}
	state := "locked"
	if ok {
		state = "unlocked"
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "premium: %s\n", state)
	return err
}

func setPremium(cmd *cobra.Command, unlock bool) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	ctx := commandContext(cmd)
	if unlock {
		err = a.premium.Unlock(ctx)
	} else {
		err = a.premium.Lock(ctx)
	}
	if err != nil {
		return fmt.Errorf("failed to save premium flag: %w", err)
	}
	a.log.Info("premium flag changed", zap.Bool("unlocked", unlock))
	return writePremium(cmd, a)
}

func newThemeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "theme",
		Short: "List or choose themes",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List themes",
		Args:  cobra.NoArgs,
		RunE:  runThemeListCmd,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "set <name>",
		Short: "Save the theme used by the counter",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runThemeSetCmd,
	})
	return cmd
}

func runThemeListCmd(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	current := a.theme(commandContext(cmd)).Name
	out := cmd.OutOrStdout()
	for _, t := range theme.All() {
		mark := " "
		if t.Name == current {
			mark = "*"
		}
		if _, err := fmt.Fprintf(out, "%s %s\n", mark, t.Name); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func runThemeSetCmd(cmd *cobra.Command, args []string) error {
	// Theme names contain spaces; accept them unquoted.
	t, err := theme.Lookup(strings.Join(args, " "))
	if err != nil {
		return err
	}
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	if err := a.kv.Set(commandContext(cmd), theme.KeySelected, t.Name); err != nil {
		return fmt.Errorf("failed to save theme: %w", err)
	}
	if a.cfg.Theme != "" && !strings.EqualFold(a.cfg.Theme, t.Name) {
		logErrf("note: the configured theme %q still takes precedence\n", a.cfg.Theme)
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "theme: %s\n", t.Name)
	return err
}

func newRemindCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remind",
		Short: "Configure the daily reminder",
		Args:  cobra.NoArgs,
		RunE:  runRemindShowCmd,
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the reminder settings",
		Args:  cobra.NoArgs,
		RunE:  runRemindShowCmd,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "set <HH:MM>",
		Short: "Enable the daily reminder at a local time",
		Args:  cobra.ExactArgs(1),
		RunE:  runRemindSetCmd,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "off",
		Short: "Disable the daily reminder",
		Args:  cobra.NoArgs,
		RunE:  runRemindOffCmd,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "watch",
		Short: "Stay in the foreground and deliver reminders",
		Args:  cobra.NoArgs,
		RunE:  runRemindWatchCmd,
	})
	return cmd
}

func writeDaily(cmd *cobra.Command, d reminder.Daily) error {
	state := "off"
	if d.Enabled {
		state = "on"
	}
	_, err := fmt.Fprintf(cmd.OutOrStdout(), "reminder: %s at %s\n", state, d.Clock())
	return err
}

func runRemindShowCmd(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	d, err := reminder.Load(commandContext(cmd), a.kv)
	if err != nil {
		return fmt.Errorf("failed to load reminder: %w", err)
	}
	return writeDaily(cmd, d)
}

func runRemindSetCmd(cmd *cobra.Command, args []string) error {
	hour, minute, err := reminder.ParseClock(args[0])
	if err != nil {
		return err
	}
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	d := reminder.Daily{Hour: hour, Minute: minute, Enabled: true}
	if err := reminder.Save(commandContext(cmd), a.kv, d); err != nil {
		return fmt.Errorf("failed to save reminder: %w", err)
	}
	return writeDaily(cmd, d)
}

func runRemindOffCmd(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	ctx := commandContext(cmd)
	d, err := reminder.Load(ctx, a.kv)
	if err != nil {
		return fmt.Errorf("failed to load reminder: %w", err)
	}
	d.Enabled = false
	if err := reminder.Save(ctx, a.kv, d); err != nil {
		return fmt.Errorf("failed to save reminder: %w", err)
	}
	return writeDaily(cmd, d)
}

func runRemindWatchCmd(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	d, err := reminder.Load(ctx, a.kv)
	if err != nil {
		return fmt.Errorf("failed to load reminder: %w", err)
	}
	if !d.Enabled {
		return fmt.Errorf("reminder is off; enable it with `tasbih remind set HH:MM`")
	}

	engine := reminder.NewEngine(1)
	engine.Start()
	defer engine.Stop()

	logErrf("Waiting for the daily reminder at %s (Ctrl+C to stop)\n", d.Clock())
	err = reminder.Watch(ctx, engine, d.Event, a.notifier(), a.log, func(ev reminder.Event, err error) {
		if err != nil {
			logErrf("reminder not delivered: %v\n", err)
			return
		}
		logErrf("reminder delivered at %s\n", ev.TriggerAt.Format("2006-01-02 15:04"))
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
