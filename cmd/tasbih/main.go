// Package main provides the CLI entrypoint for tasbih.
package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/tasbih/internal/config"
	"github.com/verte-zerg/tasbih/internal/model"
	"github.com/verte-zerg/tasbih/internal/session"
	"github.com/verte-zerg/tasbih/internal/tui"
)

const (
	backendSQLite = "sqlite"
	backendRedis  = "redis"
	backendMemory = "memory"

	notifierDesktop = "desktop"
	notifierNone    = "none"

	defaultLogLevel    = "info"
	defaultCurveWindow = 7
)

var (
	configPath    string
	counterMode   string
	counterTheme  string
	storeBackend  string
	storeDBPath   string
	redisAddr     string
	redisDB       int
	reminderNotif string
	logLevel      string
	logPath       string
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "tasbih",
		Short:         "Terminal dhikr counter",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runCounterCmd,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", config.DefaultConfigPath(), "config file path")
	flags.StringVar(&counterMode, "mode", string(session.ModeContinuous), "counting mode: continuous or reset-on-complete")
	flags.StringVar(&counterTheme, "theme", "", "theme name (overrides the saved theme)")
	flags.StringVar(&storeBackend, "backend", backendSQLite, "counter state backend: sqlite, redis or memory")
	flags.StringVar(&storeDBPath, "db", config.DefaultDBPath(), "SQLite database path")
	flags.StringVar(&redisAddr, "redis-addr", "localhost:6379", "Redis address for the redis backend")
	flags.IntVar(&redisDB, "redis-db", 0, "Redis database number")
	flags.StringVar(&reminderNotif, "notifier", notifierDesktop, "reminder delivery: desktop or none")
	flags.StringVar(&logLevel, "log-level", defaultLogLevel, "log level")
	flags.StringVar(&logPath, "log-file", config.DefaultLogPath(), "log file path")

	rootCmd.AddCommand(newStatusCmd())
	rootCmd.AddCommand(newIncCmd())
	rootCmd.AddCommand(newUndoCmd())
	rootCmd.AddCommand(newResetCmd())
	rootCmd.AddCommand(newTargetCmd())
	rootCmd.AddCommand(newSelectCmd())
	rootCmd.AddCommand(newDhikrCmd())
	rootCmd.AddCommand(newCustomCmd())
	rootCmd.AddCommand(newFavoriteCmd())
	rootCmd.AddCommand(newPremiumCmd())
	rootCmd.AddCommand(newThemeCmd())
	rootCmd.AddCommand(newRemindCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

func runCounterCmd(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	engine, daily := a.startReminders(cmd.Context())
	if engine != nil {
		defer engine.Stop()
	}

	m := tui.NewModel(tui.Deps{
		Session:   a.session,
		Catalog:   a.catalog,
		History:   a.store,
		KV:        a.kv,
		Premium:   a.premium,
		Player:    a.player(os.Stdout),
		Theme:     a.theme(cmd.Context()),
		Reminders: engine,
		Daily:     daily,
		Logger:    a.log,
	})
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

// resolveConfig merges the config file under the flags. Flags the user set
// explicitly win.
func resolveConfig(cmd *cobra.Command) (model.Config, error) {
	fileCfg, err := config.LoadConfig(configPath)
	if err != nil {
		return model.Config{}, fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "mode", &counterMode, fileCfg.Counter.Mode)
	applyStringConfig(cmd, "theme", &counterTheme, fileCfg.Counter.Theme)
	applyStringConfig(cmd, "backend", &storeBackend, fileCfg.Store.Backend)
	applyStringConfig(cmd, "db", &storeDBPath, fileCfg.Store.DBPath)
	applyStringConfig(cmd, "redis-addr", &redisAddr, fileCfg.Store.RedisAddr)
	applyIntConfig(cmd, "redis-db", &redisDB, fileCfg.Store.RedisDB)
	applyStringConfig(cmd, "notifier", &reminderNotif, fileCfg.Reminder.Notifier)
	applyStringConfig(cmd, "log-level", &logLevel, fileCfg.Log.Level)
	applyStringConfig(cmd, "log-file", &logPath, fileCfg.Log.Path)

	sound, haptic := true, true
	if fileCfg.Feedback.Sound != nil {
		sound = *fileCfg.Feedback.Sound
	}
	if fileCfg.Feedback.Haptic != nil {
		haptic = *fileCfg.Feedback.Haptic
	}

	cfg := model.Config{
		Mode:       counterMode,
		Milestones: fileCfg.Counter.Milestones,
		Theme:      counterTheme,
		Sound:      sound,
		Haptic:     haptic,
		Backend:    strings.ToLower(strings.TrimSpace(storeBackend)),
		DBPath:     storeDBPath,
		RedisAddr:  redisAddr,
		RedisDB:    redisDB,
		Notifier:   strings.ToLower(strings.TrimSpace(reminderNotif)),
		LogLevel:   logLevel,
		LogPath:    logPath,
	}
	if fileCfg.Store.RedisPassword != nil {
		cfg.RedisPassword = *fileCfg.Store.RedisPassword
	}
	if err := validateConfig(cfg); err != nil {
		return model.Config{}, err
	}
	return cfg, nil
}

func validateConfig(cfg model.Config) error {
	if _, err := session.ParseMode(cfg.Mode); err != nil {
		return fmt.Errorf("--mode: %w", err)
	}
	switch cfg.Backend {
	case backendSQLite, backendRedis, backendMemory:
	default:
		return fmt.Errorf("--backend must be one of %s, %s, %s", backendSQLite, backendRedis, backendMemory)
	}
	switch cfg.Notifier {
	case notifierDesktop, notifierNone:
	default:
		return fmt.Errorf("--notifier must be %s or %s", notifierDesktop, notifierNone)
	}
	if cfg.DBPath == "" {
		return fmt.Errorf("--db must not be empty")
	}
	if cfg.RedisDB < 0 {
		return fmt.Errorf("--redis-db must be >= 0")
	}
	for _, m := range cfg.Milestones {
		if m < 1 {
			return fmt.Errorf("counter.milestones must be >= 1, got %d", m)
		}
	}
	return nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := configPath
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# tasbih configuration
# Uncomment a value to enable it. CLI flags override config values.

[counter]
# mode = %q   # continuous or reset-on-complete
# milestones = [33, 99, 100, 500, 1000]
# theme = "Deep Black"   # Overrides the theme chosen in the app

[feedback]
# Initial values; toggles made in the app are saved and take precedence.
# sound = true    # Terminal bell on milestones and completed sets
# haptic = true   # Visual flash on every tap

[store]
# backend = %q   # sqlite, redis or memory
# db = %q
# redis-addr = "localhost:6379"
# redis-password = ""
# redis-db = 0

[reminder]
# notifier = %q   # desktop or none

[log]
# level = %q
# path = %q
`,
		session.ModeContinuous,
		backendSQLite,
		config.DefaultDBPath(),
		notifierDesktop,
		defaultLogLevel,
		config.DefaultLogPath(),
	)
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
