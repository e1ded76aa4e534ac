package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/verte-zerg/tasbih/internal/catalog"
	"github.com/verte-zerg/tasbih/internal/config"
	"github.com/verte-zerg/tasbih/internal/entitlement"
	"github.com/verte-zerg/tasbih/internal/model"
	"github.com/verte-zerg/tasbih/internal/reminder"
	"github.com/verte-zerg/tasbih/internal/session"
	"github.com/verte-zerg/tasbih/internal/stats"
)

// cli runs the root command against a database, log and config inside dir.
func cli(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	base := []string{
		"--config", filepath.Join(dir, "config.toml"),
		"--db", filepath.Join(dir, "tasbih.db"),
		"--log-file", filepath.Join(dir, "tasbih.log"),
	}
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(append(base, args...))
	err := cmd.Execute()
	return out.String(), err
}

func mustCLI(t *testing.T, dir string, args ...string) string {
	t.Helper()
	out, err := cli(t, dir, args...)
	if err != nil {
		t.Fatalf("tasbih %s: %v", strings.Join(args, " "), err)
	}
	return out
}

func TestDefaultConfigTemplateDecodes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		t.Fatalf("load template: %v", err)
	}
	if cfg.Counter.Mode != nil || cfg.Store.Backend != nil {
		t.Fatalf("template should leave every value commented out: %+v", cfg)
	}
}

func TestConfigFileAppliesUnlessFlagSet(t *testing.T) {
	dir := t.TempDir()
	body := "[counter]\nmode = \"reset-on-complete\"\n"
	if err := os.WriteFile(filepath.Join(dir, "config.toml"), []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	out := mustCLI(t, dir, "status", "-v")
	if !strings.Contains(out, "reset-on-complete") {
		t.Fatalf("config mode not applied: %q", out)
	}
	out = mustCLI(t, dir, "--mode", "continuous", "status", "-v")
	if !strings.Contains(out, "continuous") || strings.Contains(out, "reset-on-complete") {
		t.Fatalf("flag should win over config: %q", out)
	}
}

func TestUnknownConfigKeyFails(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.toml"), []byte("[counter]\nspeed = 3\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := cli(t, dir, "status"); err == nil {
		t.Fatalf("expected unknown key error")
	}
}

func TestValidateConfig(t *testing.T) {
	valid := model.Config{
		Mode:     string(session.ModeContinuous),
		Backend:  backendSQLite,
		DBPath:   "tasbih.db",
		Notifier: notifierNone,
	}
	if err := validateConfig(valid); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*model.Config)
	}{
		{name: "mode", mutate: func(c *model.Config) { c.Mode = "sometimes" }},
		{name: "backend", mutate: func(c *model.Config) { c.Backend = "postgres" }},
		{name: "notifier", mutate: func(c *model.Config) { c.Notifier = "pager" }},
		{name: "db", mutate: func(c *model.Config) { c.DBPath = "" }},
		{name: "redis-db", mutate: func(c *model.Config) { c.RedisDB = -1 }},
		{name: "milestones", mutate: func(c *model.Config) { c.Milestones = []int{33, 0} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			if err := validateConfig(cfg); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestCounterCommands(t *testing.T) {
	dir := t.TempDir()

	if out := mustCLI(t, dir, "status"); out != "0/33\n0\n" {
		t.Fatalf("status = %q", out)
	}
	if out := mustCLI(t, dir, "inc", "-n", "3"); out != "3/33\n3\n" {
		t.Fatalf("inc = %q", out)
	}
	if out := mustCLI(t, dir, "undo"); out != "2/33\n2\n" {
		t.Fatalf("undo = %q", out)
	}

	out := mustCLI(t, dir, "target", "5")
	if !strings.HasPrefix(out, "2/5\n2\n") || !strings.Contains(out, "custom target") {
		t.Fatalf("target = %q", out)
	}
	out = mustCLI(t, dir, "select", "allahu-akbar")
	if !strings.HasPrefix(out, "2/5\n") {
		t.Fatalf("override should survive select: %q", out)
	}
	out = mustCLI(t, dir, "target", "--clear")
	if !strings.HasPrefix(out, "2/34\n") {
		t.Fatalf("clear should restore the dhikr count: %q", out)
	}

	if _, err := cli(t, dir, "target", "0"); !errors.Is(err, session.ErrInvalidTarget) {
		t.Fatalf("target 0 err = %v", err)
	}
	if _, err := cli(t, dir, "target"); err == nil {
		t.Fatalf("target without value or --clear should fail")
	}
	if _, err := cli(t, dir, "select", "nope"); !errors.Is(err, catalog.ErrUnknownDhikr) {
		t.Fatalf("select unknown err = %v", err)
	}

	if out := mustCLI(t, dir, "reset", "--yes"); out != "0/34\n0\n" {
		t.Fatalf("reset = %q", out)
	}
	if out := mustCLI(t, dir, "undo"); out != "0/34\n0\n" {
		t.Fatalf("undo at zero = %q", out)
	}
}

func TestIncReportsCompletedSet(t *testing.T) {
	dir := t.TempDir()
	out := mustCLI(t, dir, "inc", "-n", "33")
	if !strings.Contains(out, "Set 1 complete.") {
		t.Fatalf("missing completion line: %q", out)
	}
	if !strings.HasSuffix(out, "33/33\n0\n") {
		t.Fatalf("status after 33 taps = %q", out)
	}

	out = mustCLI(t, dir, "stats", "--plain")
	if !strings.Contains(out, "Taps: 33") || !strings.Contains(out, "Sets completed: 1") {
		t.Fatalf("stats = %q", out)
	}
}

func TestCustomDhikrRequiresPremium(t *testing.T) {
	dir := t.TempDir()
	_, err := cli(t, dir, "custom", "add", "--phrase", "يا لطيف", "--transliteration", "Ya Latif", "--count", "129")
	if !errors.Is(err, entitlement.ErrPremiumRequired) {
		t.Fatalf("expected premium error, got %v", err)
	}

	if out := mustCLI(t, dir, "premium", "unlock"); out != "premium: unlocked\n" {
		t.Fatalf("unlock = %q", out)
	}
	out := mustCLI(t, dir, "custom", "add", "--phrase", "يا لطيف", "--transliteration", "Ya Latif", "--count", "129")
	if !strings.HasPrefix(out, "Added ") || !strings.Contains(out, "(Ya Latif)") {
		t.Fatalf("add = %q", out)
	}
	id := strings.Fields(out)[1]

	if out := mustCLI(t, dir, "custom", "list"); !strings.Contains(out, "Ya Latif") || !strings.Contains(out, "129") {
		t.Fatalf("custom list = %q", out)
	}
	if out := mustCLI(t, dir, "select", id); !strings.HasPrefix(out, "0/129\n") {
		t.Fatalf("select custom = %q", out)
	}
	if out := mustCLI(t, dir, "custom", "delete", id); out != "Deleted "+id+"\n" {
		t.Fatalf("delete = %q", out)
	}
	if out := mustCLI(t, dir, "status", "-v"); !strings.HasPrefix(out, "0/33\n") {
		t.Fatalf("deleting the active dhikr should fall back: %q", out)
	}
}

func TestLockedPremiumBlocksCustomSelection(t *testing.T) {
	dir := t.TempDir()
	mustCLI(t, dir, "premium", "unlock")
	out := mustCLI(t, dir, "custom", "add", "--phrase", "يا لطيف", "--transliteration", "Ya Latif", "--count", "129")
	id := strings.Fields(out)[1]
	if out := mustCLI(t, dir, "select", id); !strings.HasPrefix(out, "0/129\n") {
		t.Fatalf("select while unlocked = %q", out)
	}

	if out := mustCLI(t, dir, "premium", "lock"); out != "premium: locked\n" {
		t.Fatalf("lock = %q", out)
	}
	if out := mustCLI(t, dir, "status"); out != "0/33\n0\n" {
		t.Fatalf("locked custom dhikr should not stay active: %q", out)
	}
	if _, err := cli(t, dir, "select", id); !errors.Is(err, entitlement.ErrPremiumRequired) {
		t.Fatalf("select locked custom err = %v", err)
	}
	if out := mustCLI(t, dir, "status", "-v"); !strings.Contains(out, "Subhan Allah") {
		t.Fatalf("selection changed after refused select: %q", out)
	}
	if out := mustCLI(t, dir, "select", "hasbiyallah"); !strings.HasPrefix(out, "0/7\n") {
		t.Fatalf("built-in select while locked = %q", out)
	}
}

func TestCustomDhikrNormalizesText(t *testing.T) {
	saved := []string{customPhrase, customTransliteration, customTranslation, customCategory}
	savedCount := customCount
	t.Cleanup(func() {
		customPhrase, customTransliteration, customTranslation, customCategory = saved[0], saved[1], saved[2], saved[3]
		customCount = savedCount
	})

	customPhrase = "  e\u0301  "
	customTransliteration = "Cafe\u0301"
	customTranslation = ""
	customCategory = "forgiveness"
	customCount = 7

	got, err := customDhikrFromFlags()
	if err != nil {
		t.Fatalf("customDhikrFromFlags: %v", err)
	}
	if got.Phrase != "\u00e9" || got.Transliteration != "Caf\u00e9" {
		t.Fatalf("text not NFC: %q %q", got.Phrase, got.Transliteration)
	}
	if got.Category != model.CategoryForgiveness || got.Count != 7 {
		t.Fatalf("unexpected entry: %+v", got)
	}

	customCount = 0
	if _, err := customDhikrFromFlags(); err == nil {
		t.Fatalf("count 0 should fail")
	}
	customCount = 7
	customPhrase = "   "
	if _, err := customDhikrFromFlags(); err == nil {
		t.Fatalf("blank phrase should fail")
	}
}

func TestFavoritesAndDhikrList(t *testing.T) {
	dir := t.TempDir()
	if out := mustCLI(t, dir, "favorite", "astaghfirullah"); out != "astaghfirullah added to favorites\n" {
		t.Fatalf("favorite = %q", out)
	}
	if out := mustCLI(t, dir, "favorite"); out != "astaghfirullah\tAstaghfirullah\n" {
		t.Fatalf("favorite list = %q", out)
	}

	out := mustCLI(t, dir, "dhikr", "list", "--category", "forgiveness")
	if !strings.Contains(out, "★") || !strings.Contains(out, "astaghfirullah") {
		t.Fatalf("dhikr list = %q", out)
	}
	if strings.Contains(out, "subhanallah") {
		t.Fatalf("category filter ignored: %q", out)
	}

	if out := mustCLI(t, dir, "favorite", "astaghfirullah"); out != "astaghfirullah removed from favorites\n" {
		t.Fatalf("unfavorite = %q", out)
	}
}

func TestDhikrMarkdown(t *testing.T) {
	d, err := catalog.Default().Lookup("hasbiyallah")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	md := dhikrMarkdown(d)
	for _, want := range []string{"# حسبي الله", "**Hasbiyallah**", "> Allah is sufficient for me", "Recommended count: 7"} {
		if !strings.Contains(md, want) {
			t.Fatalf("markdown missing %q:\n%s", want, md)
		}
	}
}

func TestThemeAndReminderCommands(t *testing.T) {
	dir := t.TempDir()
	if out := mustCLI(t, dir, "theme", "set", "deep", "black"); out != "theme: Deep Black\n" {
		t.Fatalf("theme set = %q", out)
	}
	if out := mustCLI(t, dir, "theme", "list"); !strings.Contains(out, "* Deep Black\n") {
		t.Fatalf("theme list = %q", out)
	}
	if _, err := cli(t, dir, "theme", "set", "neon"); err == nil {
		t.Fatalf("unknown theme should fail")
	}

	if out := mustCLI(t, dir, "remind", "show"); out != "reminder: off at 05:00\n" {
		t.Fatalf("remind show = %q", out)
	}
	if out := mustCLI(t, dir, "remind", "set", "6:30"); out != "reminder: on at 06:30\n" {
		t.Fatalf("remind set = %q", out)
	}
	if _, err := cli(t, dir, "remind", "set", "25:00"); !errors.Is(err, reminder.ErrInvalidTime) {
		t.Fatalf("remind set 25:00 err = %v", err)
	}
	if out := mustCLI(t, dir, "remind", "off"); out != "reminder: off at 06:30\n" {
		t.Fatalf("remind off = %q", out)
	}
	if _, err := cli(t, dir, "remind", "watch"); err == nil {
		t.Fatalf("watch should refuse a disabled reminder")
	}
}

func TestWriteStatusVerbose(t *testing.T) {
	d, _ := catalog.Default().Lookup("subhanallah")
	var buf bytes.Buffer
	st := session.State{Total: 66, Target: 33, Dhikr: d, Mode: session.ModeContinuous}
	if err := writeStatus(&buf, st, true); err != nil {
		t.Fatalf("writeStatus: %v", err)
	}
	want := "66/33\n0\nSubhan Allah · set 2 complete · continuous\n"
	if buf.String() != want {
		t.Fatalf("status = %q, want %q", buf.String(), want)
	}
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{in: "y\n", want: true},
		{in: "YES\n", want: true},
		{in: "n\n", want: false},
		{in: "", want: false},
	}
	for _, tt := range tests {
		got, err := confirm(strings.NewReader(tt.in), &bytes.Buffer{}, "? ")
		if err != nil {
			t.Fatalf("confirm(%q): %v", tt.in, err)
		}
		if got != tt.want {
			t.Fatalf("confirm(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestRenderPlainStatsEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := renderPlainStats(&buf, stats.Report{}, model.StatsConfig{Top: 5, CurveWindow: 7}, nil); err != nil {
		t.Fatalf("renderPlainStats: %v", err)
	}
	if buf.String() != "No taps recorded yet.\n" {
		t.Fatalf("output = %q", buf.String())
	}
}
