package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/verte-zerg/tasbih/internal/model"
	"github.com/verte-zerg/tasbih/internal/stats"
	"github.com/verte-zerg/tasbih/internal/statsui"
)

const defaultStatsTop = 10

var (
	statsDhikr       string
	statsSince       string
	statsLast        int
	statsCurveWindow int
	statsTop         int
	statsPlain       bool
)

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show stats",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().StringVar(&statsDhikr, "dhikr", "", "dhikr id filter")
	cmd.Flags().StringVar(&statsSince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&statsLast, "last", 0, "limit to the last N days")
	cmd.Flags().IntVar(&statsCurveWindow, "curve-window", defaultCurveWindow, "moving average window in days")
	cmd.Flags().IntVar(&statsTop, "top", defaultStatsTop, "number of dhikr in the table")
	cmd.Flags().BoolVar(&statsPlain, "plain", false, "print text instead of the interactive view")
	return cmd
}

func parseStatsConfig() (model.StatsConfig, error) {
	var sinceTime *time.Time
	if statsSince != "" {
		parsed, err := time.ParseInLocation("2006-01-02", statsSince, time.Local)
		if err != nil {
			return model.StatsConfig{}, fmt.Errorf("invalid --since value: %w", err)
		}
		sinceTime = &parsed
	}
	if statsLast < 0 {
		return model.StatsConfig{}, fmt.Errorf("--last must be >= 0")
	}
	if statsCurveWindow < 1 {
		return model.StatsConfig{}, fmt.Errorf("--curve-window must be >= 1")
	}
	if statsTop < 1 {
		return model.StatsConfig{}, fmt.Errorf("--top must be >= 1")
	}
	return model.StatsConfig{
		DhikrID:     strings.TrimSpace(statsDhikr),
		Since:       sinceTime,
		Last:        statsLast,
		CurveWindow: statsCurveWindow,
		Top:         statsTop,
	}, nil
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := parseStatsConfig()
	if err != nil {
		return err
	}
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	if statsPlain || !term.IsTerminal(int(os.Stdout.Fd())) {
		return writePlainStats(cmd, a, cfg)
	}

	m := statsui.NewModel(a.store, a.label, cfg)
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run stats TUI: %w", err)
	}
	return nil
}

func writePlainStats(cmd *cobra.Command, a *app, cfg model.StatsConfig) error {
	rep, err := stats.BuildReport(commandContext(cmd), a.store, cfg, time.Now())
	if err != nil {
		return fmt.Errorf("failed to load stats: %w", err)
	}
	return renderPlainStats(cmd.OutOrStdout(), rep, cfg, a.label)
}

func renderPlainStats(w io.Writer, rep stats.Report, cfg model.StatsConfig, label stats.Labeler) error {
	if err := stats.RenderSummary(w, rep); err != nil {
		return err
	}
	if rep.TotalTaps == 0 && rep.TotalCompletions == 0 {
		return nil
	}
	if err := stats.RenderDhikrTable(w, stats.TopDhikr(rep.Totals, cfg.Top), label); err != nil {
		return err
	}
	return stats.RenderCurves(w, rep, cfg.CurveWindow)
}
