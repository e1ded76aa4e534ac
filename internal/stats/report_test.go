package stats

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/verte-zerg/tasbih/internal/model"
	"github.com/verte-zerg/tasbih/internal/store"
)

func seedStore(t *testing.T, now time.Time) *store.Store {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "tasbih.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})

	ctx := context.Background()
	tap := func(id string, n int, daysAgo int) {
		at := now.AddDate(0, 0, -daysAgo)
		for i := 0; i < n; i++ {
			if err := st.RecordTap(ctx, id, 1, at); err != nil {
				t.Fatalf("record tap: %v", err)
			}
		}
	}
	tap("subhanallah", 33, 5)
	tap("subhanallah", 10, 2)
	tap("alhamdulillah", 4, 1)
	tap("subhanallah", 2, 0)
	if _, err := st.RecordCompletion(ctx, model.Completion{DhikrID: "subhanallah", Total: 33, Target: 33, CompletedAt: now.AddDate(0, 0, -5)}); err != nil {
		t.Fatalf("record completion: %v", err)
	}
	return st
}

func TestBuildReport(t *testing.T) {
	now := time.Date(2026, 4, 20, 12, 0, 0, 0, time.Local)
	st := seedStore(t, now)

	report, err := BuildReport(context.Background(), st, model.StatsConfig{}, now)
	if err != nil {
		t.Fatalf("build report: %v", err)
	}
	if len(report.Days) != 6 {
		t.Fatalf("expected 6 days, got %d", len(report.Days))
	}
	if report.TotalTaps != 49 || report.TotalCompletions != 1 {
		t.Fatalf("unexpected totals: taps=%d sets=%d", report.TotalTaps, report.TotalCompletions)
	}
	if report.CurrentStreak != 3 || report.BestStreak != 3 {
		t.Fatalf("unexpected streaks: %d/%d", report.CurrentStreak, report.BestStreak)
	}
	if report.BestDay.Taps != 33 {
		t.Fatalf("unexpected best day: %+v", report.BestDay)
	}
	if len(report.Totals) != 2 || report.Totals[0].DhikrID != "subhanallah" || report.Totals[0].Taps != 45 {
		t.Fatalf("unexpected dhikr totals: %+v", report.Totals)
	}
}

func TestBuildReportLastDays(t *testing.T) {
	now := time.Date(2026, 4, 20, 12, 0, 0, 0, time.Local)
	st := seedStore(t, now)

	report, err := BuildReport(context.Background(), st, model.StatsConfig{Last: 2}, now)
	if err != nil {
		t.Fatalf("build report: %v", err)
	}
	if len(report.Days) != 2 || report.TotalTaps != 6 {
		t.Fatalf("unexpected window: days=%d taps=%d", len(report.Days), report.TotalTaps)
	}
	if report.TotalCompletions != 0 {
		t.Fatalf("completion outside window counted")
	}
	if report.BestStreak != 3 {
		t.Fatalf("streaks should use full history, got %d", report.BestStreak)
	}
}

func TestRenderSummaryAndTable(t *testing.T) {
	now := time.Date(2026, 4, 20, 12, 0, 0, 0, time.Local)
	st := seedStore(t, now)
	report, err := BuildReport(context.Background(), st, model.StatsConfig{}, now)
	if err != nil {
		t.Fatalf("build report: %v", err)
	}

	var buf bytes.Buffer
	if err := RenderSummary(&buf, report); err != nil {
		t.Fatalf("render summary: %v", err)
	}
	if err := RenderDhikrTable(&buf, report.Totals, strings.ToUpper); err != nil {
		t.Fatalf("render table: %v", err)
	}
	if err := RenderCurves(&buf, report, 3); err != nil {
		t.Fatalf("render curves: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Taps: 49", "Current streak: 3 days", "Best day: 2026-04-15 (33 taps)", "SUBHANALLAH", "Daily Taps"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestRenderSummaryEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderSummary(&buf, Report{}); err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(buf.String(), "No taps recorded yet.") {
		t.Fatalf("unexpected output: %q", buf.String())
	}
}
