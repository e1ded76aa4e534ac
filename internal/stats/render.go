package stats

import (
	"fmt"
	"io"

	"github.com/verte-zerg/tasbih/internal/model"
)

// Labeler turns a dhikr ID into a display name.
type Labeler func(id string) string

// RenderSummary prints the headline numbers of a report.
func RenderSummary(w io.Writer, rep Report) error {
	if rep.TotalTaps == 0 && rep.TotalCompletions == 0 {
		_, err := fmt.Fprintln(w, "No taps recorded yet.")
		return err
	}
	lines := []string{
		"Summary",
		fmt.Sprintf("Days: %d", len(rep.Days)),
		fmt.Sprintf("Taps: %s", FormatCount(rep.TotalTaps)),
		fmt.Sprintf("Sets completed: %s", FormatCount(rep.TotalCompletions)),
		fmt.Sprintf("Daily average: %.1f", dailyAverage(rep)),
		fmt.Sprintf("Current streak: %d day%s", rep.CurrentStreak, plural(rep.CurrentStreak)),
		fmt.Sprintf("Best streak: %d day%s", rep.BestStreak, plural(rep.BestStreak)),
	}
	if rep.BestDay.Taps > 0 {
		lines = append(lines, fmt.Sprintf("Best day: %s (%s taps)", rep.BestDay.Day.Format("2006-01-02"), FormatCount(rep.BestDay.Taps)))
	}
	if spark := Sparkline(rep.DailySeries()); spark != "" {
		lines = append(lines, "Trend: "+spark)
	}
	lines = append(lines, "")
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderDhikrTable prints per-dhikr totals.
func RenderDhikrTable(w io.Writer, totals []model.DhikrTotal, label Labeler) error {
	if len(totals) == 0 {
		_, err := fmt.Fprintln(w, "No dhikr stats found.")
		return err
	}
	if label == nil {
		label = func(id string) string { return id }
	}
	if _, err := fmt.Fprintln(w, "Per-Dhikr"); err != nil {
		return err
	}
	headers := []string{"Dhikr", "Taps", "Sets"}
	rows := make([][]string, 0, len(totals))
	for _, t := range totals {
		rows = append(rows, []string{label(t.DhikrID), FormatCount(t.Taps), FormatCount(t.Completions)})
	}
	for _, line := range FormatTable(headers, rows, map[int]bool{1: true, 2: true}) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// RenderCurves prints the daily tap chart with its moving average.
func RenderCurves(w io.Writer, rep Report, window int) error {
	return RenderCurvesWithSize(w, rep, window, 0, defaultPlotHeight, false)
}

// RenderCurvesWithSize prints the daily tap chart sized to a given total width.
func RenderCurvesWithSize(w io.Writer, rep Report, window, totalWidth, height int, useColor bool) error {
	if len(rep.Days) == 0 || rep.TotalTaps == 0 {
		return nil
	}
	width := 0
	if totalWidth > 0 {
		width = PlotWidthFor(totalWidth)
	}
	daily := rep.DailySeries()
	return PlotBarsWithColor(w, "Daily Taps", Series{Name: "Taps", Values: daily},
		Series{Name: fmt.Sprintf("%d-day average", max(window, 1)), Values: MovingAverage(daily, window)},
		width, height, useColor)
}

func dailyAverage(rep Report) float64 {
	if len(rep.Days) == 0 {
		return 0
	}
	return float64(rep.TotalTaps) / float64(len(rep.Days))
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
