// Package stats contains tally statistics and their text rendering.
package stats

import (
	"math"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/verte-zerg/tasbih/internal/model"
)

const sparkChars = " .:-=+*#%@"

var printer = message.NewPrinter(language.English)

// FormatCount renders n with thousands separators.
func FormatCount(n int) string {
	return printer.Sprintf("%d", n)
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	if window <= 1 || len(values) == 0 {
		copy(out, values)
		return out
	}
	var sum float64
	for i, v := range values {
		sum += v
		if i >= window {
			sum -= values[i-window]
		}
		den := float64(min(i+1, window))
		out[i] = sum / den
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal, maxVal := values[0], values[0]
	for _, v := range values[1:] {
		minVal = math.Min(minVal, v)
		maxVal = math.Max(maxVal, v)
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		idx = max(0, min(idx, len(sparkChars)-1))
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// FillDays returns one tally per calendar day from `from` to `to` inclusive,
// with zero taps for days missing from tallies.
func FillDays(tallies []model.DailyTally, from, to time.Time) []model.DailyTally {
	from = dayStart(from)
	to = dayStart(to)
	if to.Before(from) {
		return nil
	}
	byDay := make(map[string]int, len(tallies))
	for _, t := range tallies {
		byDay[t.Day.Format(time.DateOnly)] += t.Taps
	}
	var out []model.DailyTally
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		out = append(out, model.DailyTally{Day: d, Taps: byDay[d.Format(time.DateOnly)]})
	}
	return out
}

// Streaks returns the current and best run of consecutive days with taps.
// days must be contiguous and ordered oldest first (see FillDays). The
// current streak still counts when the last day has no taps yet, since the
// day is not over.
func Streaks(days []model.DailyTally) (current, best int) {
	run := 0
	for _, d := range days {
		if d.Taps > 0 {
			run++
			best = max(best, run)
		} else {
			run = 0
		}
	}
	if len(days) == 0 {
		return 0, best
	}
	end := len(days)
	if days[end-1].Taps == 0 {
		end--
	}
	for i := end - 1; i >= 0 && days[i].Taps > 0; i-- {
		current++
	}
	return current, best
}

func dayStart(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
