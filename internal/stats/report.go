package stats

import (
	"context"
	"time"

	"github.com/verte-zerg/tasbih/internal/model"
)

// Source supplies tally history.
type Source interface {
	ListDailyTaps(ctx context.Context, cfg model.StatsConfig) ([]model.DailyTally, error)
	ListDhikrTotals(ctx context.Context, cfg model.StatsConfig) ([]model.DhikrTotal, error)
	ListCompletions(ctx context.Context, cfg model.StatsConfig) ([]model.Completion, error)
}

// Report contains precomputed data for stats rendering.
type Report struct {
	Days             []model.DailyTally
	Totals           []model.DhikrTotal
	Completions      []model.Completion
	TotalTaps        int
	TotalCompletions int
	CurrentStreak    int
	BestStreak       int
	BestDay          model.DailyTally
}

// BuildReport loads and prepares data for stats rendering. Streaks are
// computed over the whole history; everything else honours cfg.Since and
// cfg.Last (a number of days ending today).
func BuildReport(ctx context.Context, src Source, cfg model.StatsConfig, now time.Time) (Report, error) {
	history, err := src.ListDailyTaps(ctx, model.StatsConfig{DhikrID: cfg.DhikrID})
	if err != nil {
		return Report{}, err
	}

	today := dayStart(now)
	var rep Report
	if len(history) > 0 {
		all := FillDays(history, history[0].Day, today)
		rep.CurrentStreak, rep.BestStreak = Streaks(all)
	}

	from := windowStart(history, cfg, today)
	filtered := cfg
	filtered.Since = &from

	rep.Days = FillDays(history, from, today)
	for _, d := range rep.Days {
		rep.TotalTaps += d.Taps
		if d.Taps > rep.BestDay.Taps {
			rep.BestDay = d
		}
	}

	rep.Totals, err = src.ListDhikrTotals(ctx, filtered)
	if err != nil {
		return Report{}, err
	}
	rep.Completions, err = src.ListCompletions(ctx, filtered)
	if err != nil {
		return Report{}, err
	}
	rep.TotalCompletions = len(rep.Completions)
	return rep, nil
}

func windowStart(history []model.DailyTally, cfg model.StatsConfig, today time.Time) time.Time {
	from := today
	if len(history) > 0 {
		from = dayStart(history[0].Day)
	}
	if cfg.Since != nil {
		from = dayStart(cfg.Since.In(today.Location()))
	}
	if cfg.Last > 0 {
		last := today.AddDate(0, 0, -(cfg.Last - 1))
		if last.After(from) {
			from = last
		}
	}
	if from.After(today) {
		from = today
	}
	return from
}

// DailySeries returns the tap counts of days as floats.
func (r Report) DailySeries() []float64 {
	out := make([]float64, len(r.Days))
	for i, d := range r.Days {
		out[i] = float64(d.Taps)
	}
	return out
}
