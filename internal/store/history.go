package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/verte-zerg/tasbih/internal/model"
)

// DayLayout is the calendar-day key used by daily_taps, in local time.
const DayLayout = "2006-01-02"

// RecordTap adds delta taps for dhikrID on the local day of at. A negative
// delta records an undo; the daily count never drops below zero.
func (s *Store) RecordTap(ctx context.Context, dhikrID string, delta int, at time.Time) error {
	day := at.In(time.Local).Format(DayLayout)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO daily_taps (day, dhikr_id, taps) VALUES (?, ?, MAX(?, 0))
		 ON CONFLICT(day, dhikr_id) DO UPDATE SET taps = MAX(daily_taps.taps + ?, 0)`,
		day, dhikrID, delta, delta)
	return err
}

// RecordCompletion stores a completed set.
func (s *Store) RecordCompletion(ctx context.Context, c model.Completion) (int64, error) {
	if c.CompletedAt.IsZero() {
		c.CompletedAt = s.now()
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO completions (dhikr_id, total, target, completed_at) VALUES (?, ?, ?, ?)`,
		c.DhikrID, c.Total, c.Target, c.CompletedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// ListDailyTaps returns tap totals per day, oldest first, summed across dhikr
// unless cfg.DhikrID narrows it.
func (s *Store) ListDailyTaps(ctx context.Context, cfg model.StatsConfig) ([]model.DailyTally, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if cfg.DhikrID != "" {
		clauses = append(clauses, "dhikr_id = ?")
		args = append(args, cfg.DhikrID)
	}
	if cfg.Since != nil {
		clauses = append(clauses, "day >= ?")
		args = append(args, cfg.Since.In(time.Local).Format(DayLayout))
	}
	query := fmt.Sprintf(`SELECT day, SUM(taps) FROM daily_taps
		WHERE %s
		GROUP BY day
		ORDER BY day ASC`, strings.Join(clauses, " AND "))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer closeRows(rows)

	var result []model.DailyTally
	for rows.Next() {
		var day string
		var tally model.DailyTally
		if err := rows.Scan(&day, &tally.Taps); err != nil {
			return nil, err
		}
		parsed, err := time.ParseInLocation(DayLayout, day, time.Local)
		if err != nil {
			return nil, err
		}
		tally.Day = parsed
		result = append(result, tally)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// ListCompletions returns completed sets oldest first.
func (s *Store) ListCompletions(ctx context.Context, cfg model.StatsConfig) ([]model.Completion, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if cfg.DhikrID != "" {
		clauses = append(clauses, "dhikr_id = ?")
		args = append(args, cfg.DhikrID)
	}
	if cfg.Since != nil {
		clauses = append(clauses, "completed_at >= ?")
		args = append(args, cfg.Since.UTC().Format(time.RFC3339Nano))
	}
	query := fmt.Sprintf(`SELECT id, dhikr_id, total, target, completed_at
		FROM completions
		WHERE %s
		ORDER BY completed_at ASC, id ASC`, strings.Join(clauses, " AND "))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer closeRows(rows)

	var result []model.Completion
	for rows.Next() {
		var c model.Completion
		var completedAt string
		if err := rows.Scan(&c.ID, &c.DhikrID, &c.Total, &c.Target, &completedAt); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(time.RFC3339Nano, completedAt)
		if err != nil {
			return nil, err
		}
		c.CompletedAt = parsed
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// ListDhikrTotals aggregates taps and completions per dhikr, most tapped first.
func (s *Store) ListDhikrTotals(ctx context.Context, cfg model.StatsConfig) ([]model.DhikrTotal, error) {
	byID := map[string]*model.DhikrTotal{}
	get := func(id string) *model.DhikrTotal {
		t, ok := byID[id]
		if !ok {
			t = &model.DhikrTotal{DhikrID: id}
			byID[id] = t
		}
		return t
	}

	clauses := []string{"1=1"}
	args := []any{}
	if cfg.DhikrID != "" {
		clauses = append(clauses, "dhikr_id = ?")
		args = append(args, cfg.DhikrID)
	}
	if cfg.Since != nil {
		clauses = append(clauses, "day >= ?")
		args = append(args, cfg.Since.In(time.Local).Format(DayLayout))
	}
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(
		`SELECT dhikr_id, SUM(taps) FROM daily_taps WHERE %s GROUP BY dhikr_id`,
		strings.Join(clauses, " AND ")), args...)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var id string
		var taps int
		if err := rows.Scan(&id, &taps); err != nil {
			closeRows(rows)
			return nil, err
		}
		get(id).Taps += taps
	}
	if err := rows.Err(); err != nil {
		closeRows(rows)
		return nil, err
	}
	closeRows(rows)

	completions, err := s.ListCompletions(ctx, cfg)
	if err != nil {
		return nil, err
	}
	for _, c := range completions {
		get(c.DhikrID).Completions++
	}

	result := make([]model.DhikrTotal, 0, len(byID))
	for _, t := range byID {
		result = append(result, *t)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Taps != result[j].Taps {
			return result[i].Taps > result[j].Taps
		}
		return result[i].DhikrID < result[j].DhikrID
	})
	return result, nil
}
