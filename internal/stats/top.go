package stats

import (
	"sort"

	"github.com/verte-zerg/tasbih/internal/model"
)

// TopDhikr returns the n most tapped dhikr totals. Ties break on completions,
// then ID. n <= 0 returns every entry.
func TopDhikr(totals []model.DhikrTotal, n int) []model.DhikrTotal {
	if len(totals) == 0 {
		return nil
	}
	items := make([]model.DhikrTotal, len(totals))
	copy(items, totals)
	sort.Slice(items, func(i, j int) bool {
		if items[i].Taps != items[j].Taps {
			return items[i].Taps > items[j].Taps
		}
		if items[i].Completions != items[j].Completions {
			return items[i].Completions > items[j].Completions
		}
		return items[i].DhikrID < items[j].DhikrID
	})
	if n > 0 && n < len(items) {
		items = items[:n]
	}
	return items
}
