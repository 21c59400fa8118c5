package feed

import (
	"sort"
	"time"

	"bundletrack/app/config"
)

// RetentionFilter enforces the rolling window and configuration-driven
// pruning. Items whose bundle or query was removed from configuration are
// dropped immediately on the next run, with no grace period.
type RetentionFilter struct {
	window time.Duration
}

func NewRetentionFilter(retentionDays int) *RetentionFilter {
	return &RetentionFilter{window: time.Duration(retentionDays) * 24 * time.Hour}
}

// RetentionStats summarizes one retention pass for run reporting.
type RetentionStats struct {
	Expired int
	Pruned  int
}

// Run drops items older than the retention window relative to now, using
// first_seen_ts when the publish time is unknown, then drops items no longer
// matched by the current configuration.
func (r *RetentionFilter) Run(items []Item, current *config.Index, now time.Time) ([]Item, RetentionStats) {
	var stats RetentionStats
	cutoff := now.Add(-r.window).Unix()

	kept := make([]Item, 0, len(items))
	for _, item := range items {
		if item.EffectiveTS() < cutoff {
			stats.Expired++
			continue
		}
		if !current.HasQuery(item.Bundle, item.Query) {
			stats.Pruned++
			continue
		}
		kept = append(kept, item)
	}

	return kept, stats
}

// SortAndCap orders items newest-first and truncates to max. Ordering is
// deterministic: effective timestamp descending, then ID ascending.
func SortAndCap(items []Item, max int) []Item {
	sort.SliceStable(items, func(i, j int) bool {
		ti, tj := items[i].EffectiveTS(), items[j].EffectiveTS()
		if ti != tj {
			return ti > tj
		}
		return items[i].ID < items[j].ID
	})

	if max > 0 && len(items) > max {
		items = items[:max]
	}

	return items
}
