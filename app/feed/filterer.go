package feed

import (
	"log/slog"
	"strings"

	"bundletrack/app/config"
)

// Filterer drops items whose title contains an exclusion term configured for
// their query or their bundle. It runs before the merge, so an excluded story
// is treated as not observed this run and cannot refresh a previously
// retained duplicate.
type Filterer struct {
	bundleExclusions map[string][]string
	queryExclusions  map[string][]string
}

func NewFilterer(bundles []config.BundleSpec) *Filterer {
	return &Filterer{
		bundleExclusions: config.BundleExclusions(bundles),
		queryExclusions:  config.QueryExclusions(bundles),
	}
}

// Run returns the items that survive exclusion, and the number dropped.
func (f *Filterer) Run(items []Item) ([]Item, int) {
	kept := make([]Item, 0, len(items))
	excluded := 0

	for _, item := range items {
		if term, ok := f.excludedBy(item); ok {
			excluded++
			slog.Debug("Excluding item", "bundle", item.Bundle, "query", item.Query, "term", term, "title", item.Title)
			continue
		}
		kept = append(kept, item)
	}

	return kept, excluded
}

func (f *Filterer) excludedBy(item Item) (string, bool) {
	for _, term := range f.queryExclusions[item.Query] {
		if matchesTerm(item.Title, term) {
			return term, true
		}
	}
	for _, term := range f.bundleExclusions[item.Bundle] {
		if matchesTerm(item.Title, term) {
			return term, true
		}
	}
	return "", false
}

func matchesTerm(value, term string) bool {
	if term == "" {
		return false
	}
	return strings.Contains(strings.ToLower(value), strings.ToLower(term))
}
