package snapshot

import (
	"time"

	"bundletrack/app/config"
	"bundletrack/app/feed"
)

// Meta describes the run that produced a snapshot and echoes the
// configuration it was produced against, so the consuming UI never needs the
// bundles file itself.
type Meta struct {
	GeneratedAt      string              `json:"generated_at"`
	RetentionDays    int                 `json:"retention_days"`
	BundleSpecs      map[string][]string `json:"bundle_specs"`
	BundleExclusions map[string][]string `json:"bundle_exclusions"`
	QueryExclusions  map[string][]string `json:"query_exclusions"`
	BundlesCount     int                 `json:"bundles_count"`
	QueriesCount     int                 `json:"queries_count"`
	ItemsCount       int                 `json:"items_count"`
}

// Snapshot is the complete persisted output document, replaced atomically
// each run. It is the pipeline's sole persisted state.
type Snapshot struct {
	Meta  Meta        `json:"meta"`
	Items []feed.Item `json:"items"`
}

// New assembles a snapshot document for the given run.
func New(bundles []config.BundleSpec, items []feed.Item, retentionDays int, generatedAt time.Time) *Snapshot {
	specs := config.QueriesByBundle(bundles)

	queriesCount := 0
	for _, queries := range specs {
		queriesCount += len(queries)
	}

	return &Snapshot{
		Meta: Meta{
			GeneratedAt:      generatedAt.UTC().Format(time.RFC3339),
			RetentionDays:    retentionDays,
			BundleSpecs:      specs,
			BundleExclusions: config.BundleExclusions(bundles),
			QueryExclusions:  config.QueryExclusions(bundles),
			BundlesCount:     len(bundles),
			QueriesCount:     queriesCount,
			ItemsCount:       len(items),
		},
		Items: items,
	}
}
