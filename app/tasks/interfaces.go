package tasks

import (
	"context"

	"bundletrack/app/feed"
	"bundletrack/app/snapshot"
)

// QueryFetcher fetches the candidate entries for one configured query.
type QueryFetcher interface {
	Run(ctx context.Context, bundle, query string) feed.Result
}

// ItemEnricher fills in missing item metadata after the item set is final.
type ItemEnricher interface {
	Run(ctx context.Context, items []feed.Item) int
}

// SnapshotStore is the single piece of external state the pipeline touches:
// read once at the start of a run, written once at the end.
type SnapshotStore interface {
	Load() (*snapshot.Snapshot, error)
	Write(*snapshot.Snapshot) error
}
