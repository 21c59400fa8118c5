package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"bundletrack/app/config"
	"bundletrack/app/feed"
	"bundletrack/app/snapshot"
)

// Runner executes one complete pipeline run: fetch all configured queries
// with bounded parallelism, normalize and filter the results, reconcile them
// with the prior snapshot, enforce retention, and publish a new snapshot
// atomically. Per-query failures are logged and skipped; only an unreadable
// configuration or a failed snapshot replace is fatal.
type Runner struct {
	bundles  []config.BundleSpec
	fetcher  QueryFetcher
	enricher ItemEnricher
	store    SnapshotStore

	normalizer *feed.Normalizer
	filterer   *feed.Filterer
	merger     *feed.Merger
	retention  *feed.RetentionFilter

	workerCount   int
	retentionDays int
	maxTotalItems int

	now func() time.Time
}

// NewRunner wires a runner for the given configuration. enricher may be nil
// to disable enrichment.
func NewRunner(bundles []config.BundleSpec, fetcher QueryFetcher, enricher ItemEnricher,
	store SnapshotStore, workerCount, retentionDays, maxTotalItems int) *Runner {
	return &Runner{
		bundles:       bundles,
		fetcher:       fetcher,
		enricher:      enricher,
		store:         store,
		normalizer:    feed.NewNormalizer(),
		filterer:      feed.NewFilterer(bundles),
		merger:        feed.NewMerger(),
		retention:     feed.NewRetentionFilter(retentionDays),
		workerCount:   workerCount,
		retentionDays: retentionDays,
		maxTotalItems: maxTotalItems,
		now:           time.Now,
	}
}

type queryJob struct {
	bundle string
	query  string
}

// Run executes the pipeline once. The prior snapshot is only replaced by the
// final atomic write; every earlier failure leaves it untouched.
func (r *Runner) Run(ctx context.Context) error {
	started := r.now()

	prior, err := r.store.Load()
	if err != nil {
		slog.Warn("Prior snapshot unreadable, starting from empty state", "error", err)
		prior = &snapshot.Snapshot{}
	}

	jobs := r.queryJobs()
	results := r.fetchAll(ctx, jobs)

	if ctx.Err() != nil {
		return fmt.Errorf("run aborted: %w", ctx.Err())
	}

	failed := 0
	var entries []feed.RawEntry
	for _, result := range results {
		if result.Err != nil {
			failed++
			slog.Warn("Query fetch failed, keeping previously retained items",
				"bundle", result.Bundle, "query", result.Query, "error", result.Err)
			continue
		}
		entries = append(entries, result.Entries...)
	}

	items, malformed := r.normalizer.Run(entries)
	observed, excluded := r.filterer.Run(items)

	runTime := r.now()
	merged, mergeStats := r.merger.Run(prior.Items, observed, runTime.Unix())

	// Sweep exclusions over the merged set as well: a term added to the
	// configuration since an item was retained must remove it from the
	// output, not just stop refreshing it.
	merged, swept := r.filterer.Run(merged)
	excluded += swept

	retained, retentionStats := r.retention.Run(merged, config.NewIndex(r.bundles), runTime)
	final := feed.SortAndCap(retained, r.maxTotalItems)

	enriched := 0
	if r.enricher != nil {
		enriched = r.enricher.Run(ctx, final)
	}

	snap := snapshot.New(r.bundles, final, r.retentionDays, runTime)
	if err := r.store.Write(snap); err != nil {
		return fmt.Errorf("failed to publish snapshot: %w", err)
	}

	slog.Info("Run completed",
		"duration", time.Since(started),
		"queries", len(jobs),
		"queries_failed", failed,
		"fetched", len(entries),
		"malformed", malformed,
		"excluded", excluded,
		"new", mergeStats.New,
		"updated", mergeStats.Updated,
		"carried", mergeStats.Carried,
		"expired", retentionStats.Expired,
		"pruned", retentionStats.Pruned,
		"enriched", enriched,
		"total", len(final))

	return nil
}

func (r *Runner) queryJobs() []queryJob {
	var jobs []queryJob
	for _, b := range r.bundles {
		for _, q := range b.Queries {
			jobs = append(jobs, queryJob{bundle: b.Name, query: q.Include})
		}
	}
	return jobs
}

// fetchAll fans the query jobs out over a fixed worker pool and collects the
// results into a slice indexed by job, so later stages see a deterministic
// order regardless of which fetch finished first.
func (r *Runner) fetchAll(ctx context.Context, jobs []queryJob) []feed.Result {
	results := make([]feed.Result, len(jobs))

	workers := r.workerCount
	if workers < 1 {
		workers = 1
	}
	if workers > len(jobs) {
		workers = len(jobs)
	}

	jobCh := make(chan int)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobCh {
				job := jobs[idx]
				start := time.Now()
				results[idx] = r.fetcher.Run(ctx, job.bundle, job.query)
				slog.Debug("Query fetched",
					"bundle", job.bundle,
					"query", job.query,
					"duration", time.Since(start),
					"entries", len(results[idx].Entries))
			}
		}()
	}

	for idx := range jobs {
		jobCh <- idx
	}
	close(jobCh)
	wg.Wait()

	return results
}
