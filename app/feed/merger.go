package feed

// Merger reconciles this run's observations against the previously persisted
// item set. Identity is the content-derived ID; a story absent from today's
// fetch is carried forward unchanged, because one missing data point is not
// evidence it vanished.
type Merger struct{}

func NewMerger() *Merger {
	return &Merger{}
}

// MergeStats summarizes one merge for run reporting.
type MergeStats struct {
	New       int
	Updated   int
	Carried   int
	Collapsed int // same-run duplicates folded into one observation
}

// Run merges observed items into the prior set. Re-observed items keep their
// original first_seen_ts and refresh display fields; unseen prior items are
// carried forward; genuinely new items get first_seen_ts = runTime. Merging
// an empty observation set reproduces the prior set unchanged.
func (m *Merger) Run(prior []Item, observed []Item, runTime int64) ([]Item, MergeStats) {
	var stats MergeStats

	observed, stats.Collapsed = collapseByID(observed)

	merged := make([]Item, len(prior))
	copy(merged, prior)

	index := make(map[string]int, len(merged))
	for i, item := range merged {
		index[item.ID] = i
	}

	stats.Carried = len(merged)

	for _, item := range observed {
		pos, seen := index[item.ID]
		if !seen {
			item.FirstSeenTS = runTime
			merged = append(merged, item)
			index[item.ID] = len(merged) - 1
			stats.New++
			continue
		}

		merged[pos] = refresh(merged[pos], item)
		stats.Updated++
		stats.Carried--
	}

	return merged, stats
}

// refresh applies a new observation onto a previously retained item. The
// observation wins on display fields; first_seen_ts never changes, and fields
// the observation lacks survive from the prior record. In particular an
// undated refetch never erases a known publish time.
func refresh(old, observed Item) Item {
	observed.FirstSeenTS = old.FirstSeenTS
	if observed.PublishedTS == 0 {
		observed.PublishedTS = old.PublishedTS
	}
	if observed.Source == "" {
		observed.Source = old.Source
	}
	if observed.ImageURL == "" {
		observed.ImageURL = old.ImageURL
	}
	if observed.Blurb == "" {
		observed.Blurb = old.Blurb
	}
	return observed
}

// collapseByID folds same-run records sharing an identity key into one. The
// survivor is chosen deterministically regardless of fetch order: a known
// publish time beats an unknown one, then the earlier publish time wins, then
// the lexicographically smallest raw link.
func collapseByID(items []Item) ([]Item, int) {
	out := make([]Item, 0, len(items))
	index := make(map[string]int, len(items))
	collapsed := 0

	for _, item := range items {
		pos, seen := index[item.ID]
		if !seen {
			index[item.ID] = len(out)
			out = append(out, item)
			continue
		}

		collapsed++
		winner, loser := out[pos], item
		if prefer(loser, winner) {
			winner, loser = loser, winner
		}
		if winner.ImageURL == "" {
			winner.ImageURL = loser.ImageURL
		}
		if winner.Blurb == "" {
			winner.Blurb = loser.Blurb
		}
		out[pos] = winner
	}

	return out, collapsed
}

// prefer reports whether a should survive over b under the collision
// tie-break policy.
func prefer(a, b Item) bool {
	aKnown, bKnown := a.PublishedTS > 0, b.PublishedTS > 0
	if aKnown != bKnown {
		return aKnown
	}
	if aKnown && a.PublishedTS != b.PublishedTS {
		return a.PublishedTS < b.PublishedTS
	}
	return a.URL < b.URL
}
