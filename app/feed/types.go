package feed

import (
	"time"
)

// RawEntry is a single candidate record read from a keyword feed, before
// normalization. Display fields keep whatever the source sent.
type RawEntry struct {
	Bundle string
	Query  string

	Title           string
	Link            string
	Source          string
	Published       string // raw date string, kept for fallback parsing
	PublishedParsed *time.Time
	ImageURL        string
	Blurb           string
}

// Result is the outcome of fetching one configured query. A failed query
// carries Err and no entries; it never aborts the run.
type Result struct {
	Bundle  string
	Query   string
	Entries []RawEntry
	Err     error
}

// Item is a normalized, deduplicated story as persisted in the snapshot.
// ID is content-derived and stable across runs for the same story.
type Item struct {
	ID           string `json:"id"`
	Bundle       string `json:"bundle"`
	Query        string `json:"query,omitempty"`
	Title        string `json:"title"`
	Source       string `json:"source,omitempty"`
	URL          string `json:"url"`
	CanonicalURL string `json:"canonical_url,omitempty"`
	ImageURL     string `json:"image_url,omitempty"`
	Blurb        string `json:"blurb,omitempty"`
	PublishedTS  int64  `json:"published_ts,omitempty"`
	FirstSeenTS  int64  `json:"first_seen_ts"`
}

// EffectiveTS is the timestamp used for retention and ordering: the source
// publish time when known, otherwise the time the item was first observed.
func (i Item) EffectiveTS() int64 {
	if i.PublishedTS > 0 {
		return i.PublishedTS
	}
	return i.FirstSeenTS
}
