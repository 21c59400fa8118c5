package feed

import (
	"testing"
	"time"
)

func TestNormalize_MalformedRecords(t *testing.T) {
	normalizer := NewNormalizer()

	entries := []RawEntry{
		{Bundle: "B", Query: "q", Title: "Valid story", Link: "https://example.com/a"},
		{Bundle: "B", Query: "q", Title: "", Link: "https://example.com/b"},
		{Bundle: "B", Query: "q", Title: "No link", Link: ""},
		{Bundle: "B", Query: "q", Title: "   ", Link: "https://example.com/c"},
	}

	items, dropped := normalizer.Run(entries)

	if len(items) != 1 {
		t.Errorf("Expected 1 item, got %d", len(items))
	}
	if dropped != 3 {
		t.Errorf("Expected 3 dropped records, got %d", dropped)
	}
}

func TestNormalize_PreservesDisplayCasing(t *testing.T) {
	normalizer := NewNormalizer()

	item, err := normalizer.Normalize(RawEntry{
		Bundle: "B", Query: "q",
		Title:  "  Big   Launch: Alpha Corp  ",
		Source: " TechWire ",
		Link:   "https://example.com/story",
	})
	if err != nil {
		t.Fatalf("Normalize returned error: %v", err)
	}

	if item.Title != "Big Launch: Alpha Corp" {
		t.Errorf("Title whitespace should collapse but keep casing, got '%s'", item.Title)
	}
	if item.Source != "TechWire" {
		t.Errorf("Source should keep casing, got '%s'", item.Source)
	}
}

func TestCanonicalURL(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		expected string
	}{
		{"strips utm params", "https://example.com/a?utm_source=x&utm_medium=y", "https://example.com/a"},
		{"strips fbclid", "https://example.com/a?fbclid=123", "https://example.com/a"},
		{"keeps meaningful params sorted", "https://example.com/a?b=2&a=1", "https://example.com/a?a=1&b=2"},
		{"mixed params", "https://example.com/a?id=7&utm_campaign=z", "https://example.com/a?id=7"},
		{"drops fragment", "https://example.com/a#section", "https://example.com/a"},
		{"lowercases host", "https://Example.COM/a", "https://example.com/a"},
		{"non-http passthrough", "mailto:x@example.com", "mailto:x@example.com"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := CanonicalURL(test.in); got != test.expected {
				t.Errorf("CanonicalURL(%s): expected %s, got %s", test.in, test.expected, got)
			}
		})
	}
}

func TestIdentity_StableAcrossTrackingParams(t *testing.T) {
	normalizer := NewNormalizer()

	a, err := normalizer.Normalize(RawEntry{
		Title: "Alpha Corp raises funding", Source: "TechWire",
		Link: "https://example.com/story",
	})
	if err != nil {
		t.Fatal(err)
	}

	b, err := normalizer.Normalize(RawEntry{
		Title: "Alpha Corp raises funding", Source: "TechWire",
		Link: "https://example.com/story?utm_source=rss&utm_medium=feed",
	})
	if err != nil {
		t.Fatal(err)
	}

	if a.ID != b.ID {
		t.Errorf("Tracking parameters must not change identity: %s vs %s", a.ID, b.ID)
	}
}

func TestIdentity_StableAcrossTitleNoise(t *testing.T) {
	normalizer := NewNormalizer()

	a, _ := normalizer.Normalize(RawEntry{
		Title: "Alpha Corp raises $10M!", Source: "TechWire",
		Link: "https://example.com/story",
	})
	b, _ := normalizer.Normalize(RawEntry{
		Title: "alpha corp  raises $10M", Source: "techwire",
		Link: "https://example.com/story",
	})

	if a.ID != b.ID {
		t.Errorf("Case and punctuation noise must not change identity")
	}
}

func TestIdentity_DifferentStoriesDiffer(t *testing.T) {
	normalizer := NewNormalizer()

	a, _ := normalizer.Normalize(RawEntry{
		Title: "Alpha Corp raises funding", Source: "TechWire",
		Link: "https://example.com/story-1",
	})
	b, _ := normalizer.Normalize(RawEntry{
		Title: "Alpha Corp raises funding", Source: "TechWire",
		Link: "https://example.com/story-2",
	})

	if a.ID == b.ID {
		t.Errorf("Different links should produce different identities")
	}
}

func TestPublishedTS(t *testing.T) {
	normalizer := NewNormalizer()
	parsed := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	item, _ := normalizer.Normalize(RawEntry{
		Title: "t", Link: "https://example.com/a",
		PublishedParsed: &parsed,
	})
	if item.PublishedTS != parsed.Unix() {
		t.Errorf("Expected parsed publish time, got %d", item.PublishedTS)
	}

	// Fallback parse of the raw date string
	item, _ = normalizer.Normalize(RawEntry{
		Title: "t", Link: "https://example.com/a",
		Published: "2026-05-01 12:00:00",
	})
	if item.PublishedTS != parsed.Unix() {
		t.Errorf("Expected fallback-parsed publish time, got %d", item.PublishedTS)
	}

	// Unknown stays unknown, never "now"
	item, _ = normalizer.Normalize(RawEntry{
		Title: "t", Link: "https://example.com/a",
	})
	if item.PublishedTS != 0 {
		t.Errorf("Missing publish time must be 0, got %d", item.PublishedTS)
	}

	item, _ = normalizer.Normalize(RawEntry{
		Title: "t", Link: "https://example.com/a",
		Published: "not a date",
	})
	if item.PublishedTS != 0 {
		t.Errorf("Unparseable publish time must be 0, got %d", item.PublishedTS)
	}
}

func TestNormalize_Deterministic(t *testing.T) {
	normalizer := NewNormalizer()
	entry := RawEntry{
		Bundle: "B", Query: "q",
		Title: "Alpha Corp raises funding", Source: "TechWire",
		Link: "https://example.com/story?b=2&a=1&utm_source=x",
	}

	first, err := normalizer.Normalize(entry)
	if err != nil {
		t.Fatal(err)
	}
	second, err := normalizer.Normalize(entry)
	if err != nil {
		t.Fatal(err)
	}

	if first != second {
		t.Errorf("Normalization must be deterministic: %+v vs %+v", first, second)
	}
}
