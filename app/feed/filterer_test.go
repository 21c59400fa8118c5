package feed

import (
	"testing"

	"bundletrack/app/config"
)

func testBundles() []config.BundleSpec {
	return []config.BundleSpec{
		{
			Name:    "Alpha",
			Exclude: []string{"recall"},
			Queries: []config.QuerySpec{
				{Include: "alpha corp", Exclude: []string{"opinion", "podcast"}},
				{Include: "alpha launch"},
			},
		},
		{
			Name: "Beta",
			Queries: []config.QuerySpec{
				{Include: "beta corp"},
			},
		},
	}
}

func TestFilterer_QueryExclusion(t *testing.T) {
	filterer := NewFilterer(testBundles())

	items := []Item{
		{Bundle: "Alpha", Query: "alpha corp", Title: "Alpha Corp ships product"},
		{Bundle: "Alpha", Query: "alpha corp", Title: "Opinion: Alpha Corp is overrated"},
		{Bundle: "Alpha", Query: "alpha corp", Title: "New PODCAST features Alpha Corp"},
	}

	kept, excluded := filterer.Run(items)

	if len(kept) != 1 {
		t.Fatalf("Expected 1 kept item, got %d", len(kept))
	}
	if excluded != 2 {
		t.Errorf("Expected 2 excluded items, got %d", excluded)
	}
	if kept[0].Title != "Alpha Corp ships product" {
		t.Errorf("Wrong item survived: %s", kept[0].Title)
	}
}

func TestFilterer_BundleExclusionAppliesToAllQueries(t *testing.T) {
	filterer := NewFilterer(testBundles())

	items := []Item{
		{Bundle: "Alpha", Query: "alpha corp", Title: "Alpha Corp issues recall"},
		{Bundle: "Alpha", Query: "alpha launch", Title: "Recall hits Alpha launch plans"},
		{Bundle: "Beta", Query: "beta corp", Title: "Beta Corp issues recall"},
	}

	kept, excluded := filterer.Run(items)

	// The bundle-level "recall" term only applies to bundle Alpha.
	if len(kept) != 1 || kept[0].Bundle != "Beta" {
		t.Errorf("Expected only the Beta item to survive, got %+v", kept)
	}
	if excluded != 2 {
		t.Errorf("Expected 2 excluded items, got %d", excluded)
	}
}

func TestFilterer_ExclusionDoesNotLeakAcrossQueries(t *testing.T) {
	filterer := NewFilterer(testBundles())

	items := []Item{
		{Bundle: "Alpha", Query: "alpha launch", Title: "Opinion: the launch matters"},
	}

	kept, _ := filterer.Run(items)

	// "opinion" is configured for "alpha corp", not "alpha launch".
	if len(kept) != 1 {
		t.Errorf("Exclusion terms of one query must not affect another")
	}
}

func TestFilterer_NoExclusions(t *testing.T) {
	filterer := NewFilterer([]config.BundleSpec{
		{Name: "Plain", Queries: []config.QuerySpec{{Include: "q"}}},
	})

	items := []Item{
		{Bundle: "Plain", Query: "q", Title: "Anything goes"},
	}

	kept, excluded := filterer.Run(items)
	if len(kept) != 1 || excluded != 0 {
		t.Errorf("Expected passthrough without exclusions, kept=%d excluded=%d", len(kept), excluded)
	}
}
