package config

// QueriesByBundle returns the bundle name -> include queries mapping echoed
// into the snapshot meta.
func QueriesByBundle(bundles []BundleSpec) map[string][]string {
	out := make(map[string][]string, len(bundles))
	for _, b := range bundles {
		queries := make([]string, 0, len(b.Queries))
		for _, q := range b.Queries {
			queries = append(queries, q.Include)
		}
		out[b.Name] = queries
	}
	return out
}

// BundleExclusions returns the bundle name -> bundle-level exclusion terms
// mapping. Bundles without exclusions are omitted.
func BundleExclusions(bundles []BundleSpec) map[string][]string {
	out := make(map[string][]string)
	for _, b := range bundles {
		if len(b.Exclude) > 0 {
			out[b.Name] = b.Exclude
		}
	}
	return out
}

// QueryExclusions returns the include query -> exclusion terms mapping, keyed
// by the include string. The same query appearing under two bundles merges
// both exclusion lists.
func QueryExclusions(bundles []BundleSpec) map[string][]string {
	out := make(map[string][]string)
	for _, b := range bundles {
		for _, q := range b.Queries {
			if len(q.Exclude) > 0 {
				out[q.Include] = append(out[q.Include], q.Exclude...)
			}
		}
	}
	return out
}

// Index answers membership questions about the current configuration. Used
// for configuration-driven pruning of previously retained items.
type Index struct {
	bundles map[string]map[string]bool
}

func NewIndex(bundles []BundleSpec) *Index {
	idx := &Index{bundles: make(map[string]map[string]bool, len(bundles))}
	for _, b := range bundles {
		queries := make(map[string]bool, len(b.Queries))
		for _, q := range b.Queries {
			queries[q.Include] = true
		}
		idx.bundles[b.Name] = queries
	}
	return idx
}

func (i *Index) HasBundle(bundle string) bool {
	_, ok := i.bundles[bundle]
	return ok
}

// HasQuery reports whether the (bundle, query) pair is currently configured.
// An empty query is a bundle-level entry and only requires the bundle.
func (i *Index) HasQuery(bundle, query string) bool {
	queries, ok := i.bundles[bundle]
	if !ok {
		return false
	}
	if query == "" {
		return true
	}
	return queries[query]
}
