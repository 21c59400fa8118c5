package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load reads and validates the bundle configuration file. Any failure here is
// fatal to the run: the orchestrator must not fetch anything against a
// missing or invalid configuration.
func Load(path string) ([]BundleSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read bundles file: %w", err)
	}

	var doc bundlesFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validate(doc.Bundles); err != nil {
		return nil, fmt.Errorf("invalid bundles file %s: %w", path, err)
	}

	return doc.Bundles, nil
}

func validate(bundles []BundleSpec) error {
	if len(bundles) == 0 {
		return fmt.Errorf("no bundles defined")
	}

	seenBundles := make(map[string]bool)
	for i, b := range bundles {
		name := strings.TrimSpace(b.Name)
		if name == "" {
			return fmt.Errorf("bundle at index %d has no name", i)
		}
		if seenBundles[name] {
			return fmt.Errorf("duplicate bundle name: %s", name)
		}
		seenBundles[name] = true

		if len(b.Queries) == 0 {
			return fmt.Errorf("bundle %s has no queries", name)
		}

		seenQueries := make(map[string]bool)
		for j, q := range b.Queries {
			include := strings.TrimSpace(q.Include)
			if include == "" {
				return fmt.Errorf("bundle %s query at index %d has an empty include", name, j)
			}
			if seenQueries[include] {
				return fmt.Errorf("bundle %s has a duplicate query: %s", name, include)
			}
			seenQueries[include] = true
		}
	}

	return nil
}
