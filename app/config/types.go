package config

// BundleSpec is a named group of keyword queries tracking one project/topic.
// Bundle-level exclusions apply to every query under the bundle.
type BundleSpec struct {
	Name    string      `yaml:"name" json:"name"`
	Exclude []string    `yaml:"exclude,omitempty" json:"exclude,omitempty"`
	Queries []QuerySpec `yaml:"queries" json:"queries"`
}

// QuerySpec is a single keyword search expression with its own exclusion terms.
type QuerySpec struct {
	Include string   `yaml:"include" json:"include"`
	Exclude []string `yaml:"exclude,omitempty" json:"exclude,omitempty"`
}

// bundlesFile is the YAML document structure of the bundles file.
type bundlesFile struct {
	Bundles []BundleSpec `yaml:"bundles"`
}
