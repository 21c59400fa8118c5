package cfg

import (
	"cmp"
	"fmt"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Input / output locations
	BundlesFile  string `long:"bundles-file" env:"BUNDLES_FILE" default:"config/bundles.yaml" description:"Path to the bundle configuration file"`
	SnapshotFile string `long:"snapshot-file" env:"SNAPSHOT_FILE" default:"docs/data.json" description:"Path to the published snapshot document"`

	// Pipeline controls
	RetentionDays    int `long:"retention-days" env:"RETENTION_DAYS" default:"90" description:"Rolling retention window in days"`
	MaxItemsPerQuery int `long:"max-items-per-query" env:"MAX_ITEMS_PER_QUERY" default:"30" description:"Maximum entries read from each keyword feed"`
	MaxTotalItems    int `long:"max-total-items" env:"MAX_TOTAL_ITEMS" default:"6000" description:"Cap on total items after merge and retention"`
	WorkerCount      int `long:"worker-count" env:"WORKER_COUNT" default:"4" description:"Number of concurrent query fetchers"`
	FetchTimeout     int `long:"fetch-timeout" env:"FETCH_TIMEOUT" default:"20" description:"Per-query fetch timeout in seconds"`
	EnrichLimit      int `long:"enrich-limit" env:"ENRICH_LIMIT" default:"120" description:"Maximum items to enrich with Open Graph metadata per run"`

	// Google News search locale
	LocaleHL   string `long:"locale-hl" env:"LOCALE_HL" default:"en-US" description:"Google News interface language"`
	LocaleGL   string `long:"locale-gl" env:"LOCALE_GL" default:"US" description:"Google News country"`
	LocaleCEID string `long:"locale-ceid" env:"LOCALE_CEID" default:"US:en" description:"Google News country:language edition"`

	// Serve mode
	Serve bool   `long:"serve" env:"SERVE" description:"Serve the snapshot over HTTP instead of running the pipeline"`
	Port  string `long:"port" env:"PORT" default:"8080" description:"HTTP server port for serve mode"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"BundleTrack/1.0 (+https://github.com/bundletrack)" description:"User agent string for HTTP requests"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		BundlesFile:      raw.BundlesFile,
		SnapshotFile:     raw.SnapshotFile,
		RetentionDays:    raw.RetentionDays,
		MaxItemsPerQuery: raw.MaxItemsPerQuery,
		MaxTotalItems:    raw.MaxTotalItems,
		WorkerCount:      raw.WorkerCount,
		FetchTimeout:     raw.FetchTimeout,
		EnrichLimit:      raw.EnrichLimit,
		LocaleHL:         raw.LocaleHL,
		LocaleGL:         raw.LocaleGL,
		LocaleCEID:       raw.LocaleCEID,
		Serve:            raw.Serve,
		Port:             raw.Port,
		UserAgent:        raw.UserAgent,
		Debug:            raw.Debug,
		Version:          GetVersion(),
	}

	if cfg.RetentionDays <= 0 {
		return nil, fmt.Errorf("retention-days must be positive, got %d", cfg.RetentionDays)
	}
	if cfg.WorkerCount <= 0 {
		return nil, fmt.Errorf("worker-count must be positive, got %d", cfg.WorkerCount)
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}
