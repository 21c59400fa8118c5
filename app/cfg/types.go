package cfg

type Cfg struct {
	// Input / output locations
	BundlesFile  string
	SnapshotFile string

	// Pipeline controls
	RetentionDays    int
	MaxItemsPerQuery int
	MaxTotalItems    int
	WorkerCount      int
	FetchTimeout     int // seconds
	EnrichLimit      int

	// Google News search locale
	LocaleHL   string
	LocaleGL   string
	LocaleCEID string

	// Serve mode
	Serve bool
	Port  string

	// Application metadata
	UserAgent string
	Debug     bool
	Version   string
}
