package config

// Filter modes.
const (
	FilterModeStrict  = "strict"
	FilterModeRelaxed = "relaxed"
)

// Archive defaults.
const (
	DefaultOutputRoot       = "scripthound-out"
	DefaultHashPrefixLength = 8
)

// Browser defaults.
const (
	DefaultBrowserPoolSize = 2
	DefaultWindowWidth     = 1366
	DefaultWindowHeight    = 768
	DefaultWaitAfterLoadMs = 2000
)

// Crawler defaults.
const (
	DefaultMaxDepth             = 2
	DefaultPageTimeoutSecs      = 60
	DefaultMaxConcurrentTargets = 1
)

// Fetcher defaults.
const (
	DefaultFetchTimeoutSecs = 60
	DefaultDownloadDelayMs  = 500
	DefaultMaxBodySizeMB    = 20
	DefaultUserAgent        = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
)

// Filter defaults.
const (
	DefaultMinSizeBytes    = 150
	DefaultInlineScanBytes = 4096
)

// Logging defaults.
const (
	DefaultLogFormat     = "console"
	DefaultLogLevel      = "info"
	DefaultMaxLogSizeMB  = 50
	DefaultMaxLogBackups = 3
)

// VerboseLogFilename is the per-run log stream written under the output root
// when verbose logging is enabled.
const VerboseLogFilename = "verbose.log"

// HistoryDBFilename is the sqlite run-history database under the output root.
const HistoryDBFilename = "history.db"
