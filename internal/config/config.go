package config

// GlobalConfig contains all configuration sections for the application.
// CLI flags override values loaded from a config file.
type GlobalConfig struct {
	ArchiveConfig ArchiveConfig `json:"archive_config,omitempty" yaml:"archive_config,omitempty"`
	BrowserConfig BrowserConfig `json:"browser_config,omitempty" yaml:"browser_config,omitempty"`
	CrawlerConfig CrawlerConfig `json:"crawler_config,omitempty" yaml:"crawler_config,omitempty"`
	FetcherConfig FetcherConfig `json:"fetcher_config,omitempty" yaml:"fetcher_config,omitempty"`
	FilterConfig  FilterConfig  `json:"filter_config,omitempty" yaml:"filter_config,omitempty"`
	LogConfig     LogConfig     `json:"log_config,omitempty" yaml:"log_config,omitempty"`
}

// NewDefaultGlobalConfig creates a GlobalConfig with default values.
func NewDefaultGlobalConfig() *GlobalConfig {
	return &GlobalConfig{
		ArchiveConfig: NewDefaultArchiveConfig(),
		BrowserConfig: NewDefaultBrowserConfig(),
		CrawlerConfig: NewDefaultCrawlerConfig(),
		FetcherConfig: NewDefaultFetcherConfig(),
		FilterConfig:  NewDefaultFilterConfig(),
		LogConfig:     NewDefaultLogConfig(),
	}
}

// ArchiveConfig controls artifact persistence.
type ArchiveConfig struct {
	OutputRoot       string `json:"output_root,omitempty" yaml:"output_root,omitempty" validate:"required"`
	ClearBeforeRun   bool   `json:"clear_before_run,omitempty" yaml:"clear_before_run,omitempty"`
	HashPrefixLength int    `json:"hash_prefix_length,omitempty" yaml:"hash_prefix_length,omitempty" validate:"min=4,max=64"`
	HistoryEnabled   bool   `json:"history_enabled,omitempty" yaml:"history_enabled,omitempty"`
}

// NewDefaultArchiveConfig creates default archive configuration.
func NewDefaultArchiveConfig() ArchiveConfig {
	return ArchiveConfig{
		OutputRoot:       DefaultOutputRoot,
		ClearBeforeRun:   false,
		HashPrefixLength: DefaultHashPrefixLength,
		HistoryEnabled:   true,
	}
}

// BrowserConfig controls the headless browser pool.
type BrowserConfig struct {
	Enabled         bool   `json:"enabled" yaml:"enabled"`
	ChromePath      string `json:"chrome_path,omitempty" yaml:"chrome_path,omitempty"`
	UserDataDir     string `json:"user_data_dir,omitempty" yaml:"user_data_dir,omitempty"`
	PoolSize        int    `json:"pool_size,omitempty" yaml:"pool_size,omitempty" validate:"min=1,max=16"`
	WindowWidth     int    `json:"window_width,omitempty" yaml:"window_width,omitempty"`
	WindowHeight    int    `json:"window_height,omitempty" yaml:"window_height,omitempty"`
	WaitAfterLoadMs int    `json:"wait_after_load_ms,omitempty" yaml:"wait_after_load_ms,omitempty"`
	ScrollAfterLoad bool   `json:"scroll_after_load,omitempty" yaml:"scroll_after_load,omitempty"`
	DisableImages   bool   `json:"disable_images,omitempty" yaml:"disable_images,omitempty"`
}

// NewDefaultBrowserConfig creates default browser configuration.
func NewDefaultBrowserConfig() BrowserConfig {
	return BrowserConfig{
		Enabled:         true,
		PoolSize:        DefaultBrowserPoolSize,
		WindowWidth:     DefaultWindowWidth,
		WindowHeight:    DefaultWindowHeight,
		WaitAfterLoadMs: DefaultWaitAfterLoadMs,
		ScrollAfterLoad: true,
		DisableImages:   true,
	}
}

// CrawlerConfig controls page traversal.
type CrawlerConfig struct {
	CrawlEnabled         bool `json:"crawl_enabled,omitempty" yaml:"crawl_enabled,omitempty"`
	MaxDepth             int  `json:"max_depth,omitempty" yaml:"max_depth,omitempty" validate:"min=0,max=10"`
	SameOriginOnly       bool `json:"same_origin_only" yaml:"same_origin_only"`
	PageTimeoutSecs      int  `json:"page_timeout_secs,omitempty" yaml:"page_timeout_secs,omitempty" validate:"min=1"`
	MaxConcurrentTargets int  `json:"max_concurrent_targets,omitempty" yaml:"max_concurrent_targets,omitempty" validate:"min=1,max=32"`
}

// NewDefaultCrawlerConfig creates default crawler configuration.
func NewDefaultCrawlerConfig() CrawlerConfig {
	return CrawlerConfig{
		CrawlEnabled:         false,
		MaxDepth:             DefaultMaxDepth,
		SameOriginOnly:       true,
		PageTimeoutSecs:      DefaultPageTimeoutSecs,
		MaxConcurrentTargets: DefaultMaxConcurrentTargets,
	}
}

// FetcherConfig controls external script downloads.
type FetcherConfig struct {
	TimeoutSecs        int    `json:"timeout_secs,omitempty" yaml:"timeout_secs,omitempty" validate:"min=1"`
	DownloadDelayMs    int    `json:"download_delay_ms,omitempty" yaml:"download_delay_ms,omitempty" validate:"min=0"`
	UserAgent          string `json:"user_agent,omitempty" yaml:"user_agent,omitempty"`
	InsecureSkipVerify bool   `json:"insecure_skip_verify,omitempty" yaml:"insecure_skip_verify,omitempty"`
	EnableHTTP2        bool   `json:"enable_http2,omitempty" yaml:"enable_http2,omitempty"`
	MaxBodySizeMB      int    `json:"max_body_size_mb,omitempty" yaml:"max_body_size_mb,omitempty" validate:"min=1"`
	IncludeCrossOrigin bool   `json:"include_cross_origin,omitempty" yaml:"include_cross_origin,omitempty"`
}

// NewDefaultFetcherConfig creates default fetcher configuration.
func NewDefaultFetcherConfig() FetcherConfig {
	return FetcherConfig{
		TimeoutSecs:     DefaultFetchTimeoutSecs,
		DownloadDelayMs: DefaultDownloadDelayMs,
		UserAgent:       DefaultUserAgent,
		EnableHTTP2:     true,
		MaxBodySizeMB:   DefaultMaxBodySizeMB,
	}
}

// FilterConfig controls candidate classification.
type FilterConfig struct {
	Mode            string `json:"mode,omitempty" yaml:"mode,omitempty" validate:"omitempty,filtermode"`
	MinSizeBytes    int    `json:"min_size_bytes,omitempty" yaml:"min_size_bytes,omitempty" validate:"min=0"`
	InlineScanBytes int    `json:"inline_scan_bytes,omitempty" yaml:"inline_scan_bytes,omitempty" validate:"min=0"`
}

// NewDefaultFilterConfig creates default filter configuration.
func NewDefaultFilterConfig() FilterConfig {
	return FilterConfig{
		Mode:            FilterModeStrict,
		MinSizeBytes:    DefaultMinSizeBytes,
		InlineScanBytes: DefaultInlineScanBytes,
	}
}

// LogConfig defines configuration for logging.
type LogConfig struct {
	LogFile       string `json:"log_file,omitempty" yaml:"log_file,omitempty"`
	LogFormat     string `json:"log_format,omitempty" yaml:"log_format,omitempty" validate:"omitempty,logformat"`
	LogLevel      string `json:"log_level,omitempty" yaml:"log_level,omitempty" validate:"omitempty,loglevel"`
	MaxLogSizeMB  int    `json:"max_log_size_mb,omitempty" yaml:"max_log_size_mb,omitempty"`
	MaxLogBackups int    `json:"max_log_backups,omitempty" yaml:"max_log_backups,omitempty"`
}

// NewDefaultLogConfig creates default log configuration.
func NewDefaultLogConfig() LogConfig {
	return LogConfig{
		LogFormat:     DefaultLogFormat,
		LogLevel:      DefaultLogLevel,
		MaxLogSizeMB:  DefaultMaxLogSizeMB,
		MaxLogBackups: DefaultMaxLogBackups,
	}
}
