package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultGlobalConfig(t *testing.T) {
	cfg := NewDefaultGlobalConfig()

	assert.Equal(t, DefaultOutputRoot, cfg.ArchiveConfig.OutputRoot)
	assert.Equal(t, DefaultHashPrefixLength, cfg.ArchiveConfig.HashPrefixLength)
	assert.Equal(t, FilterModeStrict, cfg.FilterConfig.Mode)
	assert.Equal(t, DefaultMinSizeBytes, cfg.FilterConfig.MinSizeBytes)
	assert.Equal(t, DefaultMaxDepth, cfg.CrawlerConfig.MaxDepth)
	assert.True(t, cfg.CrawlerConfig.SameOriginOnly)
	assert.True(t, cfg.BrowserConfig.Enabled)
	assert.NoError(t, ValidateConfig(cfg))
}

func TestLoadGlobalConfig_YAMLOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
filter_config:
  mode: relaxed
  min_size_bytes: 300
crawler_config:
  max_depth: 4
  page_timeout_secs: 10
browser_config:
  enabled: false
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadGlobalConfig(path)
	require.NoError(t, err)

	assert.Equal(t, FilterModeRelaxed, cfg.FilterConfig.Mode)
	assert.Equal(t, 300, cfg.FilterConfig.MinSizeBytes)
	assert.Equal(t, 4, cfg.CrawlerConfig.MaxDepth)
	assert.Equal(t, 10, cfg.CrawlerConfig.PageTimeoutSecs)
	assert.False(t, cfg.BrowserConfig.Enabled)
	// Untouched sections keep defaults.
	assert.Equal(t, DefaultOutputRoot, cfg.ArchiveConfig.OutputRoot)
}

func TestLoadGlobalConfig_MissingExplicitPath(t *testing.T) {
	_, err := LoadGlobalConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidateConfig_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*GlobalConfig)
	}{
		{
			name:   "bad filter mode",
			mutate: func(c *GlobalConfig) { c.FilterConfig.Mode = "paranoid" },
		},
		{
			name:   "bad log level",
			mutate: func(c *GlobalConfig) { c.LogConfig.LogLevel = "loud" },
		},
		{
			name:   "negative depth",
			mutate: func(c *GlobalConfig) { c.CrawlerConfig.MaxDepth = -1 },
		},
		{
			name:   "empty output root",
			mutate: func(c *GlobalConfig) { c.ArchiveConfig.OutputRoot = "" },
		},
		{
			name:   "hash prefix too short",
			mutate: func(c *GlobalConfig) { c.ArchiveConfig.HashPrefixLength = 2 },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefaultGlobalConfig()
			tt.mutate(cfg)
			assert.Error(t, ValidateConfig(cfg))
		})
	}
}
