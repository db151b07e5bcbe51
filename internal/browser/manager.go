package browser

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/rs/zerolog"

	"scripthound/internal/config"
	"scripthound/internal/models"
)

// Manager maintains a pool of headless browser instances used for rendering.
type Manager struct {
	config      config.BrowserConfig
	userAgent   string
	logger      zerolog.Logger
	browserPool chan *rod.Browser
	launcher    *launcher.Launcher
	mutex       sync.Mutex
	isRunning   bool
}

// NewManager creates a browser pool manager. The pool is not started until
// Start is called.
func NewManager(cfg config.BrowserConfig, userAgent string, logger zerolog.Logger) *Manager {
	return &Manager{
		config:      cfg,
		userAgent:   userAgent,
		logger:      logger.With().Str("component", "BrowserManager").Logger(),
		browserPool: make(chan *rod.Browser, cfg.PoolSize),
	}
}

// Start launches Chrome and fills the browser pool.
func (m *Manager) Start() error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.isRunning {
		return nil
	}

	if !m.config.Enabled {
		m.logger.Info().Msg("Headless browser is disabled in config")
		return nil
	}

	l := launcher.New()

	if m.config.ChromePath != "" {
		l = l.Bin(m.config.ChromePath)
	}
	if m.config.UserDataDir != "" {
		l = l.UserDataDir(m.config.UserDataDir)
	}

	l = l.
		Set("no-sandbox").
		Set("disable-dev-shm-usage").
		Set("disable-gpu").
		Set("no-first-run").
		Set("disable-default-apps").
		Set("disable-sync")

	if m.config.DisableImages {
		l = l.Set("blink-settings", "imagesEnabled=false")
	}

	launcherURL, err := l.Launch()
	if err != nil {
		return fmt.Errorf("failed to launch browser: %w", err)
	}
	m.launcher = l

	for i := 0; i < m.config.PoolSize; i++ {
		b := rod.New().ControlURL(launcherURL)
		if err := b.Connect(); err != nil {
			m.logger.Error().Err(err).Int("browser_index", i).Msg("Failed to connect browser")
			continue
		}
		m.browserPool <- b
	}

	m.isRunning = true
	m.logger.Info().Int("pool_size", m.config.PoolSize).Msg("Browser manager started")
	return nil
}

// Stop closes all pooled browsers and cleans up the launcher.
func (m *Manager) Stop() {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if !m.isRunning {
		return
	}

	m.isRunning = false

	// The pool channel stays open so late returnBrowser calls cannot panic;
	// they see isRunning false and close their browser instead.
drain:
	for {
		select {
		case b := <-m.browserPool:
			if b != nil {
				_ = b.Close()
			}
		default:
			break drain
		}
	}

	if m.launcher != nil {
		m.launcher.Cleanup()
	}

	m.logger.Info().Msg("Browser manager stopped")
}

// IsEnabled reports whether headless rendering is enabled.
func (m *Manager) IsEnabled() bool {
	return m.config.Enabled
}

func (m *Manager) getBrowser() (*rod.Browser, error) {
	m.mutex.Lock()
	running := m.isRunning
	m.mutex.Unlock()
	if !m.config.Enabled || !running {
		return nil, fmt.Errorf("browser manager not running or disabled")
	}

	select {
	case b := <-m.browserPool:
		return b, nil
	case <-time.After(10 * time.Second):
		return nil, fmt.Errorf("timeout waiting for browser from pool")
	}
}

func (m *Manager) returnBrowser(b *rod.Browser) {
	if b == nil {
		return
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()

	if !m.isRunning {
		_ = b.Close()
		return
	}

	select {
	case m.browserPool <- b:
	default:
		_ = b.Close()
	}
}

// RenderPage loads the URL in a pooled browser, waits for it to settle, and
// returns the rendered HTML together with the script URLs the page actually
// loaded, in network load order.
func (m *Manager) RenderPage(ctx context.Context, rawURL string, timeout time.Duration) (*models.RenderedPage, error) {
	browser, err := m.getBrowser()
	if err != nil {
		return nil, fmt.Errorf("failed to get browser: %w", err)
	}
	defer m.returnBrowser(browser)

	timeoutCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	page, err := browser.Context(timeoutCtx).Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("failed to create page: %w", err)
	}
	defer func() { _ = page.Close() }()

	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:  m.config.WindowWidth,
		Height: m.config.WindowHeight,
	}); err != nil {
		m.logger.Warn().Err(err).Msg("Failed to set viewport")
	}

	if m.userAgent != "" {
		if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{
			UserAgent: m.userAgent,
		}); err != nil {
			m.logger.Warn().Err(err).Msg("Failed to set user agent")
		}
	}

	// Collect script responses as the browser loads them. Subscription must
	// be in place before navigation so early requests are not missed.
	var scriptsMu sync.Mutex
	var scriptURLs []string
	seenScripts := make(map[string]struct{})
	go page.EachEvent(func(e *proto.NetworkResponseReceived) {
		if e.Type != proto.NetworkResourceTypeScript {
			return
		}
		scriptsMu.Lock()
		defer scriptsMu.Unlock()
		if _, ok := seenScripts[e.Response.URL]; ok {
			return
		}
		seenScripts[e.Response.URL] = struct{}{}
		scriptURLs = append(scriptURLs, e.Response.URL)
	})()

	if err := page.Navigate(rawURL); err != nil {
		return nil, fmt.Errorf("failed to navigate to %s: %w", rawURL, err)
	}

	if err := page.WaitLoad(); err != nil {
		return nil, fmt.Errorf("page load timeout for %s: %w", rawURL, err)
	}

	// Scrolling triggers lazy-loaded scripts.
	if m.config.ScrollAfterLoad {
		if err := page.Mouse.Scroll(0, 2000, 1); err != nil {
			m.logger.Warn().Err(err).Str("url", rawURL).Msg("Failed to scroll page")
		}
	}

	if m.config.WaitAfterLoadMs > 0 {
		select {
		case <-time.After(time.Duration(m.config.WaitAfterLoadMs) * time.Millisecond):
		case <-timeoutCtx.Done():
			return nil, fmt.Errorf("page settle interrupted for %s: %w", rawURL, timeoutCtx.Err())
		}
	}

	html, err := page.HTML()
	if err != nil {
		return nil, fmt.Errorf("failed to get HTML for %s: %w", rawURL, err)
	}

	finalURL := rawURL
	if info, err := page.Info(); err == nil {
		finalURL = info.URL
	}

	scriptsMu.Lock()
	collected := make([]string, len(scriptURLs))
	copy(collected, scriptURLs)
	scriptsMu.Unlock()

	m.logger.Debug().
		Str("url", rawURL).
		Str("final_url", finalURL).
		Int("script_count", len(collected)).
		Msg("Page rendered")

	return &models.RenderedPage{
		URL:          finalURL,
		RequestedURL: rawURL,
		HTML:         html,
		ScriptURLs:   collected,
	}, nil
}
