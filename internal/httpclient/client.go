package httpclient

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/net/http2"

	"scripthound/internal/config"
)

const maxRedirects = 10

// Client downloads external script bodies over HTTP.
type Client struct {
	client      *http.Client
	userAgent   string
	maxBodySize int64
	logger      zerolog.Logger
}

// NewClient creates a fetch client from the given configuration.
func NewClient(cfg config.FetcherConfig, logger zerolog.Logger) (*Client, error) {
	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
		DialContext: (&net.Dialer{
			Timeout:   15 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: cfg.InsecureSkipVerify,
		},
	}

	if cfg.EnableHTTP2 {
		if err := http2.ConfigureTransport(transport); err != nil {
			logger.Warn().Err(err).Msg("Failed to configure HTTP/2, falling back to HTTP/1.1")
		}
	}

	client := &http.Client{
		Transport: transport,
		Timeout:   time.Duration(cfg.TimeoutSecs) * time.Second,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return fmt.Errorf("stopped after %d redirects", maxRedirects)
			}
			return nil
		},
	}

	logger.Debug().
		Int("timeout_secs", cfg.TimeoutSecs).
		Bool("insecure_skip_verify", cfg.InsecureSkipVerify).
		Bool("http2_enabled", cfg.EnableHTTP2).
		Msg("HTTP client created")

	return &Client{
		client:      client,
		userAgent:   cfg.UserAgent,
		maxBodySize: int64(cfg.MaxBodySizeMB) * 1024 * 1024,
		logger:      logger,
	}, nil
}

// Fetch downloads the body at the given URL. Non-200 responses are returned
// as an HTTPError. Bodies larger than the configured limit are truncated.
func (c *Client) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, WrapError(err, "failed to create HTTP request")
	}

	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	req.Header.Set("Accept", "*/*")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, WrapError(err, "HTTP request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, NewHTTPError(resp.StatusCode, rawURL)
	}

	reader := io.Reader(resp.Body)
	if c.maxBodySize > 0 {
		reader = io.LimitReader(resp.Body, c.maxBodySize)
	}

	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, WrapError(err, "failed to read response body")
	}

	if c.maxBodySize > 0 && int64(len(body)) == c.maxBodySize {
		c.logger.Warn().
			Str("url", rawURL).
			Int64("max_body_size", c.maxBodySize).
			Msg("Body reached size limit, possibly truncated")
	}

	c.logger.Debug().
		Str("url", rawURL).
		Int("content_size", len(body)).
		Msg("Fetched script body")

	return body, nil
}
