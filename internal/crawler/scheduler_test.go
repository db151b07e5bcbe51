package crawler

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scripthound/internal/collector"
	"scripthound/internal/config"
	"scripthound/internal/models"
)

// fakeRenderer serves canned pages keyed by URL and fails on anything else.
type fakeRenderer struct {
	pages    map[string]*models.RenderedPage
	rendered []string
}

func (f *fakeRenderer) RenderPage(ctx context.Context, rawURL string, timeout time.Duration) (*models.RenderedPage, error) {
	f.rendered = append(f.rendered, rawURL)
	page, ok := f.pages[rawURL]
	if !ok {
		return nil, fmt.Errorf("render failed for %s", rawURL)
	}
	return page, nil
}

func pageWithLinks(pageURL string, links ...string) *models.RenderedPage {
	html := "<html><body>"
	for _, l := range links {
		html += fmt.Sprintf(`<a href=%q>link</a>`, l)
	}
	html += "</body></html>"
	return &models.RenderedPage{URL: pageURL, RequestedURL: pageURL, HTML: html}
}

func newTestScheduler(renderer Renderer, mutate func(*config.CrawlerConfig)) *Scheduler {
	cfg := config.NewDefaultCrawlerConfig()
	cfg.CrawlEnabled = true
	if mutate != nil {
		mutate(&cfg)
	}
	coll := collector.NewCollector(true, zerolog.Nop())
	return NewScheduler(renderer, coll, cfg, zerolog.Nop())
}

func TestRun_CrawlDisabledVisitsOnlySeed(t *testing.T) {
	renderer := &fakeRenderer{pages: map[string]*models.RenderedPage{
		"https://example.com": pageWithLinks("https://example.com", "https://example.com/next"),
	}}
	s := newTestScheduler(renderer, func(cfg *config.CrawlerConfig) {
		cfg.CrawlEnabled = false
	})

	var visited []string
	n, err := s.Run(context.Background(), "https://example.com", func(p *models.RenderedPage, depth int) error {
		visited = append(visited, p.URL)
		assert.Equal(t, 0, depth)
		return nil
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []string{"https://example.com"}, visited)
}

func TestRun_BreadthFirstWithDepthBound(t *testing.T) {
	renderer := &fakeRenderer{pages: map[string]*models.RenderedPage{
		"https://example.com":    pageWithLinks("https://example.com", "/a", "/b"),
		"https://example.com/a":  pageWithLinks("https://example.com/a", "/a1"),
		"https://example.com/b":  pageWithLinks("https://example.com/b"),
		"https://example.com/a1": pageWithLinks("https://example.com/a1", "/deep"),
	}}
	s := newTestScheduler(renderer, func(cfg *config.CrawlerConfig) {
		cfg.MaxDepth = 2
	})

	depths := make(map[string]int)
	var order []string
	n, err := s.Run(context.Background(), "https://example.com", func(p *models.RenderedPage, depth int) error {
		depths[p.URL] = depth
		order = append(order, p.URL)
		return nil
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	// Breadth first: all depth-1 pages before any depth-2 page, and /deep is
	// beyond the depth bound.
	assert.Equal(t, []string{
		"https://example.com",
		"https://example.com/a",
		"https://example.com/b",
		"https://example.com/a1",
	}, order)
	assert.Equal(t, 0, depths["https://example.com"])
	assert.Equal(t, 1, depths["https://example.com/a"])
	assert.Equal(t, 2, depths["https://example.com/a1"])
	assert.NotContains(t, renderer.rendered, "https://example.com/deep")
}

func TestRun_NoRevisits(t *testing.T) {
	// Pages link back to the seed and to each other.
	renderer := &fakeRenderer{pages: map[string]*models.RenderedPage{
		"https://example.com":   pageWithLinks("https://example.com", "/a", "/b"),
		"https://example.com/a": pageWithLinks("https://example.com/a", "/b", "/"),
		"https://example.com/b": pageWithLinks("https://example.com/b", "/a", "https://www.example.com/a"),
	}}
	s := newTestScheduler(renderer, nil)

	n, err := s.Run(context.Background(), "https://example.com", func(p *models.RenderedPage, depth int) error {
		return nil
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Len(t, renderer.rendered, 3)
}

func TestRun_SameOriginOnly(t *testing.T) {
	renderer := &fakeRenderer{pages: map[string]*models.RenderedPage{
		"https://example.com": pageWithLinks("https://example.com", "https://other.com/page", "/local"),
		"https://example.com/local": pageWithLinks("https://example.com/local"),
	}}
	s := newTestScheduler(renderer, nil)

	n, err := s.Run(context.Background(), "https://example.com", func(p *models.RenderedPage, depth int) error {
		return nil
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.NotContains(t, renderer.rendered, "https://other.com/page")
}

func TestRun_CrossOriginAllowed(t *testing.T) {
	renderer := &fakeRenderer{pages: map[string]*models.RenderedPage{
		"https://example.com":  pageWithLinks("https://example.com", "https://other.com/page"),
		"https://other.com/page": pageWithLinks("https://other.com/page"),
	}}
	s := newTestScheduler(renderer, func(cfg *config.CrawlerConfig) {
		cfg.SameOriginOnly = false
	})

	n, err := s.Run(context.Background(), "https://example.com", func(p *models.RenderedPage, depth int) error {
		return nil
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestRun_RenderFailureIsRecoverable(t *testing.T) {
	renderer := &fakeRenderer{pages: map[string]*models.RenderedPage{
		"https://example.com":   pageWithLinks("https://example.com", "/broken", "/ok"),
		"https://example.com/ok": pageWithLinks("https://example.com/ok"),
	}}
	s := newTestScheduler(renderer, nil)

	n, err := s.Run(context.Background(), "https://example.com", func(p *models.RenderedPage, depth int) error {
		return nil
	}, nil)
	require.NoError(t, err)

	// The broken page is skipped, the rest of the frontier still runs.
	assert.Equal(t, 2, n)
	assert.Contains(t, renderer.rendered, "https://example.com/broken")
}

func TestRun_RenderFailureReportsPageError(t *testing.T) {
	renderer := &fakeRenderer{pages: map[string]*models.RenderedPage{
		"https://example.com":    pageWithLinks("https://example.com", "/broken", "/ok"),
		"https://example.com/ok": pageWithLinks("https://example.com/ok"),
	}}
	s := newTestScheduler(renderer, nil)

	var failedURLs []string
	n, err := s.Run(context.Background(), "https://example.com", func(p *models.RenderedPage, depth int) error {
		return nil
	}, func(rawURL string, pageErr error) {
		failedURLs = append(failedURLs, rawURL)
		assert.Error(t, pageErr)
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"https://example.com/broken"}, failedURLs)
}

func TestRun_ContextCancellation(t *testing.T) {
	renderer := &fakeRenderer{pages: map[string]*models.RenderedPage{
		"https://example.com": pageWithLinks("https://example.com", "/a"),
	}}
	s := newTestScheduler(renderer, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.Run(ctx, "https://example.com", func(p *models.RenderedPage, depth int) error {
		return nil
	}, nil)
	require.Error(t, err)
}
