package crawler

import (
	"context"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"scripthound/internal/collector"
	"scripthound/internal/config"
	"scripthound/internal/models"
	"scripthound/internal/urlhandler"
)

// Renderer loads a page and reports its rendered state.
type Renderer interface {
	RenderPage(ctx context.Context, rawURL string, timeout time.Duration) (*models.RenderedPage, error)
}

// VisitFunc is invoked once per successfully rendered page, in traversal
// order. Depth 0 is the seed page.
type VisitFunc func(page *models.RenderedPage, depth int) error

// PageErrorFunc is invoked once per page that failed to render or fetch.
// The traversal continues after the callback returns.
type PageErrorFunc func(rawURL string, err error)

// Scheduler performs a breadth-first traversal from a seed URL. Pages that
// fail to render are logged and skipped without aborting the traversal.
type Scheduler struct {
	renderer  Renderer
	collector *collector.Collector
	config    config.CrawlerConfig
	logger    zerolog.Logger
}

// NewScheduler creates a traversal scheduler.
func NewScheduler(renderer Renderer, coll *collector.Collector, cfg config.CrawlerConfig, logger zerolog.Logger) *Scheduler {
	return &Scheduler{
		renderer:  renderer,
		collector: coll,
		config:    cfg,
		logger:    logger.With().Str("component", "Scheduler").Logger(),
	}
}

type frontierItem struct {
	url   string
	depth int
}

// Run traverses pages starting at seedURL and calls visit for each rendered
// page and onPageError (when non-nil) for each page that failed. It returns
// the number of pages visited. When crawling is disabled only the seed page
// is rendered.
func (s *Scheduler) Run(ctx context.Context, seedURL string, visit VisitFunc, onPageError PageErrorFunc) (int, error) {
	seedParsed, err := url.Parse(seedURL)
	if err != nil {
		return 0, err
	}

	maxDepth := 0
	if s.config.CrawlEnabled {
		maxDepth = s.config.MaxDepth
	}
	pageTimeout := time.Duration(s.config.PageTimeoutSecs) * time.Second

	visited := make(map[string]struct{})
	frontier := []frontierItem{{url: seedURL, depth: 0}}

	seedKey, err := urlhandler.NormalizeURL(seedURL)
	if err != nil {
		return 0, err
	}
	visited[seedKey] = struct{}{}

	pagesVisited := 0
	for len(frontier) > 0 {
		if err := ctx.Err(); err != nil {
			return pagesVisited, err
		}

		item := frontier[0]
		frontier = frontier[1:]

		page, err := s.renderer.RenderPage(ctx, item.url, pageTimeout)
		if err != nil {
			s.logger.Warn().Str("url", item.url).Int("depth", item.depth).Err(err).Msg("Page render failed, skipping")
			if onPageError != nil {
				onPageError(item.url, err)
			}
			continue
		}

		pagesVisited++
		s.logger.Info().Str("url", page.URL).Int("depth", item.depth).Msg("Visited page")

		if err := visit(page, item.depth); err != nil {
			s.logger.Warn().Str("url", page.URL).Err(err).Msg("Page processing failed")
		}

		if item.depth >= maxDepth {
			continue
		}

		links, err := s.collector.ExtractLinks(page)
		if err != nil {
			s.logger.Warn().Str("url", page.URL).Err(err).Msg("Link extraction failed")
			continue
		}

		for _, link := range links {
			if !s.admitLink(link, seedParsed) {
				continue
			}
			key, err := urlhandler.NormalizeURL(link)
			if err != nil {
				continue
			}
			if _, ok := visited[key]; ok {
				continue
			}
			visited[key] = struct{}{}
			frontier = append(frontier, frontierItem{url: link, depth: item.depth + 1})
		}
	}

	return pagesVisited, nil
}

func (s *Scheduler) admitLink(link string, seed *url.URL) bool {
	if err := urlhandler.ValidateURLFormat(link); err != nil {
		return false
	}
	if !s.config.SameOriginOnly {
		return true
	}
	parsed, err := url.Parse(link)
	if err != nil {
		return false
	}
	return urlhandler.SameOrigin(seed, parsed)
}
