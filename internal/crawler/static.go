package crawler

import (
	"context"
	"crypto/tls"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"
	"github.com/rs/zerolog"

	"scripthound/internal/collector"
	"scripthound/internal/config"
	"scripthound/internal/models"
	"scripthound/internal/urlhandler"
)

// StaticCrawler traverses pages without a browser, parsing raw HTML as
// served. Script URLs come from script tags in document order since no
// network load order exists without rendering.
type StaticCrawler struct {
	crawlerConfig config.CrawlerConfig
	fetcherConfig config.FetcherConfig
	logger        zerolog.Logger
}

// NewStaticCrawler creates a static crawler.
func NewStaticCrawler(crawlerCfg config.CrawlerConfig, fetcherCfg config.FetcherConfig, logger zerolog.Logger) *StaticCrawler {
	return &StaticCrawler{
		crawlerConfig: crawlerCfg,
		fetcherConfig: fetcherCfg,
		logger:        logger.With().Str("component", "StaticCrawler").Logger(),
	}
}

// Run traverses pages starting at seedURL and calls visit for each HTML page
// fetched and onPageError (when non-nil) for each request that failed. It
// returns the number of pages visited.
func (sc *StaticCrawler) Run(ctx context.Context, seedURL string, visit VisitFunc, onPageError PageErrorFunc) (int, error) {
	seedParsed, err := url.Parse(seedURL)
	if err != nil {
		return 0, err
	}

	// Collector depth 1 is the seed page.
	maxDepth := 1
	if sc.crawlerConfig.CrawlEnabled {
		maxDepth = sc.crawlerConfig.MaxDepth + 1
	}

	opts := []colly.CollectorOption{
		colly.MaxDepth(maxDepth),
		colly.UserAgent(sc.fetcherConfig.UserAgent),
	}
	if sc.crawlerConfig.SameOriginOnly {
		opts = append(opts, colly.AllowedDomains(sameOriginHosts(seedParsed.Hostname())...))
	}

	c := colly.NewCollector(opts...)
	c.SetRequestTimeout(time.Duration(sc.crawlerConfig.PageTimeoutSecs) * time.Second)

	if sc.fetcherConfig.InsecureSkipVerify {
		c.WithTransport(&http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		})
	}

	if sc.fetcherConfig.DownloadDelayMs > 0 {
		if err := c.Limit(&colly.LimitRule{
			DomainGlob: "*",
			Delay:      time.Duration(sc.fetcherConfig.DownloadDelayMs) * time.Millisecond,
		}); err != nil {
			return 0, err
		}
	}

	pagesVisited := 0

	c.OnRequest(func(r *colly.Request) {
		if ctx.Err() != nil {
			r.Abort()
		}
	})

	c.OnResponse(func(r *colly.Response) {
		contentType := strings.ToLower(r.Headers.Get("Content-Type"))
		if contentType != "" && !strings.Contains(contentType, "text/html") {
			return
		}

		pageURL := r.Request.URL.String()
		html := string(r.Body)

		scriptURLs, err := collector.ScriptSources(html, r.Request.URL)
		if err != nil {
			sc.logger.Warn().Str("url", pageURL).Err(err).Msg("Script extraction failed")
			return
		}

		page := &models.RenderedPage{
			URL:          pageURL,
			RequestedURL: pageURL,
			HTML:         html,
			ScriptURLs:   scriptURLs,
		}

		depth := r.Request.Depth - 1
		pagesVisited++
		sc.logger.Info().Str("url", pageURL).Int("depth", depth).Msg("Visited page")

		if err := visit(page, depth); err != nil {
			sc.logger.Warn().Str("url", pageURL).Err(err).Msg("Page processing failed")
		}
	})

	c.OnHTML("a[href]", func(e *colly.HTMLElement) {
		link := e.Request.AbsoluteURL(e.Attr("href"))
		if link == "" {
			return
		}
		if sc.crawlerConfig.SameOriginOnly {
			parsed, err := url.Parse(link)
			if err != nil || !sameOriginLink(seedParsed, parsed) {
				return
			}
		}
		if err := e.Request.Visit(link); err != nil {
			sc.handleVisitError(link, err)
		}
	})

	requestErrored := false
	c.OnError(func(r *colly.Response, err error) {
		requestErrored = true
		sc.logger.Warn().
			Str("url", r.Request.URL.String()).
			Int("status", r.StatusCode).
			Err(err).
			Msg("Request failed")
		if onPageError != nil {
			onPageError(r.Request.URL.String(), err)
		}
	})

	if err := c.Visit(seedURL); err != nil && !requestErrored {
		return 0, err
	}
	c.Wait()

	if err := ctx.Err(); err != nil {
		return pagesVisited, err
	}
	return pagesVisited, nil
}

// sameOriginHosts returns the bare and www-prefixed forms of a hostname.
// Both forms are treated as one crawl origin.
func sameOriginHosts(hostname string) []string {
	bare := strings.TrimPrefix(strings.ToLower(hostname), "www.")
	return []string{bare, "www." + bare}
}

// sameOriginLink reports whether link shares scheme, host, and port with the
// seed, ignoring a leading "www." on either hostname.
func sameOriginLink(seed, link *url.URL) bool {
	a, b := *seed, *link
	a.Host = hostWithoutWWW(&a)
	b.Host = hostWithoutWWW(&b)
	return urlhandler.SameOrigin(&a, &b)
}

func hostWithoutWWW(u *url.URL) string {
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	if p := u.Port(); p != "" {
		host = host + ":" + p
	}
	return host
}

func (sc *StaticCrawler) handleVisitError(link string, err error) {
	if strings.Contains(err.Error(), "already visited") ||
		strings.Contains(err.Error(), "Max depth limit reached") ||
		strings.Contains(err.Error(), "Forbidden domain") {
		return
	}
	sc.logger.Debug().Str("url", link).Err(err).Msg("Error queueing visit")
}
