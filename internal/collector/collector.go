package collector

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"

	"scripthound/internal/models"
	"scripthound/internal/urlhandler"
)

// Collector extracts script candidates and crawlable links from rendered pages.
type Collector struct {
	includeCrossOrigin bool
	logger             zerolog.Logger
}

// NewCollector creates a collector. When includeCrossOrigin is false,
// external scripts served from a different origin than their page are
// dropped at collection time.
func NewCollector(includeCrossOrigin bool, logger zerolog.Logger) *Collector {
	return &Collector{
		includeCrossOrigin: includeCrossOrigin,
		logger:             logger.With().Str("component", "Collector").Logger(),
	}
}

var skipHrefPrefixes = []string{"data:", "mailto:", "tel:", "javascript:"}

func shouldSkipHref(href string) bool {
	for _, prefix := range skipHrefPrefixes {
		if strings.HasPrefix(href, prefix) {
			return true
		}
	}
	return false
}

// Collect returns the page's script candidates in discovery order: external
// scripts first in network load order, then inline scripts in DOM order.
func (c *Collector) Collect(page *models.RenderedPage) ([]models.CandidateScript, error) {
	pageURL, err := url.Parse(page.URL)
	if err != nil {
		return nil, err
	}

	candidates := make([]models.CandidateScript, 0, len(page.ScriptURLs))

	for _, scriptURL := range page.ScriptURLs {
		parsed, err := url.Parse(scriptURL)
		if err != nil {
			c.logger.Debug().Str("url", scriptURL).Err(err).Msg("Skipping unparseable script URL")
			continue
		}
		crossOrigin := !urlhandler.SameOrigin(pageURL, parsed)
		if crossOrigin && !c.includeCrossOrigin {
			c.logger.Debug().Str("url", scriptURL).Str("page", page.URL).Msg("Skipping cross-origin script")
			continue
		}
		candidates = append(candidates, models.CandidateScript{
			SourceKind:  models.SourceExternal,
			URL:         scriptURL,
			PageURL:     page.URL,
			CrossOrigin: crossOrigin,
		})
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page.HTML))
	if err != nil {
		return nil, err
	}

	offset := 0
	doc.Find("script").Each(func(i int, s *goquery.Selection) {
		if _, hasSrc := s.Attr("src"); hasSrc {
			return
		}
		body := s.Text()
		if strings.TrimSpace(body) == "" {
			return
		}
		candidates = append(candidates, models.CandidateScript{
			SourceKind: models.SourceInline,
			PageURL:    page.URL,
			PageOffset: offset,
			Body:       []byte(body),
		})
		offset++
	})

	return candidates, nil
}

// ScriptSources extracts external script URLs from raw HTML, resolved against
// the page URL. Used when no browser renders the page and network load order
// is unavailable; document order stands in for it.
func ScriptSources(html string, base *url.URL) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	var sources []string
	seen := make(map[string]struct{})
	doc.Find("script[src]").Each(func(i int, s *goquery.Selection) {
		src := strings.TrimSpace(s.AttrOr("src", ""))
		if src == "" || shouldSkipHref(src) {
			return
		}
		resolved, err := urlhandler.ResolveURL(src, base)
		if err != nil {
			return
		}
		if _, ok := seen[resolved]; ok {
			return
		}
		seen[resolved] = struct{}{}
		sources = append(sources, resolved)
	})

	return sources, nil
}

// ExtractLinks returns the absolute URLs of anchor links on the page,
// in document order with duplicates removed.
func (c *Collector) ExtractLinks(page *models.RenderedPage) ([]string, error) {
	base, err := url.Parse(page.URL)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page.HTML))
	if err != nil {
		return nil, err
	}

	var links []string
	seen := make(map[string]struct{})
	doc.Find("a[href]").Each(func(i int, s *goquery.Selection) {
		href := strings.TrimSpace(s.AttrOr("href", ""))
		if href == "" || shouldSkipHref(href) {
			return
		}
		resolved, err := urlhandler.ResolveURL(href, base)
		if err != nil {
			c.logger.Debug().Str("href", href).Err(err).Msg("Failed to resolve link")
			return
		}
		if _, ok := seen[resolved]; ok {
			return
		}
		seen[resolved] = struct{}{}
		links = append(links, resolved)
	})

	return links, nil
}
