package orchestrator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"scripthound/internal/archiver"
	"scripthound/internal/collector"
	"scripthound/internal/config"
	"scripthound/internal/crawler"
	"scripthound/internal/datastore"
	"scripthound/internal/filter"
	"scripthound/internal/models"
	"scripthound/internal/urlhandler"
)

// Traverser walks pages from a seed URL. Both the browser-backed scheduler
// and the static crawler satisfy this.
type Traverser interface {
	Run(ctx context.Context, seedURL string, visit crawler.VisitFunc, onPageError crawler.PageErrorFunc) (int, error)
}

// Fetcher downloads external script bodies.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) ([]byte, error)
}

// Orchestrator drives the crawl, collect, fetch, filter, archive pipeline
// for each target and aggregates per-target summaries.
type Orchestrator struct {
	traverser Traverser
	collector *collector.Collector
	fetcher   Fetcher
	filter    *filter.Engine
	archiver  *archiver.Archiver
	history   *datastore.HistoryStore
	config    *config.GlobalConfig
	logger    zerolog.Logger
}

// New creates an orchestrator. history may be nil when run history is
// disabled.
func New(
	cfg *config.GlobalConfig,
	traverser Traverser,
	coll *collector.Collector,
	fetcher Fetcher,
	eng *filter.Engine,
	arch *archiver.Archiver,
	history *datastore.HistoryStore,
	logger zerolog.Logger,
) *Orchestrator {
	return &Orchestrator{
		traverser: traverser,
		collector: coll,
		fetcher:   fetcher,
		filter:    eng,
		archiver:  arch,
		history:   history,
		config:    cfg,
		logger:    logger.With().Str("component", "Orchestrator").Logger(),
	}
}

// Run processes all targets, up to MaxConcurrentTargets at a time, and
// returns their summaries in input order. Target failures are recorded in
// the summaries rather than aborting the run; the returned error is non-nil
// only when the context is cancelled.
func (o *Orchestrator) Run(ctx context.Context, targets []string) ([]*models.TargetSummary, error) {
	summaries := make([]*models.TargetSummary, len(targets))

	sem := make(chan struct{}, o.config.CrawlerConfig.MaxConcurrentTargets)
	var wg sync.WaitGroup
	for i, target := range targets {
		wg.Add(1)
		go func(i int, target string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			summaries[i] = o.ProcessTarget(ctx, target)
		}(i, target)
	}
	wg.Wait()

	return summaries, ctx.Err()
}

// ProcessTarget runs the full pipeline for one target.
func (o *Orchestrator) ProcessTarget(ctx context.Context, target string) *models.TargetSummary {
	summary := &models.TargetSummary{
		Target:     target,
		FilterMode: o.filter.Mode(),
		StartedAt:  time.Now().UTC(),
	}

	o.logger.Info().Str("target", target).Str("filter_mode", summary.FilterMode).Msg("Processing target")

	pagesVisited, err := o.traverser.Run(ctx, target, func(page *models.RenderedPage, depth int) error {
		return o.processPage(ctx, page, summary)
	}, func(pageURL string, pageErr error) {
		summary.AddError(fmt.Sprintf("page failed: %s: %v", pageURL, pageErr))
	})
	summary.PagesVisited = pagesVisited
	if err != nil {
		summary.AddError(fmt.Sprintf("traversal aborted for %s: %v", target, err))
		o.logger.Warn().Str("target", target).Err(err).Msg("Traversal aborted")
	}

	summary.Duration = time.Since(summary.StartedAt)

	o.logger.Info().
		Str("target", target).
		Int("pages_visited", summary.PagesVisited).
		Int("candidates_seen", summary.CandidatesSeen).
		Int("kept", summary.Kept).
		Int("skipped_filtered", summary.SkippedFiltered).
		Int("skipped_duplicate", summary.SkippedDuplicate).
		Int("errors", summary.Errors()).
		Dur("duration", summary.Duration).
		Msg("Target complete")

	if o.history != nil {
		if err := o.history.Record(summary); err != nil {
			o.logger.Warn().Str("target", target).Err(err).Msg("Failed to record run history")
		}
	}

	return summary
}

func (o *Orchestrator) processPage(ctx context.Context, page *models.RenderedPage, summary *models.TargetSummary) error {
	candidates, err := o.collector.Collect(page)
	if err != nil {
		summary.AddError(fmt.Sprintf("collection failed for %s: %v", page.URL, err))
		return err
	}

	domain, err := urlhandler.ExtractDomain(page.URL)
	if err != nil {
		summary.AddError(fmt.Sprintf("cannot determine domain for %s: %v", page.URL, err))
		return err
	}

	fetchedAny := false
	for _, candidate := range candidates {
		summary.CandidatesSeen++

		if candidate.SourceKind == models.SourceExternal {
			body, err := o.fetchExternal(ctx, candidate.URL, fetchedAny)
			fetchedAny = true
			if err != nil {
				summary.AddError(fmt.Sprintf("fetch failed for %s: %v", candidate.URL, err))
				o.logger.Warn().Str("url", candidate.URL).Err(err).Msg("Script fetch failed")
				continue
			}
			candidate.Body = body
		}

		decision := o.filter.Classify(candidate)
		if !decision.Keep {
			summary.SkippedFiltered++
			o.logger.Debug().
				Str("page", page.URL).
				Str("url", candidate.URL).
				Str("reason", decision.Reason).
				Msg("Candidate filtered")
			continue
		}

		result, err := o.archiver.Archive(candidate.Body, candidate.SourceKind.Kind(), domain, summary.FilterMode)
		if err != nil {
			summary.AddError(fmt.Sprintf("archive failed for %s: %v", candidate.URL, err))
			o.logger.Warn().Str("url", candidate.URL).Err(err).Msg("Archive failed")
			continue
		}

		switch result.Status {
		case models.ArchiveWritten:
			summary.Kept++
			o.logger.Info().
				Str("page", page.URL).
				Str("path", result.Path).
				Int("seq", result.Seq).
				Int("size", len(candidate.Body)).
				Msg("Script archived")
		case models.ArchiveSkipped:
			summary.SkippedDuplicate++
			o.logger.Debug().
				Str("page", page.URL).
				Str("url", candidate.URL).
				Str("reason", result.Reason).
				Msg("Candidate skipped")
		}
	}

	return nil
}

// fetchExternal downloads one script body. The configured inter-download
// delay applies between fetches, so the first fetch on a page starts
// immediately.
func (o *Orchestrator) fetchExternal(ctx context.Context, rawURL string, wait bool) ([]byte, error) {
	if delay := o.config.FetcherConfig.DownloadDelayMs; wait && delay > 0 {
		select {
		case <-time.After(time.Duration(delay) * time.Millisecond):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return o.fetcher.Fetch(ctx, rawURL)
}
