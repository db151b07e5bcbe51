package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"scripthound/internal/archiver"
	"scripthound/internal/browser"
	"scripthound/internal/collector"
	"scripthound/internal/config"
	"scripthound/internal/crawler"
	"scripthound/internal/datastore"
	"scripthound/internal/filter"
	"scripthound/internal/httpclient"
	"scripthound/internal/logger"
	"scripthound/internal/orchestrator"
	"scripthound/internal/urlhandler"
)

func main() {
	flags := ParseFlags()

	gCfg, err := config.LoadGlobalConfig(flags.ConfigFile)
	if err != nil {
		log.Fatalf("[FATAL] Could not load config using path '%s': %v", flags.ConfigFile, err)
	}

	applyFlagOverrides(gCfg, flags)

	// The output root must be cleared before the logger opens a file sink
	// under it, or the sink writes to a deleted file.
	if err := prepareOutputRoot(gCfg); err != nil {
		log.Fatalf("[FATAL] Could not clear output root '%s': %v", gCfg.ArchiveConfig.OutputRoot, err)
	}

	zLogger, err := logger.New(gCfg.LogConfig)
	if err != nil {
		log.Fatalf("[FATAL] Could not initialize logger: %v", err)
	}

	if err := config.ValidateConfig(gCfg); err != nil {
		zLogger.Fatal().Err(err).Msg("Configuration validation failed")
	}

	historyPath := filepath.Join(gCfg.ArchiveConfig.OutputRoot, config.HistoryDBFilename)

	if flags.History {
		if err := printHistory(historyPath, zLogger); err != nil {
			zLogger.Fatal().Err(err).Msg("Could not read run history")
		}
		return
	}

	targets, err := resolveTargets(flags, zLogger)
	if err != nil {
		zLogger.Fatal().Err(err).Msg("No usable targets")
	}

	arch, err := archiver.New(gCfg.ArchiveConfig, zLogger)
	if err != nil {
		zLogger.Fatal().Err(err).Str("output_root", gCfg.ArchiveConfig.OutputRoot).Msg("Could not prepare output root")
	}

	eng, err := filter.NewEngine(gCfg.FilterConfig, zLogger)
	if err != nil {
		zLogger.Fatal().Err(err).Msg("Could not build filter engine")
	}

	fetcher, err := httpclient.NewClient(gCfg.FetcherConfig, zLogger)
	if err != nil {
		zLogger.Fatal().Err(err).Msg("Could not build HTTP client")
	}

	coll := collector.NewCollector(gCfg.FetcherConfig.IncludeCrossOrigin, zLogger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		zLogger.Warn().Str("signal", sig.String()).Msg("Shutdown signal received, finishing up")
		cancel()
	}()

	traverser := buildTraverser(gCfg, coll, zLogger)
	if mgr, ok := traverser.(interface{ Stop() }); ok {
		defer mgr.Stop()
	}

	var history *datastore.HistoryStore
	if gCfg.ArchiveConfig.HistoryEnabled {
		history, err = datastore.NewHistoryStore(historyPath, zLogger)
		if err != nil {
			zLogger.Warn().Err(err).Msg("Run history unavailable, continuing without it")
			history = nil
		} else {
			defer history.Close()
		}
	}

	orch := orchestrator.New(gCfg, traverser, coll, fetcher, eng, arch, history, zLogger)
	summaries, runErr := orch.Run(ctx, targets)

	for _, s := range summaries {
		if s == nil {
			continue
		}
		fmt.Printf("%s: %d pages, %d candidates, %d kept, %d filtered, %d duplicate, %d errors (%s)\n",
			s.Target, s.PagesVisited, s.CandidatesSeen, s.Kept,
			s.SkippedFiltered, s.SkippedDuplicate, s.Errors(),
			s.Duration.Round(time.Millisecond))
	}

	if runErr != nil {
		zLogger.Warn().Err(runErr).Msg("Run interrupted")
	}
}

// browserTraverser couples a crawl scheduler to the browser pool whose
// lifetime it owns.
type browserTraverser struct {
	*crawler.Scheduler
	manager *browser.Manager
}

func (bt *browserTraverser) Stop() {
	bt.manager.Stop()
}

func buildTraverser(gCfg *config.GlobalConfig, coll *collector.Collector, zLogger zerolog.Logger) orchestrator.Traverser {
	static := crawler.NewStaticCrawler(gCfg.CrawlerConfig, gCfg.FetcherConfig, zLogger)

	if !gCfg.BrowserConfig.Enabled {
		zLogger.Info().Msg("Using static crawl mode")
		return static
	}

	manager := browser.NewManager(gCfg.BrowserConfig, gCfg.FetcherConfig.UserAgent, zLogger)
	if err := manager.Start(); err != nil {
		zLogger.Warn().Err(err).Msg("Headless browser unavailable, falling back to static crawl mode")
		return static
	}

	return &browserTraverser{
		Scheduler: crawler.NewScheduler(manager, coll, gCfg.CrawlerConfig, zLogger),
		manager:   manager,
	}
}

// resolveTargets merges the positional target with the -url-file list.
// Malformed URLs are skipped; having zero usable targets is fatal.
func resolveTargets(flags AppFlags, zLogger zerolog.Logger) ([]string, error) {
	var targets []string

	if flags.Target != "" {
		if err := urlhandler.ValidateURLFormat(flags.Target); err != nil {
			zLogger.Warn().Str("url", flags.Target).Err(err).Msg("Skipping malformed target URL")
		} else {
			targets = append(targets, flags.Target)
		}
	}

	if flags.URLFile != "" {
		fromFile, err := urlhandler.ReadURLsFromFile(flags.URLFile, zLogger)
		if err != nil {
			if len(targets) == 0 {
				return nil, err
			}
			zLogger.Warn().Str("file", flags.URLFile).Err(err).Msg("Could not read URL file, continuing with remaining targets")
		}
		targets = append(targets, fromFile...)
	}

	if len(targets) == 0 {
		return nil, fmt.Errorf("no target URL given: pass a target argument or -url-file")
	}
	return targets, nil
}

func applyFlagOverrides(gCfg *config.GlobalConfig, flags AppFlags) {
	if flags.Output != "" {
		gCfg.ArchiveConfig.OutputRoot = flags.Output
	}
	if flags.Clear {
		gCfg.ArchiveConfig.ClearBeforeRun = true
	}
	if flags.FilterMode != "" {
		gCfg.FilterConfig.Mode = flags.FilterMode
	}
	if flags.MinSize >= 0 {
		gCfg.FilterConfig.MinSizeBytes = flags.MinSize
	}
	if flags.Crawl {
		gCfg.CrawlerConfig.CrawlEnabled = true
	}
	if flags.MaxDepth >= 0 {
		gCfg.CrawlerConfig.MaxDepth = flags.MaxDepth
	}
	if flags.CrossOrigin {
		gCfg.FetcherConfig.IncludeCrossOrigin = true
	}
	if flags.TimeoutSecs > 0 {
		gCfg.FetcherConfig.TimeoutSecs = flags.TimeoutSecs
		gCfg.CrawlerConfig.PageTimeoutSecs = flags.TimeoutSecs
	}
	if flags.DelaySecs >= 0 {
		gCfg.FetcherConfig.DownloadDelayMs = int(flags.DelaySecs * 1000)
	}
	if flags.Static {
		gCfg.BrowserConfig.Enabled = false
	}
	if flags.Verbose {
		gCfg.LogConfig.LogLevel = "debug"
		if gCfg.LogConfig.LogFile == "" {
			gCfg.LogConfig.LogFile = filepath.Join(gCfg.ArchiveConfig.OutputRoot, config.VerboseLogFilename)
		}
	}
}

// prepareOutputRoot removes the output root when a clear was requested and
// marks the clear as done so later setup does not repeat it.
func prepareOutputRoot(gCfg *config.GlobalConfig) error {
	if !gCfg.ArchiveConfig.ClearBeforeRun {
		return nil
	}
	if err := os.RemoveAll(gCfg.ArchiveConfig.OutputRoot); err != nil {
		return err
	}
	gCfg.ArchiveConfig.ClearBeforeRun = false
	return nil
}

func printHistory(path string, zLogger zerolog.Logger) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("no run history at %s: %w", path, err)
	}

	store, err := datastore.NewHistoryStore(path, zLogger)
	if err != nil {
		return err
	}
	defer store.Close()

	records, err := store.Recent(20)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Println("No runs recorded yet.")
		return nil
	}

	for _, r := range records {
		fmt.Printf("%s  %-40s  mode=%-7s pages=%-3d kept=%-3d filtered=%-3d duplicate=%-3d errors=%v\n",
			r.StartedAt.Format(time.RFC3339), r.Target, r.FilterMode,
			r.PagesVisited, r.Kept, r.SkippedFiltered, r.SkippedDuplicate, r.Errors.Valid)
	}
	return nil
}
