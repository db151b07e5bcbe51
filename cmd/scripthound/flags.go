package main

import (
	"flag"
)

// AppFlags holds the parsed command line. Unset numeric flags keep the -1
// sentinel so config file values survive.
type AppFlags struct {
	URLFile     string
	Output      string
	ConfigFile  string
	FilterMode  string
	MinSize     int
	Crawl       bool
	MaxDepth    int
	CrossOrigin bool
	Clear       bool
	TimeoutSecs int
	DelaySecs   float64
	Verbose     bool
	Static      bool
	History     bool
	Target      string
}

func ParseFlags() AppFlags {
	urlFile := flag.String("url-file", "", "Path to a text file with one target URL per line. Blank lines and # comments are skipped.")
	urlFileAlias := flag.String("uf", "", "Alias for -url-file")

	output := flag.String("output", "", "Output root directory for archived scripts (default scripthound-out)")
	outputAlias := flag.String("o", "", "Alias for -output")

	configFile := flag.String("config", "", "Path to the YAML/JSON configuration file. If not set, searches default locations.")

	filterMode := flag.String("filter", "", "Filter mode: strict or relaxed (default strict)")
	minSize := flag.Int("min-size", -1, "Minimum script size in bytes to archive")

	crawl := flag.Bool("crawl", false, "Follow same-origin links instead of processing a single page")
	maxDepth := flag.Int("max-depth", -1, "Maximum crawl depth when -crawl is set")
	crossOrigin := flag.Bool("cross-origin", false, "Also collect scripts hosted on other origins")

	clear := flag.Bool("clear", false, "Purge the output root before the run")

	timeout := flag.Int("timeout", -1, "Per-page render and per-fetch timeout in seconds")
	timeoutAlias := flag.Int("t", -1, "Alias for -timeout")

	delay := flag.Float64("delay", -1, "Delay between external script downloads in seconds")
	delayAlias := flag.Float64("r", -1, "Alias for -delay")

	verbose := flag.Bool("verbose", false, "Debug logging plus a verbose.log file under the output root")
	verboseAlias := flag.Bool("v", false, "Alias for -verbose")

	static := flag.Bool("static", false, "Force static crawl mode (no headless browser)")
	history := flag.Bool("history", false, "Print recent run history and exit")

	flag.Parse()

	flags := AppFlags{
		ConfigFile:  *configFile,
		FilterMode:  *filterMode,
		MinSize:     *minSize,
		Crawl:       *crawl,
		MaxDepth:    *maxDepth,
		CrossOrigin: *crossOrigin,
		Clear:       *clear,
		Verbose:     *verbose || *verboseAlias,
		Static:      *static,
		History:     *history,
		Target:      flag.Arg(0),
	}

	if *urlFile != "" {
		flags.URLFile = *urlFile
	} else {
		flags.URLFile = *urlFileAlias
	}

	if *output != "" {
		flags.Output = *output
	} else {
		flags.Output = *outputAlias
	}

	if *timeout >= 0 {
		flags.TimeoutSecs = *timeout
	} else {
		flags.TimeoutSecs = *timeoutAlias
	}

	if *delay >= 0 {
		flags.DelaySecs = *delay
	} else {
		flags.DelaySecs = *delayAlias
	}

	return flags
}
