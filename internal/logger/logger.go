package logger

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"

	"scripthound/internal/config"
)

// New creates a zerolog logger from the log configuration. Console output is
// always enabled; when LogFile is set, a rotating file sink is added next to
// it (this is how the per-run verbose.log is produced).
func New(cfg config.LogConfig) (zerolog.Logger, error) {
	level, err := parseLevel(cfg.LogLevel)
	if err != nil {
		return zerolog.Logger{}, err
	}

	writers := []io.Writer{consoleWriter(cfg.LogFormat, os.Stderr, false)}

	if cfg.LogFile != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0o755); err != nil {
			return zerolog.Logger{}, err
		}
		fileSink := &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    cfg.MaxLogSizeMB,
			MaxBackups: cfg.MaxLogBackups,
			LocalTime:  true,
		}
		writers = append(writers, fileWriter(cfg.LogFormat, fileSink))
	}

	logger := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(level).
		With().
		Timestamp().
		Logger()
	return logger, nil
}

func parseLevel(level string) (zerolog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "":
		return zerolog.InfoLevel, nil
	default:
		return zerolog.ParseLevel(strings.ToLower(level))
	}
}

func consoleWriter(format string, out io.Writer, noColor bool) io.Writer {
	if strings.EqualFold(format, "json") {
		return out
	}
	return zerolog.ConsoleWriter{
		Out:        out,
		NoColor:    noColor,
		TimeFormat: time.RFC3339,
	}
}

// fileWriter renders file output without color codes regardless of format.
func fileWriter(format string, sink io.Writer) io.Writer {
	if strings.EqualFold(format, "json") {
		return sink
	}
	return zerolog.ConsoleWriter{
		Out:        sink,
		NoColor:    true,
		TimeFormat: time.RFC3339,
	}
}
