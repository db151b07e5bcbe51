package urlhandler

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// ReadURLsFromFile reads a URL-list file: one URL per line, blank lines and
// '#' comments are skipped, invalid lines are logged and dropped. An error is
// returned only when the file itself cannot be read or contains no usable URL.
func ReadURLsFromFile(filePath string, logger zerolog.Logger) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open URL file '%s': %w", filePath, err)
	}
	defer file.Close()

	var urls []string
	scanner := bufio.NewScanner(file)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if err := ValidateURLFormat(line); err != nil {
			logger.Warn().
				Str("file", filePath).
				Int("line", lineNo).
				Err(err).
				Msg("Skipping invalid URL in list file")
			continue
		}
		urls = append(urls, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read URL file '%s': %w", filePath, err)
	}
	if len(urls) == 0 {
		return nil, fmt.Errorf("no valid URLs found in '%s'", filePath)
	}
	return urls, nil
}
