package archiver

import (
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// scopeIndex tracks sequence numbering and the dedup set for one
// (domain, filterMode) scope. All mutation happens under mu so concurrent
// archive calls can never interleave a counter increment with a dedup check.
type scopeIndex struct {
	mu       sync.Mutex
	lastSeq  int
	seen     map[Fingerprint]struct{}
	dir      string
	hydrated bool
}

var artifactSeqRegex = regexp.MustCompile(`^(\d+)_`)

// hydrate rebuilds the index from artifacts already present in the scope
// directory: sequence numbering continues after the highest existing
// sequence prefix, and the dedup set is rebuilt by re-hashing stored bytes.
// Filename hash prefixes are display-only and never trusted for dedup.
// Caller holds mu.
func (si *scopeIndex) hydrate(logger zerolog.Logger) {
	if si.hydrated {
		return
	}
	si.hydrated = true

	entries, err := os.ReadDir(si.dir)
	if err != nil {
		// A missing directory is the common case for a fresh scope.
		if !os.IsNotExist(err) {
			logger.Warn().Err(err).Str("dir", si.dir).Msg("Could not scan scope directory, starting index fresh")
		}
		return
	}

	restored := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".js") {
			continue
		}
		m := artifactSeqRegex.FindStringSubmatch(entry.Name())
		if m == nil {
			continue
		}
		seq, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if seq > si.lastSeq {
			si.lastSeq = seq
		}

		data, err := os.ReadFile(filepath.Join(si.dir, entry.Name()))
		if err != nil {
			logger.Warn().Err(err).Str("file", entry.Name()).Msg("Could not re-hash existing artifact during index rehydration")
			continue
		}
		si.seen[ComputeFingerprint(data)] = struct{}{}
		restored++
	}

	if restored > 0 {
		logger.Info().
			Str("dir", si.dir).
			Int("artifacts", restored).
			Int("next_seq", si.lastSeq+1).
			Msg("Rehydrated archive index from existing artifacts")
	}
}

// indexRegistry owns one scopeIndex per (domain, filterMode) key. Indexes are
// created lazily on first artifact for their scope and live for the process
// lifetime.
type indexRegistry struct {
	mu      sync.Mutex
	indexes map[string]*scopeIndex
}

func newIndexRegistry() *indexRegistry {
	return &indexRegistry{indexes: make(map[string]*scopeIndex)}
}

func (r *indexRegistry) get(dir string) *scopeIndex {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx, ok := r.indexes[dir]
	if !ok {
		idx = &scopeIndex{
			seen: make(map[Fingerprint]struct{}),
			dir:  dir,
		}
		r.indexes[dir] = idx
	}
	return idx
}
