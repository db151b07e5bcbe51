package archiver

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"scripthound/internal/config"
	"scripthound/internal/models"
	"scripthound/internal/urlhandler"
)

// Archiver persists kept scripts as numbered, collision-free artifacts under
// outputRoot/domain/filterMode/. One instance is shared by all targets; the
// per-scope indexes make concurrent archiving safe.
type Archiver struct {
	outputRoot       string
	hashPrefixLength int
	registry         *indexRegistry
	logger           zerolog.Logger
}

// New creates an Archiver rooted at cfg.OutputRoot. The output root is
// created (and optionally purged first) here; failure is a setup error that
// should abort the run.
func New(cfg config.ArchiveConfig, logger zerolog.Logger) (*Archiver, error) {
	if cfg.ClearBeforeRun {
		if err := os.RemoveAll(cfg.OutputRoot); err != nil {
			return nil, fmt.Errorf("failed to clear output root '%s': %w", cfg.OutputRoot, err)
		}
		logger.Info().Str("output_root", cfg.OutputRoot).Msg("Cleared output root")
	}
	if err := os.MkdirAll(cfg.OutputRoot, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create output root '%s': %w", cfg.OutputRoot, err)
	}

	prefixLen := cfg.HashPrefixLength
	if prefixLen <= 0 {
		prefixLen = config.DefaultHashPrefixLength
	}

	return &Archiver{
		outputRoot:       cfg.OutputRoot,
		hashPrefixLength: prefixLen,
		registry:         newIndexRegistry(),
		logger:           logger.With().Str("component", "Archiver").Logger(),
	}, nil
}

// OutputRoot returns the archive root directory.
func (a *Archiver) OutputRoot() string {
	return a.outputRoot
}

// ScopeDir returns the artifact directory for a (domain, filterMode) scope.
func (a *Archiver) ScopeDir(domain, filterMode string) string {
	return filepath.Join(a.outputRoot, urlhandler.SanitizeFilename(domain), filterMode)
}

// Archive writes a script into its scope unless a byte-identical script was
// already archived there. Sequence assignment, the dedup check, and the file
// write happen under the scope index lock: a race can never produce two
// artifacts with the same sequence index, nor two with the same fingerprint.
func (a *Archiver) Archive(script []byte, kind models.ArtifactKind, domain, filterMode string) (models.ArchiveResult, error) {
	fingerprint := ComputeFingerprint(script)
	dir := a.ScopeDir(domain, filterMode)

	idx := a.registry.get(dir)
	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.hydrate(a.logger)

	if _, dup := idx.seen[fingerprint]; dup {
		return models.ArchiveResult{
			Status: models.ArchiveSkipped,
			Reason: models.ReasonDuplicate,
		}, nil
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return models.ArchiveResult{}, fmt.Errorf("failed to create scope directory '%s': %w", dir, err)
	}

	seq := idx.lastSeq + 1
	filename := fmt.Sprintf("%d_%s_%s_%s.js",
		seq,
		urlhandler.SanitizeFilename(domain),
		kind,
		fingerprint.Prefix(a.hashPrefixLength),
	)
	path := filepath.Join(dir, filename)

	if err := os.WriteFile(path, script, 0o600); err != nil {
		// Neither the counter nor the dedup set advance on a failed write,
		// so sequence indices of Written results stay contiguous.
		return models.ArchiveResult{}, fmt.Errorf("failed to write artifact '%s': %w", path, err)
	}

	idx.lastSeq = seq
	idx.seen[fingerprint] = struct{}{}

	return models.ArchiveResult{
		Status: models.ArchiveWritten,
		Path:   path,
		Seq:    seq,
	}, nil
}
