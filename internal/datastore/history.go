package datastore

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"scripthound/internal/models"
)

// HistoryStore persists per-target run summaries to a local sqlite database.
type HistoryStore struct {
	db     *sql.DB
	logger zerolog.Logger
}

// RunRecord is one stored run summary.
type RunRecord struct {
	ID               int64
	Target           string
	FilterMode       string
	StartedAt        time.Time
	DurationMs       int64
	PagesVisited     int
	CandidatesSeen   int
	Kept             int
	SkippedFiltered  int
	SkippedDuplicate int
	Errors           sql.NullString
}

// NewHistoryStore opens the database at the given path, creating the file
// and schema as needed.
func NewHistoryStore(path string, logger zerolog.Logger) (*HistoryStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create history database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sql.Open failed for %s: %w", path, err)
	}

	hs := &HistoryStore{
		db:     db,
		logger: logger.With().Str("component", "HistoryStore").Logger(),
	}

	if err := hs.initSchema(); err != nil {
		_ = hs.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	hs.logger.Debug().Str("path", path).Msg("History database opened")
	return hs, nil
}

// Close closes the database connection.
func (hs *HistoryStore) Close() error {
	if hs.db != nil {
		return hs.db.Close()
	}
	return nil
}

func (hs *HistoryStore) initSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS run_history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		target TEXT NOT NULL,
		filter_mode TEXT NOT NULL,
		started_at DATETIME NOT NULL,
		duration_ms INTEGER NOT NULL,
		pages_visited INTEGER NOT NULL,
		candidates_seen INTEGER NOT NULL,
		kept INTEGER NOT NULL,
		skipped_filtered INTEGER NOT NULL,
		skipped_duplicate INTEGER NOT NULL,
		errors TEXT
	);
	`
	if _, err := hs.db.Exec(query); err != nil {
		return err
	}
	return nil
}

// Record inserts one target summary.
func (hs *HistoryStore) Record(summary *models.TargetSummary) error {
	errText := strings.Join(summary.ErrorMessages, "\n")
	query := `INSERT INTO run_history
		(target, filter_mode, started_at, duration_ms, pages_visited, candidates_seen, kept, skipped_filtered, skipped_duplicate, errors)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := hs.db.Exec(query,
		summary.Target,
		summary.FilterMode,
		summary.StartedAt,
		summary.Duration.Milliseconds(),
		summary.PagesVisited,
		summary.CandidatesSeen,
		summary.Kept,
		summary.SkippedFiltered,
		summary.SkippedDuplicate,
		sql.NullString{String: errText, Valid: errText != ""},
	)
	if err != nil {
		return fmt.Errorf("failed to insert run record: %w", err)
	}

	hs.logger.Debug().Str("target", summary.Target).Int("kept", summary.Kept).Msg("Recorded run in history")
	return nil
}

// Recent returns up to n of the most recently started runs, newest first.
func (hs *HistoryStore) Recent(n int) ([]RunRecord, error) {
	query := `SELECT id, target, filter_mode, started_at, duration_ms,
		pages_visited, candidates_seen, kept, skipped_filtered, skipped_duplicate, errors
		FROM run_history ORDER BY started_at DESC, id DESC LIMIT ?`
	rows, err := hs.db.Query(query, n)
	if err != nil {
		return nil, fmt.Errorf("failed to query run history: %w", err)
	}
	defer rows.Close()

	var records []RunRecord
	for rows.Next() {
		var r RunRecord
		if err := rows.Scan(
			&r.ID, &r.Target, &r.FilterMode, &r.StartedAt, &r.DurationMs,
			&r.PagesVisited, &r.CandidatesSeen, &r.Kept, &r.SkippedFiltered, &r.SkippedDuplicate, &r.Errors,
		); err != nil {
			return nil, fmt.Errorf("failed to scan run record: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}
