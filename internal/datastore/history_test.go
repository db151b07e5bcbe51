package datastore

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scripthound/internal/models"
)

func newTestStore(t *testing.T) *HistoryStore {
	t.Helper()
	hs, err := NewHistoryStore(filepath.Join(t.TempDir(), "history.db"), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = hs.Close() })
	return hs
}

func TestHistoryStore_RecordAndRecent(t *testing.T) {
	hs := newTestStore(t)

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	for i, target := range []string{"https://a.com", "https://b.com", "https://c.com"} {
		summary := &models.TargetSummary{
			Target:           target,
			FilterMode:       "strict",
			StartedAt:        base.Add(time.Duration(i) * time.Minute),
			Duration:         3 * time.Second,
			PagesVisited:     1 + i,
			CandidatesSeen:   10,
			Kept:             4,
			SkippedFiltered:  5,
			SkippedDuplicate: 1,
		}
		require.NoError(t, hs.Record(summary))
	}

	records, err := hs.Recent(2)
	require.NoError(t, err)
	require.Len(t, records, 2)

	// Newest first.
	assert.Equal(t, "https://c.com", records[0].Target)
	assert.Equal(t, "https://b.com", records[1].Target)
	assert.Equal(t, 4, records[0].Kept)
	assert.Equal(t, int64(3000), records[0].DurationMs)
	assert.False(t, records[0].Errors.Valid)
}

func TestHistoryStore_RecordsErrors(t *testing.T) {
	hs := newTestStore(t)

	summary := &models.TargetSummary{
		Target:     "https://a.com",
		FilterMode: "relaxed",
		StartedAt:  time.Now().UTC(),
	}
	summary.AddError("fetch failed: https://a.com/app.js")
	summary.AddError("render failed: https://a.com/broken")
	require.NoError(t, hs.Record(summary))

	records, err := hs.Recent(1)
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.True(t, records[0].Errors.Valid)
	assert.Contains(t, records[0].Errors.String, "fetch failed")
	assert.Contains(t, records[0].Errors.String, "render failed")
}

func TestHistoryStore_RecentOnEmptyStore(t *testing.T) {
	hs := newTestStore(t)
	records, err := hs.Recent(10)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestHistoryStore_ReopenKeepsRows(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "history.db")

	hs, err := NewHistoryStore(path, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, hs.Record(&models.TargetSummary{
		Target:     "https://a.com",
		FilterMode: "strict",
		StartedAt:  time.Now().UTC(),
	}))
	require.NoError(t, hs.Close())

	reopened, err := NewHistoryStore(path, zerolog.Nop())
	require.NoError(t, err)
	defer reopened.Close()

	records, err := reopened.Recent(10)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}
