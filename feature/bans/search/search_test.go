package search

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"banledger/feature/bans/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestIndex(t *testing.T) *Index {
	t.Helper()
	ix, err := Open(filepath.Join(t.TempDir(), "index"), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, ix.Close())
	})
	return ix
}

func indexedBan(uid int64, name, reason string) model.Ban {
	enacted := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	duration := 24 * time.Hour
	return model.Ban{
		ID:          model.SteamID(76561197960265728 + uid),
		EnactedTime: &enacted,
		Duration:    &duration,
		PlayerName:  name,
		Reason:      reason,
	}
}

func asBatch(bans ...model.Ban) map[string]model.Ban {
	batch := make(map[string]model.Ban, len(bans))
	for _, ban := range bans {
		batch[model.Fingerprint(ban)] = ban
	}
	return batch
}

func TestOpen_ReportsIsNew(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "index")

	ix, err := Open(dir, zap.NewNop())
	require.NoError(t, err)
	assert.True(t, ix.IsNew())
	require.NoError(t, ix.Close())

	ix, err = Open(dir, zap.NewNop())
	require.NoError(t, err)
	assert.False(t, ix.IsNew())
	require.NoError(t, ix.Close())
}

func TestSearch_FieldsAndWildcards(t *testing.T) {
	ix := newTestIndex(t)
	require.NoError(t, ix.Index(asBatch(
		indexedBan(1, "alice", "griefing"),
		indexedBan(2, "bob", "cheating"),
		indexedBan(3, "alicia", "spam"),
	)))

	tests := []struct {
		query string
		hits  int
	}{
		{"alice", 1},
		{"name:alice", 1},
		{"name:ali*", 2},
		{"reason:cheating", 1},
		{"griefing", 1},
		{"name:zed", 0},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			res, err := ix.Search(tt.query, "")
			require.NoError(t, err)
			assert.Len(t, res.Fingerprints, tt.hits)
			assert.Equal(t, uint64(tt.hits), res.Total)
			assert.Empty(t, res.Cursor)
		})
	}
}

func TestIndex_SkipsRecordsWithNothingSearchable(t *testing.T) {
	ix := newTestIndex(t)
	require.NoError(t, ix.Index(asBatch(
		indexedBan(1, "", ""),
		indexedBan(2, "bob", ""),
	)))

	count, err := ix.index.DocCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)
}

func TestSearch_PaginatesDisjointPages(t *testing.T) {
	ix := newTestIndex(t)

	bans := make([]model.Ban, 0, 25)
	for i := int64(0); i < 25; i++ {
		bans = append(bans, indexedBan(i, fmt.Sprintf("player%02d", i), "repeated offense"))
	}
	require.NoError(t, ix.Index(asBatch(bans...)))

	seen := make(map[string]bool)
	cursor := ""
	pages := 0
	for {
		res, err := ix.Search("reason:repeated", cursor)
		require.NoError(t, err)
		assert.Equal(t, uint64(25), res.Total)
		assert.Equal(t, pages*PageSize, res.From)
		require.NotEmpty(t, res.Fingerprints)

		for _, fp := range res.Fingerprints {
			assert.False(t, seen[fp], "fingerprint repeated across pages")
			seen[fp] = true
		}
		pages++

		if res.Cursor == "" {
			break
		}
		cursor = res.Cursor
	}

	assert.Equal(t, 3, pages)
	assert.Len(t, seen, 25)
}

func TestSearch_CursorCarriesScoreAndID(t *testing.T) {
	ix := newTestIndex(t)

	bans := make([]model.Ban, 0, 15)
	for i := int64(0); i < 15; i++ {
		bans = append(bans, indexedBan(i, fmt.Sprintf("player%02d", i), "repeated offense"))
	}
	require.NoError(t, ix.Index(asBatch(bans...)))

	res, err := ix.Search("reason:repeated", "")
	require.NoError(t, err)
	require.NotEmpty(t, res.Cursor)

	// The resume token must hold the last hit's offset, score and id, all
	// printable. A placeholder instead of the score would make the resumed
	// scan skip everything.
	parts := strings.SplitN(res.Cursor, ":", 3)
	require.Len(t, parts, 3)
	assert.Equal(t, strconv.Itoa(PageSize), parts[0])
	score, err := strconv.ParseFloat(parts[1], 64)
	require.NoError(t, err)
	assert.Greater(t, score, 0.0)
	assert.Contains(t, res.Fingerprints, parts[2])

	next, err := ix.Search("reason:repeated", res.Cursor)
	require.NoError(t, err)
	assert.Len(t, next.Fingerprints, 5)
	for _, fp := range next.Fingerprints {
		assert.NotContains(t, res.Fingerprints, fp)
	}
}

func TestSearch_RejectsMalformedCursor(t *testing.T) {
	ix := newTestIndex(t)
	_, err := ix.Search("anything", "not-a-cursor")
	assert.Error(t, err)
}

func TestRebuild(t *testing.T) {
	ix := newTestIndex(t)
	require.NoError(t, ix.Index(asBatch(indexedBan(1, "stale", "old"))))

	require.NoError(t, ix.Rebuild(asBatch(
		indexedBan(2, "alice", "griefing"),
		indexedBan(3, "bob", "cheating"),
	)))

	res, err := ix.Search("name:stale", "")
	require.NoError(t, err)
	assert.Empty(t, res.Fingerprints)

	res, err = ix.Search("name:alice", "")
	require.NoError(t, err)
	assert.Len(t, res.Fingerprints, 1)
}
