package search

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"banledger/feature/bans/model"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"
	"go.uber.org/zap"
)

// PageSize is the number of hits per search page.
const PageSize = 10

// Result is one page of hits. Fingerprints resolve to ban records through
// the ledger; From is the page's offset into the full result set and
// Cursor is empty on the last page.
type Result struct {
	Fingerprints []string
	Total        uint64
	From         int
	Cursor       string
}

// Index is the full-text search index over ban names and reasons.
type Index struct {
	index  bleve.Index
	dir    string
	logger *zap.Logger
	isNew  bool
}

type banDoc struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// Open opens the index at dir, creating it when none exists yet. IsNew
// reports which happened, so the caller knows to rebuild from the ledger.
func Open(dir string, logger *zap.Logger) (*Index, error) {
	ix := &Index{dir: dir, logger: logger}

	index, err := bleve.Open(dir)
	switch err {
	case nil:
		ix.index = index
	case bleve.ErrorIndexPathDoesNotExist:
		index, err = bleve.New(dir, buildMapping())
		if err != nil {
			return nil, fmt.Errorf("failed to create search index at %s: %w", dir, err)
		}
		ix.index = index
		ix.isNew = true
	default:
		return nil, fmt.Errorf("failed to open search index at %s: %w", dir, err)
	}
	return ix, nil
}

func buildMapping() mapping.IndexMapping {
	doc := bleve.NewDocumentMapping()
	doc.AddFieldMappingsAt("name", bleve.NewTextFieldMapping())
	doc.AddFieldMappingsAt("reason", bleve.NewTextFieldMapping())

	m := bleve.NewIndexMapping()
	m.DefaultMapping = doc
	return m
}

// IsNew reports whether Open created a fresh index.
func (ix *Index) IsNew() bool {
	return ix.isNew
}

// Close closes the index.
func (ix *Index) Close() error {
	return ix.index.Close()
}

// Index upserts bans keyed by fingerprint. Records with neither a name nor
// a reason carry nothing searchable and are skipped.
func (ix *Index) Index(bans map[string]model.Ban) error {
	batch := ix.index.NewBatch()
	for fp, ban := range bans {
		if ban.PlayerName == "" && ban.Reason == "" {
			continue
		}
		err := batch.Index(fp, banDoc{Name: ban.PlayerName, Reason: ban.Reason})
		if err != nil {
			return fmt.Errorf("failed to stage ban for indexing: %w", err)
		}
	}
	if batch.Size() == 0 {
		return nil
	}
	if err := ix.index.Batch(batch); err != nil {
		return fmt.Errorf("failed to index bans: %w", err)
	}
	return nil
}

// Search runs a query-string query ("alice", "name:ali*", "reason:grief")
// and returns one page of fingerprints. Pass the previous Result's Cursor
// as after to fetch the next page.
func (ix *Index) Search(query, after string) (Result, error) {
	req := bleve.NewSearchRequestOptions(bleve.NewQueryStringQuery(query), PageSize, 0, false)
	req.SortBy([]string{"-_score", "_id"})

	from := 0
	if after != "" {
		parsedFrom, sortValues, err := decodeCursor(after)
		if err != nil {
			return Result{}, err
		}
		from = parsedFrom
		req.SearchAfter = sortValues
	}

	res, err := ix.index.Search(req)
	if err != nil {
		return Result{}, fmt.Errorf("search failed: %w", err)
	}

	result := Result{Total: res.Total, From: from}
	for _, hit := range res.Hits {
		result.Fingerprints = append(result.Fingerprints, hit.ID)
	}

	next := from + len(res.Hits)
	if len(res.Hits) > 0 && uint64(next) < res.Total {
		last := res.Hits[len(res.Hits)-1]
		result.Cursor = encodeCursor(next, last.Score, last.ID)
	}
	return result, nil
}

// Rebuild discards the index and re-creates it from the given bans.
func (ix *Index) Rebuild(bans map[string]model.Ban) error {
	if err := ix.index.Close(); err != nil {
		return fmt.Errorf("failed to close search index: %w", err)
	}
	if err := os.RemoveAll(ix.dir); err != nil {
		return fmt.Errorf("failed to drop search index: %w", err)
	}
	index, err := bleve.New(ix.dir, buildMapping())
	if err != nil {
		return fmt.Errorf("failed to re-create search index: %w", err)
	}
	ix.index = index

	if err := ix.Index(bans); err != nil {
		return err
	}
	ix.logger.Info("Rebuilt search index", zap.Int("bans", len(bans)))
	return nil
}

// The cursor is "<from>:<score>:<id>" for the last hit on the page,
// matching the sort order [-_score, _id]. It is an opaque wire token to
// clients, but stable: pages requested with it stay disjoint even while
// new bans are indexed.
func encodeCursor(from int, score float64, id string) string {
	return strconv.Itoa(from) + ":" + strconv.FormatFloat(score, 'f', -1, 64) + ":" + id
}

func decodeCursor(cursor string) (int, []string, error) {
	parts := strings.SplitN(cursor, ":", 3)
	if len(parts) != 3 {
		return 0, nil, fmt.Errorf("malformed search cursor %q", cursor)
	}
	from, err := strconv.Atoi(parts[0])
	if err != nil || from < 0 {
		return 0, nil, fmt.Errorf("malformed search cursor %q", cursor)
	}
	return from, parts[1:], nil
}
