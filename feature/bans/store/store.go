package store

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"banledger/feature/bans/model"

	badger "github.com/dgraph-io/badger/v4"
	"go.uber.org/zap"
)

// Indexer receives newly observed bans keyed by content fingerprint.
// Implemented by the search index; failures are logged by the store and
// never abort a ledger transaction.
type Indexer interface {
	Index(bans map[string]model.Ban) error
}

// NameResolver resolves a display name for an identity, best effort.
// It is called inside the reconciliation transaction and must be fast and
// non-blocking; returning ok=false leaves the name empty.
type NameResolver func(ctx context.Context, id model.SteamID) (string, bool)

// Store is the transactional ban ledger. It owns all mutable state:
// the current-ban set, the append-only history log, the offline-ban
// overlay, the indexed-fingerprint set, mentions and channel watermarks.
//
// Writers are serialized; readers run on badger snapshots and never block.
type Store struct {
	db     *badger.DB
	dir    string
	logger *zap.Logger

	indexer     Indexer
	resolveName NameResolver

	// Serializes write transactions. Badger detects conflicts instead of
	// blocking, so without this two concurrent writers could abort each
	// other; the ledger is single-writer anyway.
	writeMu sync.Mutex
}

// OptionFunc configures a Store.
type OptionFunc func(*Store)

// WithLogger specifies the logger for store messages.
func WithLogger(logger *zap.Logger) OptionFunc {
	return func(s *Store) {
		s.logger = logger
	}
}

// WithIndexer attaches the search index fed by reconciliation.
func WithIndexer(ix Indexer) OptionFunc {
	return func(s *Store) {
		s.indexer = ix
	}
}

// WithNameResolver attaches the best-effort display-name resolver used
// when converting broken legacy bans to offline bans.
func WithNameResolver(r NameResolver) OptionFunc {
	return func(s *Store) {
		s.resolveName = r
	}
}

// Open opens (or creates) the ledger under dir.
func Open(dir string, opts ...OptionFunc) (*Store, error) {
	s := &Store{
		dir:    dir,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	badgerOpts := badger.DefaultOptions(filepath.Join(dir, "badger")).
		WithLogger(badgerLogger{s.logger.Sugar()})

	db, err := badger.Open(badgerOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to open ban ledger at %s: %w", dir, err)
	}
	s.db = db
	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Dir returns the directory the store lives in.
func (s *Store) Dir() string {
	return s.dir
}

// update runs fn as the single serialized write transaction.
func (s *Store) update(fn func(txn *badger.Txn) error) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.db.Update(fn)
}

// CurrentBans returns the active-ban set, ordered by identity.
func (s *Store) CurrentBans() ([]model.Ban, error) {
	var bans []model.Ban
	err := s.db.View(func(txn *badger.Txn) error {
		return iteratePrefix(txn, prefixCurrent, func(_ []byte, value []byte) error {
			var ban model.Ban
			if err := json.Unmarshal(value, &ban); err != nil {
				return err
			}
			bans = append(bans, ban)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(bans, func(i, j int) bool { return bans[i].ID < bans[j].ID })
	return bans, nil
}

// OfflineBans returns the staged offline bans, ordered by identity.
func (s *Store) OfflineBans() ([]model.OfflineBan, error) {
	var bans []model.OfflineBan
	err := s.db.View(func(txn *badger.Txn) error {
		return iteratePrefix(txn, prefixOffline, func(_ []byte, value []byte) error {
			var ban model.OfflineBan
			if err := json.Unmarshal(value, &ban); err != nil {
				return err
			}
			bans = append(bans, ban)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(bans, func(i, j int) bool { return bans[i].ID < bans[j].ID })
	return bans, nil
}

// AddOfflineBan stages an offline ban. Without force it fails when one
// already exists for the identity; with force it replaces it. Returns
// whether a write occurred.
func (s *Store) AddOfflineBan(ban model.OfflineBan, force bool) (bool, error) {
	written := false
	err := s.update(func(txn *badger.Txn) error {
		written = false
		key := offlineKey(ban.ID)
		if !force {
			if _, err := txn.Get(key); err == nil {
				return nil
			} else if err != badger.ErrKeyNotFound {
				return err
			}
		}
		value, err := json.Marshal(ban)
		if err != nil {
			return err
		}
		if err := txn.Set(key, value); err != nil {
			return err
		}
		written = true
		return nil
	})
	return written, err
}

// RemoveOfflineBan deletes the staged ban for id, reporting whether one
// existed.
func (s *Store) RemoveOfflineBan(id model.SteamID) (bool, error) {
	deleted := false
	err := s.update(func(txn *badger.Txn) error {
		deleted = false
		key := offlineKey(id)
		if _, err := txn.Get(key); err == badger.ErrKeyNotFound {
			return nil
		} else if err != nil {
			return err
		}
		if err := txn.Delete(key); err != nil {
			return err
		}
		deleted = true
		return nil
	})
	return deleted, err
}

// LastSync returns the completion time of the most recent reconciliation.
func (s *Store) LastSync() (time.Time, bool, error) {
	var (
		at time.Time
		ok bool
	)
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyLastSync))
		if err == badger.ErrKeyNotFound {
			return nil
		} else if err != nil {
			return err
		}
		return item.Value(func(value []byte) error {
			t, err := time.Parse(time.RFC3339Nano, string(value))
			if err != nil {
				return fmt.Errorf("corrupt last-sync timestamp: %w", err)
			}
			at, ok = t, true
			return nil
		})
	})
	return at, ok, err
}

// History returns all ledger entries for one identity, oldest first.
func (s *Store) History(id model.SteamID) ([]model.LogEntry, error) {
	var entries []model.LogEntry
	err := s.db.View(func(txn *badger.Txn) error {
		return iteratePrefix(txn, playerLogPrefix(id), func(_ []byte, value []byte) error {
			var entry model.LogEntry
			if err := json.Unmarshal(value, &entry); err != nil {
				return err
			}
			entries = append(entries, entry)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// HistoryRange returns ledger entries detected between from (inclusive)
// and to (exclusive), oldest first.
func (s *Store) HistoryRange(from, to time.Time) ([]model.LogEntry, error) {
	var entries []model.LogEntry
	err := s.db.View(func(txn *badger.Txn) error {
		return iterateLogRange(txn, from, to, func(value []byte) error {
			var entry model.LogEntry
			if err := json.Unmarshal(value, &entry); err != nil {
				return err
			}
			entries = append(entries, entry)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// BansByFingerprint resolves indexed fingerprints back to ban records.
// Fingerprints with no backing record (a stale index) are skipped.
func (s *Store) BansByFingerprint(fingerprints []string) ([]model.Ban, error) {
	var bans []model.Ban
	err := s.db.View(func(txn *badger.Txn) error {
		for _, fp := range fingerprints {
			item, err := txn.Get(uniqueKey(fp))
			if err == badger.ErrKeyNotFound {
				s.logger.Warn("Indexed ban missing from ledger", zap.String("fingerprint", fp))
				continue
			} else if err != nil {
				return err
			}
			var ban model.Ban
			if err := item.Value(func(value []byte) error {
				return json.Unmarshal(value, &ban)
			}); err != nil {
				return err
			}
			bans = append(bans, ban)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return bans, nil
}

// RebuildUniqueBans rebuilds the indexed-fingerprint set from the entire
// ledger history (add entries only, deduplicated) and returns it, keyed by
// fingerprint. Used to rebuild the search index from scratch.
func (s *Store) RebuildUniqueBans() (map[string]model.Ban, error) {
	unique := make(map[string]model.Ban)
	err := s.update(func(txn *badger.Txn) error {
		clear(unique)

		if err := deletePrefix(txn, prefixUnique); err != nil {
			return err
		}

		err := iteratePrefix(txn, prefixLog, func(_ []byte, value []byte) error {
			var entry model.LogEntry
			if err := json.Unmarshal(value, &entry); err != nil {
				return err
			}
			if entry.Action != model.ActionAdd {
				return nil
			}
			unique[model.Fingerprint(entry.Ban)] = entry.Ban
			return nil
		})
		if err != nil {
			return err
		}

		for fp, ban := range unique {
			value, err := json.Marshal(ban)
			if err != nil {
				return err
			}
			if err := txn.Set(uniqueKey(fp), value); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return unique, nil
}
