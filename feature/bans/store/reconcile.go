package store

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"banledger/feature/bans/model"

	badger "github.com/dgraph-io/badger/v4"
	"go.uber.org/zap"
)

// ConvertedBanReason marks offline bans staged automatically for legacy
// entries that carry only a net ID.
const ConvertedBanReason = "Converted from broken legacy ban"

// convertedBanDuration is assigned to those auto-staged offline bans.
const convertedBanDuration = 7 * 24 * time.Hour

// Stats summarizes one reconciliation.
type Stats struct {
	Added   int
	Removed int
}

// StoreBans reconciles a snapshot of the server's active bans against the
// ledger in one transaction. Bans absent from the snapshot are logged as
// removed and dropped from the current set; new bans are logged as added;
// a ban whose enactment time or duration changed is logged as a removal
// followed by an addition. Feeding the same snapshot twice writes nothing.
//
// Unless historic, the offline-ban overlay is reconciled too: staged bans
// superseded by a live ban are deleted, and legacy net-ID-only entries get
// a replacement offline ban staged for them. Historic replays skip the
// overlay so that old snapshots cannot disturb present operator state.
func (s *Store) StoreBans(ctx context.Context, now time.Time, bans []model.Ban, historic bool) (Stats, error) {
	snapshot := mergeSnapshot(bans, s.logger)

	var (
		stats   Stats
		indexed map[string]model.Ban
	)
	err := s.update(func(txn *badger.Txn) error {
		stats = Stats{}
		indexed = make(map[string]model.Ban)

		seq, err := readLogSeq(txn)
		if err != nil {
			return err
		}

		// Bans in the ledger but not in the snapshot were lifted on the
		// server.
		var lifted []model.Ban
		err = iteratePrefix(txn, prefixCurrent, func(_ []byte, value []byte) error {
			var ban model.Ban
			if err := json.Unmarshal(value, &ban); err != nil {
				return err
			}
			if _, ok := snapshot[ban.ID]; !ok {
				lifted = append(lifted, ban)
			}
			return nil
		})
		if err != nil {
			return err
		}
		for _, ban := range lifted {
			if err := s.appendEntry(txn, &seq, model.LogEntry{DetectedAt: now, Action: model.ActionRemove, Ban: ban}); err != nil {
				return err
			}
			if err := txn.Delete(currentKey(ban.ID)); err != nil {
				return err
			}
			stats.Removed++
		}

		for _, ban := range sortedBans(snapshot) {
			key := currentKey(ban.ID)
			item, err := txn.Get(key)
			if err == nil {
				var existing model.Ban
				if err := item.Value(func(value []byte) error {
					return json.Unmarshal(value, &existing)
				}); err != nil {
					return err
				}
				if existing.Same(ban) {
					continue
				}
				if err := s.appendEntry(txn, &seq, model.LogEntry{DetectedAt: now, Action: model.ActionRemove, Ban: existing}); err != nil {
					return err
				}
				stats.Removed++
			} else if err != badger.ErrKeyNotFound {
				return err
			}

			if err := s.appendEntry(txn, &seq, model.LogEntry{DetectedAt: now, Action: model.ActionAdd, Ban: ban}); err != nil {
				return err
			}
			value, err := json.Marshal(ban)
			if err != nil {
				return err
			}
			if err := txn.Set(key, value); err != nil {
				return err
			}
			stats.Added++

			fp := model.Fingerprint(ban)
			if _, err := txn.Get(uniqueKey(fp)); err == badger.ErrKeyNotFound {
				if err := txn.Set(uniqueKey(fp), value); err != nil {
					return err
				}
				indexed[fp] = ban
			} else if err != nil {
				return err
			}
		}

		if !historic {
			if err := s.reconcileOffline(ctx, txn, now, snapshot); err != nil {
				return err
			}
		}

		if err := writeLogSeq(txn, seq); err != nil {
			return err
		}
		return txn.Set([]byte(keyLastSync), []byte(now.UTC().Format(time.RFC3339Nano)))
	})
	if err != nil {
		return Stats{}, err
	}

	if len(indexed) > 0 && s.indexer != nil {
		if err := s.indexer.Index(indexed); err != nil {
			s.logger.Warn("Failed to index new bans", zap.Error(err))
		}
	}
	return stats, nil
}

func (s *Store) appendEntry(txn *badger.Txn, seq *uint64, entry model.LogEntry) error {
	value, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	*seq++
	if err := txn.Set(logKey(entry.DetectedAt, *seq), value); err != nil {
		return err
	}
	return txn.Set(playerLogKey(entry.Ban.ID, entry.DetectedAt, *seq), value)
}

func (s *Store) reconcileOffline(ctx context.Context, txn *badger.Txn, now time.Time, snapshot map[model.SteamID]model.Ban) error {
	staged := make(map[model.SteamID]model.OfflineBan)
	err := iteratePrefix(txn, prefixOffline, func(_ []byte, value []byte) error {
		var ob model.OfflineBan
		if err := json.Unmarshal(value, &ob); err != nil {
			return err
		}
		staged[ob.ID] = ob
		return nil
	})
	if err != nil {
		return err
	}

	// A live ban with full identity and at least the staged duration makes
	// the staged ban redundant.
	for id, ob := range staged {
		ban, ok := snapshot[id]
		if !ok || ban.IsNetIDBan() {
			continue
		}
		if model.CompareDurations(ban.Duration, ob.Duration) >= 0 {
			if err := txn.Delete(offlineKey(id)); err != nil {
				return err
			}
			delete(staged, id)
			s.logger.Info("Dropped offline ban superseded by live ban",
				zap.String("player", id.String()))
		}
	}

	// The server does not enforce net-ID-only entries against offline
	// players, so each one gets a staged replacement.
	for id, ban := range snapshot {
		if !ban.IsNetIDBan() {
			continue
		}
		if _, ok := staged[id]; ok {
			continue
		}
		var name string
		if s.resolveName != nil {
			if resolved, ok := s.resolveName(ctx, id); ok {
				name = resolved
			}
		}
		duration := convertedBanDuration
		enacted := now
		converted := model.OfflineBan{
			ID:          id,
			EnactedTime: &enacted,
			Duration:    &duration,
			PlayerName:  name,
			Reason:      ConvertedBanReason,
		}
		value, err := json.Marshal(converted)
		if err != nil {
			return err
		}
		if err := txn.Set(offlineKey(id), value); err != nil {
			return err
		}
		s.logger.Info("Staged offline ban for legacy net-ID entry",
			zap.String("player", id.String()))
	}
	return nil
}

// mergeSnapshot collapses duplicate snapshot entries per identity, keeping
// the ban that stays in force longer. Ties keep the first occurrence.
func mergeSnapshot(bans []model.Ban, logger *zap.Logger) map[model.SteamID]model.Ban {
	merged := make(map[model.SteamID]model.Ban, len(bans))
	for _, ban := range bans {
		existing, ok := merged[ban.ID]
		if !ok {
			merged[ban.ID] = ban
			continue
		}
		if existing.Same(ban) {
			logger.Info("Duplicate ban entry in snapshot", zap.String("player", ban.ID.String()))
		} else {
			logger.Warn("Conflicting duplicate ban entries in snapshot",
				zap.String("player", ban.ID.String()),
				zap.Time("first_until", existing.BannedUntil()),
				zap.Time("second_until", ban.BannedUntil()))
		}
		if ban.BannedUntil().After(existing.BannedUntil()) {
			merged[ban.ID] = ban
		}
	}
	return merged
}

func sortedBans(snapshot map[model.SteamID]model.Ban) []model.Ban {
	bans := make([]model.Ban, 0, len(snapshot))
	for _, ban := range snapshot {
		bans = append(bans, ban)
	}
	sort.Slice(bans, func(i, j int) bool { return bans[i].ID < bans[j].ID })
	return bans
}
