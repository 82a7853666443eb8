package store

import (
	"encoding/json"
	"sort"

	"banledger/feature/bans/model"

	badger "github.com/dgraph-io/badger/v4"
)

// RecordMention stores a chat mention, deduplicated per player by message
// ID. Returns whether the mention was new.
func (s *Store) RecordMention(m model.Mention) (bool, error) {
	recorded := false
	err := s.update(func(txn *badger.Txn) error {
		recorded = false
		key := mentionKey(m.PlayerID, m.MessageID)
		if _, err := txn.Get(key); err == nil {
			return nil
		} else if err != badger.ErrKeyNotFound {
			return err
		}
		value, err := json.Marshal(m)
		if err != nil {
			return err
		}
		if err := txn.Set(key, value); err != nil {
			return err
		}
		recorded = true
		return nil
	})
	return recorded, err
}

// FindMentions returns all recorded mentions of a player, oldest first.
func (s *Store) FindMentions(id model.SteamID) ([]model.Mention, error) {
	var mentions []model.Mention
	err := s.db.View(func(txn *badger.Txn) error {
		return iteratePrefix(txn, mentionPrefix(id), func(_ []byte, value []byte) error {
			var m model.Mention
			if err := json.Unmarshal(value, &m); err != nil {
				return err
			}
			mentions = append(mentions, m)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(mentions, func(i, j int) bool {
		return mentions[i].MentionedAt.Before(mentions[j].MentionedAt)
	})
	return mentions, nil
}

// Watermark returns the stored scan watermark for a channel.
func (s *Store) Watermark(channel string) (string, bool, error) {
	var (
		mark string
		ok   bool
	)
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(watermarkKey(channel))
		if err == badger.ErrKeyNotFound {
			return nil
		} else if err != nil {
			return err
		}
		return item.Value(func(value []byte) error {
			mark, ok = string(value), true
			return nil
		})
	})
	return mark, ok, err
}

// SetWatermark conditionally advances a channel's scan watermark. The
// current value (and whether one exists) is passed to isNewer inside the
// transaction; the watermark is replaced only when it returns true.
// Returns the previous value and whether the write happened.
func (s *Store) SetWatermark(channel, messageID string, isNewer func(current string, ok bool) bool) (string, bool, error) {
	var (
		previous string
		updated  bool
	)
	err := s.update(func(txn *badger.Txn) error {
		previous, updated = "", false
		key := watermarkKey(channel)

		var (
			current string
			ok      bool
		)
		item, err := txn.Get(key)
		if err == nil {
			err = item.Value(func(value []byte) error {
				current, ok = string(value), true
				return nil
			})
			if err != nil {
				return err
			}
		} else if err != badger.ErrKeyNotFound {
			return err
		}

		if !isNewer(current, ok) {
			return nil
		}
		if err := txn.Set(key, []byte(messageID)); err != nil {
			return err
		}
		previous, updated = current, true
		return nil
	})
	return previous, updated, err
}

// ClearMentions drops all recorded mentions and channel watermarks.
func (s *Store) ClearMentions() error {
	return s.update(func(txn *badger.Txn) error {
		if err := deletePrefix(txn, []byte("mention/")); err != nil {
			return err
		}
		return deletePrefix(txn, prefixWatermark)
	})
}
