package store

import (
	"bytes"
	"encoding/binary"
	"strconv"
	"time"

	"banledger/feature/bans/model"

	badger "github.com/dgraph-io/badger/v4"
)

// Key layout. Every record is JSON under a typed prefix:
//
//	current/<id64>           active ban
//	log/<ts><seq>            ledger entry, ordered by detection time
//	logp/<id64>/<ts><seq>    per-identity copy of the ledger entry
//	offline/<id64>           staged offline ban
//	unique/<fingerprint>     indexed ban, keyed by content fingerprint
//	mention/<id64>/<msg>     recorded chat mention
//	watermark/<channel>      per-channel scan watermark
//	meta/...                 bookkeeping
//
// <ts> is the big-endian unix-nano detection time and <seq> a big-endian
// persistent counter, so log keys sort chronologically with a stable order
// inside one transaction.

var (
	prefixCurrent   = []byte("current/")
	prefixLog       = []byte("log/")
	prefixLogP      = []byte("logp/")
	prefixOffline   = []byte("offline/")
	prefixUnique    = []byte("unique/")
	prefixWatermark = []byte("watermark/")
)

const (
	keyLastSync = "meta/lastsync"
	keyLogSeq   = "meta/logseq"
)

func idSuffix(id model.SteamID) []byte {
	return strconv.AppendInt(nil, id.ID64(), 10)
}

func currentKey(id model.SteamID) []byte {
	return append(append([]byte{}, prefixCurrent...), idSuffix(id)...)
}

func offlineKey(id model.SteamID) []byte {
	return append(append([]byte{}, prefixOffline...), idSuffix(id)...)
}

func uniqueKey(fingerprint string) []byte {
	return append(append([]byte{}, prefixUnique...), fingerprint...)
}

func logKey(at time.Time, seq uint64) []byte {
	key := make([]byte, 0, len(prefixLog)+16)
	key = append(key, prefixLog...)
	key = binary.BigEndian.AppendUint64(key, uint64(at.UnixNano()))
	return binary.BigEndian.AppendUint64(key, seq)
}

func playerLogPrefix(id model.SteamID) []byte {
	key := append(append([]byte{}, prefixLogP...), idSuffix(id)...)
	return append(key, '/')
}

func playerLogKey(id model.SteamID, at time.Time, seq uint64) []byte {
	key := playerLogPrefix(id)
	key = binary.BigEndian.AppendUint64(key, uint64(at.UnixNano()))
	return binary.BigEndian.AppendUint64(key, seq)
}

func mentionPrefix(id model.SteamID) []byte {
	key := append(append([]byte{}, []byte("mention/")...), idSuffix(id)...)
	return append(key, '/')
}

func mentionKey(id model.SteamID, messageID string) []byte {
	return append(mentionPrefix(id), messageID...)
}

func watermarkKey(channel string) []byte {
	return append(append([]byte{}, prefixWatermark...), channel...)
}

// iteratePrefix walks every key under prefix in key order.
func iteratePrefix(txn *badger.Txn, prefix []byte, fn func(key, value []byte) error) error {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	it := txn.NewIterator(opts)
	defer it.Close()
	for it.Rewind(); it.ValidForPrefix(prefix); it.Next() {
		item := it.Item()
		key := item.KeyCopy(nil)
		err := item.Value(func(value []byte) error {
			return fn(key, value)
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// iterateLogRange walks log entries with from <= detection time < to.
// The bounds are exact because the detection time is encoded in the key.
func iterateLogRange(txn *badger.Txn, from, to time.Time, fn func(value []byte) error) error {
	start := logKey(from, 0)
	end := logKey(to, 0)
	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefixLog
	it := txn.NewIterator(opts)
	defer it.Close()
	for it.Seek(start); it.ValidForPrefix(prefixLog); it.Next() {
		item := it.Item()
		if bytes.Compare(item.Key(), end) >= 0 {
			break
		}
		if err := item.Value(fn); err != nil {
			return err
		}
	}
	return nil
}

// deletePrefix removes every key under prefix within txn.
func deletePrefix(txn *badger.Txn, prefix []byte) error {
	var keys [][]byte
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	opts.Prefix = prefix
	it := txn.NewIterator(opts)
	for it.Rewind(); it.ValidForPrefix(prefix); it.Next() {
		keys = append(keys, it.Item().KeyCopy(nil))
	}
	it.Close()
	for _, key := range keys {
		if err := txn.Delete(key); err != nil {
			return err
		}
	}
	return nil
}

func readLogSeq(txn *badger.Txn) (uint64, error) {
	item, err := txn.Get([]byte(keyLogSeq))
	if err == badger.ErrKeyNotFound {
		return 0, nil
	} else if err != nil {
		return 0, err
	}
	var seq uint64
	err = item.Value(func(value []byte) error {
		seq = binary.BigEndian.Uint64(value)
		return nil
	})
	return seq, err
}

func writeLogSeq(txn *badger.Txn, seq uint64) error {
	return txn.Set([]byte(keyLogSeq), binary.BigEndian.AppendUint64(nil, seq))
}
