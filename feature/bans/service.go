package bans

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"banledger/core/storage"
	"banledger/core/workerpool"
	"banledger/feature/bans/banlist"
	"banledger/feature/bans/model"
	"banledger/feature/bans/search"
	"banledger/feature/bans/steam"
	"banledger/feature/bans/store"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// ErrSyncThrottled is returned when a sync is requested before the
// minimum interval since the last one has passed.
var ErrSyncThrottled = errors.New("last sync ran too recently")

// ErrNoBan is returned when an identity has neither a live nor a staged
// ban.
var ErrNoBan = errors.New("no ban on record")

// SearchPage is one page of search results with resolved ban records.
type SearchPage struct {
	Bans   []model.Ban `json:"bans"`
	Total  uint64      `json:"total"`
	From   int         `json:"from"`
	Cursor string      `json:"cursor,omitempty"`
}

// Service owns ban reconciliation and everything layered on the ledger.
type Service struct {
	cfg      Config
	store    *store.Store
	index    *search.Index
	source   banlist.Source
	resolver *steam.Resolver
	pool     *workerpool.Pool
	client   storage.Client
	bucket   string
	logger   *zap.Logger

	// One snapshot sync at a time; concurrent triggers queue up here
	// rather than racing on the fetch.
	syncMu sync.Mutex

	now func() time.Time
}

// NewService wires the bans service. client may be nil when object
// storage is disabled; resolver may be disabled (no API key).
func NewService(cfg Config, st *store.Store, ix *search.Index, src banlist.Source,
	resolver *steam.Resolver, pool *workerpool.Pool, client storage.Client,
	bucket string, logger *zap.Logger) *Service {
	return &Service{
		cfg:      cfg,
		store:    st,
		index:    ix,
		source:   src,
		resolver: resolver,
		pool:     pool,
		client:   client,
		bucket:   bucket,
		logger:   logger,
		now:      time.Now,
	}
}

// Store exposes the underlying ledger store.
func (s *Service) Store() *store.Store {
	return s.store
}

// Sync fetches the current ban file and reconciles it against the ledger.
// Unless force is set, it refuses to run again before the configured
// minimum interval since the previous sync has passed.
func (s *Service) Sync(ctx context.Context, force bool) (store.Stats, error) {
	s.syncMu.Lock()
	defer s.syncMu.Unlock()

	if !force {
		last, ok, err := s.store.LastSync()
		if err != nil {
			return store.Stats{}, err
		}
		minInterval := time.Duration(s.cfg.MinSyncIntervalMinutes) * time.Minute
		if ok && s.now().Sub(last) < minInterval {
			return store.Stats{}, fmt.Errorf("%w: last sync at %s", ErrSyncThrottled, last.Format(time.RFC3339))
		}
	}

	// Fetch and parse before the transaction opens.
	raw, err := s.source.Fetch(ctx)
	if err != nil {
		return store.Stats{}, err
	}
	bans, err := s.parse(raw)
	if err != nil {
		return store.Stats{}, err
	}

	stats, err := s.store.StoreBans(ctx, s.now(), bans, false)
	if err != nil {
		return store.Stats{}, err
	}
	s.logger.Info("Ban sync finished",
		zap.Int("snapshot", len(bans)),
		zap.Int("added", stats.Added),
		zap.Int("removed", stats.Removed))
	return stats, nil
}

// ImportSnapshot replays a historic ban file into the ledger as of the
// given time. The offline-ban overlay is left untouched.
func (s *Service) ImportSnapshot(ctx context.Context, at time.Time, raw []byte) (store.Stats, error) {
	bans, err := s.parse(raw)
	if err != nil {
		return store.Stats{}, err
	}
	return s.store.StoreBans(ctx, at, bans, true)
}

func (s *Service) parse(raw []byte) ([]model.Ban, error) {
	text, err := banlist.Decode(raw)
	if err != nil {
		return nil, err
	}
	return banlist.ParseBans(text, s.logger), nil
}

// Backup writes a compressed ledger backup and, when configured, uploads
// it to the object-storage bucket. Returns the local path.
func (s *Service) Backup(ctx context.Context) (string, error) {
	path, err := s.store.Backup()
	if err != nil {
		return "", err
	}

	if s.cfg.UploadBackups && s.client != nil {
		if err := s.uploadBackup(ctx, path); err != nil {
			s.logger.Warn("Backup upload failed", zap.String("path", path), zap.Error(err))
		}
	}
	return path, nil
}

func (s *Service) uploadBackup(ctx context.Context, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}

	object := "backups/" + filepath.Base(path)
	_, err = s.client.PutObject(ctx, s.bucket, object, f, info.Size(), minio.PutObjectOptions{
		ContentType: "application/gzip",
	})
	if err != nil {
		return fmt.Errorf("failed to upload backup %s: %w", object, err)
	}
	s.logger.Info("Uploaded ledger backup", zap.String("object", object))
	return nil
}

// Search runs a full-text query over ban names and reasons and resolves
// the hits back to ban records.
func (s *Service) Search(query, after string) (SearchPage, error) {
	res, err := s.index.Search(query, after)
	if err != nil {
		return SearchPage{}, err
	}
	bans, err := s.store.BansByFingerprint(res.Fingerprints)
	if err != nil {
		return SearchPage{}, err
	}
	return SearchPage{Bans: bans, Total: res.Total, From: res.From, Cursor: res.Cursor}, nil
}

// Reindex rebuilds the search index from the full ledger history.
func (s *Service) Reindex() error {
	unique, err := s.store.RebuildUniqueBans()
	if err != nil {
		return err
	}
	return s.index.Rebuild(unique)
}

// ReindexIfNew rebuilds the search index when Open had to create a fresh
// one, so a deleted index directory heals itself on start.
func (s *Service) ReindexIfNew() error {
	if !s.index.IsNew() {
		return nil
	}
	s.logger.Info("Search index is new, rebuilding from ledger")
	return s.Reindex()
}

// BanLine renders a ban file line for an identity, preferring the staged
// offline ban over the live one. The line is meant to be pasted into the
// server's ban file.
func (s *Service) BanLine(ctx context.Context, id model.SteamID) (string, error) {
	now := s.now()

	offline, err := s.store.OfflineBans()
	if err != nil {
		return "", err
	}
	for _, ob := range offline {
		if ob.ID != id {
			continue
		}
		name := ob.PlayerName
		if name == "" && s.resolver != nil {
			name, _ = s.resolver.Resolve(ctx, id)
		}
		return banlist.BanLine(id, durationSeconds(ob.Duration), ptrTime(ob.EnactedOr(now)), name, ob.Reason), nil
	}

	current, err := s.store.CurrentBans()
	if err != nil {
		return "", err
	}
	for _, ban := range current {
		if ban.ID != id {
			continue
		}
		name := ban.PlayerName
		if name == "" && s.resolver != nil {
			name, _ = s.resolver.Resolve(ctx, id)
		}
		return banlist.BanLine(id, durationSeconds(ban.Duration), ban.EnactedTime, name, ban.Reason), nil
	}
	return "", ErrNoBan
}

// RecordMentions stores a batch of chat mentions and advances each
// channel's scan watermark to the newest message seen. Returns how many
// mentions were new.
func (s *Service) RecordMentions(mentions []model.Mention) (int, error) {
	recorded := 0
	newest := make(map[string]string)
	for _, m := range mentions {
		ok, err := s.store.RecordMention(m)
		if err != nil {
			return recorded, err
		}
		if ok {
			recorded++
		}
		if messageAfter(m.MessageID, newest[m.ChannelID]) {
			newest[m.ChannelID] = m.MessageID
		}
	}

	for channel, messageID := range newest {
		_, _, err := s.store.SetWatermark(channel, messageID, func(current string, ok bool) bool {
			return !ok || messageAfter(messageID, current)
		})
		if err != nil {
			return recorded, err
		}
	}
	return recorded, nil
}

// FindMentions returns all recorded mentions of a player.
func (s *Service) FindMentions(id model.SteamID) ([]model.Mention, error) {
	return s.store.FindMentions(id)
}

// ScheduleSync hands a sync off to the worker pool.
func (s *Service) ScheduleSync(ctx context.Context) error {
	return s.pool.Submit(ctx, "ban-sync", func(ctx context.Context) error {
		_, err := s.Sync(ctx, false)
		if errors.Is(err, ErrSyncThrottled) {
			return nil
		}
		return err
	})
}

// ScheduleBackup hands a backup off to the worker pool.
func (s *Service) ScheduleBackup(ctx context.Context) error {
	return s.pool.Submit(ctx, "ban-backup", func(ctx context.Context) error {
		_, err := s.Backup(ctx)
		return err
	})
}

// messageAfter reports whether chat message ID a is newer than b.
// Snowflake IDs are numeric strings, so longer means larger.
func messageAfter(a, b string) bool {
	if len(a) != len(b) {
		return len(a) > len(b)
	}
	return a > b
}

func durationSeconds(d *time.Duration) int64 {
	if d == nil || *d <= 0 {
		return 0
	}
	return int64(d.Seconds())
}

func ptrTime(t time.Time) *time.Time {
	return &t
}
