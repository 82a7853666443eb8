package cmd

import (
	"fmt"

	"banledger/core/config"
	"banledger/core/logger"
	"banledger/core/storage"
	"banledger/core/workerpool"
	"banledger/feature/bans"
	"banledger/feature/bans/banlist"
	"banledger/feature/bans/search"
	"banledger/feature/bans/steam"
	"banledger/feature/bans/store"

	"go.uber.org/zap"
)

// setup loads configuration and builds the logger for one-shot commands.
func setup() (*config.Config, *zap.Logger, error) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	logg, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return cfg, logg, nil
}

// buildService wires the full bans stack from configuration. The returned
// cleanup drains background jobs and closes the store and the index.
func buildService(cfg *config.Config, logg *zap.Logger) (*bans.Service, func(), error) {
	var client storage.Client
	if cfg.Storage.Enabled {
		c, err := storage.NewClient(cfg.Storage)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create storage client: %w", err)
		}
		client = c
	}

	source, err := banlist.NewSource(cfg.Banlist, client, cfg.Storage.Bucket)
	if err != nil {
		return nil, nil, err
	}

	index, err := search.Open(cfg.Search.Dir, logg)
	if err != nil {
		return nil, nil, err
	}

	resolver := steam.NewResolver(cfg.Steam, logg)

	storeOpts := []store.OptionFunc{
		store.WithLogger(logg),
		store.WithIndexer(index),
	}
	if resolver.Enabled() {
		storeOpts = append(storeOpts, store.WithNameResolver(resolver.Resolve))
	}

	st, err := store.Open(cfg.Store.Dir, storeOpts...)
	if err != nil {
		_ = index.Close()
		return nil, nil, err
	}

	pool := workerpool.New(int64(cfg.Bans.Workers), logg)
	svc := bans.NewService(cfg.Bans, st, index, source, resolver, pool, client, cfg.Storage.Bucket, logg)

	cleanup := func() {
		pool.Wait()
		if err := st.Close(); err != nil {
			logg.Warn("Failed to close ledger store", zap.Error(err))
		}
		if err := index.Close(); err != nil {
			logg.Warn("Failed to close search index", zap.Error(err))
		}
	}
	return svc, cleanup, nil
}
