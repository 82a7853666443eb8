package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"banledger/core/config"
	"banledger/core/loader"
	"banledger/core/logger"
	"banledger/core/middleware/auth"
	"banledger/core/middleware/rayid"
	"banledger/feature/bans"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the ban ledger server",
	Long:  `Starts the HTTP server, the periodic ban sync and the backup schedule.`,
	Run: func(cmd *cobra.Command, args []string) {
		// 1. Load Configuration
		cfg, err := config.LoadConfig(".")
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}

		// 2. Initialize Logger
		logg, err := logger.New(&cfg.Log)
		if err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
		defer logg.Sync()
		zap.ReplaceGlobals(logg)

		// 3. Wire the bans stack (store, index, source, resolver, pool)
		svc, cleanup, err := buildService(cfg, logg)
		if err != nil {
			logg.Fatal("Failed to wire bans service", zap.Error(err))
		}
		defer cleanup()

		// A fresh index directory means the search index was lost; restore
		// it from ledger history before serving queries.
		if err := svc.ReindexIfNew(); err != nil {
			logg.Fatal("Failed to rebuild search index", zap.Error(err))
		}

		// 4. Initialize Fiber App
		app := fiber.New(fiber.Config{
			DisableStartupMessage: true, // We will log our own startup message
		})

		// Middleware Registration
		// 1. RayID (Must be first to trace everything)
		app.Use(rayid.New())

		// 2. Logging Middleware (Custom to use Zap + RayID)
		app.Use(func(c *fiber.Ctx) error {
			l := logger.WithRayID(logg, c)
			l.Info("Request started",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.String("ip", c.IP()),
			)
			err := c.Next()
			if err != nil {
				l.Error("Request error", zap.Error(err))
			}
			return err
		})

		// 3. Auth (Protect API)
		app.Use(auth.New(cfg.Server.ApiKey))

		// 5. Load Features
		mgr := loader.NewManager()
		mgr.Register(bans.NewFeature(svc))
		if err := mgr.LoadAll(app, logg); err != nil {
			logg.Fatal("Failed to load features", zap.Error(err))
		}

		// 6. Periodic sync and backup
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go runSchedules(ctx, cfg.Bans, svc, logg)

		// 7. Start Server
		go func() {
			logg.Info("Starting server", zap.String("port", cfg.Server.Port))
			if err := app.Listen(cfg.Server.Addr()); err != nil {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		}()

		// 8. Graceful Shutdown
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		logg.Info("Shutting down server...")
		_ = app.Shutdown()
		cancel()
	},
}

// runSchedules triggers periodic syncs and backups until ctx is done.
// Jobs run on the worker pool; a slow sync never blocks the next backup.
func runSchedules(ctx context.Context, cfg bans.Config, svc *bans.Service, logg *zap.Logger) {
	syncEvery := time.Duration(max(cfg.SyncIntervalMinutes, 1)) * time.Minute
	backupEvery := time.Duration(max(cfg.BackupIntervalHours, 1)) * time.Hour

	syncTicker := time.NewTicker(syncEvery)
	defer syncTicker.Stop()
	backupTicker := time.NewTicker(backupEvery)
	defer backupTicker.Stop()

	// First sync right after boot rather than a full interval later. The
	// minimum-interval guard keeps restart loops from hammering the source.
	if err := svc.ScheduleSync(ctx); err != nil {
		logg.Warn("Failed to schedule initial sync", zap.Error(err))
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-syncTicker.C:
			if err := svc.ScheduleSync(ctx); err != nil {
				logg.Warn("Failed to schedule sync", zap.Error(err))
			}
		case <-backupTicker.C:
			if err := svc.ScheduleBackup(ctx); err != nil {
				logg.Warn("Failed to schedule backup", zap.Error(err))
			}
		}
	}
}

func init() {
	RootCmd.AddCommand(startCmd)
}
