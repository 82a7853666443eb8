package cmd

import (
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// importCmd replays saved ban file snapshots into the ledger.
var importCmd = &cobra.Command{
	Use:   "import <file>...",
	Short: "Replay historic ban file snapshots into the ledger",
	Long: `Replays saved ban files in modification-time order, recording each
snapshot at its file's modification time. Historic replays never touch
the offline-ban overlay.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logg, err := setup()
		if err != nil {
			return err
		}
		defer logg.Sync()

		type snapshot struct {
			path string
			at   time.Time
		}
		snapshots := make([]snapshot, 0, len(args))
		for _, path := range args {
			info, err := os.Stat(path)
			if err != nil {
				return fmt.Errorf("failed to stat %s: %w", path, err)
			}
			snapshots = append(snapshots, snapshot{path: path, at: info.ModTime().UTC()})
		}
		sort.Slice(snapshots, func(i, j int) bool {
			return snapshots[i].at.Before(snapshots[j].at)
		})

		svc, cleanup, err := buildService(cfg, logg)
		if err != nil {
			return err
		}
		defer cleanup()

		for _, snap := range snapshots {
			raw, err := os.ReadFile(snap.path)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", snap.path, err)
			}
			stats, err := svc.ImportSnapshot(cmd.Context(), snap.at, raw)
			if err != nil {
				return fmt.Errorf("failed to import %s: %w", snap.path, err)
			}
			logg.Info("Imported snapshot",
				zap.String("file", snap.path),
				zap.Time("at", snap.at),
				zap.Int("added", stats.Added),
				zap.Int("removed", stats.Removed))
		}
		return nil
	},
}

func init() {
	RootCmd.AddCommand(importCmd)
}
