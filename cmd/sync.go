package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var syncForce bool

// syncCmd runs one snapshot sync and exits.
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Fetch the ban file and reconcile it into the ledger",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logg, err := setup()
		if err != nil {
			return err
		}
		defer logg.Sync()

		svc, cleanup, err := buildService(cfg, logg)
		if err != nil {
			return err
		}
		defer cleanup()

		if err := svc.ReindexIfNew(); err != nil {
			return err
		}

		stats, err := svc.Sync(cmd.Context(), syncForce)
		if err != nil {
			return err
		}
		logg.Info("Sync finished",
			zap.Int("added", stats.Added),
			zap.Int("removed", stats.Removed))
		return nil
	},
}

func init() {
	syncCmd.Flags().BoolVar(&syncForce, "force", false, "ignore the minimum sync interval")
	RootCmd.AddCommand(syncCmd)
}
