package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// backupCmd writes one ledger backup and exits.
var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Write a compressed backup of the ban ledger",
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

		path, err := svc.Backup(cmd.Context())
		if err != nil {
			return err
		}
		logg.Info("Backup finished", zap.String("path", path))
		return nil
	},
}

func init() {
	RootCmd.AddCommand(backupCmd)
}
