package cmd

import (
	"github.com/spf13/cobra"
)

// reindexCmd rebuilds the search index from ledger history.
var reindexCmd = &cobra.Command{
	Use:   "reindex",
	Short: "Rebuild the search index from the ban ledger",
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

		return svc.Reindex()
	},
}

func init() {
	RootCmd.AddCommand(reindexCmd)
}
