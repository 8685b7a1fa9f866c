package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/journey-recon/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "journey-recon",
	Short: "Reconcile weekly driver spreadsheets against journey records",
	Long:  "Matches each spreadsheet row to the driver's journey for that date, flags rows that need manual review, and stores an insert-ready record per row.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return eris.Wrap(err, "load config")
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return eris.Wrap(err, "init logger")
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
