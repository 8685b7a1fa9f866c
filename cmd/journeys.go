package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/journey-recon/internal/model"
	"github.com/sells-group/journey-recon/internal/upload"
)

var (
	journeysImportFiles []string
	journeysImportSheet string
)

// journeyWriter is implemented by stores that own a writable journeys table.
type journeyWriter interface {
	AddJourneys(ctx context.Context, cands []model.Candidate) error
}

var journeysCmd = &cobra.Command{
	Use:   "journeys",
	Short: "Manage the local journeys table",
}

var journeysImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Load journeys from .xlsx or .csv exports into the SQLite store",
	Long:  "Reads journey exports (id, driver name, date and optional route, start_seq, end_seq, packages columns) and upserts them by id into the local journeys table used for offline reconciliation.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if cfg.Store.Driver != "sqlite" {
			return eris.Errorf("journeys import: requires store.driver=sqlite, got %q", cfg.Store.Driver)
		}
		if len(journeysImportFiles) == 0 {
			return eris.New("journeys import: at least one --file is required")
		}

		loc, err := cfg.Location()
		if err != nil {
			return err
		}

		opts := upload.Options{SheetIndex: cfg.Upload.SheetIndex, SheetName: cfg.Upload.SheetName}
		if journeysImportSheet != "" {
			opts.SheetName = journeysImportSheet
		}

		var (
			cands   []model.Candidate
			skipped []model.RowError
		)
		for _, path := range journeysImportFiles {
			c, errs, err := upload.ReadJourneys(path, opts, loc)
			if err != nil {
				return err
			}
			cands = append(cands, c...)
			skipped = append(skipped, errs...)
		}

		st, err := initStore(ctx, loc)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		w, ok := st.(journeyWriter)
		if !ok {
			return eris.Errorf("journeys import: store %s cannot write journeys", cfg.Store.Driver)
		}
		if err := w.AddJourneys(ctx, cands); err != nil {
			return err
		}

		zap.L().Info("journeys imported",
			zap.Int("journeys", len(cands)),
			zap.Int("skipped", len(skipped)),
		)
		formatImportSummary(os.Stdout, len(cands), skipped)
		return nil
	},
}

func init() {
	journeysImportCmd.Flags().StringArrayVar(&journeysImportFiles, "file", nil, "journeys export to load (.xlsx or .csv, repeatable)")
	journeysImportCmd.Flags().StringVar(&journeysImportSheet, "sheet", "", "worksheet name (default: upload.sheet_index)")

	journeysCmd.AddCommand(journeysImportCmd)
	rootCmd.AddCommand(journeysCmd)
}

func formatImportSummary(out io.Writer, imported int, skipped []model.RowError) {
	_, _ = fmt.Fprintf(out, "Imported: %d\n", imported)
	_, _ = fmt.Fprintf(out, "Skipped:  %d\n", len(skipped))
	for _, re := range skipped {
		_, _ = fmt.Fprintf(out, "skipped %s\n", re.Error())
	}
}
