package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/journey-recon/internal/model"
	"github.com/sells-group/journey-recon/internal/pipeline"
	"github.com/sells-group/journey-recon/internal/recon"
	"github.com/sells-group/journey-recon/internal/upload"
)

var (
	reconcileFiles        []string
	reconcileSheet        string
	reconcileThreshold    float64
	reconcileDryRun       bool
	reconcileReport       string
	reconcileReportFormat string
)

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Reconcile spreadsheet uploads against journey records",
	Long:  "Reads one or more .xlsx or .csv uploads, matches every row to a journey on the same date, and stores the insert batch and match log.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if len(reconcileFiles) == 0 {
			return eris.New("reconcile: at least one --file is required")
		}
		if cmd.Flags().Changed("threshold") {
			cfg.Match.FuzzyThreshold = reconcileThreshold
		}
		if cmd.Flags().Changed("report-format") {
			cfg.Report.Format = reconcileReportFormat
		}
		if reconcileSheet != "" {
			cfg.Upload.SheetName = reconcileSheet
		}
		if err := cfg.Validate("reconcile"); err != nil {
			return err
		}

		loc, err := cfg.Location()
		if err != nil {
			return err
		}

		files, err := upload.ReadFiles(ctx, reconcileFiles, upload.Options{
			SheetIndex:  cfg.Upload.SheetIndex,
			SheetName:   cfg.Upload.SheetName,
			Concurrency: cfg.Upload.Concurrency,
		})
		if err != nil {
			return err
		}
		rows, rowErrs := upload.Merge(files)

		st, err := initStore(ctx, loc)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		p := pipeline.New(st, pipeline.Options{
			Match:  matchOptions(cfg.Match.FuzzyThreshold, loc),
			DryRun: reconcileDryRun,
		})
		res, err := p.Run(ctx, pipeline.Upload{
			Source:      strings.Join(reconcileFiles, ","),
			Rows:        rows,
			ParseErrors: rowErrs,
		})
		if err != nil {
			return err
		}

		formatSummary(os.Stdout, res)

		if reconcileReport != "" {
			if err := writeReportFile(reconcileReport, cfg.Report.Format, res); err != nil {
				return err
			}
			zap.L().Info("report written", zap.String("path", reconcileReport))
		}
		return nil
	},
}

func init() {
	reconcileCmd.Flags().StringArrayVar(&reconcileFiles, "file", nil, "spreadsheet to reconcile (.xlsx or .csv, repeatable)")
	reconcileCmd.Flags().StringVar(&reconcileSheet, "sheet", "", "worksheet name (default: upload.sheet_index)")
	reconcileCmd.Flags().Float64Var(&reconcileThreshold, "threshold", recon.DefaultFuzzyThreshold, "minimum fuzzy similarity (default: match.fuzzy_threshold)")
	reconcileCmd.Flags().BoolVar(&reconcileDryRun, "dry-run", false, "match without writing to the store")
	reconcileCmd.Flags().StringVar(&reconcileReport, "report", "", "write the per-row diagnostic report to this path")
	reconcileCmd.Flags().StringVar(&reconcileReportFormat, "report-format", pipeline.FormatYAML, "report format: yaml or json")
	rootCmd.AddCommand(reconcileCmd)
}

// matchOptions builds cascade options from the configured threshold.
func matchOptions(threshold float64, loc *time.Location) recon.Options {
	opts := recon.DefaultOptions()
	opts.FuzzyThreshold = threshold
	opts.Location = loc
	return opts
}

func writeReportFile(path, format string, res *pipeline.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrap(err, "create report file")
	}
	if err := pipeline.WriteReport(f, format, res); err != nil {
		f.Close() //nolint:errcheck
		return err
	}
	return eris.Wrap(f.Close(), "close report file")
}

// formatSummary writes the per-strategy counts and skipped rows of a run.
func formatSummary(out io.Writer, res *pipeline.Result) {
	if res.UploadID != "" {
		_, _ = fmt.Fprintf(out, "Upload:    %s\n", res.UploadID)
	} else if res.DryRun {
		_, _ = fmt.Fprintln(out, "Upload:    (dry run, nothing stored)")
	}
	_, _ = fmt.Fprintf(out, "Records:   %d\n", len(res.Records))
	_, _ = fmt.Fprintf(out, "Matched:   %d\n", res.Counts.Matched)
	_, _ = fmt.Fprintf(out, "Ambiguous: %d\n", res.Counts.Ambiguous)
	_, _ = fmt.Fprintf(out, "Skipped:   %d\n", len(res.Skipped))

	if len(res.Counts.ByStrategy) > 0 {
		strategies := make([]string, 0, len(res.Counts.ByStrategy))
		for s := range res.Counts.ByStrategy {
			strategies = append(strategies, string(s))
		}
		sort.Strings(strategies)

		_, _ = fmt.Fprintln(out)
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		_, _ = fmt.Fprintln(w, "STRATEGY\tROWS")
		for _, s := range strategies {
			_, _ = fmt.Fprintf(w, "%s\t%d\n", s, res.Counts.ByStrategy[model.Strategy(s)])
		}
		_ = w.Flush()
	}

	if len(res.Skipped) > 0 {
		_, _ = fmt.Fprintln(out)
		for _, re := range res.Skipped {
			_, _ = fmt.Fprintf(out, "skipped %s\n", re.Error())
		}
	}
}
