package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/journey-recon/internal/model"
	"github.com/sells-group/journey-recon/internal/store"
)

var uploadsCmd = &cobra.Command{
	Use:   "uploads",
	Short: "Inspect the upload ledger",
}

// -- uploads list --

var uploadsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent uploads",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		loc, err := cfg.Location()
		if err != nil {
			return err
		}
		st, err := initStore(ctx, loc)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		limit, _ := cmd.Flags().GetInt("limit")
		uploads, err := st.ListUploads(ctx, limit)
		if err != nil {
			return eris.Wrap(err, "uploads list")
		}

		if len(uploads) == 0 {
			fmt.Fprintln(os.Stderr, "No uploads found.")
			return nil
		}

		formatUploadsList(os.Stdout, uploads)
		return nil
	},
}

// -- uploads show --

var uploadsShowCmd = &cobra.Command{
	Use:   "show <upload-id>",
	Short: "Show one upload as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		loc, err := cfg.Location()
		if err != nil {
			return err
		}
		st, err := initStore(ctx, loc)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		u, err := st.GetUpload(ctx, args[0])
		if eris.Is(err, store.ErrNotFound) {
			return eris.Errorf("uploads show: no upload with id %s", args[0])
		}
		if err != nil {
			return eris.Wrap(err, "uploads show")
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(u)
	},
}

func init() {
	uploadsListCmd.Flags().Int("limit", store.DefaultListLimit, "max number of uploads to display")

	uploadsCmd.AddCommand(uploadsListCmd)
	uploadsCmd.AddCommand(uploadsShowCmd)
	rootCmd.AddCommand(uploadsCmd)
}

// formatUploadsList writes a tabular list of uploads to out.
func formatUploadsList(out io.Writer, uploads []model.Upload) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tSOURCE\tSTATUS\tSTARTED\tTOTAL\tMATCHED\tAMBIGUOUS\tSKIPPED\tDURATION")
	for _, u := range uploads {
		dur := "-"
		if u.CompletedAt != nil {
			dur = u.CompletedAt.Sub(u.StartedAt).Round(time.Millisecond).String()
		}
		id := u.ID
		if len(id) > 8 {
			id = id[:8]
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\t%d\t%d\t%s\n",
			id, u.Source, u.Status, u.StartedAt.Format("2006-01-02 15:04"),
			u.RowsTotal, u.RowsMatched, u.RowsAmbiguous, u.RowsSkipped, dur,
		)
	}
	_ = w.Flush()
}
