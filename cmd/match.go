package main

import (
	"encoding/json"
	"io"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/journey-recon/internal/model"
	"github.com/sells-group/journey-recon/internal/recon"
)

var (
	matchName      string
	matchDate      string
	matchThreshold float64
)

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Match one driver name against the journeys on a date",
	Long:  "Runs the match cascade for a single name and date against stored journeys and prints the result as JSON.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		loc, err := cfg.Location()
		if err != nil {
			return err
		}

		date := recon.FormatSlashDate(matchDate)
		day, err := recon.ParseDateKey(date, loc)
		if err != nil {
			return eris.Wrapf(err, "match: invalid date %q", matchDate)
		}

		threshold := cfg.Match.FuzzyThreshold
		if cmd.Flags().Changed("threshold") {
			threshold = matchThreshold
		}

		st, err := initStore(ctx, loc)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		cands, err := st.LoadCandidates(ctx, day, day)
		if err != nil {
			return eris.Wrap(err, "match: load candidates")
		}

		res, names := matchOne(cands, model.SpreadsheetRow{Name: matchName, Date: date}, matchOptions(threshold, loc))
		return writeMatchJSON(os.Stdout, res, names)
	},
}

func init() {
	matchCmd.Flags().StringVar(&matchName, "name", "", "driver name as written in the spreadsheet")
	matchCmd.Flags().StringVar(&matchDate, "date", "", "journey date (YYYY-MM-DD or M/D/YY)")
	matchCmd.Flags().Float64Var(&matchThreshold, "threshold", recon.DefaultFuzzyThreshold, "minimum fuzzy similarity (default: match.fuzzy_threshold)")
	_ = matchCmd.MarkFlagRequired("name")
	_ = matchCmd.MarkFlagRequired("date")
	rootCmd.AddCommand(matchCmd)
}

// matchOne runs the cascade for row. When nothing matches it also returns
// the names of the journeys on the row's date.
func matchOne(cands []model.Candidate, row model.SpreadsheetRow, opts recon.Options) (model.MatchResult, []string) {
	idx := recon.BuildIndex(cands, opts.Location)
	res := recon.NewMatcher(idx, opts).Match(row)
	if res.Driver != nil {
		return res, nil
	}

	var names []string
	for _, c := range idx.ForDate(row.Date) {
		names = append(names, c.Name)
	}
	return res, names
}

// matchOutput is the printed form of a MatchResult.
type matchOutput struct {
	Strategy    model.Strategy `json:"strategy"`
	Confidence  float64        `json:"confidence"`
	Ambiguous   bool           `json:"ambiguous"`
	JourneyID   *int64         `json:"journey_id,omitempty"`
	DriverName  *string        `json:"driver_name,omitempty"`
	JourneyDate string         `json:"journey_date,omitempty"`
	RouteName   *string        `json:"route_name,omitempty"`
	Packages    *int           `json:"packages,omitempty"`
	Candidates  []string       `json:"candidates,omitempty"`
}

func writeMatchJSON(w io.Writer, res model.MatchResult, candidates []string) error {
	out := matchOutput{
		Strategy:   res.Strategy,
		Confidence: res.Confidence,
		Ambiguous:  res.Driver == nil,
		Candidates: candidates,
	}
	if d := res.Driver; d != nil {
		out.JourneyID = &d.ID
		out.DriverName = &d.Name
		out.JourneyDate = d.JourneyDate.Format(time.DateOnly)
		out.RouteName = d.RouteName
		out.Packages = d.Packages
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return eris.Wrap(enc.Encode(out), "match: encode result")
}
