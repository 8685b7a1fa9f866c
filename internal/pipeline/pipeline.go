// Package pipeline runs one spreadsheet upload through validation, matching
// and persistence.
package pipeline

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/journey-recon/internal/model"
	"github.com/sells-group/journey-recon/internal/recon"
	"github.com/sells-group/journey-recon/internal/store"
)

// Options configures a Pipeline.
type Options struct {
	Match recon.Options
	// DryRun matches without writing the ledger, records or match log.
	DryRun bool
}

// Upload is one batch of spreadsheet rows to reconcile.
type Upload struct {
	Source      string
	Rows        []model.SpreadsheetRow
	ParseErrors []model.RowError
}

// Result is the outcome of one Run.
type Result struct {
	UploadID  string               `json:"upload_id,omitempty" yaml:"upload_id,omitempty"`
	Source    string               `json:"source" yaml:"source"`
	DryRun    bool                 `json:"dry_run" yaml:"dry_run"`
	Records   []model.InsertRow    `json:"-" yaml:"-"`
	Summaries []model.MatchSummary `json:"matches" yaml:"matches"`
	Skipped   []model.RowError     `json:"skipped" yaml:"skipped"`
	Counts    recon.Counts         `json:"counts" yaml:"counts"`
}

// Pipeline reconciles uploads against the journeys in a store.
type Pipeline struct {
	store store.Store
	opts  Options
}

// New creates a Pipeline.
func New(st store.Store, opts Options) *Pipeline {
	if opts.Match.Location == nil {
		opts.Match.Location = time.Local
	}
	return &Pipeline{store: st, opts: opts}
}

// Run reconciles one upload. Rows with bad data are skipped and reported;
// every other row produces exactly one record. A failure after the ledger
// entry exists marks the upload failed.
func (p *Pipeline) Run(ctx context.Context, up Upload) (*Result, error) {
	log := zap.L().With(
		zap.String("component", "pipeline"),
		zap.String("source", up.Source),
		zap.Bool("dry_run", p.opts.DryRun),
	)
	start := time.Now()

	res := &Result{Source: up.Source, DryRun: p.opts.DryRun}

	if !p.opts.DryRun {
		u, err := p.store.CreateUpload(ctx, up.Source)
		if err != nil {
			return nil, eris.Wrap(err, "pipeline: create upload")
		}
		res.UploadID = u.ID
		log = log.With(zap.String("upload_id", u.ID))
	}

	valid, invalid := recon.ValidateRows(up.Rows)
	res.Skipped = append(append(res.Skipped, up.ParseErrors...), invalid...)
	for _, re := range res.Skipped {
		log.Warn("pipeline: skipping row", zap.Int("line", re.Line), zap.String("name", re.Name), zap.String("reason", re.Reason))
	}

	if len(valid) > 0 {
		from, to, err := dateRange(valid, p.opts.Match.Location)
		if err != nil {
			return nil, p.fail(ctx, res.UploadID, eris.Wrap(err, "pipeline: date range"))
		}

		cands, err := p.store.LoadCandidates(ctx, from, to)
		if err != nil {
			return nil, p.fail(ctx, res.UploadID, eris.Wrap(err, "pipeline: load candidates"))
		}
		idx := recon.BuildIndex(cands, p.opts.Match.Location)
		log.Debug("pipeline: indexed candidates",
			zap.Int("candidates", idx.Len()),
			zap.Strings("dates", idx.Dates()),
			zap.String("from", from.Format(time.DateOnly)),
			zap.String("to", to.Format(time.DateOnly)),
		)

		m := recon.NewMatcher(idx, p.opts.Match)
		res.Records, res.Summaries = recon.BuildInsertBatch(valid, m)
	}
	res.Counts = recon.Tally(res.Summaries)

	if p.opts.DryRun {
		log.Info("pipeline: dry run complete",
			zap.Int("records", len(res.Records)),
			zap.Int("matched", res.Counts.Matched),
			zap.Int("ambiguous", res.Counts.Ambiguous),
			zap.Int("skipped", len(res.Skipped)),
		)
		return res, nil
	}

	if _, err := p.store.SaveRecords(ctx, res.UploadID, res.Records); err != nil {
		return nil, p.fail(ctx, res.UploadID, eris.Wrap(err, "pipeline: save records"))
	}
	if _, err := p.store.SaveMatchLog(ctx, res.UploadID, res.Summaries); err != nil {
		return nil, p.fail(ctx, res.UploadID, eris.Wrap(err, "pipeline: save match log"))
	}

	stats := model.UploadStats{
		RowsTotal:     len(up.Rows) + len(up.ParseErrors),
		RowsMatched:   res.Counts.Matched,
		RowsAmbiguous: res.Counts.Ambiguous,
		RowsSkipped:   len(res.Skipped),
	}
	if err := p.store.CompleteUpload(ctx, res.UploadID, stats); err != nil {
		return nil, p.fail(ctx, res.UploadID, eris.Wrap(err, "pipeline: complete upload"))
	}

	log.Info("pipeline: upload reconciled",
		zap.Int("records", len(res.Records)),
		zap.Int("matched", stats.RowsMatched),
		zap.Int("ambiguous", stats.RowsAmbiguous),
		zap.Int("skipped", stats.RowsSkipped),
		zap.Int64("duration_ms", time.Since(start).Milliseconds()),
	)
	return res, nil
}

// fail records err on the upload ledger and returns it.
func (p *Pipeline) fail(ctx context.Context, uploadID string, err error) error {
	if uploadID == "" {
		return err
	}
	if ferr := p.store.FailUpload(ctx, uploadID, err.Error()); ferr != nil {
		zap.L().Warn("pipeline: failed to mark upload failed",
			zap.String("upload_id", uploadID),
			zap.Error(ferr),
		)
	}
	return err
}

// dateRange returns local midnight of the earliest and latest row dates.
func dateRange(rows []model.SpreadsheetRow, loc *time.Location) (time.Time, time.Time, error) {
	var from, to time.Time
	for i, r := range rows {
		d, err := recon.ParseDateKey(r.Date, loc)
		if err != nil {
			return time.Time{}, time.Time{}, eris.Wrapf(err, "line %d", r.Line)
		}
		if i == 0 || d.Before(from) {
			from = d
		}
		if i == 0 || d.After(to) {
			to = d
		}
	}
	return from, to, nil
}
