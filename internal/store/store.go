// Package store persists reconciliation runs and reads candidate journeys.
package store

import (
	"context"
	"time"

	"github.com/sells-group/journey-recon/internal/model"
)

// Store defines the persistence interface for the reconciliation pipeline.
type Store interface {
	// Candidates
	LoadCandidates(ctx context.Context, from, to time.Time) ([]model.Candidate, error)

	// Upload ledger
	CreateUpload(ctx context.Context, source string) (*model.Upload, error)
	CompleteUpload(ctx context.Context, uploadID string, stats model.UploadStats) error
	FailUpload(ctx context.Context, uploadID string, reason string) error
	GetUpload(ctx context.Context, uploadID string) (*model.Upload, error)
	ListUploads(ctx context.Context, limit int) ([]model.Upload, error)

	// Results
	SaveRecords(ctx context.Context, uploadID string, rows []model.InsertRow) (int64, error)
	SaveMatchLog(ctx context.Context, uploadID string, summaries []model.MatchSummary) (int64, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// DefaultListLimit caps ListUploads when no limit is given.
const DefaultListLimit = 50

// RecordColumns are the driver_records columns written by SaveRecords.
var RecordColumns = append([]string{"upload_id", "row_num"}, model.InsertColumns...)

// MatchLogColumns are the match_log columns written by SaveMatchLog.
var MatchLogColumns = []string{
	"upload_id", "row_num", "excel_name", "matched_name", "record_date",
	"strategy", "confidence", "ambiguous",
}

// localDate rebuilds a stored calendar date as midnight in loc.
func localDate(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

func listLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	return limit
}

var (
	_ Store = (*PostgresStore)(nil)
	_ Store = (*SQLiteStore)(nil)
)
