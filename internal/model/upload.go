package model

import "time"

// UploadStatus is the ledger state of one reconciliation run.
type UploadStatus string

const (
	UploadStatusRunning  UploadStatus = "running"
	UploadStatusComplete UploadStatus = "complete"
	UploadStatusFailed   UploadStatus = "failed"
)

// Upload is a run ledger entry for one uploaded spreadsheet batch.
type Upload struct {
	ID            string       `json:"id"`
	Source        string       `json:"source"`
	Status        UploadStatus `json:"status"`
	StartedAt     time.Time    `json:"started_at"`
	CompletedAt   *time.Time   `json:"completed_at,omitempty"`
	RowsTotal     int          `json:"rows_total"`
	RowsMatched   int          `json:"rows_matched"`
	RowsAmbiguous int          `json:"rows_ambiguous"`
	RowsSkipped   int          `json:"rows_skipped"`
	Error         string       `json:"error,omitempty"`
}

// UploadStats are the counts recorded when an upload completes.
type UploadStats struct {
	RowsTotal     int `json:"rows_total"`
	RowsMatched   int `json:"rows_matched"`
	RowsAmbiguous int `json:"rows_ambiguous"`
	RowsSkipped   int `json:"rows_skipped"`
}
