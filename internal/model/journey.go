package model

import (
	"fmt"
	"time"
)

// Candidate is one authoritative driver journey for a single calendar date.
// It is loaded once per reconciliation run and never mutated.
type Candidate struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	JourneyDate time.Time `json:"journey_date"` // local midnight of the journey's date
	RouteName   *string   `json:"route_name,omitempty"`
	StartSeq    *int      `json:"start_seq,omitempty"`
	EndSeq      *int      `json:"end_seq,omitempty"`
	Packages    *int      `json:"packages,omitempty"` // expected delivery count
}

// PackageCount returns the expected delivery count, treating absent as 0.
func (c *Candidate) PackageCount() int {
	if c == nil || c.Packages == nil {
		return 0
	}
	return *c.Packages
}

// SpreadsheetRow is one parsed line of an uploaded weekly spreadsheet.
type SpreadsheetRow struct {
	Source     string `json:"source,omitempty" yaml:"source,omitempty"` // uploaded file path
	Line       int    `json:"line,omitempty" yaml:"line,omitempty"`     // 1-based source line
	Name       string `json:"name" yaml:"name"`
	Date       string `json:"date" yaml:"date"` // YYYY-MM-DD
	Deliveries int    `json:"deliveries" yaml:"deliveries"`
	FullStop   int    `json:"full_stop" yaml:"full_stop"`
	DoubleStop int    `json:"double_stop" yaml:"double_stop"`
}

// RowError is a data-shape problem with a single uploaded row. The row is
// skipped; the rest of the upload is still reconciled.
type RowError struct {
	Source string `json:"source,omitempty" yaml:"source,omitempty"`
	Line   int    `json:"line" yaml:"line"`
	Name   string `json:"name,omitempty" yaml:"name,omitempty"`
	Reason string `json:"reason" yaml:"reason"`
}

func (e RowError) Error() string {
	loc := fmt.Sprintf("line %d", e.Line)
	if e.Source != "" {
		loc = e.Source + " " + loc
	}
	if e.Name == "" {
		return fmt.Sprintf("%s: %s", loc, e.Reason)
	}
	return fmt.Sprintf("%s (%s): %s", loc, e.Name, e.Reason)
}
