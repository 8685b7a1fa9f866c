package model

// Strategy names the cascade step that produced a match result.
type Strategy string

const (
	StrategyExact        Strategy = "exact"
	StrategyPartial      Strategy = "partial"
	StrategyFuzzy        Strategy = "fuzzy"
	StrategyFirstLast    Strategy = "first_last"
	StrategyNoCandidates Strategy = "no_candidates"
	StrategyNoMatch      Strategy = "no_match"
)

// Matched reports whether results with this strategy carry a driver.
func (s Strategy) Matched() bool {
	return s != StrategyNoCandidates && s != StrategyNoMatch
}

// MatchResult is the outcome of reconciling one spreadsheet row.
// Driver is nil exactly when Strategy is no_candidates or no_match.
type MatchResult struct {
	Driver     *Candidate `json:"driver,omitempty"`
	Strategy   Strategy   `json:"strategy"`
	Confidence float64    `json:"confidence"`
}

// InsertColumns are the persisted column names of an InsertRow, in tuple order.
var InsertColumns = []string{
	"original_name",
	"matched_name",
	"record_date",
	"deliveries",
	"full_stop",
	"double_stop",
	"route_name",
	"start_seq",
	"end_seq",
	"ambiguous",
	"delivery_discrepancy",
}

// InsertRow is the denormalized, insert-ready record for one uploaded row.
// Downstream consumers depend on the field order of Values.
type InsertRow struct {
	OriginalName        string  `json:"original_name"`
	MatchedName         *string `json:"matched_name"`
	Date                string  `json:"date"`
	Deliveries          int     `json:"deliveries"`
	FullStop            int     `json:"full_stop"`
	DoubleStop          int     `json:"double_stop"`
	RouteName           *string `json:"route_name"`
	StartSeq            *int    `json:"start_seq"`
	EndSeq              *int    `json:"end_seq"`
	Ambiguous           bool    `json:"ambiguous"`
	DeliveryDiscrepancy int     `json:"delivery_discrepancy"`
}

// Values returns the 11-field tuple in InsertColumns order. Absent values
// are untyped nil so every driver writes SQL NULL.
func (r InsertRow) Values() []any {
	return []any{
		r.OriginalName,
		nullString(r.MatchedName),
		r.Date,
		r.Deliveries,
		r.FullStop,
		r.DoubleStop,
		nullString(r.RouteName),
		nullInt(r.StartSeq),
		nullInt(r.EndSeq),
		r.Ambiguous,
		r.DeliveryDiscrepancy,
	}
}

// MatchSummary is the per-row diagnostic record surfaced to operators.
type MatchSummary struct {
	ExcelName   string   `json:"excel_name" yaml:"excel_name"`
	MatchedName *string  `json:"matched_name" yaml:"matched_name"`
	Date        string   `json:"date" yaml:"date"`
	Strategy    Strategy `json:"strategy" yaml:"strategy"`
	Confidence  float64  `json:"confidence" yaml:"confidence"`
	Ambiguous   bool     `json:"ambiguous" yaml:"ambiguous"`
}

func nullString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func nullInt(n *int) any {
	if n == nil {
		return nil
	}
	return *n
}
