package recon

import (
	"github.com/sells-group/journey-recon/internal/model"
)

// BuildInsertBatch matches every row and returns one InsertRow and one
// MatchSummary per input row, in input order. Unmatched rows are kept and
// flagged ambiguous for manual review.
func BuildInsertBatch(rows []model.SpreadsheetRow, m *Matcher) ([]model.InsertRow, []model.MatchSummary) {
	records := make([]model.InsertRow, 0, len(rows))
	summaries := make([]model.MatchSummary, 0, len(rows))

	for _, row := range rows {
		res := m.Match(row)
		rec := newInsertRow(row, res)
		records = append(records, rec)
		summaries = append(summaries, model.MatchSummary{
			ExcelName:   row.Name,
			MatchedName: rec.MatchedName,
			Date:        row.Date,
			Strategy:    res.Strategy,
			Confidence:  res.Confidence,
			Ambiguous:   rec.Ambiguous,
		})
	}

	return records, summaries
}

func newInsertRow(row model.SpreadsheetRow, res model.MatchResult) model.InsertRow {
	rec := model.InsertRow{
		OriginalName:        row.Name,
		Date:                row.Date,
		Deliveries:          row.Deliveries,
		FullStop:            row.FullStop,
		DoubleStop:          row.DoubleStop,
		Ambiguous:           res.Driver == nil,
		DeliveryDiscrepancy: absInt(row.Deliveries - res.Driver.PackageCount()),
	}

	if d := res.Driver; d != nil {
		rec.MatchedName = &d.Name
		rec.RouteName = d.RouteName
		rec.StartSeq = d.StartSeq
		rec.EndSeq = d.EndSeq
	}

	return rec
}

func absInt(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// Counts tallies match outcomes for one batch.
type Counts struct {
	ByStrategy map[model.Strategy]int `json:"by_strategy" yaml:"by_strategy"`
	Matched    int                    `json:"matched" yaml:"matched"`
	Ambiguous  int                    `json:"ambiguous" yaml:"ambiguous"`
}

// Tally counts summaries per strategy.
func Tally(summaries []model.MatchSummary) Counts {
	c := Counts{ByStrategy: make(map[model.Strategy]int)}
	for _, s := range summaries {
		c.ByStrategy[s.Strategy]++
		if s.Ambiguous {
			c.Ambiguous++
		} else {
			c.Matched++
		}
	}
	return c
}
