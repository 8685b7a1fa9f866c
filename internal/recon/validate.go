package recon

import (
	"fmt"
	"strings"
	"time"

	"github.com/sells-group/journey-recon/internal/model"
)

// ValidateRows splits rows into those the cascade can reconcile and
// per-row data-shape errors. A bad row never prevents the others from
// being reconciled.
func ValidateRows(rows []model.SpreadsheetRow) ([]model.SpreadsheetRow, []model.RowError) {
	valid := make([]model.SpreadsheetRow, 0, len(rows))
	var errs []model.RowError

	for _, row := range rows {
		if reason := checkRow(row); reason != "" {
			errs = append(errs, model.RowError{Source: row.Source, Line: row.Line, Name: row.Name, Reason: reason})
			continue
		}
		valid = append(valid, row)
	}

	return valid, errs
}

func checkRow(row model.SpreadsheetRow) string {
	switch {
	case strings.TrimSpace(row.Name) == "":
		return "missing name"
	case NormalizeName(row.Name) == "":
		return fmt.Sprintf("name %q has no letters or digits", row.Name)
	case row.Date == "":
		return "missing date"
	case row.Deliveries < 0:
		return "negative deliveries"
	case row.FullStop < 0:
		return "negative full stop count"
	case row.DoubleStop < 0:
		return "negative double stop count"
	}

	if _, err := time.Parse(time.DateOnly, row.Date); err != nil {
		return fmt.Sprintf("invalid date %q", row.Date)
	}
	return ""
}
