package upload

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/journey-recon/internal/model"
	"github.com/sells-group/journey-recon/internal/recon"
)

const (
	dateLayout = "2006-01-02"
	// Excel's built-in short date format (numFmt 14) renders as mm-dd-yy.
	excelShortDate = "01-02-06"
)

type column int

const (
	colName column = iota
	colDate
	colDeliveries
	colFullStop
	colDoubleStop
)

// headerAliases maps a folded header cell to the column it names.
var headerAliases = map[string]column{
	"driver":        colName,
	"driver name":   colName,
	"name":          colName,
	"date":          colDate,
	"delivery date": colDate,
	"deliveries":    colDeliveries,
	"delivered":     colDeliveries,
	"full stop":     colFullStop,
	"fullstop":      colFullStop,
	"double stop":   colDoubleStop,
	"doublestop":    colDoubleStop,
}

// ParseRows converts raw records into spreadsheet rows. The first record is
// the header. Cells that cannot be read produce a RowError for that line
// and the line is left out; a missing name or date column fails the file.
func ParseRows(records [][]string) ([]model.SpreadsheetRow, []model.RowError, error) {
	if len(records) == 0 {
		return nil, nil, eris.New("upload: empty file")
	}

	cols := locateColumns(records[0], headerAliases)
	if _, ok := cols[colName]; !ok {
		return nil, nil, eris.New("upload: no driver name column in header")
	}
	if _, ok := cols[colDate]; !ok {
		return nil, nil, eris.New("upload: no date column in header")
	}

	var (
		rows []model.SpreadsheetRow
		errs []model.RowError
	)
	for i, rec := range records[1:] {
		if blankRecord(rec) {
			continue
		}
		line := i + 2

		row := model.SpreadsheetRow{
			Line: line,
			Name: strings.TrimSpace(cell(rec, cols, colName)),
			Date: normalizeDateCell(cell(rec, cols, colDate)),
		}

		var bad []string
		for _, c := range []struct {
			col  column
			dst  *int
			name string
		}{
			{colDeliveries, &row.Deliveries, "deliveries"},
			{colFullStop, &row.FullStop, "full stop"},
			{colDoubleStop, &row.DoubleStop, "double stop"},
		} {
			n, err := parseCount(cell(rec, cols, c.col))
			if err != nil {
				bad = append(bad, fmt.Sprintf("%s %q is not a whole number", c.name, cell(rec, cols, c.col)))
				continue
			}
			*c.dst = n
		}

		if len(bad) > 0 {
			errs = append(errs, model.RowError{Line: line, Name: row.Name, Reason: strings.Join(bad, ", ")})
			continue
		}
		rows = append(rows, row)
	}

	return rows, errs, nil
}

func locateColumns[C comparable](header []string, aliases map[string]C) map[C]int {
	cols := make(map[C]int)
	for i, h := range header {
		key := strings.Join(strings.Fields(strings.ToLower(h)), " ")
		col, ok := aliases[key]
		if !ok {
			continue
		}
		// First matching column wins.
		if _, seen := cols[col]; !seen {
			cols[col] = i
		}
	}
	return cols
}

func cell[C comparable](rec []string, cols map[C]int, col C) string {
	i, ok := cols[col]
	if !ok || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

func blankRecord(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// normalizeDateCell accepts YYYY-MM-DD, M/D/YY(YY), Excel's mm-dd-yy
// rendering or an Excel serial number. Anything else passes through for
// validation to reject.
func normalizeDateCell(v string) string {
	v = strings.TrimSpace(v)
	switch {
	case v == "":
		return ""
	case strings.Contains(v, "/"):
		return recon.FormatSlashDate(v)
	case strings.Contains(v, "-"):
		if t, err := time.Parse(excelShortDate, v); err == nil {
			return t.Format(dateLayout)
		}
		return v
	}

	serial, err := strconv.ParseFloat(v, 64)
	if err != nil || serial <= 0 {
		return v
	}
	return xlsx.TimeFromExcelTime(serial, false).Format(dateLayout)
}

func parseCount(v string) (int, error) {
	if v == "" {
		return 0, nil
	}
	v = strings.TrimSuffix(v, ".0")
	return strconv.Atoi(v)
}
