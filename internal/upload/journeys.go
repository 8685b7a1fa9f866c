package upload

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/journey-recon/internal/model"
	"github.com/sells-group/journey-recon/internal/recon"
)

type journeyColumn int

const (
	jcolID journeyColumn = iota
	jcolName
	jcolDate
	jcolRoute
	jcolStartSeq
	jcolEndSeq
	jcolPackages
)

var journeyAliases = map[string]journeyColumn{
	"id":           jcolID,
	"journey id":   jcolID,
	"journey_id":   jcolID,
	"driver":       jcolName,
	"driver name":  jcolName,
	"driver_name":  jcolName,
	"name":         jcolName,
	"date":         jcolDate,
	"journey date": jcolDate,
	"journey_date": jcolDate,
	"route":        jcolRoute,
	"route name":   jcolRoute,
	"route_name":   jcolRoute,
	"start seq":    jcolStartSeq,
	"start_seq":    jcolStartSeq,
	"end seq":      jcolEndSeq,
	"end_seq":      jcolEndSeq,
	"packages":     jcolPackages,
}

// ParseJourneys converts raw records into candidate journeys dated at local
// midnight in loc. The header needs id, driver name and date columns; route,
// start_seq, end_seq and packages are optional and blank means absent.
func ParseJourneys(records [][]string, loc *time.Location) ([]model.Candidate, []model.RowError, error) {
	if len(records) == 0 {
		return nil, nil, eris.New("upload: empty file")
	}
	if loc == nil {
		loc = time.Local
	}

	cols := locateColumns(records[0], journeyAliases)
	for _, req := range []struct {
		col  journeyColumn
		name string
	}{{jcolID, "id"}, {jcolName, "driver name"}, {jcolDate, "date"}} {
		if _, ok := cols[req.col]; !ok {
			return nil, nil, eris.Errorf("upload: no %s column in journeys header", req.name)
		}
	}

	var (
		cands []model.Candidate
		errs  []model.RowError
	)
	for i, rec := range records[1:] {
		if blankRecord(rec) {
			continue
		}
		line := i + 2
		c, reason := parseJourney(rec, cols, loc)
		if reason != "" {
			errs = append(errs, model.RowError{Line: line, Name: cell(rec, cols, jcolName), Reason: reason})
			continue
		}
		cands = append(cands, c)
	}
	return cands, errs, nil
}

func parseJourney(rec []string, cols map[journeyColumn]int, loc *time.Location) (model.Candidate, string) {
	var c model.Candidate

	id, err := strconv.ParseInt(cell(rec, cols, jcolID), 10, 64)
	if err != nil {
		return c, fmt.Sprintf("id %q is not a whole number", cell(rec, cols, jcolID))
	}
	c.ID = id

	c.Name = cell(rec, cols, jcolName)
	if c.Name == "" {
		return c, "missing name"
	}

	raw := cell(rec, cols, jcolDate)
	day, err := recon.ParseDateKey(normalizeDateCell(raw), loc)
	if err != nil {
		return c, fmt.Sprintf("invalid date %q", raw)
	}
	c.JourneyDate = day

	if route := cell(rec, cols, jcolRoute); route != "" {
		c.RouteName = &route
	}

	var bad []string
	for _, f := range []struct {
		col  journeyColumn
		dst  **int
		name string
	}{
		{jcolStartSeq, &c.StartSeq, "start_seq"},
		{jcolEndSeq, &c.EndSeq, "end_seq"},
		{jcolPackages, &c.Packages, "packages"},
	} {
		v := cell(rec, cols, f.col)
		if v == "" {
			continue
		}
		n, err := parseCount(v)
		if err != nil {
			bad = append(bad, fmt.Sprintf("%s %q is not a whole number", f.name, v))
			continue
		}
		*f.dst = &n
	}
	if len(bad) > 0 {
		return c, strings.Join(bad, ", ")
	}
	return c, ""
}

// ReadJourneys reads and parses one .xlsx or .csv journeys export.
func ReadJourneys(path string, opts Options, loc *time.Location) ([]model.Candidate, []model.RowError, error) {
	records, err := readRecords(path, opts)
	if err != nil {
		return nil, nil, err
	}

	cands, rowErrs, err := ParseJourneys(records, loc)
	if err != nil {
		return nil, nil, eris.Wrapf(err, "upload: parse %s", path)
	}
	for i := range rowErrs {
		rowErrs[i].Source = path
	}

	zap.L().Debug("upload: parsed journeys",
		zap.String("component", "upload"),
		zap.String("path", path),
		zap.Int("journeys", len(cands)),
		zap.Int("row_errors", len(rowErrs)),
	)
	return cands, rowErrs, nil
}
