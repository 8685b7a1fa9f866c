// Package upload reads weekly driver spreadsheets into spreadsheet rows.
package upload

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/journey-recon/internal/model"
)

// Options configures upload reading.
type Options struct {
	SheetIndex  int
	SheetName   string
	Concurrency int // files read in parallel by ReadFiles; default 4
}

// File is one parsed upload.
type File struct {
	Path   string
	Rows   []model.SpreadsheetRow
	Errors []model.RowError
}

// ReadFile reads and parses one .xlsx or .csv upload.
func ReadFile(path string, opts Options) (*File, error) {
	records, err := readRecords(path, opts)
	if err != nil {
		return nil, err
	}

	rows, rowErrs, err := ParseRows(records)
	if err != nil {
		return nil, eris.Wrapf(err, "upload: parse %s", path)
	}
	for i := range rows {
		rows[i].Source = path
	}
	for i := range rowErrs {
		rowErrs[i].Source = path
	}

	zap.L().Debug("upload: parsed file",
		zap.String("component", "upload"),
		zap.String("path", path),
		zap.Int("rows", len(rows)),
		zap.Int("row_errors", len(rowErrs)),
	)

	return &File{Path: path, Rows: rows, Errors: rowErrs}, nil
}

// readRecords dispatches on the file extension.
func readRecords(path string, opts Options) ([][]string, error) {
	var (
		records [][]string
		err     error
	)

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".xlsx":
		records, err = ReadXLSX(path, XLSXOptions{SheetIndex: opts.SheetIndex, SheetName: opts.SheetName})
	case ".csv":
		records, err = ReadCSV(path)
	default:
		return nil, eris.Errorf("upload: unsupported file type %q", ext)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "upload: read %s", path)
	}
	return records, nil
}

// ReadFiles reads several uploads concurrently. The result keeps the order
// of paths; the first failure cancels the rest.
func ReadFiles(ctx context.Context, paths []string, opts Options) ([]*File, error) {
	files := make([]*File, len(paths))

	limit := opts.Concurrency
	if limit <= 0 {
		limit = 4
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return eris.Wrap(err, "upload: context cancelled")
			}
			f, err := ReadFile(path, opts)
			if err != nil {
				return err
			}
			files[i] = f
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return files, nil
}

// Merge concatenates files in order into one row list and one error list.
func Merge(files []*File) ([]model.SpreadsheetRow, []model.RowError) {
	var (
		rows []model.SpreadsheetRow
		errs []model.RowError
	)
	for _, f := range files {
		rows = append(rows, f.Rows...)
		errs = append(errs, f.Errors...)
	}
	return rows, errs
}
