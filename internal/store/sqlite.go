package store

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/journey-recon/internal/model"
)

// sqliteChunkRows bounds rows per multi-row INSERT so the placeholder
// count stays under SQLite's variable limit.
const sqliteChunkRows = 500

// SQLiteStore implements Store using modernc.org/sqlite. It keeps its own
// journeys table so reconciliation can run without the operational
// database.
type SQLiteStore struct {
	db  *sql.DB
	loc *time.Location
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string, loc *time.Location) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close() //nolint:errcheck
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	if loc == nil {
		loc = time.Local
	}
	return &SQLiteStore{db: db, loc: loc}, nil
}

// Dates are stored as YYYY-MM-DD text.
const sqliteMigration = `
CREATE TABLE IF NOT EXISTS journeys (
	id           INTEGER PRIMARY KEY,
	driver_name  TEXT NOT NULL,
	journey_date TEXT NOT NULL,
	route_name   TEXT,
	start_seq    INTEGER,
	end_seq      INTEGER,
	packages     INTEGER
);

CREATE INDEX IF NOT EXISTS idx_journeys_date ON journeys(journey_date);

CREATE TABLE IF NOT EXISTS uploads (
	id             TEXT PRIMARY KEY,
	source         TEXT NOT NULL,
	status         TEXT NOT NULL DEFAULT 'running',
	started_at     DATETIME NOT NULL DEFAULT (datetime('now')),
	completed_at   DATETIME,
	rows_total     INTEGER NOT NULL DEFAULT 0,
	rows_matched   INTEGER NOT NULL DEFAULT 0,
	rows_ambiguous INTEGER NOT NULL DEFAULT 0,
	rows_skipped   INTEGER NOT NULL DEFAULT 0,
	error          TEXT
);

CREATE INDEX IF NOT EXISTS idx_uploads_started_at ON uploads(started_at);

CREATE TABLE IF NOT EXISTS driver_records (
	upload_id            TEXT NOT NULL REFERENCES uploads(id),
	row_num              INTEGER NOT NULL,
	original_name        TEXT NOT NULL,
	matched_name         TEXT,
	record_date          TEXT NOT NULL,
	deliveries           INTEGER NOT NULL DEFAULT 0,
	full_stop            INTEGER NOT NULL DEFAULT 0,
	double_stop          INTEGER NOT NULL DEFAULT 0,
	route_name           TEXT,
	start_seq            INTEGER,
	end_seq              INTEGER,
	ambiguous            INTEGER NOT NULL DEFAULT 0,
	delivery_discrepancy INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (upload_id, row_num)
);

CREATE TABLE IF NOT EXISTS match_log (
	upload_id    TEXT NOT NULL REFERENCES uploads(id),
	row_num      INTEGER NOT NULL,
	excel_name   TEXT NOT NULL,
	matched_name TEXT,
	record_date  TEXT NOT NULL,
	strategy     TEXT NOT NULL,
	confidence   REAL NOT NULL,
	ambiguous    INTEGER NOT NULL,
	PRIMARY KEY (upload_id, row_num)
);
`

// Migrate creates the schema.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// AddJourneys loads journeys into the local journeys table, replacing rows
// with the same id.
func (s *SQLiteStore) AddJourneys(ctx context.Context, cands []model.Candidate) error {
	rows := make([][]any, 0, len(cands))
	for _, c := range cands {
		rows = append(rows, []any{
			c.ID, c.Name, c.JourneyDate.In(s.loc).Format(time.DateOnly),
			nullable(c.RouteName), nullable(c.StartSeq), nullable(c.EndSeq), nullable(c.Packages),
		})
	}
	_, err := s.insertChunks(ctx, "INSERT OR REPLACE", "journeys",
		[]string{"id", "driver_name", "journey_date", "route_name", "start_seq", "end_seq", "packages"}, rows)
	return eris.Wrap(err, "sqlite: add journeys")
}

// LoadCandidates returns journeys dated within [from, to], ordered by date
// then id.
func (s *SQLiteStore) LoadCandidates(ctx context.Context, from, to time.Time) ([]model.Candidate, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, driver_name, journey_date, route_name, start_seq, end_seq, packages
		FROM journeys WHERE journey_date BETWEEN ? AND ? ORDER BY journey_date, id`,
		localDate(from, s.loc).Format(time.DateOnly), localDate(to, s.loc).Format(time.DateOnly),
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: load candidates")
	}
	defer rows.Close() //nolint:errcheck

	var cands []model.Candidate
	for rows.Next() {
		var (
			c                        model.Candidate
			date                     string
			route                    sql.NullString
			start, end, packageCount sql.NullInt64
		)
		if err := rows.Scan(&c.ID, &c.Name, &date, &route, &start, &end, &packageCount); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan candidate")
		}
		c.JourneyDate, err = time.ParseInLocation(time.DateOnly, date, s.loc)
		if err != nil {
			return nil, eris.Wrapf(err, "sqlite: journey %d date", c.ID)
		}
		if route.Valid {
			c.RouteName = &route.String
		}
		c.StartSeq = intPtr(start)
		c.EndSeq = intPtr(end)
		c.Packages = intPtr(packageCount)
		cands = append(cands, c)
	}
	return cands, eris.Wrap(rows.Err(), "sqlite: iterate candidates")
}

// CreateUpload records a running upload.
func (s *SQLiteStore) CreateUpload(ctx context.Context, source string) (*model.Upload, error) {
	u := &model.Upload{
		ID:        uuid.New().String(),
		Source:    source,
		Status:    model.UploadStatusRunning,
		StartedAt: time.Now().UTC(),
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO uploads (id, source, status, started_at) VALUES (?, ?, ?, ?)`,
		u.ID, u.Source, string(u.Status), u.StartedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert upload")
	}
	return u, nil
}

// CompleteUpload marks an upload complete with its counts.
func (s *SQLiteStore) CompleteUpload(ctx context.Context, uploadID string, stats model.UploadStats) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE uploads SET status = ?, completed_at = ?, rows_total = ?, rows_matched = ?, rows_ambiguous = ?, rows_skipped = ? WHERE id = ?`,
		string(model.UploadStatusComplete), time.Now().UTC(),
		stats.RowsTotal, stats.RowsMatched, stats.RowsAmbiguous, stats.RowsSkipped, uploadID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: complete upload %s", uploadID)
	}
	return checkRowsAffected(res, uploadID)
}

// FailUpload marks an upload failed.
func (s *SQLiteStore) FailUpload(ctx context.Context, uploadID string, reason string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE uploads SET status = ?, completed_at = ?, error = ? WHERE id = ?`,
		string(model.UploadStatusFailed), time.Now().UTC(), reason, uploadID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: fail upload %s", uploadID)
	}
	return checkRowsAffected(res, uploadID)
}

// GetUpload returns one upload or ErrNotFound.
func (s *SQLiteStore) GetUpload(ctx context.Context, uploadID string) (*model.Upload, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+uploadColumns+` FROM uploads WHERE id = ?`, uploadID)
	u, err := scanSQLiteUpload(row)
	if eris.Is(err, sql.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "sqlite: upload %s", uploadID)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get upload %s", uploadID)
	}
	return u, nil
}

// ListUploads returns the most recent uploads first.
func (s *SQLiteStore) ListUploads(ctx context.Context, limit int) ([]model.Upload, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+uploadColumns+` FROM uploads ORDER BY started_at DESC, rowid DESC LIMIT ?`,
		listLimit(limit),
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list uploads")
	}
	defer rows.Close() //nolint:errcheck

	var uploads []model.Upload
	for rows.Next() {
		u, err := scanSQLiteUpload(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan upload")
		}
		uploads = append(uploads, *u)
	}
	return uploads, eris.Wrap(rows.Err(), "sqlite: iterate uploads")
}

// SaveRecords writes the insert batch with (upload_id, row_num) keys,
// replacing rows saved by an earlier attempt.
func (s *SQLiteStore) SaveRecords(ctx context.Context, uploadID string, rows []model.InsertRow) (int64, error) {
	values := make([][]any, 0, len(rows))
	for i, r := range rows {
		values = append(values, append([]any{uploadID, i + 1}, r.Values()...))
	}
	n, err := s.insertChunks(ctx, "INSERT OR REPLACE", "driver_records", RecordColumns, values)
	if err != nil {
		return 0, eris.Wrapf(err, "sqlite: save records for upload %s", uploadID)
	}
	return n, nil
}

// SaveMatchLog writes the per-row diagnostics.
func (s *SQLiteStore) SaveMatchLog(ctx context.Context, uploadID string, summaries []model.MatchSummary) (int64, error) {
	values := make([][]any, 0, len(summaries))
	for i, m := range summaries {
		values = append(values, []any{
			uploadID, i + 1, m.ExcelName, nullable(m.MatchedName), m.Date,
			string(m.Strategy), m.Confidence, m.Ambiguous,
		})
	}
	n, err := s.insertChunks(ctx, "INSERT OR REPLACE", "match_log", MatchLogColumns, values)
	if err != nil {
		return 0, eris.Wrapf(err, "sqlite: save match log for upload %s", uploadID)
	}
	return n, nil
}

// insertChunks writes rows with multi-row INSERT statements inside one
// transaction.
func (s *SQLiteStore) insertChunks(ctx context.Context, verb, table string, columns []string, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin tx")
	}
	defer tx.Rollback() //nolint:errcheck

	placeholder := "(" + strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ") + ")"
	prefix := verb + " INTO " + table + " (" + strings.Join(columns, ", ") + ") VALUES "

	var total int64
	for start := 0; start < len(rows); start += sqliteChunkRows {
		end := min(start+sqliteChunkRows, len(rows))
		chunk := rows[start:end]

		tuples := make([]string, len(chunk))
		args := make([]any, 0, len(chunk)*len(columns))
		for i, r := range chunk {
			tuples[i] = placeholder
			args = append(args, r...)
		}

		res, err := tx.ExecContext(ctx, prefix+strings.Join(tuples, ", "), args...)
		if err != nil {
			return 0, eris.Wrapf(err, "sqlite: insert into %s", table)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, eris.Wrap(err, "sqlite: rows affected")
		}
		total += n
	}

	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: commit tx")
	}
	return total, nil
}

func checkRowsAffected(res sql.Result, uploadID string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "sqlite: rows affected")
	}
	if n == 0 {
		return eris.Wrapf(ErrNotFound, "sqlite: upload %s", uploadID)
	}
	return nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanSQLiteUpload(row scannable) (*model.Upload, error) {
	var (
		u         model.Upload
		status    string
		completed sql.NullTime
		errMsg    sql.NullString
	)
	if err := row.Scan(&u.ID, &u.Source, &status, &u.StartedAt, &completed,
		&u.RowsTotal, &u.RowsMatched, &u.RowsAmbiguous, &u.RowsSkipped, &errMsg); err != nil {
		return nil, err
	}
	u.Status = model.UploadStatus(status)
	if completed.Valid {
		t := completed.Time
		u.CompletedAt = &t
	}
	u.Error = errMsg.String
	return &u, nil
}

func nullable[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}

func intPtr(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}
