package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/journey-recon/internal/db"
	"github.com/sells-group/journey-recon/internal/model"
	"github.com/sells-group/journey-recon/internal/resilience"
)

// ErrNotFound is returned when a requested upload does not exist.
var ErrNotFound = eris.New("store: not found")

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	loc     *time.Location
	retry   resilience.RetryConfig
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool. Journey dates
// are read as calendar dates in loc.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig, loc *time.Location) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	retry := resilience.DefaultRetryConfig()
	retry.OnRetry = resilience.RetryLogger("postgres", "ping")
	if err := resilience.Do(ctx, retry, pool.Ping); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return newPostgresStore(pool, loc, pool.Close), nil
}

func newPostgresStore(pool db.Pool, loc *time.Location, closeFn func()) *PostgresStore {
	if loc == nil {
		loc = time.Local
	}
	retry := resilience.DefaultRetryConfig()
	retry.OnRetry = resilience.RetryLogger("postgres", "load_candidates")
	return &PostgresStore{pool: pool, loc: loc, retry: retry, closeFn: closeFn}
}

// Migrate applies the embedded recon schema migrations.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	return migratePostgres(ctx, s.pool)
}

// Close releases the pool.
func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

const loadCandidatesSQL = `SELECT id, driver_name, journey_date, route_name, start_seq, end_seq, packages
FROM public.journeys
WHERE journey_date BETWEEN $1 AND $2
ORDER BY journey_date, id`

// LoadCandidates returns journeys dated within [from, to], ordered by date
// then id. Transient failures are retried.
func (s *PostgresStore) LoadCandidates(ctx context.Context, from, to time.Time) ([]model.Candidate, error) {
	return resilience.DoVal(ctx, s.retry, func(ctx context.Context) ([]model.Candidate, error) {
		return s.loadCandidates(ctx, from, to)
	})
}

func (s *PostgresStore) loadCandidates(ctx context.Context, from, to time.Time) ([]model.Candidate, error) {
	rows, err := s.pool.Query(ctx, loadCandidatesSQL, localDate(from, s.loc), localDate(to, s.loc))
	if err != nil {
		return nil, eris.Wrap(err, "postgres: load candidates")
	}
	defer rows.Close()

	var cands []model.Candidate
	for rows.Next() {
		var (
			c    model.Candidate
			date time.Time
		)
		if err := rows.Scan(&c.ID, &c.Name, &date, &c.RouteName, &c.StartSeq, &c.EndSeq, &c.Packages); err != nil {
			return nil, eris.Wrap(err, "postgres: scan candidate")
		}
		c.JourneyDate = localDate(date, s.loc)
		cands = append(cands, c)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "postgres: iterate candidates")
	}
	return cands, nil
}

// CreateUpload records a running upload.
func (s *PostgresStore) CreateUpload(ctx context.Context, source string) (*model.Upload, error) {
	u := &model.Upload{
		ID:        uuid.New().String(),
		Source:    source,
		Status:    model.UploadStatusRunning,
		StartedAt: time.Now().UTC(),
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO recon.uploads (id, source, status, started_at) VALUES ($1, $2, $3, $4)`,
		u.ID, u.Source, string(u.Status), u.StartedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert upload")
	}
	return u, nil
}

// CompleteUpload marks an upload complete with its counts.
func (s *PostgresStore) CompleteUpload(ctx context.Context, uploadID string, stats model.UploadStats) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE recon.uploads SET status = $1, completed_at = $2, rows_total = $3, rows_matched = $4, rows_ambiguous = $5, rows_skipped = $6 WHERE id = $7`,
		string(model.UploadStatusComplete), time.Now().UTC(),
		stats.RowsTotal, stats.RowsMatched, stats.RowsAmbiguous, stats.RowsSkipped, uploadID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: complete upload %s", uploadID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(ErrNotFound, "postgres: upload %s", uploadID)
	}
	return nil
}

// FailUpload marks an upload failed.
func (s *PostgresStore) FailUpload(ctx context.Context, uploadID string, reason string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE recon.uploads SET status = $1, completed_at = $2, error = $3 WHERE id = $4`,
		string(model.UploadStatusFailed), time.Now().UTC(), reason, uploadID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: fail upload %s", uploadID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(ErrNotFound, "postgres: upload %s", uploadID)
	}
	return nil
}

const uploadColumns = `id, source, status, started_at, completed_at, rows_total, rows_matched, rows_ambiguous, rows_skipped, error`

// GetUpload returns one upload or ErrNotFound.
func (s *PostgresStore) GetUpload(ctx context.Context, uploadID string) (*model.Upload, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+uploadColumns+` FROM recon.uploads WHERE id = $1`, uploadID)
	u, err := scanUpload(row)
	if eris.Is(err, pgx.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "postgres: upload %s", uploadID)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get upload %s", uploadID)
	}
	return u, nil
}

// ListUploads returns the most recent uploads first.
func (s *PostgresStore) ListUploads(ctx context.Context, limit int) ([]model.Upload, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+uploadColumns+` FROM recon.uploads ORDER BY started_at DESC LIMIT $1`,
		listLimit(limit),
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list uploads")
	}
	defer rows.Close()

	var uploads []model.Upload
	for rows.Next() {
		u, err := scanUpload(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan upload")
		}
		uploads = append(uploads, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "postgres: iterate uploads")
	}
	return uploads, nil
}

func scanUpload(row pgx.Row) (*model.Upload, error) {
	var (
		u      model.Upload
		status string
		errMsg *string
	)
	if err := row.Scan(&u.ID, &u.Source, &status, &u.StartedAt, &u.CompletedAt,
		&u.RowsTotal, &u.RowsMatched, &u.RowsAmbiguous, &u.RowsSkipped, &errMsg); err != nil {
		return nil, err
	}
	u.Status = model.UploadStatus(status)
	if errMsg != nil {
		u.Error = *errMsg
	}
	return &u, nil
}

// SaveRecords upserts the insert batch keyed on (upload_id, row_num), so
// saving the same upload twice leaves one copy of each row.
func (s *PostgresStore) SaveRecords(ctx context.Context, uploadID string, rows []model.InsertRow) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	values := make([][]any, 0, len(rows))
	for i, r := range rows {
		date, err := time.ParseInLocation(time.DateOnly, r.Date, s.loc)
		if err != nil {
			return 0, eris.Wrapf(err, "postgres: record %d date", i+1)
		}
		v := r.Values()
		v[2] = date
		values = append(values, append([]any{uploadID, i + 1}, v...))
	}

	n, err := db.BulkUpsert(ctx, s.pool, db.UpsertConfig{
		Table:        "recon.driver_records",
		Columns:      RecordColumns,
		ConflictKeys: []string{"upload_id", "row_num"},
	}, values)
	if err != nil {
		return 0, eris.Wrapf(err, "postgres: save records for upload %s", uploadID)
	}
	return n, nil
}

// SaveMatchLog copies the per-row diagnostics into recon.match_log.
func (s *PostgresStore) SaveMatchLog(ctx context.Context, uploadID string, summaries []model.MatchSummary) (int64, error) {
	values := make([][]any, 0, len(summaries))
	for i, m := range summaries {
		date, err := time.ParseInLocation(time.DateOnly, m.Date, s.loc)
		if err != nil {
			return 0, eris.Wrapf(err, "postgres: match log %d date", i+1)
		}
		var matched any
		if m.MatchedName != nil {
			matched = *m.MatchedName
		}
		values = append(values, []any{
			uploadID, i + 1, m.ExcelName, matched, date,
			string(m.Strategy), m.Confidence, m.Ambiguous,
		})
	}

	n, err := db.CopyFrom(ctx, s.pool, "recon.match_log", MatchLogColumns, values)
	if err != nil {
		return 0, eris.Wrapf(err, "postgres: save match log for upload %s", uploadID)
	}
	return n, nil
}
