package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/corpusfetch/internal/model"
)

// FileName is the database file created inside the data directory.
const FileName = "corpusfetch.db"

// timeLayout keeps stored timestamps sortable as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// DefaultLimit is the number of runs ListRuns returns when limit is not positive.
const DefaultLimit = 20

// RunLog stores run reports in SQLite.
type RunLog struct {
	db     *sql.DB
	dbPath string
}

// Options configures Open.
type Options struct {
	// CreateIfNotExists creates the directory and database file if missing.
	CreateIfNotExists bool

	// EnableWAL switches the journal to write-ahead logging.
	EnableWAL bool
}

// DefaultOptions returns the options used by the CLI.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens the run log in dir.
func Open(dir string, opts Options) (*RunLog, error) {
	dbPath := filepath.Join(dir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("run log not found at %s", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check run log path: %w", err)
		}
	} else if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create run log directory: %w", err)
	}

	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open run log: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	l := &RunLog{db: db, dbPath: dbPath}
	if err := l.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return l, nil
}

// Path returns the database file path.
func (l *RunLog) Path() string {
	return l.dbPath
}

// Close closes the database.
func (l *RunLog) Close() error {
	return l.db.Close()
}

func (l *RunLog) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		mode TEXT NOT NULL,
		collection TEXT NOT NULL,
		started TEXT NOT NULL,
		finished TEXT NOT NULL,
		pages_total INTEGER NOT NULL,
		pages_ok INTEGER NOT NULL,
		units_total INTEGER NOT NULL,
		units_ok INTEGER NOT NULL,
		outcome TEXT NOT NULL,
		error TEXT,
		failures TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_runs_collection ON runs(collection);
	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started);

	-- One row per persistence outcome of a run
	CREATE TABLE IF NOT EXISTS documents (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id INTEGER NOT NULL REFERENCES runs(id),
		path TEXT NOT NULL,
		variant TEXT NOT NULL,
		status TEXT NOT NULL,
		bytes INTEGER NOT NULL,
		digest TEXT,
		error TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_documents_run ON documents(run_id);
	`
	_, err := l.db.ExecContext(context.Background(), schema)
	return err
}

// failureRecord is the stored form of a model.UnitFailure.
type failureRecord struct {
	Unit     string `json:"unit"`
	Reason   string `json:"reason"`
	Status   int    `json:"status"`
	Attempts int    `json:"attempts"`
}

// Document status values.
const (
	StatusWritten = "written"
	StatusSkipped = "skipped"
	StatusFailed  = "failed"
)

func documentStatus(w model.WriteResult) string {
	switch {
	case w.Err != nil:
		return StatusFailed
	case w.Skipped:
		return StatusSkipped
	default:
		return StatusWritten
	}
}

// SaveRun stores report and its write results in one transaction.
// It returns the id of the new run.
func (l *RunLog) SaveRun(ctx context.Context, report *model.RunReport) (id int64, err error) {
	failures := make([]failureRecord, 0, len(report.Failures))
	for _, f := range report.Failures {
		failures = append(failures, failureRecord{
			Unit:     f.Unit.String(),
			Reason:   f.Reason,
			Status:   f.Status,
			Attempts: f.Attempts,
		})
	}
	failuresJSON, err := json.Marshal(failures)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize failures: %w", err)
	}

	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx, `
	INSERT INTO runs (mode, collection, started, finished, pages_total, pages_ok,
		units_total, units_ok, outcome, error, failures)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		string(report.Mode),
		report.Collection,
		report.Started.UTC().Format(timeLayout),
		report.Finished.UTC().Format(timeLayout),
		report.PagesTotal,
		report.PagesOK,
		report.UnitsTotal,
		report.UnitsOK,
		report.Outcome().String(),
		report.Error,
		string(failuresJSON),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save run: %w", err)
	}
	id, err = res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get run id: %w", err)
	}

	for _, w := range report.Writes {
		var writeErr string
		if w.Err != nil {
			writeErr = w.Err.Error()
		}
		if _, err = tx.ExecContext(ctx, `
		INSERT INTO documents (run_id, path, variant, status, bytes, digest, error)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		`, id, w.Path, w.Variant.String(), documentStatus(w), w.Bytes, w.Digest, writeErr); err != nil {
			return 0, fmt.Errorf("failed to save document: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit run: %w", err)
	}
	return id, nil
}

// RunRecord is a stored run.
type RunRecord struct {
	ID         int64
	Mode       model.Mode
	Collection string
	Started    time.Time
	Finished   time.Time
	PagesTotal int
	PagesOK    int
	UnitsTotal int
	UnitsOK    int
	Outcome    string
	Error      string
	Failures   []string
}

// DocumentRecord is a stored persistence outcome.
type DocumentRecord struct {
	Path    string
	Variant string
	Status  string
	Bytes   int
	Digest  string
	Error   string
}

// ListRuns returns the most recent runs, newest first. An empty
// collection lists runs of every collection.
func (l *RunLog) ListRuns(ctx context.Context, collection string, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	query := `
	SELECT id, mode, collection, started, finished, pages_total, pages_ok,
		units_total, units_ok, outcome, error, failures
	FROM runs
	WHERE ? = '' OR collection = ?
	ORDER BY started DESC, id DESC
	LIMIT ?
	`
	rows, err := l.db.QueryContext(ctx, query, collection, collection, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	runs := make([]RunRecord, 0)
	for rows.Next() {
		var (
			r                 RunRecord
			mode              string
			started, finished string
			runErr, failures  sql.NullString
		)
		if err := rows.Scan(&r.ID, &mode, &r.Collection, &started, &finished,
			&r.PagesTotal, &r.PagesOK, &r.UnitsTotal, &r.UnitsOK, &r.Outcome, &runErr, &failures); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		r.Mode = model.Mode(mode)
		r.Started = parseTimestamp(started)
		r.Finished = parseTimestamp(finished)
		r.Error = runErr.String
		r.Failures = decodeFailures(failures.String)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Documents returns the persistence outcomes of one run in write order.
func (l *RunLog) Documents(ctx context.Context, runID int64) ([]DocumentRecord, error) {
	rows, err := l.db.QueryContext(ctx, `
	SELECT path, variant, status, bytes, digest, error
	FROM documents
	WHERE run_id = ?
	ORDER BY id
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	docs := make([]DocumentRecord, 0)
	for rows.Next() {
		var (
			d             DocumentRecord
			digest, dbErr sql.NullString
		)
		if err := rows.Scan(&d.Path, &d.Variant, &d.Status, &d.Bytes, &digest, &dbErr); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		d.Digest = digest.String
		d.Error = dbErr.String
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

func decodeFailures(s string) []string {
	if s == "" {
		return nil
	}
	var records []failureRecord
	if err := json.Unmarshal([]byte(s), &records); err != nil {
		return nil
	}
	out := make([]string, 0, len(records))
	for _, f := range records {
		out = append(out, f.Unit+": "+f.Reason)
	}
	return out
}

// timestampFormats are the layouts runs may have been stored with.
var timestampFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

// parseTimestamp returns the zero time when s matches no known layout.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
