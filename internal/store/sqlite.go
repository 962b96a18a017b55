package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/crestline-research/finmap/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
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
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS runs (
	id         TEXT PRIMARY KEY,
	company    TEXT NOT NULL,
	row_count  INTEGER NOT NULL,
	years      TEXT NOT NULL,
	mapped     INTEGER NOT NULL,
	unmapped   INTEGER NOT NULL,
	config     TEXT,
	created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS run_mappings (
	run_id       TEXT NOT NULL REFERENCES runs(id),
	target       TEXT NOT NULL,
	source_label TEXT NOT NULL,
	statement    TEXT NOT NULL,
	confidence   REAL NOT NULL,
	base         REAL NOT NULL,
	bonus        REAL NOT NULL DEFAULT 0,
	note         TEXT,
	PRIMARY KEY (run_id, target)
);

CREATE TABLE IF NOT EXISTS run_resolutions (
	run_id      TEXT NOT NULL REFERENCES runs(id),
	target      TEXT NOT NULL,
	year        TEXT NOT NULL,
	value       REAL NOT NULL,
	provenance  TEXT NOT NULL,
	explanation TEXT,
	PRIMARY KEY (run_id, target, year)
);

CREATE TABLE IF NOT EXISTS publications (
	run_id       TEXT PRIMARY KEY REFERENCES runs(id),
	page_id      TEXT NOT NULL,
	published_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_runs_company ON runs(company);
CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at);
CREATE INDEX IF NOT EXISTS idx_run_resolutions_run_id ON run_resolutions(run_id);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) SaveRun(ctx context.Context, run *model.RunRecord, mappings []model.StoredMapping, resolutions []model.StoredResolution) error {
	yearsJSON, err := json.Marshal(run.Years)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal years")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin save run")
	}
	defer tx.Rollback() //nolint:errcheck

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, company, row_count, years, mapped, unmapped, config, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Company, run.RowCount, string(yearsJSON), run.Mapped, run.Unmapped, run.Config, run.CreatedAt,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: insert run %s", run.ID)
	}

	insMapping, err := tx.PrepareContext(ctx,
		`INSERT INTO run_mappings (run_id, target, source_label, statement, confidence, base, bonus, note) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return eris.Wrap(err, "sqlite: prepare mapping insert")
	}
	defer insMapping.Close() //nolint:errcheck
	for _, m := range mappings {
		if _, err := insMapping.ExecContext(ctx, m.RunID, m.Target, m.SourceLabel, string(m.Statement), m.Confidence, m.Base, m.Bonus, m.Note); err != nil {
			return eris.Wrapf(err, "sqlite: insert mapping %s", m.Target)
		}
	}

	insResolution, err := tx.PrepareContext(ctx,
		`INSERT INTO run_resolutions (run_id, target, year, value, provenance, explanation) VALUES (?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return eris.Wrap(err, "sqlite: prepare resolution insert")
	}
	defer insResolution.Close() //nolint:errcheck
	for _, r := range resolutions {
		if _, err := insResolution.ExecContext(ctx, r.RunID, r.Target, r.Year, r.Value, string(r.Provenance), r.Explanation); err != nil {
			return eris.Wrapf(err, "sqlite: insert resolution %s %s", r.Target, r.Year)
		}
	}

	return eris.Wrap(tx.Commit(), "sqlite: commit save run")
}

func (s *SQLiteStore) GetRun(ctx context.Context, runID string) (*model.RunRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, company, row_count, years, mapped, unmapped, config, created_at FROM runs WHERE id = ?`,
		runID,
	)
	return scanRun(row)
}

func (s *SQLiteStore) ListRuns(ctx context.Context, filter RunFilter) ([]model.RunRecord, error) {
	query := `SELECT id, company, row_count, years, mapped, unmapped, config, created_at FROM runs WHERE 1=1`
	var args []any

	if filter.Company != "" {
		query += ` AND company = ?`
		args = append(args, filter.Company)
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list runs")
	}
	defer rows.Close()

	var runs []model.RunRecord
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *r)
	}
	return runs, eris.Wrap(rows.Err(), "sqlite: list runs iterate")
}

func (s *SQLiteStore) LoadMappings(ctx context.Context, runID string) ([]model.StoredMapping, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, target, source_label, statement, confidence, base, bonus, note FROM run_mappings WHERE run_id = ? ORDER BY confidence DESC, target`,
		runID,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: load mappings %s", runID)
	}
	defer rows.Close()

	var out []model.StoredMapping
	for rows.Next() {
		var m model.StoredMapping
		var stmt string
		var note sql.NullString
		if err := rows.Scan(&m.RunID, &m.Target, &m.SourceLabel, &stmt, &m.Confidence, &m.Base, &m.Bonus, &note); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan mapping")
		}
		m.Statement = model.Statement(stmt)
		m.Note = note.String
		out = append(out, m)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: load mappings iterate")
}

func (s *SQLiteStore) LoadResolutions(ctx context.Context, runID string) ([]model.StoredResolution, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, target, year, value, provenance, explanation FROM run_resolutions WHERE run_id = ? ORDER BY target, year`,
		runID,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: load resolutions %s", runID)
	}
	defer rows.Close()

	var out []model.StoredResolution
	for rows.Next() {
		var r model.StoredResolution
		var prov string
		var expl sql.NullString
		if err := rows.Scan(&r.RunID, &r.Target, &r.Year, &r.Value, &prov, &expl); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan resolution")
		}
		r.Provenance = model.Provenance(prov)
		r.Explanation = expl.String
		out = append(out, r)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: load resolutions iterate")
}

func (s *SQLiteStore) SavePublication(ctx context.Context, runID, pageID string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO publications (run_id, page_id, published_at) VALUES (?, ?, datetime('now'))
		 ON CONFLICT (run_id) DO UPDATE SET page_id = excluded.page_id, published_at = excluded.published_at`,
		runID, pageID,
	)
	return eris.Wrapf(err, "sqlite: save publication %s", runID)
}

func (s *SQLiteStore) GetPublication(ctx context.Context, runID string) (string, error) {
	var pageID string
	err := s.db.QueryRowContext(ctx,
		`SELECT page_id FROM publications WHERE run_id = ?`,
		runID,
	).Scan(&pageID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", eris.Wrapf(err, "sqlite: get publication %s", runID)
	}
	return pageID, nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanRun(row scannable) (*model.RunRecord, error) {
	var r model.RunRecord
	var yearsJSON string
	var config sql.NullString

	err := row.Scan(&r.ID, &r.Company, &r.RowCount, &yearsJSON, &r.Mapped, &r.Unmapped, &config, &r.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan run")
	}

	if err := json.Unmarshal([]byte(yearsJSON), &r.Years); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal years")
	}
	r.Config = config.String
	return &r, nil
}
