package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/crestline-research/finmap/internal/db"
	"github.com/crestline-research/finmap/internal/model"
)

// PostgresStore implements Store using pgxpool. Run children go through the
// COPY protocol; a saved run writes one mapping row per assignment and one
// resolution row per (target, year) cell.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// preparedStatements lists queries to prepare on each new connection for
// faster execution of the most frequently used store operations.
var preparedStatements = map[string]string{
	"insert_run":       `INSERT INTO runs (id, company, row_count, years, mapped, unmapped, config, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
	"get_run":          `SELECT id, company, row_count, years, mapped, unmapped, config, created_at FROM runs WHERE id = $1`,
	"get_publication":  `SELECT page_id FROM publications WHERE run_id = $1`,
	"save_publication": `INSERT INTO publications (run_id, page_id, published_at) VALUES ($1, $2, now()) ON CONFLICT (run_id) DO UPDATE SET page_id = EXCLUDED.page_id, published_at = EXCLUDED.published_at`,
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	pgxCfg.MaxConns = 10
	pgxCfg.MinConns = 2
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	// Prepare frequently-used statements on each new connection.
	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

// Pool returns the underlying database pool for subsystems needing direct
// query access.
func (s *PostgresStore) Pool() db.Pool {
	return s.pool
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS runs (
	id         TEXT PRIMARY KEY,
	company    TEXT NOT NULL,
	row_count  INTEGER NOT NULL,
	years      JSONB NOT NULL,
	mapped     INTEGER NOT NULL,
	unmapped   INTEGER NOT NULL,
	config     JSONB,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS run_mappings (
	run_id       TEXT NOT NULL REFERENCES runs(id),
	target       TEXT NOT NULL,
	source_label TEXT NOT NULL,
	statement    TEXT NOT NULL,
	confidence   DOUBLE PRECISION NOT NULL,
	base         DOUBLE PRECISION NOT NULL,
	bonus        DOUBLE PRECISION NOT NULL DEFAULT 0,
	note         TEXT,
	PRIMARY KEY (run_id, target)
);

CREATE TABLE IF NOT EXISTS run_resolutions (
	run_id      TEXT NOT NULL REFERENCES runs(id),
	target      TEXT NOT NULL,
	year        TEXT NOT NULL,
	value       DOUBLE PRECISION NOT NULL,
	provenance  TEXT NOT NULL,
	explanation TEXT,
	PRIMARY KEY (run_id, target, year)
);

CREATE TABLE IF NOT EXISTS publications (
	run_id       TEXT PRIMARY KEY REFERENCES runs(id),
	page_id      TEXT NOT NULL,
	published_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_runs_company ON runs(company);
CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at);
CREATE INDEX IF NOT EXISTS idx_run_resolutions_run_id ON run_resolutions(run_id);
`

func (s *PostgresStore) Ping(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "SELECT 1")
	return eris.Wrap(err, "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) SaveRun(ctx context.Context, run *model.RunRecord, mappings []model.StoredMapping, resolutions []model.StoredResolution) error {
	yearsJSON, err := json.Marshal(run.Years)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal years")
	}

	var config any
	if run.Config != "" {
		config = run.Config
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO runs (id, company, row_count, years, mapped, unmapped, config, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		run.ID, run.Company, run.RowCount, yearsJSON, run.Mapped, run.Unmapped, config, run.CreatedAt,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: insert run %s", run.ID)
	}

	mappingRows := make([][]any, len(mappings))
	for i, m := range mappings {
		mappingRows[i] = []any{m.RunID, m.Target, m.SourceLabel, string(m.Statement), m.Confidence, m.Base, m.Bonus, m.Note}
	}
	if _, err := db.CopyFrom(ctx, s.pool, "run_mappings",
		[]string{"run_id", "target", "source_label", "statement", "confidence", "base", "bonus", "note"},
		mappingRows,
	); err != nil {
		return eris.Wrapf(err, "postgres: save mappings for run %s", run.ID)
	}

	resolutionRows := make([][]any, len(resolutions))
	for i, r := range resolutions {
		resolutionRows[i] = []any{r.RunID, r.Target, r.Year, r.Value, string(r.Provenance), r.Explanation}
	}
	if _, err := db.CopyFrom(ctx, s.pool, "run_resolutions",
		[]string{"run_id", "target", "year", "value", "provenance", "explanation"},
		resolutionRows,
	); err != nil {
		return eris.Wrapf(err, "postgres: save resolutions for run %s", run.ID)
	}

	return nil
}

func (s *PostgresStore) GetRun(ctx context.Context, runID string) (*model.RunRecord, error) {
	var r model.RunRecord
	var yearsJSON []byte
	var config *string

	err := s.pool.QueryRow(ctx,
		`SELECT id, company, row_count, years, mapped, unmapped, config, created_at FROM runs WHERE id = $1`,
		runID,
	).Scan(&r.ID, &r.Company, &r.RowCount, &yearsJSON, &r.Mapped, &r.Unmapped, &config, &r.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, eris.Wrapf(err, "postgres: get run %s", runID)
	}

	if err := json.Unmarshal(yearsJSON, &r.Years); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal years")
	}
	if config != nil {
		r.Config = *config
	}
	return &r, nil
}

func (s *PostgresStore) ListRuns(ctx context.Context, filter RunFilter) ([]model.RunRecord, error) {
	query := `SELECT id, company, row_count, years, mapped, unmapped, config, created_at FROM runs WHERE true`
	args := []any{}
	argIdx := 1

	if filter.Company != "" {
		query += fmt.Sprintf(` AND company = $%d`, argIdx)
		args = append(args, filter.Company)
		argIdx++
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += fmt.Sprintf(` LIMIT $%d`, argIdx)
	args = append(args, limit)
	argIdx++

	if filter.Offset > 0 {
		query += fmt.Sprintf(` OFFSET $%d`, argIdx)
		args = append(args, filter.Offset)
		argIdx++
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list runs")
	}
	defer rows.Close()

	var runs []model.RunRecord
	for rows.Next() {
		var r model.RunRecord
		var yearsJSON []byte
		var config *string

		if err := rows.Scan(&r.ID, &r.Company, &r.RowCount, &yearsJSON, &r.Mapped, &r.Unmapped, &config, &r.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan run")
		}
		if err := json.Unmarshal(yearsJSON, &r.Years); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal years")
		}
		if config != nil {
			r.Config = *config
		}
		runs = append(runs, r)
	}
	return runs, eris.Wrap(rows.Err(), "postgres: list runs iterate")
}

func (s *PostgresStore) LoadMappings(ctx context.Context, runID string) ([]model.StoredMapping, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT run_id, target, source_label, statement, confidence, base, bonus, note FROM run_mappings WHERE run_id = $1 ORDER BY confidence DESC, target`,
		runID,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: load mappings %s", runID)
	}
	defer rows.Close()

	var out []model.StoredMapping
	for rows.Next() {
		var m model.StoredMapping
		var stmt string
		var note *string
		if err := rows.Scan(&m.RunID, &m.Target, &m.SourceLabel, &stmt, &m.Confidence, &m.Base, &m.Bonus, &note); err != nil {
			return nil, eris.Wrap(err, "postgres: scan mapping")
		}
		m.Statement = model.Statement(stmt)
		if note != nil {
			m.Note = *note
		}
		out = append(out, m)
	}
	return out, eris.Wrap(rows.Err(), "postgres: load mappings iterate")
}

func (s *PostgresStore) LoadResolutions(ctx context.Context, runID string) ([]model.StoredResolution, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT run_id, target, year, value, provenance, explanation FROM run_resolutions WHERE run_id = $1 ORDER BY target, year`,
		runID,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: load resolutions %s", runID)
	}
	defer rows.Close()

	var out []model.StoredResolution
	for rows.Next() {
		var r model.StoredResolution
		var prov string
		var expl *string
		if err := rows.Scan(&r.RunID, &r.Target, &r.Year, &r.Value, &prov, &expl); err != nil {
			return nil, eris.Wrap(err, "postgres: scan resolution")
		}
		r.Provenance = model.Provenance(prov)
		if expl != nil {
			r.Explanation = *expl
		}
		out = append(out, r)
	}
	return out, eris.Wrap(rows.Err(), "postgres: load resolutions iterate")
}

func (s *PostgresStore) SavePublication(ctx context.Context, runID, pageID string) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO publications (run_id, page_id, published_at) VALUES ($1, $2, now())
		 ON CONFLICT (run_id) DO UPDATE SET page_id = EXCLUDED.page_id, published_at = EXCLUDED.published_at`,
		runID, pageID,
	)
	return eris.Wrapf(err, "postgres: save publication %s", runID)
}

func (s *PostgresStore) GetPublication(ctx context.Context, runID string) (string, error) {
	var pageID string
	err := s.pool.QueryRow(ctx,
		`SELECT page_id FROM publications WHERE run_id = $1`,
		runID,
	).Scan(&pageID)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", eris.Wrapf(err, "postgres: get publication %s", runID)
	}
	return pageID, nil
}
