package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"
)

// Pool is the subset of pgxpool.Pool the store uses; pgxmock satisfies it.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Close()
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool Pool
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	cfg.MaxConns = 5
	cfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: connect")
	}
	return &PostgresStore{pool: pool}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS scans (
	id          TEXT PRIMARY KEY,
	source      TEXT NOT NULL DEFAULT '',
	top_code    TEXT NOT NULL DEFAULT '',
	match_kind  TEXT NOT NULL DEFAULT '',
	tier        TEXT NOT NULL DEFAULT '',
	candidates  INTEGER NOT NULL DEFAULT 0,
	diagnostic  TEXT NOT NULL DEFAULT '',
	duration_ms BIGINT NOT NULL DEFAULT 0,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_scans_source ON scans(source);
CREATE INDEX IF NOT EXISTS idx_scans_created_at ON scans(created_at);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) SaveScan(ctx context.Context, rec *ScanRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO scans (id, source, top_code, match_kind, tier, candidates, diagnostic, duration_ms, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		rec.ID, rec.Source, rec.TopCode, rec.MatchKind, rec.Tier,
		rec.Candidates, rec.Diagnostic, rec.Duration.Milliseconds(), rec.CreatedAt,
	)
	return eris.Wrap(err, "postgres: insert scan")
}

func (s *PostgresStore) ListScans(ctx context.Context, filter Filter) ([]ScanRecord, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}

	var (
		rows pgx.Rows
		err  error
	)
	if filter.Source != "" {
		rows, err = s.pool.Query(ctx,
			`SELECT id, source, top_code, match_kind, tier, candidates, diagnostic, duration_ms, created_at
			 FROM scans WHERE source = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
			filter.Source, limit, filter.Offset)
	} else {
		rows, err = s.pool.Query(ctx,
			`SELECT id, source, top_code, match_kind, tier, candidates, diagnostic, duration_ms, created_at
			 FROM scans ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
			limit, filter.Offset)
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list scans")
	}
	defer rows.Close()

	var out []ScanRecord
	for rows.Next() {
		var rec ScanRecord
		var durationMs int64
		if err := rows.Scan(&rec.ID, &rec.Source, &rec.TopCode, &rec.MatchKind, &rec.Tier,
			&rec.Candidates, &rec.Diagnostic, &durationMs, &rec.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan row")
		}
		rec.Duration = time.Duration(durationMs) * time.Millisecond
		out = append(out, rec)
	}
	return out, eris.Wrap(rows.Err(), "postgres: iterate scans")
}
