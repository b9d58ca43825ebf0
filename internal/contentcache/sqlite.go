package contentcache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// SQLite is a Cache persisted to a SQLite database; writes go straight through.
type SQLite struct {
	db   *sqlx.DB
	ttl  time.Duration
	opts options
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS content_cache (
	key       TEXT PRIMARY KEY,
	payload   BLOB NOT NULL,
	stored_at TEXT NOT NULL
);
`

type cacheRow struct {
	Key      string `db:"key"`
	Payload  []byte `db:"payload"`
	StoredAt string `db:"stored_at"`
}

func NewSQLite(dbPath string, ttl time.Duration, opts ...Option) (*SQLite, error) {
	db, err := sqlx.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &SQLite{db: db, ttl: normalizeTTL(ttl), opts: buildOptions(opts)}, nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var row cacheRow
	err := s.db.GetContext(ctx, &row, "SELECT key, payload, stored_at FROM content_cache WHERE key = ?", key)
	if errors.Is(err, sql.ErrNoRows) {
		s.opts.metrics.CacheLookup("miss")
		return nil, false, nil
	}
	if err != nil {
		s.opts.metrics.CacheLookup("error")
		return nil, false, fmt.Errorf("read cache entry %s: %w", key, err)
	}
	storedAt, err := time.Parse(time.RFC3339Nano, row.StoredAt)
	if err != nil || expired(storedAt, s.opts.now(), s.ttl) {
		if err := s.Clear(ctx, key); err != nil {
			return nil, false, err
		}
		s.opts.metrics.CacheLookup("expired")
		return nil, false, nil
	}
	s.opts.metrics.CacheLookup("hit")
	return row.Payload, true, nil
}

func (s *SQLite) Set(ctx context.Context, key string, payload []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO content_cache (key, payload, stored_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET payload = excluded.payload, stored_at = excluded.stored_at`,
		key, payload, s.opts.now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("write cache entry %s: %w", key, err)
	}
	return nil
}

func (s *SQLite) Clear(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM content_cache WHERE key = ?", key); err != nil {
		return fmt.Errorf("clear cache entry %s: %w", key, err)
	}
	return nil
}

// Purge removes every expired entry and reports how many were deleted.
func (s *SQLite) Purge(ctx context.Context) (int64, error) {
	var rows []cacheRow
	if err := s.db.SelectContext(ctx, &rows, "SELECT key, stored_at FROM content_cache"); err != nil {
		return 0, fmt.Errorf("list cache entries: %w", err)
	}
	now := s.opts.now()
	var purged int64
	for _, row := range rows {
		storedAt, err := time.Parse(time.RFC3339Nano, row.StoredAt)
		if err == nil && !expired(storedAt, now, s.ttl) {
			continue
		}
		if err := s.Clear(ctx, row.Key); err != nil {
			return purged, err
		}
		purged++
	}
	return purged, nil
}
