package cache

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // pure-Go driver; no cgo toolchain dependency

	"github.com/paul-heyse/submarket-screen/internal/errs"
)

// schemaVersion is bumped whenever the warm table's shape changes. warmTier
// backs up the prior file before migrating, per spec.md §6.
const schemaVersion = "1"

const createTableSQL = `
CREATE TABLE IF NOT EXISTS schema_meta (
	version TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS cache_entries (
	key        TEXT PRIMARY KEY,
	payload    BLOB NOT NULL,
	created_at TIMESTAMP NOT NULL,
	expires_at TIMESTAMP NOT NULL,
	version    TEXT NOT NULL,
	compressed BOOLEAN NOT NULL,
	size       INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_cache_entries_expires_at ON cache_entries(expires_at);
`

// warmRow mirrors the cache_entries schema from spec.md §6 exactly.
type warmRow struct {
	Key        string    `db:"key"`
	Payload    []byte    `db:"payload"`
	CreatedAt  time.Time `db:"created_at"`
	ExpiresAt  time.Time `db:"expires_at"`
	Version    string    `db:"version"`
	Compressed bool      `db:"compressed"`
	Size       int       `db:"size"`
}

// warmTier is the file-backed, single-writer KV store.
type warmTier struct {
	db      *sqlx.DB
	path    string
	hits    int64
	misses  int64
}

// openWarmTier opens (creating if absent) the SQLite-backed warm store at
// path, running the schema migration and backing up the file first if an
// older schema_version is found.
func openWarmTier(path string) (*warmTier, error) {
	if path == "" {
		return nil, &errs.ConfigurationError{Source: "warm.path", Reason: "warm cache path is required"}
	}
	if _, err := os.Stat(path); err == nil {
		if needsMigration(path) {
			if err := backupFile(path); err != nil {
				return nil, &errs.ConfigurationError{Source: "warm.path", Reason: "backup before migration failed: " + err.Error()}
			}
		}
	}
	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, &errs.ConfigurationError{Source: "warm.path", Reason: err.Error()}
	}
	db.SetMaxOpenConns(1) // single-writer semantics per spec.md §4.1
	if _, err := db.Exec(createTableSQL); err != nil {
		return nil, &errs.ConfigurationError{Source: "warm.path", Reason: "schema init: " + err.Error()}
	}
	var count int
	_ = db.Get(&count, "SELECT COUNT(*) FROM schema_meta")
	if count == 0 {
		if _, err := db.Exec("INSERT INTO schema_meta(version) VALUES (?)", schemaVersion); err != nil {
			return nil, &errs.ConfigurationError{Source: "warm.path", Reason: "schema version seed: " + err.Error()}
		}
	}
	return &warmTier{db: db, path: path}, nil
}

func needsMigration(path string) bool {
	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return false
	}
	defer db.Close()
	var v string
	if err := db.Get(&v, "SELECT version FROM schema_meta LIMIT 1"); err != nil {
		return false
	}
	return v != schemaVersion
}

func backupFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return os.WriteFile(fmt.Sprintf("%s.bak.%d", path, time.Now().UnixNano()), data, 0o600)
}

func (w *warmTier) get(ctx context.Context, key string) (*warmRow, bool, error) {
	var row warmRow
	err := w.db.GetContext(ctx, &row, `SELECT key, payload, created_at, expires_at, version, compressed, size
		FROM cache_entries WHERE key = ?`, key)
	if err == sql.ErrNoRows {
		atomic.AddInt64(&w.misses, 1)
		return nil, false, nil
	}
	if err != nil {
		return nil, false, &errs.DataSourceError{Source: "warm-cache", Reason: err.Error()}
	}
	if time.Now().After(row.ExpiresAt) {
		atomic.AddInt64(&w.misses, 1)
		return nil, false, nil
	}
	atomic.AddInt64(&w.hits, 1)
	return &row, true, nil
}

func (w *warmTier) set(ctx context.Context, row warmRow) error {
	_, err := w.db.ExecContext(ctx, `INSERT INTO cache_entries(key, payload, created_at, expires_at, version, compressed, size)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET payload=excluded.payload, created_at=excluded.created_at,
			expires_at=excluded.expires_at, version=excluded.version, compressed=excluded.compressed, size=excluded.size`,
		row.Key, row.Payload, row.CreatedAt, row.ExpiresAt, row.Version, row.Compressed, row.Size)
	if err != nil {
		return &errs.DataSourceError{Source: "warm-cache", Reason: err.Error()}
	}
	return nil
}

func (w *warmTier) invalidate(ctx context.Context, key string) error {
	_, err := w.db.ExecContext(ctx, `DELETE FROM cache_entries WHERE key = ?`, key)
	return err
}

// invalidatePrefix deletes every key matching a prefix filter, used by the
// cache admin invalidate(filter) contract in spec.md §6.
func (w *warmTier) invalidatePrefix(ctx context.Context, prefix string) (int64, error) {
	res, err := w.db.ExecContext(ctx, `DELETE FROM cache_entries WHERE key LIKE ?`, prefix+"%")
	if err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// invalidateVersion deletes every entry stamped with a version other than
// current, used on connector/model version bumps.
func (w *warmTier) invalidateVersion(ctx context.Context, current string) (int64, error) {
	res, err := w.db.ExecContext(ctx, `DELETE FROM cache_entries WHERE version <> ?`, current)
	if err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()
	return n, nil
}

func (w *warmTier) export(ctx context.Context) ([]warmRow, error) {
	var rows []warmRow
	err := w.db.SelectContext(ctx, &rows, `SELECT key, payload, created_at, expires_at, version, compressed, size FROM cache_entries`)
	return rows, err
}

func (w *warmTier) importRows(ctx context.Context, rows []warmRow) error {
	tx, err := w.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	for _, r := range rows {
		if _, err := tx.ExecContext(ctx, `INSERT INTO cache_entries(key, payload, created_at, expires_at, version, compressed, size)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(key) DO UPDATE SET payload=excluded.payload, created_at=excluded.created_at,
				expires_at=excluded.expires_at, version=excluded.version, compressed=excluded.compressed, size=excluded.size`,
			r.Key, r.Payload, r.CreatedAt, r.ExpiresAt, r.Version, r.Compressed, r.Size); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

func (w *warmTier) close() error { return w.db.Close() }
