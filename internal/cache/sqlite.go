package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

const kvSchema = `
CREATE TABLE IF NOT EXISTS kv (
	key        TEXT PRIMARY KEY,
	value      BLOB NOT NULL,
	expires_at INTEGER NOT NULL DEFAULT 0
)`

// live matches keys that have no expiry or have not expired yet.
const live = `(expires_at = 0 OR expires_at > ?)`

// SQLiteCache is a Cache kept in a single-table SQLite file, so values
// survive a restart of the station.
type SQLiteCache struct {
	db     *sql.DB
	logger *zap.Logger
	now    func() time.Time
}

// NewSQLiteCache opens (or creates) the store at path and drops expired keys.
func NewSQLiteCache(path string, logger *zap.Logger) (*SQLiteCache, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create station store directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", "file:"+path+"?_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open station store: %w", err)
	}
	db.SetMaxOpenConns(1)

	c := &SQLiteCache{db: db, logger: logger, now: time.Now}
	if _, err := db.Exec(kvSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create station store: %w", err)
	}
	if _, err := db.Exec(`DELETE FROM kv WHERE expires_at != 0 AND expires_at <= ?`, c.stamp()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to purge station store: %w", err)
	}
	return c, nil
}

func (c *SQLiteCache) stamp() int64 {
	return c.now().UnixNano()
}

func (c *SQLiteCache) Get(ctx context.Context, key string) ([]byte, error) {
	row := c.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ? AND `+live, key, c.stamp())
	return c.value(row, "GET", key)
}

func (c *SQLiteCache) Take(ctx context.Context, key string) ([]byte, error) {
	row := c.db.QueryRowContext(ctx, `DELETE FROM kv WHERE key = ? AND `+live+` RETURNING value`, key, c.stamp())
	return c.value(row, "TAKE", key)
}

func (c *SQLiteCache) value(row *sql.Row, op, key string) ([]byte, error) {
	var val []byte
	err := row.Scan(&val)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, c.failed(op, key, err)
	}
	return val, nil
}

func (c *SQLiteCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	var expiresAt int64
	if ttl > 0 {
		expiresAt = c.now().Add(ttl).UnixNano()
	}
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO kv (key, value, expires_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, expires_at = excluded.expires_at`,
		key, value, expiresAt)
	if err != nil {
		return c.failed("SET", key, err)
	}
	return nil
}

func (c *SQLiteCache) DeleteByPattern(ctx context.Context, pattern string) error {
	var err error
	if prefix, wildcard := strings.CutSuffix(pattern, "*"); wildcard {
		_, err = c.db.ExecContext(ctx, `DELETE FROM kv WHERE instr(key, ?) = 1`, prefix)
	} else {
		_, err = c.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, pattern)
	}
	if err != nil {
		return c.failed("DELETE", pattern, err)
	}
	return nil
}

func (c *SQLiteCache) Close() error {
	return c.db.Close()
}

func (c *SQLiteCache) failed(op, key string, err error) error {
	c.logger.Error("Station store command failed",
		zap.String("op", op),
		zap.String("key", key),
		zap.Error(err),
	)
	return fmt.Errorf("station store %s %s: %w", op, key, err)
}
