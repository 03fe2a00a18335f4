package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// SQLiteCache is a translation memory kept in a local SQLite file. Unlike
// the in-memory cache it survives the process, so a failed run can be
// resumed from the last translated chunk.
type SQLiteCache struct {
	db    *sql.DB
	ttl   time.Duration
	runID string
	now   func() time.Time
}

// SQLiteConfig holds configuration for the SQLite cache.
type SQLiteConfig struct {
	Path string        // Database file, created if missing
	TTL  time.Duration // Entry lifetime (0 = no expiration)
}

// SQLiteStats summarises the stored translations.
type SQLiteStats struct {
	Entries    int // All stored chunks
	RunEntries int // Chunks written by this cache instance's run
	Runs       int // Distinct runs that wrote chunks
}

// NewSQLiteCache opens (or creates) the database at cfg.Path.
func NewSQLiteCache(ctx context.Context, cfg SQLiteConfig) (*SQLiteCache, error) {
	if cfg.Path == "" {
		return nil, errors.New("sqlite cache path is required")
	}

	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	c := &SQLiteCache{
		db:    db,
		ttl:   max(cfg.TTL, 0),
		runID: uuid.NewString(),
		now:   time.Now,
	}
	if err := c.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}

	return c, nil
}

func (c *SQLiteCache) migrate(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS chunk_translations (
		cache_key TEXT PRIMARY KEY,
		translated_text TEXT NOT NULL,
		run_id TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_chunk_translations_run ON chunk_translations(run_id);
	`

	_, err := c.db.ExecContext(ctx, schema)
	return err
}

// RunID identifies the entries written through this cache instance.
func (c *SQLiteCache) RunID() string {
	return c.runID
}

// Get returns the stored translation for key unless it has expired.
func (c *SQLiteCache) Get(ctx context.Context, key string) (string, bool) {
	var value string
	var createdAt int64

	err := c.db.QueryRowContext(ctx,
		`SELECT translated_text, created_at FROM chunk_translations WHERE cache_key = ?`, key).
		Scan(&value, &createdAt)
	if err != nil {
		return "", false
	}

	if c.ttl > 0 && c.now().Sub(time.Unix(0, createdAt)) > c.ttl {
		return "", false
	}

	return value, true
}

// Set stores value under key, replacing any earlier translation.
func (c *SQLiteCache) Set(ctx context.Context, key string, value string) error {
	_, err := c.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO chunk_translations (cache_key, translated_text, run_id, created_at) VALUES (?, ?, ?, ?)`,
		key, value, c.runID, c.now().UnixNano())
	return err
}

// Entries returns every unexpired entry.
func (c *SQLiteCache) Entries(ctx context.Context) (map[string]string, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT cache_key, translated_text, created_at FROM chunk_translations`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[string]string)
	for rows.Next() {
		var key, value string
		var createdAt int64
		if err := rows.Scan(&key, &value, &createdAt); err != nil {
			return nil, err
		}
		if c.ttl > 0 && c.now().Sub(time.Unix(0, createdAt)) > c.ttl {
			continue
		}
		result[key] = value
	}

	return result, rows.Err()
}

// Prune deletes expired entries and returns how many were removed.
func (c *SQLiteCache) Prune(ctx context.Context) (int64, error) {
	if c.ttl <= 0 {
		return 0, nil
	}
	cutoff := c.now().Add(-c.ttl).UnixNano()
	res, err := c.db.ExecContext(ctx, `DELETE FROM chunk_translations WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Stats returns summary statistics for the stored translations.
func (c *SQLiteCache) Stats(ctx context.Context) (*SQLiteStats, error) {
	stats := &SQLiteStats{}

	err := c.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN run_id = ? THEN 1 ELSE 0 END), 0),
			COUNT(DISTINCT run_id)
		FROM chunk_translations`, c.runID).Scan(
		&stats.Entries,
		&stats.RunEntries,
		&stats.Runs,
	)
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// Close closes the database.
func (c *SQLiteCache) Close() error {
	return c.db.Close()
}

// Verify SQLiteCache implements ExportableCache
var _ ExportableCache = (*SQLiteCache)(nil)
