package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"contribgraph/cache"
	"contribgraph/models"
)

const schema = `
	CREATE TABLE IF NOT EXISTS contribution_cache (
		cache_key  TEXT PRIMARY KEY,
		payload    JSONB NOT NULL,
		stored_at  TIMESTAMPTZ NOT NULL,
		expires_at TIMESTAMPTZ NOT NULL
	);
	CREATE INDEX IF NOT EXISTS contribution_cache_expires_at_idx
		ON contribution_cache (expires_at);
`

const getEntryQuery = `
	SELECT payload, stored_at
	FROM contribution_cache
	WHERE cache_key = $1 AND expires_at > $2
`

const setEntryQuery = `
	INSERT INTO contribution_cache (cache_key, payload, stored_at, expires_at)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (cache_key) DO UPDATE SET
		payload = EXCLUDED.payload,
		stored_at = EXCLUDED.stored_at,
		expires_at = EXCLUDED.expires_at
	WHERE contribution_cache.stored_at <= EXCLUDED.stored_at
`

const purgeExpiredQuery = `DELETE FROM contribution_cache WHERE expires_at <= $1`

type cacheRow struct {
	Payload  []byte    `db:"payload"`
	StoredAt time.Time `db:"stored_at"`
}

var _ cache.Store = (*DB)(nil)

// EnsureSchema creates the cache table when it does not exist yet
func (db *DB) EnsureSchema(ctx context.Context) error {
	if _, err := db.conn.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("%w: %v", ErrSchemaSetup, err)
	}
	safeLogInfo("Cache schema ready")
	return nil
}

// Get retrieves a live cache entry by key
func (db *DB) Get(ctx context.Context, key string) (*cache.Entry, error) {
	if key == "" {
		return nil, fmt.Errorf("%w: cache key cannot be empty", ErrInvalidInput)
	}

	stmt, err := db.getStmt(ctx, getEntryQuery)
	if err != nil {
		return nil, err
	}

	var row cacheRow
	if err := stmt.GetContext(ctx, &row, key, db.now()); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, cache.ErrMiss
		}
		return nil, fmt.Errorf("failed to get cache entry %s: %w", key, err)
	}

	var outcome models.FetchOutcome
	if err := json.Unmarshal(row.Payload, &outcome); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptEntry, key, err)
	}

	return &cache.Entry{Outcome: outcome, StoredAt: row.StoredAt}, nil
}

// Set upserts a cache entry that expires after ttl
func (db *DB) Set(ctx context.Context, key string, entry cache.Entry, ttl time.Duration) error {
	if key == "" {
		return fmt.Errorf("%w: cache key cannot be empty", ErrInvalidInput)
	}
	if ttl <= 0 {
		return fmt.Errorf("%w: ttl must be positive", ErrInvalidInput)
	}

	payload, err := json.Marshal(entry.Outcome)
	if err != nil {
		return fmt.Errorf("failed to encode cache entry %s: %w", key, err)
	}

	stmt, err := db.getStmt(ctx, setEntryQuery)
	if err != nil {
		return err
	}

	if _, err := stmt.ExecContext(ctx, key, payload, entry.StoredAt, db.now().Add(ttl)); err != nil {
		return fmt.Errorf("failed to store cache entry %s: %w", key, err)
	}

	logDebug("Cache entry stored", zap.String("key", key), zap.Duration("ttl", ttl))
	return nil
}

// PurgeExpired deletes every expired entry and returns how many were removed
func (db *DB) PurgeExpired(ctx context.Context) (int64, error) {
	result, err := db.conn.ExecContext(ctx, purgeExpiredQuery, db.now())
	if err != nil {
		return 0, fmt.Errorf("failed to purge expired cache entries: %w", err)
	}

	purged, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count purged cache entries: %w", err)
	}
	return purged, nil
}
