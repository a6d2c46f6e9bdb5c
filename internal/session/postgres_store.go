package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore keeps session entries in the session_entries table.
type PostgresStore struct {
	pool *pgxpool.Pool
	ttl  time.Duration
}

// NewPostgresStore builds a store. A zero ttl keeps rows until removed.
func NewPostgresStore(pool *pgxpool.Pool, ttl time.Duration) *PostgresStore {
	return &PostgresStore{pool: pool, ttl: ttl}
}

func (s *PostgresStore) Get(ctx context.Context, sid, key string) (string, bool, error) {
	const query = `
        SELECT value FROM session_entries
        WHERE session_id=$1 AND key=$2 AND (expires_at IS NULL OR expires_at > NOW())`

	var value string
	if err := s.pool.QueryRow(ctx, query, sid, key).Scan(&value); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return value, true, nil
}

func (s *PostgresStore) Set(ctx context.Context, sid, key, value string) error {
	const query = `
        INSERT INTO session_entries (session_id, key, value, expires_at)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (session_id, key)
        DO UPDATE SET value=EXCLUDED.value, expires_at=EXCLUDED.expires_at, updated_at=NOW()`

	var expiresAt *time.Time
	if s.ttl > 0 {
		t := time.Now().Add(s.ttl)
		expiresAt = &t
	}
	if _, err := s.pool.Exec(ctx, query, sid, key, value, expiresAt); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

func (s *PostgresStore) Remove(ctx context.Context, sid string, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	const query = `DELETE FROM session_entries WHERE session_id=$1 AND key = ANY($2)`
	if _, err := s.pool.Exec(ctx, query, sid, keys); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// PurgeExpired deletes rows whose TTL has elapsed and returns how many were removed.
func (s *PostgresStore) PurgeExpired(ctx context.Context) (int64, error) {
	const query = `DELETE FROM session_entries WHERE expires_at IS NOT NULL AND expires_at <= NOW()`
	cmd, err := s.pool.Exec(ctx, query)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}
