// Package store persists finished digests in Postgres.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"newsbrief/internal/digest"
)

type execQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Close()
}

// Config controls the connection pool behind the digest store.
type Config struct {
	DSN             string
	MaxConns        int32
	MaxConnLifetime time.Duration
}

// DigestStore upserts one digest record per message type. Schema:
//
//	CREATE TABLE digests (
//	    message_type TEXT PRIMARY KEY,
//	    id           TEXT NOT NULL,
//	    content      JSONB NOT NULL,
//	    source_urls  JSONB NOT NULL,
//	    generated_at TIMESTAMPTZ NOT NULL
//	);
type DigestStore struct {
	pool execQuerier
}

// New connects a pool using the provided config.
func New(ctx context.Context, cfg Config) (*DigestStore, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("database dsn is required")
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return &DigestStore{pool: pool}, nil
}

// NewWithPool constructs a store from an existing pool (primarily for
// testing).
func NewWithPool(pool execQuerier) (*DigestStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	return &DigestStore{pool: pool}, nil
}

// Close releases the underlying pool resources.
func (s *DigestStore) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

// Upsert writes rec, overwriting any existing record of the same message
// type.
func (s *DigestStore) Upsert(ctx context.Context, rec digest.Record) error {
	if s == nil || s.pool == nil {
		return fmt.Errorf("digest store is not configured")
	}
	if rec.MessageType == "" {
		return fmt.Errorf("message type is required")
	}
	contentJSON, err := json.Marshal(rec.Content)
	if err != nil {
		return fmt.Errorf("marshal content: %w", err)
	}
	sourcesJSON, err := json.Marshal(rec.SourceURLs)
	if err != nil {
		return fmt.Errorf("marshal source urls: %w", err)
	}

	query := `
INSERT INTO digests (message_type, id, content, source_urls, generated_at)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (message_type) DO UPDATE SET
	id = EXCLUDED.id,
	content = EXCLUDED.content,
	source_urls = EXCLUDED.source_urls,
	generated_at = EXCLUDED.generated_at`

	if _, err := s.pool.Exec(ctx, query,
		rec.MessageType,
		rec.ID,
		contentJSON,
		sourcesJSON,
		rec.GeneratedAt,
	); err != nil {
		return fmt.Errorf("upsert digest: %w", err)
	}
	return nil
}
