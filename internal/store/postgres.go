// Package store persists raw upstream payloads to Postgres. The archive is
// optional and write-behind: nothing in the request path depends on it.
package store

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
)

type Store struct{ DB *sql.DB }

func Open(dsn string) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)
	return &Store{DB: db}, nil
}

func (s *Store) Ping(ctx context.Context) error { return s.DB.PingContext(ctx) }

func (s *Store) Migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS provider_raw_snapshots (
			id UUID PRIMARY KEY,
			provider       TEXT NOT NULL,
			endpoint       TEXT NOT NULL,
			external_id    TEXT,
			payload        JSONB NOT NULL,
			fetched_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
			payload_sha256 TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_snapshots_provider ON provider_raw_snapshots(provider, endpoint, fetched_at DESC);`,
		`CREATE INDEX IF NOT EXISTS idx_snapshots_external ON provider_raw_snapshots(provider, external_id);`,
	}
	for _, q := range stmts {
		if _, err := s.DB.ExecContext(ctx, q); err != nil {
			return err
		}
	}
	return nil
}

type SnapshotInput struct {
	Endpoint    string
	ExternalID  string
	PayloadJSON []byte
}

// WriteSnapshot stores one raw payload with its digest. The digest makes
// dedup queries cheap downstream without this service having to diff.
func (s *Store) WriteSnapshot(ctx context.Context, in SnapshotInput) (string, error) {
	if s.DB == nil {
		return "", errors.New("nil db")
	}
	id := uuid.NewString()
	sum := sha256.Sum256(in.PayloadJSON)
	sha := hex.EncodeToString(sum[:])
	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO provider_raw_snapshots (id, provider, endpoint, external_id, payload, payload_sha256)
		VALUES ($1,$2,$3,$4,$5,$6)
	`, id, "paragon", in.Endpoint, in.ExternalID, string(in.PayloadJSON), sha)
	if err != nil {
		return "", err
	}
	return id, nil
}
