// Copyright (c) 2025 Footprint
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package pgstore persists donations in Postgres over a pgx connection pool.
package pgstore

import (
	"context"
	"encoding/json"

	"footprint/cli/internal/bridge/model"
	"footprint/cli/internal/logging"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Schema creates the tables the store writes to.
const Schema = `
CREATE TABLE IF NOT EXISTS donations (
	id         TEXT PRIMARY KEY,
	key        TEXT NOT NULL,
	data       JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE TABLE IF NOT EXISTS port_exits (
	id         TEXT PRIMARY KEY,
	code       INTEGER NOT NULL,
	info       TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

const (
	insertDonation = `INSERT INTO donations (id, key, data) VALUES ($1, $2, $3) ON CONFLICT (id) DO NOTHING`
	insertExit     = `INSERT INTO port_exits (id, code, info) VALUES ($1, $2, $3) ON CONFLICT (id) DO NOTHING`
)

// Execer is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Store writes donations and exit records.
type Store struct {
	db    Execer
	close func()
}

// Open connects to dsn, verifies the connection and creates the tables.
func Open(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	s := &Store{db: pool, close: pool.Close}
	if err := s.Migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// New builds a store on an existing connection.
func New(db Execer) *Store { return &Store{db: db} }

// Migrate creates the tables when they do not exist.
func (s *Store) Migrate(ctx context.Context) error {
	_, err := s.db.Exec(ctx, Schema)
	return err
}

func (s *Store) Send(ctx context.Context, cmd model.CommandSystem) error {
	switch c := cmd.(type) {
	case model.CommandSystemDonate:
		data := c.JSONString
		if !json.Valid([]byte(data)) {
			// keep non-JSON donations as a JSON string instead of losing them
			b, _ := json.Marshal(data)
			data = string(b)
		}
		if _, err := s.db.Exec(ctx, insertDonation, c.ID, c.Key, data); err != nil {
			return err
		}
		logging.With("pgstore").Infof("stored donation %s (%d bytes)", c.Key, len(c.JSONString))
	case model.CommandSystemExit:
		if _, err := s.db.Exec(ctx, insertExit, c.ID, c.Code, c.Info); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) Close(ctx context.Context) error {
	if s.close != nil {
		s.close()
	}
	return nil
}
