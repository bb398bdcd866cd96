// Eventora Stats - Real-Time Event Recommendations
// Copyright 2026 Eventora Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/eventora/stats

// Package database persists the analyzer's queryable state in DuckDB.
//
// Two tables back the query API:
//
//   - users_actions: one row per (event, user) with the strongest weight and
//     most recent action timestamp ever observed. Both columns only advance,
//     so replayed or reordered records cannot regress a row.
//   - events_similarity: one row per canonical event pair (event_a < event_b)
//     with the latest score. A row is overwritten only by a strictly newer
//     action_date, which makes duplicate and out-of-order similarity records
//     harmless.
//
// Writes come from the two Kafka consumer loops; reads come from the
// recommendation engine. DuckDB handles that mix through database/sql's
// connection pool without any extra locking here.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/eventora/stats/internal/config"
	"github.com/eventora/stats/internal/logging"
)

// schemaTimeout bounds table and index creation at startup.
const schemaTimeout = 60 * time.Second

// DB wraps the DuckDB connection and provides the store methods used by the
// analyzer's consumers and the recommendation engine.
type DB struct {
	conn *sql.DB
	cfg  *config.DatabaseConfig
}

// New opens (or creates) the DuckDB database file and initializes the schema.
func New(cfg *config.DatabaseConfig) (*DB, error) {
	numThreads := cfg.Threads
	if numThreads <= 0 {
		numThreads = runtime.NumCPU()
	}

	// The data directory may not exist on first boot.
	dbDir := filepath.Dir(cfg.Path)
	if dbDir != "" && dbDir != "." {
		if err := os.MkdirAll(dbDir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create database directory %s: %w", dbDir, err)
		}
	}

	connStr := fmt.Sprintf("%s?access_mode=read_write&threads=%d&max_memory=%s",
		cfg.Path, numThreads, cfg.MaxMemory)

	conn, err := sql.Open("duckdb", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	conn.SetMaxOpenConns(numThreads)
	conn.SetMaxIdleConns(2)
	conn.SetConnMaxLifetime(time.Hour)

	db := &DB{conn: conn, cfg: cfg}
	if err := db.createTables(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	logging.Info().
		Str("path", cfg.Path).
		Int("threads", numThreads).
		Msg("Database ready")
	return db, nil
}

// Ping verifies the connection is alive.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// Close releases the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) createTables() error {
	ctx, cancel := context.WithTimeout(context.Background(), schemaTimeout)
	defer cancel()

	queries := []string{
		`CREATE TABLE IF NOT EXISTS users_actions (
			event_id BIGINT NOT NULL,
			user_id BIGINT NOT NULL,
			last_action_date TIMESTAMP NOT NULL,
			weight DOUBLE NOT NULL,
			PRIMARY KEY (event_id, user_id)
		)`,
		`CREATE TABLE IF NOT EXISTS events_similarity (
			event_a BIGINT NOT NULL,
			event_b BIGINT NOT NULL,
			score DOUBLE NOT NULL,
			action_date TIMESTAMP NOT NULL,
			PRIMARY KEY (event_a, event_b),
			CHECK (event_a < event_b)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_users_actions_user
			ON users_actions (user_id, last_action_date)`,
		`CREATE INDEX IF NOT EXISTS idx_events_similarity_b
			ON events_similarity (event_b)`,
	}

	for _, query := range queries {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query: %s: %w", query, err)
		}
	}
	return nil
}

// placeholders returns "?, ?, ..." for an IN clause of n values.
func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
