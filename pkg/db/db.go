/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package db persists devices, observations, scan runs and alerts in SQLite
// or PostgreSQL through database/sql.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/carverauto/centraldanone/pkg/logger"
	"github.com/carverauto/centraldanone/pkg/models"
)

// Dialect selects SQL flavour and value encoding.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"

	sqliteBusyTimeoutMs = 10000
	sqliteMaxOpenConns  = 4
)

// DB is the storage handle shared by the registry, read model and reports.
type DB struct {
	conn    *sql.DB
	pool    *pgxpool.Pool
	dialect Dialect
	logger  logger.Logger
	retry   RetryPolicy
}

// Open connects to the configured database and applies pending migrations.
func Open(ctx context.Context, cfg *models.DatabaseConfig, log logger.Logger) (*DB, error) {
	var (
		db  *DB
		err error
	)

	switch cfg.Driver {
	case models.DatabaseSQLite, "":
		db, err = OpenSQLite(cfg.Path, log)
	case models.DatabasePostgres:
		db, err = OpenPostgres(ctx, cfg, log)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, cfg.Driver)
	}

	if err != nil {
		return nil, err
	}

	if err := db.Migrate(ctx); err != nil {
		_ = db.Close()

		return nil, err
	}

	return db, nil
}

// OpenSQLite opens a SQLite database file. Writers take the lock when the
// transaction begins so concurrent pipelines queue on busy_timeout instead
// of failing on lock upgrade.
func OpenSQLite(path string, log logger.Logger) (*DB, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: sqlite path is required", ErrFailedOpenDB)
	}

	memory := path == ":memory:"

	if !memory {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("%w: create directory: %w", ErrFailedOpenDB, err)
		}
	}

	conn, err := sql.Open("sqlite", sqliteDSN(path))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFailedOpenDB, err)
	}

	if memory {
		conn.SetMaxOpenConns(1)
	} else {
		conn.SetMaxOpenConns(sqliteMaxOpenConns)
		conn.SetMaxIdleConns(sqliteMaxOpenConns)
	}

	if err := conn.Ping(); err != nil {
		_ = conn.Close()

		return nil, fmt.Errorf("%w: %w", ErrFailedOpenDB, err)
	}

	log.Info().Str("path", path).Msg("Opened SQLite database")

	return &DB{conn: conn, dialect: DialectSQLite, logger: log, retry: DefaultRetryPolicy()}, nil
}

func sqliteDSN(path string) string {
	params := url.Values{}
	params.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", sqliteBusyTimeoutMs))
	params.Add("_pragma", "foreign_keys(1)")
	params.Add("_txlock", "immediate")

	if path != ":memory:" {
		params.Add("_pragma", "journal_mode(WAL)")
		params.Add("_pragma", "synchronous(NORMAL)")
	}

	return "file:" + path + "?" + params.Encode()
}

// OpenPostgres dials a pgx pool and exposes it through database/sql.
func OpenPostgres(ctx context.Context, cfg *models.DatabaseConfig, log logger.Logger) (*DB, error) {
	pool, err := NewPostgresPool(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	conn := stdlib.OpenDBFromPool(pool)

	if err := conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		pool.Close()

		return nil, fmt.Errorf("%w: %w", ErrFailedOpenDB, err)
	}

	return &DB{conn: conn, pool: pool, dialect: DialectPostgres, logger: log, retry: DefaultRetryPolicy()}, nil
}

// Dialect reports the SQL flavour in use.
func (db *DB) Dialect() Dialect {
	return db.dialect
}

// SetRetryPolicy replaces the transaction retry policy.
func (db *DB) SetRetryPolicy(p RetryPolicy) {
	db.retry = p
}

// Queries runs statements outside any explicit transaction.
func (db *DB) Queries() *Queries {
	return &Queries{q: db.conn, dialect: db.dialect}
}

// Ping checks connectivity.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// Close releases the connection pool.
func (db *DB) Close() error {
	err := db.conn.Close()

	if db.pool != nil {
		db.pool.Close()
	}

	return err
}
