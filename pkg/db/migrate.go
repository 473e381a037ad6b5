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

package db

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"
)

const migrationsTable = "schema_migrations"

//go:embed migrations/sqlite/*.sql migrations/postgres/*.sql
var migrationsFS embed.FS

// Migrate applies every embedded migration for the active dialect that has
// not been recorded yet. Each file runs in its own transaction.
func (db *DB) Migrate(ctx context.Context) error {
	createTable := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		version    TEXT PRIMARY KEY,
		applied_at TEXT NOT NULL
	)`, migrationsTable)

	if _, err := db.conn.ExecContext(ctx, createTable); err != nil {
		return fmt.Errorf("%w: create tracking table: %w", ErrMigrationFailed, err)
	}

	applied, err := db.appliedMigrations(ctx)
	if err != nil {
		return err
	}

	dir := "migrations/" + string(db.dialect)

	entries, err := fs.ReadDir(migrationsFS, dir)
	if err != nil {
		return fmt.Errorf("%w: read embedded migrations: %w", ErrMigrationFailed, err)
	}

	filenames := make([]string, 0, len(entries))

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".up.sql") {
			continue
		}

		filenames = append(filenames, entry.Name())
	}

	sort.Strings(filenames)

	for _, name := range filenames {
		version := migrationVersion(name)
		if _, ok := applied[version]; ok {
			continue
		}

		db.logger.Info().Str("migration", name).Str("dialect", string(db.dialect)).Msg("Applying migration")

		content, err := migrationsFS.ReadFile(dir + "/" + name)
		if err != nil {
			return fmt.Errorf("%w: read %s: %w", ErrMigrationFailed, name, err)
		}

		if err := db.applyMigration(ctx, version, string(content)); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrMigrationFailed, name, err)
		}
	}

	return nil
}

func (db *DB) appliedMigrations(ctx context.Context) (map[string]struct{}, error) {
	rows, err := db.conn.QueryContext(ctx, fmt.Sprintf(`SELECT version FROM %s`, migrationsTable))
	if err != nil {
		return nil, fmt.Errorf("%w: list applied versions: %w", ErrMigrationFailed, err)
	}
	defer func() { _ = rows.Close() }()

	applied := make(map[string]struct{})

	for rows.Next() {
		var version string
		if err := rows.Scan(&version); err != nil {
			return nil, fmt.Errorf("%w: scan applied version: %w", ErrMigrationFailed, err)
		}

		applied[version] = struct{}{}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate applied versions: %w", ErrMigrationFailed, err)
	}

	return applied, nil
}

func (db *DB) applyMigration(ctx context.Context, version, content string) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() { _ = tx.Rollback() }()

	for idx, stmt := range splitStatements(db.dialect, content) {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("statement %d: %w", idx+1, err)
		}
	}

	insert := rebind(db.dialect, fmt.Sprintf(`INSERT INTO %s (version, applied_at) VALUES (?, ?)`, migrationsTable))
	if _, err := tx.ExecContext(ctx, insert, version, formatTime(nowUTC())); err != nil {
		return fmt.Errorf("record version: %w", err)
	}

	return tx.Commit()
}

// migrationVersion returns the numeric prefix of a migration file name.
func migrationVersion(name string) string {
	name = strings.TrimSuffix(name, ".up.sql")
	version, _, _ := strings.Cut(name, "_")

	return version
}
