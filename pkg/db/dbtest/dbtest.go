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

// Package dbtest opens throwaway SQLite databases for tests.
package dbtest

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/carverauto/centraldanone/pkg/db"
	"github.com/carverauto/centraldanone/pkg/logger"
)

// Open returns a migrated database in t.TempDir() that is closed on cleanup.
func Open(t testing.TB) *db.DB {
	t.Helper()

	database, err := db.OpenSQLite(filepath.Join(t.TempDir(), "danone.db"), logger.NewTestLogger())
	require.NoError(t, err)

	t.Cleanup(func() { _ = database.Close() })

	require.NoError(t, database.Migrate(context.Background()))

	database.SetRetryPolicy(db.RetryPolicy{
		MaxAttempts:     5,
		BaseBackoff:     time.Millisecond,
		DeadlockBackoff: time.Millisecond,
	})

	return database
}
