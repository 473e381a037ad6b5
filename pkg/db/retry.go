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
	"errors"
	"math/rand"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// PostgreSQL SQLSTATE codes for transient errors that should be retried.
const (
	sqlstateDeadlockDetected    = "40P01"
	sqlstateSerializationFailed = "40001"
	sqlstateStatementTimeout    = "57014"

	// codeSQLiteBusy labels SQLITE_BUSY and SQLITE_LOCKED in logs.
	codeSQLiteBusy = "SQLITE_BUSY"
)

// RetryPolicy bounds how often a transaction is restarted after a transient
// failure.
type RetryPolicy struct {
	MaxAttempts     int
	BaseBackoff     time.Duration
	DeadlockBackoff time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:     5,
		BaseBackoff:     50 * time.Millisecond,
		DeadlockBackoff: 150 * time.Millisecond,
	}
}

// classifyTransient reports whether err is a serialization failure, deadlock
// or lock timeout worth retrying, along with a code for logging.
func classifyTransient(err error) (string, bool) {
	if err == nil {
		return "", false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case sqlstateDeadlockDetected, sqlstateSerializationFailed, sqlstateStatementTimeout:
			return pgErr.Code, true
		}

		return pgErr.Code, false
	}

	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		switch liteErr.Code() & 0xff {
		case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED:
			return codeSQLiteBusy, true
		}

		return "", false
	}

	// Fallback to string matching for errors that lost their type.
	msg := strings.ToLower(err.Error())

	switch {
	case strings.Contains(msg, "40p01"), strings.Contains(msg, "deadlock detected"):
		return sqlstateDeadlockDetected, true
	case strings.Contains(msg, "40001"), strings.Contains(msg, "could not serialize access"):
		return sqlstateSerializationFailed, true
	case strings.Contains(msg, "database is locked"), strings.Contains(msg, "sqlite_busy"):
		return codeSQLiteBusy, true
	default:
		return "", false
	}
}

// backoff grows exponentially per attempt with up to one base of jitter.
func (p RetryPolicy) backoff(attempt int, code string) time.Duration {
	if attempt < 1 {
		attempt = 1
	}

	base := p.BaseBackoff
	if code == sqlstateDeadlockDetected || code == sqlstateSerializationFailed {
		base = p.DeadlockBackoff
	}

	if base <= 0 {
		return 0
	}

	delay := base * time.Duration(1<<(attempt-1))

	return delay + time.Duration(rand.Int63n(int64(base))) //nolint:gosec // jitter only
}
