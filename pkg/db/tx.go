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
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/carverauto/centraldanone/pkg/models"
)

// TxOptions selects the transaction mode.
type TxOptions struct {
	ReadOnly bool
}

// WithTx runs fn inside one serializable transaction and commits when it
// returns nil. Transient failures roll back and restart fn from scratch, so fn
// must keep its side effects inside the transaction. Any error from fn rolls
// the transaction back.
func (db *DB) WithTx(ctx context.Context, opts TxOptions, op string, fn func(q *Queries) error) error {
	attempts := db.retry.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error

	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := db.runTx(ctx, opts, fn)
		if err == nil {
			return nil
		}

		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
			return err
		}

		lastErr = err

		code, transient := classifyTransient(err)
		if !transient {
			return err
		}

		if attempt == attempts {
			break
		}

		delay := db.retry.backoff(attempt, code)

		db.logger.Warn().
			Err(err).
			Str("code", code).
			Str("op", op).
			Int("attempt", attempt).
			Int("max_attempts", attempts).
			Dur("backoff", delay).
			Msg("Transient storage error, retrying transaction")

		if err := sleepContext(ctx, delay); err != nil {
			return err
		}
	}

	return models.NewStorageError(op, fmt.Errorf("%w: %w", ErrRetriesExhausted, lastErr))
}

func (db *DB) runTx(ctx context.Context, opts TxOptions, fn func(q *Queries) error) (err error) {
	txOpts := &sql.TxOptions{ReadOnly: opts.ReadOnly}

	// SQLite transactions are serializable already; the driver rejects
	// explicit isolation levels.
	if db.dialect == DialectPostgres {
		txOpts.Isolation = sql.LevelSerializable
	}

	tx, err := db.conn.BeginTx(ctx, txOpts)
	if err != nil {
		return models.NewStorageError("begin", err)
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(&Queries{q: tx, dialect: db.dialect}); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return models.NewStorageError("commit", err)
	}

	return nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
