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
	"time"

	"github.com/carverauto/centraldanone/pkg/models"
)

// Queries holds the typed statements. It runs either directly on the pool or
// inside a transaction opened by WithTx.
type Queries struct {
	q       querier
	dialect Dialect
}

func (q *Queries) exec(ctx context.Context, op, query string, args ...any) (sql.Result, error) {
	res, err := q.q.ExecContext(ctx, rebind(q.dialect, query), args...)
	if err != nil {
		return nil, models.NewStorageError(op, err)
	}

	return res, nil
}

func (q *Queries) query(ctx context.Context, op, query string, args ...any) (*sql.Rows, error) {
	rows, err := q.q.QueryContext(ctx, rebind(q.dialect, query), args...)
	if err != nil {
		return nil, models.NewStorageError(op, err)
	}

	return rows, nil
}

func (q *Queries) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return q.q.QueryRowContext(ctx, rebind(q.dialect, query), args...)
}

// insertReturningID runs an INSERT ... RETURNING id statement.
func (q *Queries) insertReturningID(ctx context.Context, op, query string, args ...any) (int64, error) {
	var id int64

	if err := q.queryRow(ctx, query+" RETURNING id", args...).Scan(&id); err != nil {
		return 0, models.NewStorageError(op, err)
	}

	return id, nil
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

func (q *Queries) ts(t time.Time) any {
	return timeArg(q.dialect, t)
}
