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
	"fmt"
	"time"

	"github.com/carverauto/centraldanone/pkg/models"
)

const scanColumns = `id, scan_range, trigger_kind, started_at, finished_at, devices_probed,
	devices_reachable, devices_skipped, duration_ms, cancelled, error`

func scanRun(row rowScanner) (*models.ScanRun, error) {
	var (
		r        models.ScanRun
		trigger  string
		started  nullTime
		finished nullTime
		runErr   sql.NullString
	)

	err := row.Scan(&r.ID, &r.Range, &trigger, &started, &finished, &r.DevicesProbed,
		&r.DevicesReachable, &r.DevicesSkipped, &r.DurationMs, &r.Cancelled, &runErr)
	if err != nil {
		return nil, err
	}

	r.Trigger = models.ScanTrigger(trigger)
	r.StartedAt = started.Time
	r.FinishedAt = finished.Ptr()
	r.Error = runErr.String

	return &r, nil
}

// InsertScanRun records the start of a run.
func (q *Queries) InsertScanRun(ctx context.Context, r *models.ScanRun) error {
	_, err := q.exec(ctx, "insert scan run", `INSERT INTO scan_history (`+scanColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Range, string(r.Trigger), q.ts(r.StartedAt), nullableTimeArg(q.dialect, r.FinishedAt),
		r.DevicesProbed, r.DevicesReachable, r.DevicesSkipped, r.DurationMs, r.Cancelled, nullIfEmpty(r.Error),
	)

	return err
}

// FinishScanRun stores the final counters of a run.
func (q *Queries) FinishScanRun(ctx context.Context, r *models.ScanRun) error {
	res, err := q.exec(ctx, "finish scan run", `UPDATE scan_history SET
		finished_at = ?, devices_probed = ?, devices_reachable = ?, devices_skipped = ?,
		duration_ms = ?, cancelled = ?, error = ?
		WHERE id = ?`,
		nullableTimeArg(q.dialect, r.FinishedAt), r.DevicesProbed, r.DevicesReachable, r.DevicesSkipped,
		r.DurationMs, r.Cancelled, nullIfEmpty(r.Error), r.ID,
	)
	if err != nil {
		return err
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return models.NewStorageError("finish scan run", fmt.Errorf("%w: %s", errScanRunNotFound, r.ID))
	}

	return nil
}

// ListScanRuns returns the most recent runs first.
func (q *Queries) ListScanRuns(ctx context.Context, limit int) ([]models.ScanRun, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := q.query(ctx, "list scan runs",
		`SELECT `+scanColumns+` FROM scan_history ORDER BY started_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	runs := make([]models.ScanRun, 0)

	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, models.NewStorageError("scan run", err)
		}

		runs = append(runs, *r)
	}

	if err := rows.Err(); err != nil {
		return nil, models.NewStorageError("list scan runs", err)
	}

	return runs, nil
}

// LastScanRun returns the most recently started run, or nil.
func (q *Queries) LastScanRun(ctx context.Context) (*models.ScanRun, error) {
	r, err := scanRun(q.queryRow(ctx, `SELECT `+scanColumns+` FROM scan_history ORDER BY started_at DESC, id DESC LIMIT 1`))
	if isNoRows(err) {
		return nil, nil
	}

	if err != nil {
		return nil, models.NewStorageError("last scan run", err)
	}

	return r, nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}

	return s
}

// CountScanRuns counts runs started in [from, to).
func (q *Queries) CountScanRuns(ctx context.Context, from, to time.Time) (int, error) {
	var n int

	err := q.queryRow(ctx, `SELECT COUNT(*) FROM scan_history WHERE started_at >= ? AND started_at < ?`,
		q.ts(from), q.ts(to)).Scan(&n)
	if err != nil {
		return 0, models.NewStorageError("count scan runs", err)
	}

	return n, nil
}
