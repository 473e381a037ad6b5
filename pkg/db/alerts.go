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
	"strings"
	"time"

	"github.com/carverauto/centraldanone/pkg/models"
)

const alertColumns = `a.id, a.device_id, COALESCE(d.ip, ''), a.kind, a.priority, a.message, a.created_at, a.resolved_at`

const alertFrom = ` FROM alert a LEFT JOIN device d ON d.id = a.device_id`

func scanAlert(row rowScanner) (*models.Alert, error) {
	var (
		a        models.Alert
		deviceID sql.NullInt64
		kind     string
		priority string
		created  nullTime
		resolved nullTime
	)

	if err := row.Scan(&a.ID, &deviceID, &a.DeviceIP, &kind, &priority, &a.Message, &created, &resolved); err != nil {
		return nil, err
	}

	if deviceID.Valid {
		id := deviceID.Int64
		a.DeviceID = &id
	}

	a.Kind = models.AlertKind(kind)
	a.Priority = models.AlertPriority(priority)
	a.CreatedAt = created.Time
	a.ResolvedAt = resolved.Ptr()

	return &a, nil
}

// ActiveAlert returns the unresolved alert of kind for a device, or for the
// run level when deviceID is nil. A nil alert means none is open.
func (q *Queries) ActiveAlert(ctx context.Context, deviceID *int64, kind models.AlertKind) (*models.Alert, error) {
	query := `SELECT ` + alertColumns + alertFrom + ` WHERE a.kind = ? AND a.resolved_at IS NULL`
	args := []any{string(kind)}

	if deviceID == nil {
		query += ` AND a.device_id IS NULL`
	} else {
		query += ` AND a.device_id = ?`

		args = append(args, *deviceID)
	}

	a, err := scanAlert(q.queryRow(ctx, query, args...))
	if isNoRows(err) {
		return nil, nil
	}

	if err != nil {
		return nil, models.NewStorageError("active alert", err)
	}

	return a, nil
}

// InsertAlert stores an alert and sets its ID. The partial unique index
// rejects a second unresolved alert for the same device and kind.
func (q *Queries) InsertAlert(ctx context.Context, a *models.Alert) error {
	var deviceID any
	if a.DeviceID != nil {
		deviceID = *a.DeviceID
	}

	id, err := q.insertReturningID(ctx, "insert alert", `INSERT INTO alert (
		device_id, kind, priority, message, created_at, resolved_at
	) VALUES (?, ?, ?, ?, ?, ?)`,
		deviceID, string(a.Kind), string(a.Priority), a.Message, q.ts(a.CreatedAt),
		nullableTimeArg(q.dialect, a.ResolvedAt),
	)
	if err != nil {
		return err
	}

	a.ID = id

	return nil
}

// ResolveAlert stamps resolved_at on an open alert. Resolving an already
// resolved alert is a no-op that returns the stored row.
func (q *Queries) ResolveAlert(ctx context.Context, id int64, at time.Time) (*models.Alert, error) {
	if _, err := q.exec(ctx, "resolve alert",
		`UPDATE alert SET resolved_at = ? WHERE id = ? AND resolved_at IS NULL`, q.ts(at), id); err != nil {
		return nil, err
	}

	return q.AlertByID(ctx, id)
}

// AlertByID returns models.ErrAlertNotFound when the id is unknown.
func (q *Queries) AlertByID(ctx context.Context, id int64) (*models.Alert, error) {
	a, err := scanAlert(q.queryRow(ctx, `SELECT `+alertColumns+alertFrom+` WHERE a.id = ?`, id))
	if isNoRows(err) {
		return nil, fmt.Errorf("%w: %d", models.ErrAlertNotFound, id)
	}

	if err != nil {
		return nil, models.NewStorageError("alert by id", err)
	}

	return a, nil
}

// ListAlerts returns alerts newest first.
func (q *Queries) ListAlerts(ctx context.Context, filter models.AlertFilter) ([]models.Alert, error) {
	var (
		where []string
		args  []any
	)

	if filter.ActiveOnly {
		where = append(where, "a.resolved_at IS NULL")
	}

	if filter.DeviceID != nil {
		where = append(where, "a.device_id = ?")
		args = append(args, *filter.DeviceID)
	}

	query := `SELECT ` + alertColumns + alertFrom
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}

	query += " ORDER BY a.created_at DESC, a.id DESC"

	if filter.Limit > 0 {
		query += " LIMIT ?"

		args = append(args, filter.Limit)
	}

	rows, err := q.query(ctx, "list alerts", query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	alerts := make([]models.Alert, 0)

	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, models.NewStorageError("scan alert", err)
		}

		alerts = append(alerts, *a)
	}

	if err := rows.Err(); err != nil {
		return nil, models.NewStorageError("list alerts", err)
	}

	return alerts, nil
}

// ActiveAlertCounts returns unresolved alerts per device ID and per priority.
func (q *Queries) ActiveAlertCounts(ctx context.Context) (map[int64]int, map[models.AlertPriority]int, error) {
	rows, err := q.query(ctx, "active alert counts", `SELECT COALESCE(device_id, 0), priority, COUNT(*)
		FROM alert WHERE resolved_at IS NULL
		GROUP BY COALESCE(device_id, 0), priority`)
	if err != nil {
		return nil, nil, err
	}
	defer func() { _ = rows.Close() }()

	byDevice := make(map[int64]int)
	byPriority := make(map[models.AlertPriority]int)

	for rows.Next() {
		var (
			deviceID int64
			priority string
			count    int
		)

		if err := rows.Scan(&deviceID, &priority, &count); err != nil {
			return nil, nil, models.NewStorageError("scan alert counts", err)
		}

		if deviceID != 0 {
			byDevice[deviceID] += count
		}

		byPriority[models.AlertPriority(priority)] += count
	}

	if err := rows.Err(); err != nil {
		return nil, nil, models.NewStorageError("active alert counts", err)
	}

	return byDevice, byPriority, nil
}
