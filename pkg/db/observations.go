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
	"time"

	"github.com/carverauto/centraldanone/pkg/models"
)

// InsertObservation appends one immutable observation and sets its ID.
func (q *Queries) InsertObservation(ctx context.Context, obs *models.ScanObservation) error {
	var errorKind any
	if obs.ErrorKind != nil {
		errorKind = string(*obs.ErrorKind)
	}

	var scanID any
	if obs.ScanID != "" {
		scanID = obs.ScanID
	}

	id, err := q.insertReturningID(ctx, "insert observation", `INSERT INTO scan_observation (
		device_id, scan_id, timestamp, reachable, response_time_ms, error_kind
	) VALUES (?, ?, ?, ?, ?, ?)`,
		obs.DeviceID, scanID, q.ts(obs.Timestamp), obs.Reachable, nullFloat(obs.ResponseTimeMs), errorKind,
	)
	if err != nil {
		return err
	}

	obs.ID = id

	return nil
}

// RecentObservations returns up to limit observations for a device, newest
// first. Ties on timestamp fall back to insertion order.
func (q *Queries) RecentObservations(ctx context.Context, deviceID int64, limit int) ([]models.ScanObservation, error) {
	if limit <= 0 {
		return []models.ScanObservation{}, nil
	}

	rows, err := q.query(ctx, "recent observations", `SELECT id, device_id, scan_id, timestamp, reachable,
		response_time_ms, error_kind
		FROM scan_observation
		WHERE device_id = ?
		ORDER BY timestamp DESC, id DESC
		LIMIT ?`, deviceID, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	out := make([]models.ScanObservation, 0, limit)

	for rows.Next() {
		var (
			obs       models.ScanObservation
			scanID    sql.NullString
			ts        nullTime
			rtt       sql.NullFloat64
			errorKind sql.NullString
		)

		if err := rows.Scan(&obs.ID, &obs.DeviceID, &scanID, &ts, &obs.Reachable, &rtt, &errorKind); err != nil {
			return nil, models.NewStorageError("scan observation", err)
		}

		obs.ScanID = scanID.String
		obs.Timestamp = ts.Time
		obs.ResponseTimeMs = floatPtr(rtt)

		if errorKind.Valid {
			kind := models.ErrorKind(errorKind.String)
			obs.ErrorKind = &kind
		}

		out = append(out, obs)
	}

	if err := rows.Err(); err != nil {
		return nil, models.NewStorageError("recent observations", err)
	}

	return out, nil
}

// ObservationSummary is the per-device availability over a time window.
type ObservationSummary struct {
	DeviceID     int64
	Total        int
	Reachable    int
	AvgRTTMs     *float64
	LastObserved time.Time
}

// SummarizeObservations aggregates observations recorded in [from, to).
func (q *Queries) SummarizeObservations(ctx context.Context, from, to time.Time) (map[int64]ObservationSummary, error) {
	rows, err := q.query(ctx, "summarize observations", `SELECT device_id, COUNT(*),
		SUM(CASE WHEN reachable THEN 1 ELSE 0 END),
		AVG(response_time_ms), MAX(timestamp)
		FROM scan_observation
		WHERE timestamp >= ? AND timestamp < ?
		GROUP BY device_id`, q.ts(from), q.ts(to))
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	out := make(map[int64]ObservationSummary)

	for rows.Next() {
		var (
			s    ObservationSummary
			avg  sql.NullFloat64
			last nullTime
		)

		if err := rows.Scan(&s.DeviceID, &s.Total, &s.Reachable, &avg, &last); err != nil {
			return nil, models.NewStorageError("scan observation summary", err)
		}

		s.AvgRTTMs = floatPtr(avg)
		s.LastObserved = last.Time
		out[s.DeviceID] = s
	}

	if err := rows.Err(); err != nil {
		return nil, models.NewStorageError("summarize observations", err)
	}

	return out, nil
}

// PruneObservations deletes observations older than before and returns the
// number removed.
func (q *Queries) PruneObservations(ctx context.Context, before time.Time) (int64, error) {
	res, err := q.exec(ctx, "prune observations", `DELETE FROM scan_observation WHERE timestamp < ?`, q.ts(before))
	if err != nil {
		return 0, err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, models.NewStorageError("prune observations", err)
	}

	return n, nil
}
