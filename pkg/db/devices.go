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

	"github.com/carverauto/centraldanone/pkg/models"
)

const deviceColumns = `id, ip, hostname, mac, mac_vendor, device_type, is_online, first_seen,
	last_seen, response_time_ms, consecutive_failures, uptime_pct, health_score,
	failure_probability, anomaly_score, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDevice(row rowScanner) (*models.DeviceRecord, error) {
	var (
		d                   models.DeviceRecord
		hostname, mac, vend sql.NullString
		deviceType          string
		firstSeen, updated  nullTime
		lastSeen            nullTime
		rtt                 sql.NullFloat64
	)

	err := row.Scan(
		&d.ID, &d.IP, &hostname, &mac, &vend, &deviceType, &d.IsOnline, &firstSeen,
		&lastSeen, &rtt, &d.ConsecutiveFailures, &d.UptimePct, &d.HealthScore,
		&d.FailureProbability, &d.AnomalyScore, &updated,
	)
	if err != nil {
		return nil, err
	}

	d.Hostname = stringPtr(hostname)
	d.MAC = stringPtr(mac)
	d.MACVendor = stringPtr(vend)
	d.DeviceType = models.DeviceType(deviceType)
	d.FirstSeen = firstSeen.Time
	d.LastSeen = lastSeen.Ptr()
	d.ResponseTimeMs = floatPtr(rtt)
	d.UpdatedAt = updated.Time

	return &d, nil
}

// DeviceByIP returns models.ErrDeviceNotFound when the address is unknown.
func (q *Queries) DeviceByIP(ctx context.Context, ip string) (*models.DeviceRecord, error) {
	row := q.queryRow(ctx, `SELECT `+deviceColumns+` FROM device WHERE ip = ?`, ip)

	d, err := scanDevice(row)
	if isNoRows(err) {
		return nil, fmt.Errorf("%w: %s", models.ErrDeviceNotFound, ip)
	}

	if err != nil {
		return nil, models.NewStorageError("device by ip", err)
	}

	return d, nil
}

// DeviceByID returns models.ErrDeviceNotFound when the id is unknown.
func (q *Queries) DeviceByID(ctx context.Context, id int64) (*models.DeviceRecord, error) {
	row := q.queryRow(ctx, `SELECT `+deviceColumns+` FROM device WHERE id = ?`, id)

	d, err := scanDevice(row)
	if isNoRows(err) {
		return nil, fmt.Errorf("%w: id %d", models.ErrDeviceNotFound, id)
	}

	if err != nil {
		return nil, models.NewStorageError("device by id", err)
	}

	return d, nil
}

// InsertDevice stores a new device and sets its ID.
func (q *Queries) InsertDevice(ctx context.Context, d *models.DeviceRecord) error {
	id, err := q.insertReturningID(ctx, "insert device", `INSERT INTO device (
		ip, hostname, mac, mac_vendor, device_type, is_online, first_seen, last_seen,
		response_time_ms, consecutive_failures, uptime_pct, health_score,
		failure_probability, anomaly_score, updated_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		d.IP, nullString(d.Hostname), nullString(d.MAC), nullString(d.MACVendor), string(d.DeviceType),
		d.IsOnline, q.ts(d.FirstSeen), nullableTimeArg(q.dialect, d.LastSeen),
		nullFloat(d.ResponseTimeMs), d.ConsecutiveFailures, d.UptimePct, d.HealthScore,
		d.FailureProbability, d.AnomalyScore, q.ts(d.UpdatedAt),
	)
	if err != nil {
		return err
	}

	d.ID = id

	return nil
}

// UpdateDevice overwrites every mutable column of an existing device.
func (q *Queries) UpdateDevice(ctx context.Context, d *models.DeviceRecord) error {
	res, err := q.exec(ctx, "update device", `UPDATE device SET
		hostname = ?, mac = ?, mac_vendor = ?, device_type = ?, is_online = ?,
		last_seen = ?, response_time_ms = ?, consecutive_failures = ?, uptime_pct = ?,
		health_score = ?, failure_probability = ?, anomaly_score = ?, updated_at = ?
		WHERE id = ?`,
		nullString(d.Hostname), nullString(d.MAC), nullString(d.MACVendor), string(d.DeviceType),
		d.IsOnline, nullableTimeArg(q.dialect, d.LastSeen), nullFloat(d.ResponseTimeMs),
		d.ConsecutiveFailures, d.UptimePct, d.HealthScore, d.FailureProbability,
		d.AnomalyScore, q.ts(d.UpdatedAt), d.ID,
	)
	if err != nil {
		return err
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: id %d", models.ErrDeviceNotFound, d.ID)
	}

	return nil
}

// ListDevices returns devices in discovery order, narrowed by filter.
func (q *Queries) ListDevices(ctx context.Context, filter models.DeviceFilter) ([]models.DeviceRecord, error) {
	var (
		where []string
		args  []any
	)

	if filter.Online != nil {
		where = append(where, "is_online = ?")
		args = append(args, *filter.Online)
	}

	if filter.DeviceType != "" {
		where = append(where, "device_type = ?")
		args = append(args, string(filter.DeviceType))
	}

	query := `SELECT ` + deviceColumns + ` FROM device`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}

	query += " ORDER BY id"

	rows, err := q.query(ctx, "list devices", query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	devices := make([]models.DeviceRecord, 0)

	for rows.Next() {
		d, err := scanDevice(rows)
		if err != nil {
			return nil, models.NewStorageError("scan device", err)
		}

		devices = append(devices, *d)
	}

	if err := rows.Err(); err != nil {
		return nil, models.NewStorageError("list devices", err)
	}

	return devices, nil
}
