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

// Package readmodel serves committed device state to the API and reports.
package readmodel

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/carverauto/centraldanone/pkg/db"
	"github.com/carverauto/centraldanone/pkg/models"
)

const (
	defaultDetailObservations = 20
	defaultScanRuns           = 50
)

// ScanState reports whether a scan is running.
type ScanState interface {
	ScanInProgress() bool
}

// ReadModel answers every query from a single read-only transaction, so a
// device row and the data derived from it always come from the same
// committed state.
type ReadModel struct {
	db           *db.DB
	scans        ScanState
	observations int
}

func New(database *db.DB, scans ScanState, detailObservations int) *ReadModel {
	if detailObservations <= 0 {
		detailObservations = defaultDetailObservations
	}

	return &ReadModel{db: database, scans: scans, observations: detailObservations}
}

func (m *ReadModel) read(ctx context.Context, op string, fn func(q *db.Queries) error) error {
	return m.db.WithTx(ctx, db.TxOptions{ReadOnly: true}, op, fn)
}

// ListDevices returns one summary per device matching filter, ordered by id.
func (m *ReadModel) ListDevices(ctx context.Context, filter models.DeviceFilter) ([]models.DeviceSummary, error) {
	var out []models.DeviceSummary

	err := m.read(ctx, "list devices", func(q *db.Queries) error {
		devices, err := q.ListDevices(ctx, filter)
		if err != nil {
			return err
		}

		byDevice, _, err := q.ActiveAlertCounts(ctx)
		if err != nil {
			return err
		}

		out = make([]models.DeviceSummary, 0, len(devices))

		for i := range devices {
			d := &devices[i]

			out = append(out, models.DeviceSummary{
				ID:                 d.ID,
				IP:                 d.IP,
				Hostname:           d.Hostname,
				DeviceType:         d.DeviceType,
				IsOnline:           d.IsOnline,
				LastSeen:           d.LastSeen,
				HealthScore:        d.HealthScore,
				FailureProbability: d.FailureProbability,
				AnomalyScore:       d.AnomalyScore,
				ActiveAlertCount:   byDevice[d.ID],
			})
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

// DeviceDetail returns a device by id or IP with its latest observations and
// unresolved alerts.
func (m *ReadModel) DeviceDetail(ctx context.Context, idOrIP string) (*models.DeviceDetail, error) {
	var detail *models.DeviceDetail

	err := m.read(ctx, "device detail", func(q *db.Queries) error {
		d, err := lookup(ctx, q, idOrIP)
		if err != nil {
			return err
		}

		obs, err := q.RecentObservations(ctx, d.ID, m.observations)
		if err != nil {
			return err
		}

		active, err := q.ListAlerts(ctx, models.AlertFilter{ActiveOnly: true, DeviceID: &d.ID})
		if err != nil {
			return err
		}

		detail = &models.DeviceDetail{DeviceRecord: *d, Observations: obs, ActiveAlerts: active}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return detail, nil
}

func lookup(ctx context.Context, q *db.Queries, idOrIP string) (*models.DeviceRecord, error) {
	if id, err := strconv.ParseInt(idOrIP, 10, 64); err == nil {
		return q.DeviceByID(ctx, id)
	}

	if net.ParseIP(idOrIP).To4() == nil {
		return nil, fmt.Errorf("%w: %q", models.ErrDeviceNotFound, idOrIP)
	}

	return q.DeviceByIP(ctx, idOrIP)
}

// Statistics aggregates the fleet.
func (m *ReadModel) Statistics(ctx context.Context) (*models.Statistics, error) {
	stats := &models.Statistics{}

	err := m.read(ctx, "statistics", func(q *db.Queries) error {
		devices, err := q.ListDevices(ctx, models.DeviceFilter{})
		if err != nil {
			return err
		}

		_, byPriority, err := q.ActiveAlertCounts(ctx)
		if err != nil {
			return err
		}

		last, err := q.LastScanRun(ctx)
		if err != nil {
			return err
		}

		*stats = aggregate(devices, byPriority)
		stats.LastScan = last

		return nil
	})
	if err != nil {
		return nil, err
	}

	if m.scans != nil {
		stats.ScanInProgress = m.scans.ScanInProgress()
	}

	return stats, nil
}

func aggregate(devices []models.DeviceRecord, byPriority map[models.AlertPriority]int) models.Statistics {
	stats := models.Statistics{
		TotalDevices: len(devices),
		AlertCountsByPriority: map[models.AlertPriority]int{
			models.PriorityHigh:   byPriority[models.PriorityHigh],
			models.PriorityMedium: byPriority[models.PriorityMedium],
			models.PriorityLow:    byPriority[models.PriorityLow],
		},
		DevicesByType: make(map[models.DeviceType]int),
	}

	if len(devices) == 0 {
		return stats
	}

	var uptime, healthSum float64

	for i := range devices {
		d := &devices[i]

		if d.IsOnline {
			stats.OnlineDevices++
		}

		uptime += d.UptimePct
		healthSum += d.HealthScore
		stats.DevicesByType[d.DeviceType]++
	}

	stats.OfflineDevices = stats.TotalDevices - stats.OnlineDevices
	stats.UptimePercentage = uptime / float64(len(devices))
	stats.AverageHealthScore = healthSum / float64(len(devices))

	return stats
}

// Alerts lists alerts newest first.
func (m *ReadModel) Alerts(ctx context.Context, filter models.AlertFilter) ([]models.Alert, error) {
	var out []models.Alert

	err := m.read(ctx, "list alerts", func(q *db.Queries) error {
		var err error

		out, err = q.ListAlerts(ctx, filter)

		return err
	})

	return out, err
}

// ScanRuns lists recent runs newest first.
func (m *ReadModel) ScanRuns(ctx context.Context, limit int) ([]models.ScanRun, error) {
	if limit <= 0 {
		limit = defaultScanRuns
	}

	var out []models.ScanRun

	err := m.read(ctx, "list scan runs", func(q *db.Queries) error {
		var err error

		out, err = q.ListScanRuns(ctx, limit)

		return err
	})

	return out, err
}

// ObservationSummaries aggregates observations per device over [from, to).
func (m *ReadModel) ObservationSummaries(ctx context.Context, from, to time.Time) (map[int64]db.ObservationSummary, error) {
	var out map[int64]db.ObservationSummary

	err := m.read(ctx, "summarize observations", func(q *db.Queries) error {
		var err error

		out, err = q.SummarizeObservations(ctx, from, to)

		return err
	})

	return out, err
}

// CountScanRuns counts runs started in [from, to).
func (m *ReadModel) CountScanRuns(ctx context.Context, from, to time.Time) (int, error) {
	var n int

	err := m.read(ctx, "count scan runs", func(q *db.Queries) error {
		var err error

		n, err = q.CountScanRuns(ctx, from, to)

		return err
	})

	return n, err
}
