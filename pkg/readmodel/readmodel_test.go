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

package readmodel

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/carverauto/centraldanone/pkg/db"
	"github.com/carverauto/centraldanone/pkg/db/dbtest"
	"github.com/carverauto/centraldanone/pkg/health"
	"github.com/carverauto/centraldanone/pkg/logger"
	"github.com/carverauto/centraldanone/pkg/models"
	"github.com/carverauto/centraldanone/pkg/registry"
)

var t0 = time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)

type scanState bool

func (s scanState) ScanInProgress() bool { return bool(s) }

func setup(t *testing.T) (*ReadModel, *registry.DeviceRegistry, *db.DB) {
	t.Helper()

	database := dbtest.Open(t)
	reg := registry.NewDeviceRegistry(database, health.NewTracker(20),
		registry.Config{RegisterUnreachable: true}, logger.NewTestLogger())

	return New(database, scanState(true), 5), reg, database
}

func sighting(at time.Time, up bool, kind models.DeviceType) *registry.Sighting {
	s := &registry.Sighting{DeviceType: kind, Observation: models.ScanObservation{Timestamp: at, Reachable: up}}

	if up {
		rtt := 2.5
		s.Observation.ResponseTimeMs = &rtt
	} else {
		timeout := models.ErrorKindTimeout
		s.Observation.ErrorKind = &timeout
	}

	return s
}

func insertAlert(t *testing.T, database *db.DB, deviceID *int64, kind models.AlertKind) *models.Alert {
	t.Helper()

	a := &models.Alert{DeviceID: deviceID, Kind: kind, Priority: kind.Priority(), Message: string(kind), CreatedAt: t0}
	require.NoError(t, database.Queries().InsertAlert(context.Background(), a))

	return a
}

func TestListDevicesCountsActiveAlerts(t *testing.T) {
	m, reg, database := setup(t)
	ctx := context.Background()

	up, err := reg.Upsert(ctx, "10.0.0.1", sighting(t0, true, models.DeviceTypeRouter))
	require.NoError(t, err)
	down, err := reg.Upsert(ctx, "10.0.0.2", sighting(t0, false, models.DeviceTypeUnknown))
	require.NoError(t, err)

	insertAlert(t, database, &down.ID, models.AlertKindOffline)
	insertAlert(t, database, &down.ID, models.AlertKindLowUptime)
	insertAlert(t, database, nil, models.AlertKindScanFailed)

	list, err := m.ListDevices(ctx, models.DeviceFilter{})
	require.NoError(t, err)
	require.Len(t, list, 2)

	assert.Equal(t, up.ID, list[0].ID)
	assert.True(t, list[0].IsOnline)
	assert.Zero(t, list[0].ActiveAlertCount)
	assert.Equal(t, down.ID, list[1].ID)
	assert.Equal(t, 2, list[1].ActiveAlertCount)

	online := true
	list, err = m.ListDevices(ctx, models.DeviceFilter{Online: &online})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "10.0.0.1", list[0].IP)
}

func TestDeviceDetail(t *testing.T) {
	m, reg, database := setup(t)
	ctx := context.Background()

	var id int64

	for i := 0; i < 8; i++ {
		d, err := reg.Upsert(ctx, "10.0.0.7", sighting(t0.Add(time.Duration(i)*time.Minute), i%2 == 0, models.DeviceTypeServer))
		require.NoError(t, err)

		id = d.ID
	}

	resolved := insertAlert(t, database, &id, models.AlertKindRecovered)
	_, err := database.Queries().ResolveAlert(ctx, resolved.ID, t0)
	require.NoError(t, err)
	insertAlert(t, database, &id, models.AlertKindOffline)

	byIP, err := m.DeviceDetail(ctx, "10.0.0.7")
	require.NoError(t, err)
	assert.Equal(t, id, byIP.ID)
	require.Len(t, byIP.Observations, 5)
	assert.Equal(t, t0.Add(7*time.Minute), byIP.Observations[0].Timestamp)
	assert.False(t, byIP.IsOnline)
	require.Len(t, byIP.ActiveAlerts, 1)
	assert.Equal(t, models.AlertKindOffline, byIP.ActiveAlerts[0].Kind)

	byID, err := m.DeviceDetail(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, byIP.IP, byID.IP)

	_, err = m.DeviceDetail(ctx, "10.0.0.99")
	require.ErrorIs(t, err, models.ErrDeviceNotFound)

	_, err = m.DeviceDetail(ctx, "not-a-device")
	require.ErrorIs(t, err, models.ErrDeviceNotFound)
}

func TestStatistics(t *testing.T) {
	m, reg, database := setup(t)
	ctx := context.Background()

	stats, err := m.Statistics(ctx)
	require.NoError(t, err)
	assert.Zero(t, stats.TotalDevices)
	assert.Zero(t, stats.UptimePercentage)
	assert.Nil(t, stats.LastScan)
	assert.Equal(t, map[models.AlertPriority]int{
		models.PriorityHigh: 0, models.PriorityMedium: 0, models.PriorityLow: 0,
	}, stats.AlertCountsByPriority)

	_, err = reg.Upsert(ctx, "10.0.0.1", sighting(t0, true, models.DeviceTypeRouter))
	require.NoError(t, err)
	_, err = reg.Upsert(ctx, "10.0.0.2", sighting(t0, true, models.DeviceTypeRouter))
	require.NoError(t, err)
	down, err := reg.Upsert(ctx, "10.0.0.3", sighting(t0, false, models.DeviceTypePrinter))
	require.NoError(t, err)

	insertAlert(t, database, &down.ID, models.AlertKindOffline)
	insertAlert(t, database, &down.ID, models.AlertKindLowUptime)

	run := &models.ScanRun{ID: "run-1", Range: "10.0.0.0/30", Trigger: models.ScanTriggerManual, StartedAt: t0}
	require.NoError(t, reg.StartRun(ctx, run))

	stats, err = m.Statistics(ctx)
	require.NoError(t, err)

	assert.Equal(t, 3, stats.TotalDevices)
	assert.Equal(t, 2, stats.OnlineDevices)
	assert.Equal(t, 1, stats.OfflineDevices)
	assert.InDelta(t, 200.0/3, stats.UptimePercentage, 1e-9)
	assert.Equal(t, 1, stats.AlertCountsByPriority[models.PriorityHigh])
	assert.Equal(t, 1, stats.AlertCountsByPriority[models.PriorityMedium])
	assert.Equal(t, 2, stats.DevicesByType[models.DeviceTypeRouter])
	assert.Equal(t, 1, stats.DevicesByType[models.DeviceTypePrinter])
	require.NotNil(t, stats.LastScan)
	assert.Equal(t, "run-1", stats.LastScan.ID)
	assert.True(t, stats.ScanInProgress)
}

func TestAlertsAndScanRuns(t *testing.T) {
	m, reg, database := setup(t)
	ctx := context.Background()

	a := insertAlert(t, database, nil, models.AlertKindScanFailed)
	insertAlert(t, database, nil, models.AlertKindRecovered)
	_, _, err := reg.ResolveAlert(ctx, a.ID)
	require.NoError(t, err)

	all, err := m.Alerts(ctx, models.AlertFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	active, err := m.Alerts(ctx, models.AlertFilter{ActiveOnly: true})
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, models.AlertKindRecovered, active[0].Kind)

	for i, id := range []string{"a", "b", "c"} {
		require.NoError(t, reg.StartRun(ctx, &models.ScanRun{
			ID: id, Range: "10.0.0.0/30", Trigger: models.ScanTriggerScheduled,
			StartedAt: t0.Add(time.Duration(i) * time.Minute),
		}))
	}

	runs, err := m.ScanRuns(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "c", runs[0].ID)
}

// A reader never sees a device row that disagrees with its own newest
// observation, even while a scan is writing. Between two writer commits the
// list and detail views report the same state.
func TestReadsStayConsistentDuringWrites(t *testing.T) {
	m, reg, _ := setup(t)
	ctx := context.Background()

	_, err := reg.Upsert(ctx, "10.0.0.5", sighting(t0, true, models.DeviceTypeServer))
	require.NoError(t, err)

	// commit is held by the writer across each upsert and by the reader
	// across each list/detail pair.
	var (
		commit sync.RWMutex
		g      errgroup.Group
	)

	g.Go(func() error {
		for i := 1; i <= 50; i++ {
			commit.Lock()
			_, err := reg.Upsert(ctx, "10.0.0.5", sighting(t0.Add(time.Duration(i)*time.Second), i%3 != 0, models.DeviceTypeServer))
			commit.Unlock()

			if err != nil {
				return err
			}
		}

		return nil
	})

	for i := 0; i < 100; i++ {
		detail, err := m.DeviceDetail(ctx, "10.0.0.5")
		require.NoError(t, err)
		require.NotEmpty(t, detail.Observations)
		assert.Equal(t, detail.Observations[0].Reachable, detail.IsOnline)

		commit.RLock()
		list, listErr := m.ListDevices(ctx, models.DeviceFilter{})
		paired, detailErr := m.DeviceDetail(ctx, "10.0.0.5")
		commit.RUnlock()

		require.NoError(t, listErr)
		require.NoError(t, detailErr)
		require.Len(t, list, 1)
		require.NotEmpty(t, paired.Observations)
		assert.Equal(t, list[0].IsOnline, paired.IsOnline)
		assert.Equal(t, list[0].HealthScore, paired.HealthScore)
		assert.Equal(t, paired.Observations[0].Reachable, list[0].IsOnline)
	}

	require.NoError(t, g.Wait())

	list, err := m.ListDevices(ctx, models.DeviceFilter{})
	require.NoError(t, err)
	require.Len(t, list, 1)

	detail, err := m.DeviceDetail(ctx, "10.0.0.5")
	require.NoError(t, err)
	assert.Equal(t, list[0].IsOnline, detail.IsOnline)
	assert.Equal(t, list[0].HealthScore, detail.HealthScore)
	assert.True(t, detail.IsOnline, "the last write is reachable")
}
