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

package alerts

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/carverauto/centraldanone/pkg/db"
	"github.com/carverauto/centraldanone/pkg/db/dbtest"
	"github.com/carverauto/centraldanone/pkg/logger"
	"github.com/carverauto/centraldanone/pkg/models"
)

var (
	t0 = time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)

	errStoreDown = errors.New("store down")
)

func allEnabled() models.AlertConfig {
	return models.AlertConfig{
		Threshold:     85,
		DeviceOffline: true,
		DeviceOnline:  true,
		LowUptime:     true,
		ScanFailed:    true,
	}
}

type fixture struct {
	db     *db.DB
	engine *Engine
	device *models.DeviceRecord
}

func newFixture(t *testing.T, cfg models.AlertConfig) *fixture {
	t.Helper()

	database := dbtest.Open(t)
	device := models.NewDeviceRecord("192.168.0.2", t0)

	require.NoError(t, database.Queries().InsertDevice(context.Background(), device))

	return &fixture{db: database, engine: NewEngine(cfg, logger.NewTestLogger()), device: device}
}

// step evaluates a transition to the given state inside one transaction.
func (f *fixture) step(t *testing.T, online bool, uptime float64, at time.Time) []models.AlertChange {
	t.Helper()

	next := f.device.Clone()
	next.IsOnline = online
	next.UptimePct = uptime

	var changes []models.AlertChange

	err := f.db.WithTx(context.Background(), db.TxOptions{}, "evaluate", func(q *db.Queries) error {
		var err error

		changes, err = f.engine.Evaluate(context.Background(), q, f.device, next, at)

		return err
	})
	require.NoError(t, err)

	f.device = next

	return changes
}

func (f *fixture) active(t *testing.T) map[models.AlertKind]models.Alert {
	t.Helper()

	list, err := f.db.Queries().ListAlerts(context.Background(), models.AlertFilter{ActiveOnly: true})
	require.NoError(t, err)

	out := make(map[models.AlertKind]models.Alert, len(list))

	for _, a := range list {
		_, dup := out[a.Kind]
		require.False(t, dup, "two unresolved %s alerts", a.Kind)

		out[a.Kind] = a
	}

	return out
}

func kinds(changes []models.AlertChange) []string {
	out := make([]string, 0, len(changes))

	for _, c := range changes {
		state := "opened"
		if c.Resolved {
			state = "resolved"
		}

		out = append(out, string(c.Alert.Kind)+":"+state)
	}

	return out
}

func TestOfflineAlertOpensOnceAndRecovers(t *testing.T) {
	f := newFixture(t, allEnabled())

	changes := f.step(t, false, 90, t0)
	assert.Equal(t, []string{"offline:opened"}, kinds(changes))
	assert.Equal(t, models.PriorityHigh, changes[0].Alert.Priority)
	assert.Equal(t, "192.168.0.2", changes[0].DeviceIP)
	assert.Contains(t, changes[0].Alert.Message, "192.168.0.2")

	// Still offline: nothing new.
	assert.Empty(t, f.step(t, false, 90, t0.Add(time.Minute)))
	assert.Len(t, f.active(t), 1)

	changes = f.step(t, true, 90, t0.Add(2*time.Minute))
	assert.Equal(t, []string{"offline:resolved", "recovered:opened"}, kinds(changes))
	require.NotNil(t, changes[0].Alert.ResolvedAt)
	assert.Equal(t, t0.Add(2*time.Minute), *changes[0].Alert.ResolvedAt)
	assert.Equal(t, models.PriorityLow, changes[1].Alert.Priority)

	active := f.active(t)
	assert.Contains(t, active, models.AlertKindRecovered)
	assert.NotContains(t, active, models.AlertKindOffline)

	// The recovered alert is resolved on the following tick.
	changes = f.step(t, true, 90, t0.Add(3*time.Minute))
	assert.Equal(t, []string{"recovered:resolved"}, kinds(changes))
	assert.Empty(t, f.active(t))
}

func TestRecoveredAlertDisabled(t *testing.T) {
	cfg := allEnabled()
	cfg.DeviceOnline = false

	f := newFixture(t, cfg)

	f.step(t, false, 90, t0)
	changes := f.step(t, true, 90, t0.Add(time.Minute))

	assert.Equal(t, []string{"offline:resolved"}, kinds(changes))
	assert.Empty(t, f.active(t))
}

func TestOfflineAlertDisabled(t *testing.T) {
	cfg := allEnabled()
	cfg.DeviceOffline = false

	f := newFixture(t, cfg)

	assert.Empty(t, f.step(t, false, 90, t0))
	assert.Empty(t, f.active(t))
}

func TestLowUptimeThreshold(t *testing.T) {
	f := newFixture(t, allEnabled())

	// Above the threshold.
	assert.Empty(t, f.step(t, true, 90, t0))

	// Exactly at the threshold does not fire.
	assert.Empty(t, f.step(t, true, 85, t0.Add(time.Minute)))

	changes := f.step(t, true, 80, t0.Add(2*time.Minute))
	assert.Equal(t, []string{"low_uptime:opened"}, kinds(changes))
	assert.Equal(t, models.PriorityMedium, changes[0].Alert.Priority)

	assert.Empty(t, f.step(t, true, 75, t0.Add(3*time.Minute)))

	changes = f.step(t, true, 85, t0.Add(4*time.Minute))
	assert.Equal(t, []string{"low_uptime:resolved"}, kinds(changes))
	assert.Empty(t, f.active(t))
}

func TestLowUptimeDisabled(t *testing.T) {
	cfg := allEnabled()
	cfg.LowUptime = false

	f := newFixture(t, cfg)

	assert.Empty(t, f.step(t, true, 10, t0))
}

func TestStaleOfflineAlertResolvedWhileOnline(t *testing.T) {
	f := newFixture(t, allEnabled())
	ctx := context.Background()

	require.NoError(t, f.db.Queries().InsertAlert(ctx, &models.Alert{
		DeviceID:  &f.device.ID,
		Kind:      models.AlertKindOffline,
		Priority:  models.PriorityHigh,
		Message:   "left over",
		CreatedAt: t0,
	}))

	changes := f.step(t, true, 100, t0.Add(time.Minute))
	assert.Equal(t, []string{"offline:resolved"}, kinds(changes))
}

func TestEvaluateRun(t *testing.T) {
	database := dbtest.Open(t)
	engine := NewEngine(allEnabled(), logger.NewTestLogger())
	ctx := context.Background()

	run := func(reason string, at time.Time) []models.AlertChange {
		var changes []models.AlertChange

		require.NoError(t, database.WithTx(ctx, db.TxOptions{}, "evaluate run", func(q *db.Queries) error {
			var err error

			changes, err = engine.EvaluateRun(ctx, q, reason, at)

			return err
		}))

		return changes
	}

	changes := run("no network interface is up", t0)
	assert.Equal(t, []string{"scan_failed:opened"}, kinds(changes))
	assert.Nil(t, changes[0].Alert.DeviceID)
	assert.Equal(t, models.PriorityHigh, changes[0].Alert.Priority)

	assert.Empty(t, run("still broken", t0.Add(time.Minute)))

	changes = run("", t0.Add(2*time.Minute))
	assert.Equal(t, []string{"scan_failed:resolved"}, kinds(changes))

	assert.Empty(t, run("", t0.Add(3*time.Minute)))
}

func TestEvaluateRunDisabled(t *testing.T) {
	cfg := allEnabled()
	cfg.ScanFailed = false

	ctrl := gomock.NewController(t)
	store := NewMockStore(ctrl)

	// Resolution still checks for an open alert; opening never touches the store.
	store.EXPECT().ActiveAlert(gomock.Any(), nil, models.AlertKindScanFailed).Return(nil, nil)

	engine := NewEngine(cfg, logger.NewTestLogger())

	changes, err := engine.EvaluateRun(context.Background(), store, "boom", t0)
	require.NoError(t, err)
	assert.Empty(t, changes)

	changes, err = engine.EvaluateRun(context.Background(), store, "", t0)
	require.NoError(t, err)
	assert.Empty(t, changes)
}

func TestEvaluatePropagatesStoreErrors(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := NewMockStore(ctrl)

	store.EXPECT().ActiveAlert(gomock.Any(), gomock.Any(), models.AlertKindRecovered).Return(nil, nil)
	store.EXPECT().ActiveAlert(gomock.Any(), gomock.Any(), models.AlertKindOffline).Return(nil, nil)
	store.EXPECT().InsertAlert(gomock.Any(), gomock.Any()).Return(errStoreDown)

	engine := NewEngine(allEnabled(), logger.NewTestLogger())

	prev := models.NewDeviceRecord("10.0.0.1", t0)
	prev.ID = 7
	next := prev.Clone()
	next.IsOnline = false

	_, err := engine.Evaluate(context.Background(), store, prev, next, t0)
	require.ErrorIs(t, err, errStoreDown)
}
