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

package models

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeviceRecordClone(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	rt := 3.2

	d := NewDeviceRecord("192.168.0.1", now)
	d.Hostname = StringPtr("router-x")
	d.LastSeen = &now
	d.ResponseTimeMs = &rt

	c := d.Clone()
	*c.Hostname = "changed"
	*c.ResponseTimeMs = 9

	assert.Equal(t, "router-x", d.HostnameOrEmpty())
	assert.InDelta(t, 3.2, *d.ResponseTimeMs, 1e-9)
	assert.True(t, d.IsOnline)
	assert.Equal(t, DeviceTypeUnknown, d.DeviceType)
	assert.Nil(t, (*DeviceRecord)(nil).Clone())
}

func TestAlertKindPriority(t *testing.T) {
	assert.Equal(t, PriorityHigh, AlertKindOffline.Priority())
	assert.Equal(t, PriorityHigh, AlertKindScanFailed.Priority())
	assert.Equal(t, PriorityMedium, AlertKindLowUptime.Priority())
	assert.Equal(t, PriorityLow, AlertKindRecovered.Priority())
}

func TestErrorTaxonomy(t *testing.T) {
	base := errors.New("disk full")

	err := NewStorageError("upsert device", base)
	assert.ErrorIs(t, err, ErrStorage)
	assert.ErrorIs(t, err, base)
	assert.Same(t, err, NewStorageError("outer", err))
	assert.NoError(t, NewStorageError("noop", nil))

	wrapped := fmt.Errorf("scheduler: %w", err)
	assert.ErrorIs(t, wrapped, ErrStorage)

	cancelled := &CancelledError{RunID: "r1", Probed: 3, Cause: context.Canceled}
	assert.ErrorIs(t, cancelled, ErrCancelled)
	assert.ErrorIs(t, cancelled, context.Canceled)
}

func TestScanRunFinish(t *testing.T) {
	start := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	run := ScanRun{StartedAt: start}

	run.Finish(start.Add(1500 * time.Millisecond))

	require.NotNil(t, run.FinishedAt)
	assert.Equal(t, int64(1500), run.DurationMs)
}

func TestDeviceTypeValid(t *testing.T) {
	assert.True(t, DeviceTypeCamera.Valid())
	assert.False(t, DeviceType("fridge").Valid())
}
