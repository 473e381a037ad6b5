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

package metrics

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/carverauto/centraldanone/pkg/models"
)

func newTestRecorder(t *testing.T) (*Recorder, *sdkmetric.ManualReader) {
	t.Helper()

	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	r, err := New(provider)
	require.NoError(t, err)

	t.Cleanup(func() { _ = r.Close() })

	return r, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Aggregation {
	t.Helper()

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := make(map[string]metricdata.Aggregation)

	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m.Data
		}
	}

	return out
}

func sumInt(t *testing.T, agg metricdata.Aggregation) int64 {
	t.Helper()

	sum, ok := agg.(metricdata.Sum[int64])
	require.True(t, ok, "unexpected aggregation %T", agg)

	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}

	return total
}

func TestRecordProbe(t *testing.T) {
	r, reader := newTestRecorder(t)
	ctx := context.Background()

	rtt := 3.2
	kind := models.ErrorKindTimeout

	r.RecordProbe(ctx, &models.ProbeResult{Reachable: true, ResponseTimeMs: &rtt, Method: "icmp"})
	r.RecordProbe(ctx, &models.ProbeResult{ErrorKind: &kind, Method: "icmp"})

	data := collect(t, reader)

	assert.Equal(t, int64(2), sumInt(t, data[metricScanProbesName]))

	hist, ok := data[metricProbeRTTName].(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, hist.DataPoints, 1)
	assert.Equal(t, uint64(1), hist.DataPoints[0].Count)
	assert.InDelta(t, 3.2, hist.DataPoints[0].Sum, 1e-9)
}

func TestRecordRunAndAlerts(t *testing.T) {
	r, reader := newTestRecorder(t)
	ctx := context.Background()

	r.RecordRun(ctx, &models.ScanRun{Trigger: models.ScanTriggerManual, DurationMs: 1500})
	r.RecordRun(ctx, &models.ScanRun{Trigger: models.ScanTriggerScheduled, Cancelled: true})

	r.RecordAlertChanges(ctx, []models.AlertChange{
		{Alert: models.Alert{Kind: models.AlertKindOffline}},
		{Alert: models.Alert{Kind: models.AlertKindOffline}, Resolved: true},
		{Alert: models.Alert{Kind: models.AlertKindRecovered}},
	})

	data := collect(t, reader)

	assert.Equal(t, int64(2), sumInt(t, data[metricScanRunsName]))
	assert.Equal(t, int64(2), sumInt(t, data[metricAlertsOpenedName]))
	assert.Equal(t, int64(1), sumInt(t, data[metricAlertsResolvedName]))
}

func TestDeviceGauges(t *testing.T) {
	r, reader := newTestRecorder(t)

	r.SetDeviceCounts(10, 7)

	data := collect(t, reader)

	online, ok := data[metricDevicesOnlineName].(metricdata.Gauge[int64])
	require.True(t, ok)
	require.Len(t, online.DataPoints, 1)
	assert.Equal(t, int64(7), online.DataPoints[0].Value)

	total, ok := data[metricDevicesTotalName].(metricdata.Gauge[int64])
	require.True(t, ok)
	assert.Equal(t, int64(10), total.DataPoints[0].Value)
}

func TestNilRecorderIsSafe(t *testing.T) {
	var r *Recorder

	r.RecordProbe(context.Background(), &models.ProbeResult{})
	r.RecordRun(context.Background(), &models.ScanRun{})
	r.RecordAlertChanges(context.Background(), []models.AlertChange{{}})
	r.SetDeviceCounts(1, 1)
	assert.NoError(t, r.Close())
}
