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

// Package metrics records engine telemetry through OpenTelemetry.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/carverauto/centraldanone/pkg/models"
)

const (
	meterName = "centraldanone.engine"

	metricScanRunsName       = "danone.scan.runs"
	metricScanProbesName     = "danone.scan.probes"
	metricProbeRTTName       = "danone.probe.rtt_ms"
	metricScanDurationName   = "danone.scan.duration_ms"
	metricAlertsOpenedName   = "danone.alerts.opened"
	metricAlertsResolvedName = "danone.alerts.resolved"
	metricDevicesTotalName   = "danone.devices.total"
	metricDevicesOnlineName  = "danone.devices.online"
)

// Recorder owns the engine instruments. The zero value is not usable; a nil
// *Recorder records nothing.
type Recorder struct {
	scanRuns       metric.Int64Counter
	probes         metric.Int64Counter
	probeRTT       metric.Float64Histogram
	scanDuration   metric.Float64Histogram
	alertsOpened   metric.Int64Counter
	alertsResolved metric.Int64Counter

	devicesTotal  atomic.Int64
	devicesOnline atomic.Int64

	registration metric.Registration
}

// New creates the instruments on provider, or on the global provider when
// provider is nil.
func New(provider metric.MeterProvider) (*Recorder, error) {
	if provider == nil {
		provider = otel.GetMeterProvider()
	}

	meter := provider.Meter(meterName)
	r := &Recorder{}

	var errs []error

	r.scanRuns, errs = int64Counter(meter, errs, metricScanRunsName, "Completed scan runs by outcome")
	r.probes, errs = int64Counter(meter, errs, metricScanProbesName, "Probes issued by method and result")
	r.alertsOpened, errs = int64Counter(meter, errs, metricAlertsOpenedName, "Alerts opened by kind")
	r.alertsResolved, errs = int64Counter(meter, errs, metricAlertsResolvedName, "Alerts resolved by kind")

	var err error

	r.probeRTT, err = meter.Float64Histogram(metricProbeRTTName,
		metric.WithDescription("Round trip time of successful probes"),
		metric.WithUnit("ms"))
	errs = append(errs, err)

	r.scanDuration, err = meter.Float64Histogram(metricScanDurationName,
		metric.WithDescription("Wall clock duration of scan runs"),
		metric.WithUnit("ms"))
	errs = append(errs, err)

	total, err := meter.Int64ObservableGauge(metricDevicesTotalName,
		metric.WithDescription("Devices known to the registry"))
	errs = append(errs, err)

	online, err := meter.Int64ObservableGauge(metricDevicesOnlineName,
		metric.WithDescription("Devices whose latest probe succeeded"))
	errs = append(errs, err)

	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("failed to create instruments: %w", err)
	}

	r.registration, err = meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		o.ObserveInt64(total, r.devicesTotal.Load())
		o.ObserveInt64(online, r.devicesOnline.Load())

		return nil
	}, total, online)
	if err != nil {
		return nil, fmt.Errorf("failed to register device gauges: %w", err)
	}

	return r, nil
}

func int64Counter(meter metric.Meter, errs []error, name, desc string) (metric.Int64Counter, []error) {
	c, err := meter.Int64Counter(name, metric.WithDescription(desc))

	return c, append(errs, err)
}

// RecordProbe counts one probe and its RTT when it succeeded.
func (r *Recorder) RecordProbe(ctx context.Context, res *models.ProbeResult) {
	if r == nil {
		return
	}

	result := "reachable"
	if !res.Reachable {
		result = "unreachable"
		if res.ErrorKind != nil {
			result = string(*res.ErrorKind)
		}
	}

	r.probes.Add(ctx, 1, metric.WithAttributes(
		attribute.String("method", res.Method),
		attribute.String("result", result),
	))

	if res.Reachable && res.ResponseTimeMs != nil {
		r.probeRTT.Record(ctx, *res.ResponseTimeMs, metric.WithAttributes(attribute.String("method", res.Method)))
	}
}

// RecordRun counts a finished run and its duration.
func (r *Recorder) RecordRun(ctx context.Context, run *models.ScanRun) {
	if r == nil {
		return
	}

	outcome := "completed"

	switch {
	case run.Cancelled:
		outcome = "cancelled"
	case run.Error != "":
		outcome = "failed"
	}

	attrs := metric.WithAttributes(
		attribute.String("trigger", string(run.Trigger)),
		attribute.String("outcome", outcome),
	)

	r.scanRuns.Add(ctx, 1, attrs)
	r.scanDuration.Record(ctx, float64(run.DurationMs), attrs)
}

// RecordAlertChanges counts opened and resolved alerts.
func (r *Recorder) RecordAlertChanges(ctx context.Context, changes []models.AlertChange) {
	if r == nil {
		return
	}

	for i := range changes {
		attrs := metric.WithAttributes(attribute.String("kind", string(changes[i].Alert.Kind)))

		if changes[i].Resolved {
			r.alertsResolved.Add(ctx, 1, attrs)
		} else {
			r.alertsOpened.Add(ctx, 1, attrs)
		}
	}
}

// SetDeviceCounts updates the values reported by the device gauges.
func (r *Recorder) SetDeviceCounts(total, online int) {
	if r == nil {
		return
	}

	r.devicesTotal.Store(int64(total))
	r.devicesOnline.Store(int64(online))
}

// Close detaches the gauge callback.
func (r *Recorder) Close() error {
	if r == nil || r.registration == nil {
		return nil
	}

	return r.registration.Unregister()
}
