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

// Package sweeper schedules network scans and feeds probe results through
// the device pipeline.
package sweeper

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/carverauto/centraldanone/pkg/alerts"
	"github.com/carverauto/centraldanone/pkg/classifier"
	"github.com/carverauto/centraldanone/pkg/db"
	"github.com/carverauto/centraldanone/pkg/logger"
	"github.com/carverauto/centraldanone/pkg/metrics"
	"github.com/carverauto/centraldanone/pkg/models"
	"github.com/carverauto/centraldanone/pkg/registry"
	"github.com/carverauto/centraldanone/pkg/scan"
)

// scanRequest is a run waiting to start.
type scanRequest struct {
	id      string
	cidr    string
	trigger models.ScanTrigger
}

// activeRun is the run currently probing.
type activeRun struct {
	id     string
	cancel context.CancelFunc
}

// NetworkSweeper runs one scan at a time. Manual triggers received while a
// run is in flight are queued with depth one; further triggers coalesce into
// the queued request.
type NetworkSweeper struct {
	cfg        Config
	prober     scan.Prober
	classifier *classifier.Classifier
	registry   registry.Manager
	engine     *alerts.Engine
	notifier   alerts.Notifier
	events     EventSink
	ifaces     InterfaceChecker
	metrics    *metrics.Recorder
	tracer     trace.Tracer
	logger     logger.Logger

	now   func() time.Time
	newID func() string

	mu      sync.Mutex
	started bool
	current *activeRun
	pending *scanRequest
	wake    chan struct{}
	done    chan struct{}
	stopped chan struct{}
	cancel  context.CancelFunc
	stop    sync.Once
}

// Option customises a NetworkSweeper.
type Option func(*NetworkSweeper)

func WithNotifier(n alerts.Notifier) Option {
	return func(s *NetworkSweeper) { s.notifier = n }
}

func WithEventSink(e EventSink) Option {
	return func(s *NetworkSweeper) { s.events = e }
}

func WithInterfaceChecker(c InterfaceChecker) Option {
	return func(s *NetworkSweeper) { s.ifaces = c }
}

func WithMetrics(r *metrics.Recorder) Option {
	return func(s *NetworkSweeper) { s.metrics = r }
}

func NewNetworkSweeper(
	cfg Config,
	prober scan.Prober,
	cls *classifier.Classifier,
	reg registry.Manager,
	engine *alerts.Engine,
	log logger.Logger,
	opts ...Option,
) *NetworkSweeper {
	cfg.applyDefaults()

	s := &NetworkSweeper{
		cfg:        cfg,
		prober:     prober,
		classifier: cls,
		registry:   reg,
		engine:     engine,
		tracer:     otel.Tracer("centraldanone/sweeper"),
		logger:     log,
		now:        func() time.Time { return time.Now().UTC() },
		newID:      func() string { return uuid.NewString() },
		wake:       make(chan struct{}, 1),
		done:       make(chan struct{}),
		stopped:    make(chan struct{}),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start launches the scheduling loop. The first scheduled run starts
// immediately; later ones follow the configured interval. A zero interval
// disables scheduled runs.
func (s *NetworkSweeper) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return ErrAlreadyStarted
	}

	s.started = true

	loopCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.logger.Info().
		Str("range", s.cfg.DefaultRange).
		Dur("interval", s.cfg.Interval).
		Int("batch_size", s.cfg.BatchSize).
		Int("max_concurrent", s.cfg.MaxConcurrent).
		Msg("Starting network sweeper")

	go s.loop(loopCtx)

	return nil
}

// Stop cancels the in-flight run and waits up to the grace period for it to
// be finalized.
func (s *NetworkSweeper) Stop() error {
	s.mu.Lock()
	started := s.started
	s.mu.Unlock()

	s.stop.Do(func() {
		s.logger.Info().Msg("Stopping network sweeper")

		close(s.done)

		s.mu.Lock()
		if s.cancel != nil {
			s.cancel()
		}
		s.mu.Unlock()
	})

	if !started {
		return nil
	}

	timer := time.NewTimer(s.cfg.StopGrace)
	defer timer.Stop()

	select {
	case <-s.stopped:
		return nil
	case <-timer.C:
		s.logger.Warn().Dur("grace", s.cfg.StopGrace).Msg("Network sweeper did not stop in time")

		return ErrStopTimeout
	}
}

// TriggerScan queues a manual run of cidr, or of the default range when
// cidr is empty, and returns its run id. While another manual run is queued
// the request coalesces into it and its id is returned.
func (s *NetworkSweeper) TriggerScan(cidr string) (string, error) {
	if cidr == "" {
		cidr = s.cfg.DefaultRange
	}

	if _, err := scan.CountHosts(cidr); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pending != nil {
		s.pending.cidr = cidr

		s.logger.Debug().Str("run_id", s.pending.id).Msg("Coalesced manual scan request")

		return s.pending.id, nil
	}

	s.pending = &scanRequest{id: s.newID(), cidr: cidr, trigger: models.ScanTriggerManual}

	select {
	case s.wake <- struct{}{}:
	default:
	}

	return s.pending.id, nil
}

// CancelCurrent cancels the in-flight run. It reports whether a run was
// active.
func (s *NetworkSweeper) CancelCurrent() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return false
	}

	s.logger.Info().Str("run_id", s.current.id).Msg("Cancelling current scan")
	s.current.cancel()

	return true
}

// ScanInProgress reports whether a run is probing right now.
func (s *NetworkSweeper) ScanInProgress() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.current != nil
}

func (s *NetworkSweeper) loop(ctx context.Context) {
	defer close(s.stopped)

	var tick <-chan time.Time

	if s.cfg.Interval > 0 {
		ticker := time.NewTicker(s.cfg.Interval)
		defer ticker.Stop()

		tick = ticker.C

		s.runNext(ctx, s.scheduledRequest())
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.done:
			return
		case <-s.wake:
			s.runNext(ctx, nil)
		case <-tick:
			s.runNext(ctx, s.scheduledRequest())
		}
	}
}

func (s *NetworkSweeper) scheduledRequest() *scanRequest {
	return &scanRequest{id: s.newID(), cidr: s.cfg.DefaultRange, trigger: models.ScanTriggerScheduled}
}

// runNext executes req and then drains queued manual requests. A queued
// manual request runs before a scheduled one.
func (s *NetworkSweeper) runNext(ctx context.Context, req *scanRequest) {
	for {
		if manual := s.takePending(); manual != nil {
			if req != nil {
				s.logger.Debug().Msg("Manual scan queued, skipping scheduled run")
			}

			req = manual
		}

		if req == nil || ctx.Err() != nil {
			return
		}

		if _, err := s.RunOnce(ctx, req.id, req.cidr, req.trigger); err != nil {
			s.logger.Warn().Err(err).Str("run_id", req.id).Msg("Scan run ended with error")
		}

		req = nil
	}
}

func (s *NetworkSweeper) takePending() *scanRequest {
	s.mu.Lock()
	defer s.mu.Unlock()

	req := s.pending
	s.pending = nil

	return req
}

// RunOnce performs one complete scan of cidr and returns the finalized run.
// A cancelled run is returned together with a models.CancelledError.
func (s *NetworkSweeper) RunOnce(ctx context.Context, runID, cidr string, trigger models.ScanTrigger) (*models.ScanRun, error) {
	if runID == "" {
		runID = s.newID()
	}

	run := &models.ScanRun{ID: runID, Range: cidr, Trigger: trigger, StartedAt: s.now()}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.setCurrent(&activeRun{id: runID, cancel: cancel})
	defer s.setCurrent(nil)

	runCtx, span := s.tracer.Start(runCtx, "scan.run", trace.WithAttributes(
		attribute.String("run.id", runID),
		attribute.String("run.range", cidr),
		attribute.String("run.trigger", string(trigger)),
	))
	defer span.End()

	if err := s.registry.StartRun(runCtx, run); err != nil {
		s.logger.Error().Err(err).Str("run_id", runID).Msg("Failed to record scan start")
	}

	s.publish(runCtx, models.EventScanStarted, run)

	s.logger.Info().
		Str("run_id", runID).
		Str("range", cidr).
		Str("trigger", string(trigger)).
		Msg("Scan started")

	failure := s.sweep(runCtx, run)

	if runCtx.Err() != nil && failure == nil {
		run.Cancelled = true
	}

	if failure != nil {
		run.Error = failure.Error()

		span.SetStatus(codes.Error, run.Error)
	}

	s.finalize(runCtx, run, failure)

	if run.Cancelled {
		return run, &models.CancelledError{RunID: runID, Probed: run.DevicesProbed, Cause: context.Cause(runCtx)}
	}

	return run, failure
}

func (s *NetworkSweeper) setCurrent(r *activeRun) {
	s.mu.Lock()
	s.current = r
	s.mu.Unlock()
}

// sweep probes every host of the run's range. The returned error is a
// run-level failure that warrants a scan_failed alert.
func (s *NetworkSweeper) sweep(ctx context.Context, run *models.ScanRun) error {
	hosts, err := scan.ExpandCIDR(run.Range)
	if err != nil {
		return err
	}

	if len(hosts) == 0 {
		return nil
	}

	if s.ifaces != nil {
		if err := s.ifaces.Check(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}

			return err
		}
	}

	counters := &runCounters{}

	for start := 0; start < len(hosts); start += s.cfg.BatchSize {
		if ctx.Err() != nil {
			break
		}

		end := min(start+s.cfg.BatchSize, len(hosts))

		s.probeBatch(ctx, run, hosts[start:end], counters)
	}

	counters.apply(run)

	if counters.probed > 0 && counters.denied == counters.probed {
		return errICMPDenied
	}

	return nil
}

func (s *NetworkSweeper) finalize(ctx context.Context, run *models.ScanRun, failure error) {
	run.Finish(s.now())

	// The run record must land even when the run itself was cancelled.
	storeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), finalizeTimeout)
	defer cancel()

	var fn registry.TxFunc

	if !run.Cancelled || failure != nil {
		reason := ""
		if failure != nil {
			reason = failure.Error()
		}

		at := *run.FinishedAt

		fn = func(ctx context.Context, q *db.Queries) ([]models.AlertChange, error) {
			return s.engine.EvaluateRun(ctx, q, reason, at)
		}
	}

	changes, err := s.registry.FinishRun(storeCtx, run, fn)
	if err != nil {
		s.logger.Error().Err(err).Str("run_id", run.ID).Msg("Failed to record scan completion")
	}

	s.dispatch(storeCtx, changes)
	s.metrics.RecordRun(storeCtx, run)
	s.publish(storeCtx, models.EventScanCompleted, run)

	if !run.Cancelled {
		s.prune(storeCtx)
	}

	s.refreshGauges(storeCtx)

	s.logger.Info().
		Str("run_id", run.ID).
		Int("probed", run.DevicesProbed).
		Int("reachable", run.DevicesReachable).
		Int("skipped", run.DevicesSkipped).
		Int64("duration_ms", run.DurationMs).
		Bool("cancelled", run.Cancelled).
		Str("error", run.Error).
		Msg("Scan finished")
}

func (s *NetworkSweeper) prune(ctx context.Context) {
	if s.cfg.RetentionDays <= 0 {
		return
	}

	before := s.now().AddDate(0, 0, -s.cfg.RetentionDays)

	if _, err := s.registry.PruneObservations(ctx, before); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to prune observations")
	}
}

func (s *NetworkSweeper) refreshGauges(ctx context.Context) {
	if s.metrics == nil {
		return
	}

	devices, err := s.registry.ListDevices(ctx, models.DeviceFilter{})
	if err != nil {
		return
	}

	online := 0

	for i := range devices {
		if devices[i].IsOnline {
			online++
		}
	}

	s.metrics.SetDeviceCounts(len(devices), online)
}

func (s *NetworkSweeper) dispatch(ctx context.Context, changes []models.AlertChange) {
	if len(changes) == 0 {
		return
	}

	s.metrics.RecordAlertChanges(ctx, changes)

	if s.notifier == nil {
		return
	}

	if err := s.notifier.Notify(ctx, changes); err != nil {
		s.logger.Warn().Err(err).Int("changes", len(changes)).Msg("Failed to deliver alert changes")
	}
}

func (s *NetworkSweeper) publish(ctx context.Context, typ models.EngineEventType, data any) {
	if s.events == nil {
		return
	}

	evt := models.EngineEvent{Type: typ, Timestamp: s.now(), Data: data}

	if err := s.events.Publish(ctx, evt); err != nil {
		s.logger.Debug().Err(err).Str("type", string(typ)).Msg("Failed to publish engine event")
	}
}
