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

package sweeper

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/carverauto/centraldanone/pkg/db"
	"github.com/carverauto/centraldanone/pkg/models"
	"github.com/carverauto/centraldanone/pkg/registry"
)

// runCounters aggregates per-probe outcomes across worker goroutines.
type runCounters struct {
	mu        sync.Mutex
	probed    int
	reachable int
	skipped   int
	denied    int
}

func (c *runCounters) add(fn func(c *runCounters)) {
	c.mu.Lock()
	fn(c)
	c.mu.Unlock()
}

func (c *runCounters) apply(run *models.ScanRun) {
	c.mu.Lock()
	defer c.mu.Unlock()

	run.DevicesProbed = c.probed
	run.DevicesReachable = c.reachable
	run.DevicesSkipped = c.skipped
}

// probeBatch probes hosts with at most MaxConcurrent probes in flight and
// returns once every probe of the batch has been handled.
func (s *NetworkSweeper) probeBatch(ctx context.Context, run *models.ScanRun, hosts []string, counters *runCounters) {
	var g errgroup.Group

	g.SetLimit(s.cfg.MaxConcurrent)

	for _, ip := range hosts {
		ip := ip
		if ctx.Err() != nil {
			break
		}

		g.Go(func() error {
			s.handleProbe(ctx, run, ip, counters)

			return nil
		})
	}

	_ = g.Wait()
}

// handleProbe probes ip and runs its result through the device pipeline.
// Storage failures skip the device for this run only.
func (s *NetworkSweeper) handleProbe(ctx context.Context, run *models.ScanRun, ip string, counters *runCounters) {
	res := s.prober.Probe(ctx, ip)
	if res.Timestamp.IsZero() {
		res.Timestamp = s.now()
	}

	// Probes interrupted by cancellation say nothing about the host.
	if ctx.Err() != nil {
		return
	}

	s.metrics.RecordProbe(ctx, &res)

	denied := !res.Reachable && res.ErrorKind != nil && *res.ErrorKind == models.ErrorKindPermissionDenied

	counters.add(func(c *runCounters) {
		c.probed++

		if res.Reachable {
			c.reachable++
		}

		if denied {
			c.denied++
		}
	})

	// A denied probe did not observe the host.
	if denied {
		return
	}

	cls := s.classifier.Classify(res.Hostname, res.MAC)
	sighting := registry.SightingFromProbe(run.ID, &res, cls.DeviceType, cls.MACVendor)
	at := res.Timestamp

	result, err := s.registry.Apply(ctx, ip, sighting,
		func(ctx context.Context, q *db.Queries, prev, next *models.DeviceRecord) ([]models.AlertChange, error) {
			return s.engine.Evaluate(ctx, q, prev, next, at)
		})

	switch {
	case errors.Is(err, registry.ErrNotRegistered):
		return
	case err != nil:
		if ctx.Err() != nil {
			return
		}

		counters.add(func(c *runCounters) { c.skipped++ })

		s.logger.Warn().Err(err).Str("ip", ip).Str("run_id", run.ID).Msg("Skipping device after storage error")

		return
	}

	s.dispatch(ctx, result.Changes)

	if result.Created || result.Previous.IsOnline != result.Device.IsOnline {
		s.publish(ctx, models.EventDeviceUpdated, models.DeviceStatusEventData{
			DeviceID:    result.Device.ID,
			IP:          result.Device.IP,
			IsOnline:    result.Device.IsOnline,
			WasOnline:   result.Previous.IsOnline,
			HealthScore: result.Device.HealthScore,
		})
	}
}
