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

// Package alerts opens and resolves alerts on device state transitions.
package alerts

import (
	"context"
	"fmt"
	"time"

	"github.com/carverauto/centraldanone/pkg/logger"
	"github.com/carverauto/centraldanone/pkg/models"
)

// Engine applies the alert transition rules. It keeps no state; uniqueness
// of unresolved alerts is checked against the store inside the caller's
// transaction.
type Engine struct {
	cfg    models.AlertConfig
	logger logger.Logger
}

func NewEngine(cfg models.AlertConfig, log logger.Logger) *Engine {
	return &Engine{cfg: cfg, logger: log}
}

// Evaluate compares the state of a device before and after an observation
// and returns the alerts it opened or resolved.
func (e *Engine) Evaluate(
	ctx context.Context, store Store, prev, next *models.DeviceRecord, at time.Time,
) ([]models.AlertChange, error) {
	ev := evaluation{engine: e, store: store, at: at, deviceID: &next.ID, ip: next.IP}

	// A recovered alert lives for exactly one tick.
	if err := ev.resolve(ctx, models.AlertKindRecovered); err != nil {
		return nil, err
	}

	switch {
	case prev.IsOnline && !next.IsOnline:
		if err := ev.open(ctx, models.AlertKindOffline,
			fmt.Sprintf("Device %s is offline", next.IP)); err != nil {
			return nil, err
		}
	case !prev.IsOnline && next.IsOnline:
		if err := ev.resolve(ctx, models.AlertKindOffline); err != nil {
			return nil, err
		}

		if err := ev.open(ctx, models.AlertKindRecovered,
			fmt.Sprintf("Device %s is back online", next.IP)); err != nil {
			return nil, err
		}
	case next.IsOnline:
		// Heals an offline alert left open while offline alerts were toggled.
		if err := ev.resolve(ctx, models.AlertKindOffline); err != nil {
			return nil, err
		}
	}

	if next.UptimePct < e.cfg.Threshold {
		if err := ev.open(ctx, models.AlertKindLowUptime,
			fmt.Sprintf("Device %s uptime %.1f%% is below %.1f%%", next.IP, next.UptimePct, e.cfg.Threshold)); err != nil {
			return nil, err
		}
	} else if err := ev.resolve(ctx, models.AlertKindLowUptime); err != nil {
		return nil, err
	}

	return ev.changes, nil
}

// EvaluateRun opens a run-level scan_failed alert when reason is not empty
// and resolves the open one otherwise.
func (e *Engine) EvaluateRun(ctx context.Context, store Store, reason string, at time.Time) ([]models.AlertChange, error) {
	ev := evaluation{engine: e, store: store, at: at}

	if reason == "" {
		if err := ev.resolve(ctx, models.AlertKindScanFailed); err != nil {
			return nil, err
		}

		return ev.changes, nil
	}

	if err := ev.open(ctx, models.AlertKindScanFailed, "Network scan failed: "+reason); err != nil {
		return nil, err
	}

	return ev.changes, nil
}

type evaluation struct {
	engine   *Engine
	store    Store
	at       time.Time
	deviceID *int64
	ip       string
	changes  []models.AlertChange
}

func (ev *evaluation) open(ctx context.Context, kind models.AlertKind, message string) error {
	if !ev.engine.cfg.Enabled(kind) {
		return nil
	}

	existing, err := ev.store.ActiveAlert(ctx, ev.deviceID, kind)
	if err != nil {
		return err
	}

	if existing != nil {
		return nil
	}

	alert := &models.Alert{
		DeviceID:  ev.deviceID,
		DeviceIP:  ev.ip,
		Kind:      kind,
		Priority:  kind.Priority(),
		Message:   message,
		CreatedAt: ev.at,
	}

	if err := ev.store.InsertAlert(ctx, alert); err != nil {
		return err
	}

	ev.engine.logger.Info().
		Str("kind", string(kind)).
		Str("ip", ev.ip).
		Int64("alert_id", alert.ID).
		Msg("Alert opened")

	ev.changes = append(ev.changes, models.AlertChange{Alert: *alert, DeviceIP: ev.ip})

	return nil
}

func (ev *evaluation) resolve(ctx context.Context, kind models.AlertKind) error {
	existing, err := ev.store.ActiveAlert(ctx, ev.deviceID, kind)
	if err != nil {
		return err
	}

	if existing == nil {
		return nil
	}

	resolved, err := ev.store.ResolveAlert(ctx, existing.ID, ev.at)
	if err != nil {
		return err
	}

	ev.engine.logger.Info().
		Str("kind", string(kind)).
		Str("ip", ev.ip).
		Int64("alert_id", resolved.ID).
		Msg("Alert resolved")

	ev.changes = append(ev.changes, models.AlertChange{Alert: *resolved, Resolved: true, DeviceIP: ev.ip})

	return nil
}
