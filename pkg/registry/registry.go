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

// Package registry owns device records and their observation log.
package registry

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/carverauto/centraldanone/pkg/db"
	"github.com/carverauto/centraldanone/pkg/health"
	"github.com/carverauto/centraldanone/pkg/logger"
	"github.com/carverauto/centraldanone/pkg/models"
)

// Sighting is one classified probe outcome for an address.
type Sighting struct {
	Observation models.ScanObservation
	Hostname    string
	MAC         string
	MACVendor   string
	DeviceType  models.DeviceType
}

// SightingFromProbe builds a sighting from a prober result and the
// classification of its hostname and MAC.
func SightingFromProbe(scanID string, r *models.ProbeResult, deviceType models.DeviceType, vendor string) *Sighting {
	return &Sighting{
		Observation: models.ObservationFromProbe(scanID, r),
		Hostname:    r.Hostname,
		MAC:         r.MAC,
		MACVendor:   vendor,
		DeviceType:  deviceType,
	}
}

// PipelineFunc runs inside the device transaction after the health fields
// have been recomputed. prev is the state before the observation.
type PipelineFunc func(ctx context.Context, q *db.Queries, prev, next *models.DeviceRecord) ([]models.AlertChange, error)

// TxFunc runs inside a run-level transaction.
type TxFunc func(ctx context.Context, q *db.Queries) ([]models.AlertChange, error)

// Result is the committed outcome of Apply.
type Result struct {
	Previous *models.DeviceRecord
	Device   *models.DeviceRecord
	Created  bool
	Changes  []models.AlertChange
}

// Config tunes registration.
type Config struct {
	RegisterUnreachable bool
}

type DeviceRegistry struct {
	db      *db.DB
	tracker *health.Tracker
	cfg     Config
	logger  logger.Logger
	now     func() time.Time
}

var _ Manager = (*DeviceRegistry)(nil)

func NewDeviceRegistry(database *db.DB, tracker *health.Tracker, cfg Config, log logger.Logger) *DeviceRegistry {
	return &DeviceRegistry{
		db:      database,
		tracker: tracker,
		cfg:     cfg,
		logger:  log,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Apply records s for ip. A cancelled context or any error rolls the whole
// pipeline back.
func (r *DeviceRegistry) Apply(ctx context.Context, ip string, s *Sighting, fn PipelineFunc) (*Result, error) {
	if net.ParseIP(ip).To4() == nil {
		return nil, fmt.Errorf("%w: %q", errInvalidIP, ip)
	}

	var res *Result

	err := r.db.WithTx(ctx, db.TxOptions{}, "apply observation", func(q *db.Queries) error {
		var err error

		res, err = r.apply(ctx, q, ip, s, fn)

		return err
	})
	if err != nil {
		return nil, err
	}

	return res, nil
}

func (r *DeviceRegistry) apply(ctx context.Context, q *db.Queries, ip string, s *Sighting, fn PipelineFunc) (*Result, error) {
	res := &Result{}

	base, err := q.DeviceByIP(ctx, ip)

	switch {
	case errors.Is(err, models.ErrDeviceNotFound):
		if !s.Observation.Reachable && !r.cfg.RegisterUnreachable {
			return nil, ErrNotRegistered
		}

		base = models.NewDeviceRecord(ip, s.Observation.Timestamp)
		mergeIdentity(base, s)

		if err := q.InsertDevice(ctx, base); err != nil {
			return nil, err
		}

		res.Created = true
	case err != nil:
		return nil, err
	default:
		mergeIdentity(base, s)
	}

	res.Previous = base.Clone()

	next, err := r.record(ctx, q, base, s.Observation)
	if err != nil {
		return nil, err
	}

	res.Device = next

	if fn != nil {
		changes, err := fn(ctx, q, res.Previous, next)
		if err != nil {
			return nil, err
		}

		res.Changes = changes
	}

	return res, nil
}

// record appends obs to the log of base and persists the recomputed fields.
func (r *DeviceRegistry) record(
	ctx context.Context, q *db.Queries, base *models.DeviceRecord, obs models.ScanObservation,
) (*models.DeviceRecord, error) {
	obs.DeviceID = base.ID

	if err := q.InsertObservation(ctx, &obs); err != nil {
		return nil, err
	}

	recent, err := q.RecentObservations(ctx, base.ID, r.tracker.Window())
	if err != nil {
		return nil, err
	}

	next := r.tracker.Update(base, recent)
	next.UpdatedAt = r.now()

	if err := q.UpdateDevice(ctx, next); err != nil {
		return nil, err
	}

	return next, nil
}

func mergeIdentity(d *models.DeviceRecord, s *Sighting) {
	if h := strings.TrimSpace(s.Hostname); h != "" {
		d.Hostname = &h
	}

	if s.MAC != "" {
		mac := strings.ToLower(s.MAC)
		d.MAC = &mac
	}

	if s.MACVendor != "" {
		vendor := s.MACVendor
		d.MACVendor = &vendor
	}

	if s.DeviceType != "" && s.DeviceType != models.DeviceTypeUnknown {
		d.DeviceType = s.DeviceType
	}

	if d.DeviceType == "" {
		d.DeviceType = models.DeviceTypeUnknown
	}
}

// Upsert is Apply without any further pipeline stage.
func (r *DeviceRegistry) Upsert(ctx context.Context, ip string, s *Sighting) (*models.DeviceRecord, error) {
	res, err := r.Apply(ctx, ip, s, nil)
	if err != nil {
		return nil, err
	}

	return res.Device, nil
}

// AppendObservation adds obs to an existing device and recomputes its
// derived fields.
func (r *DeviceRegistry) AppendObservation(
	ctx context.Context, deviceID int64, obs *models.ScanObservation,
) (*models.DeviceRecord, error) {
	var next *models.DeviceRecord

	err := r.db.WithTx(ctx, db.TxOptions{}, "append observation", func(q *db.Queries) error {
		base, err := q.DeviceByID(ctx, deviceID)
		if err != nil {
			return err
		}

		next, err = r.record(ctx, q, base, *obs)

		return err
	})
	if err != nil {
		return nil, err
	}

	return next, nil
}

// GetDevice looks a device up by numeric id or by IPv4 address.
func (r *DeviceRegistry) GetDevice(ctx context.Context, idOrIP string) (*models.DeviceRecord, error) {
	if id, err := strconv.ParseInt(idOrIP, 10, 64); err == nil {
		return r.db.Queries().DeviceByID(ctx, id)
	}

	if net.ParseIP(idOrIP).To4() == nil {
		return nil, fmt.Errorf("%w: %q", models.ErrDeviceNotFound, idOrIP)
	}

	return r.db.Queries().DeviceByIP(ctx, idOrIP)
}

func (r *DeviceRegistry) ListDevices(ctx context.Context, filter models.DeviceFilter) ([]models.DeviceRecord, error) {
	return r.db.Queries().ListDevices(ctx, filter)
}

// RecentObservations returns up to limit observations, newest first.
func (r *DeviceRegistry) RecentObservations(ctx context.Context, deviceID int64, limit int) ([]models.ScanObservation, error) {
	return r.db.Queries().RecentObservations(ctx, deviceID, limit)
}

// StartRun persists a scan run as in progress.
func (r *DeviceRegistry) StartRun(ctx context.Context, run *models.ScanRun) error {
	return r.db.Queries().InsertScanRun(ctx, run)
}

// FinishRun stores the final counters of run and runs fn in the same
// transaction.
func (r *DeviceRegistry) FinishRun(ctx context.Context, run *models.ScanRun, fn TxFunc) ([]models.AlertChange, error) {
	var changes []models.AlertChange

	err := r.db.WithTx(ctx, db.TxOptions{}, "finish scan run", func(q *db.Queries) error {
		if err := q.FinishScanRun(ctx, run); err != nil {
			return err
		}

		if fn == nil {
			changes = nil

			return nil
		}

		var err error

		changes, err = fn(ctx, q)

		return err
	})
	if err != nil {
		return nil, err
	}

	return changes, nil
}

// ResolveAlert marks an alert resolved now. Already resolved alerts are
// returned unchanged.
func (r *DeviceRegistry) ResolveAlert(ctx context.Context, id int64) (*models.Alert, bool, error) {
	var (
		alert    *models.Alert
		resolved bool
	)

	err := r.db.WithTx(ctx, db.TxOptions{}, "resolve alert", func(q *db.Queries) error {
		current, err := q.AlertByID(ctx, id)
		if err != nil {
			return err
		}

		if !current.Active() {
			alert, resolved = current, false

			return nil
		}

		alert, err = q.ResolveAlert(ctx, id, r.now())
		resolved = err == nil

		return err
	})
	if err != nil {
		return nil, false, err
	}

	if resolved {
		r.logger.Info().
			Int64("alert_id", id).
			Str("kind", string(alert.Kind)).
			Msg("Alert resolved manually")
	}

	return alert, resolved, nil
}

// PruneObservations deletes observations older than before.
func (r *DeviceRegistry) PruneObservations(ctx context.Context, before time.Time) (int64, error) {
	removed, err := r.db.Queries().PruneObservations(ctx, before)
	if err != nil {
		return 0, err
	}

	if removed > 0 {
		r.logger.Info().
			Int64("removed", removed).
			Time("before", before).
			Msg("Pruned scan observations")
	}

	return removed, nil
}
