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

package registry

//go:generate mockgen -destination=mock_registry.go -package=registry github.com/carverauto/centraldanone/pkg/registry Manager

import (
	"context"
	"time"

	"github.com/carverauto/centraldanone/pkg/models"
)

// Manager is the authoritative device store. Every mutation of a device and
// its observation log goes through it, one transaction per device.
type Manager interface {
	// Apply runs the per-device pipeline for one probe outcome inside a
	// single transaction: upsert, append, health recompute and fn.
	Apply(ctx context.Context, ip string, s *Sighting, fn PipelineFunc) (*Result, error)

	Upsert(ctx context.Context, ip string, s *Sighting) (*models.DeviceRecord, error)
	AppendObservation(ctx context.Context, deviceID int64, obs *models.ScanObservation) (*models.DeviceRecord, error)
	GetDevice(ctx context.Context, idOrIP string) (*models.DeviceRecord, error)
	ListDevices(ctx context.Context, filter models.DeviceFilter) ([]models.DeviceRecord, error)
	RecentObservations(ctx context.Context, deviceID int64, limit int) ([]models.ScanObservation, error)

	StartRun(ctx context.Context, run *models.ScanRun) error
	FinishRun(ctx context.Context, run *models.ScanRun, fn TxFunc) ([]models.AlertChange, error)
	PruneObservations(ctx context.Context, before time.Time) (int64, error)

	// ResolveAlert closes an alert by hand. The bool reports whether this
	// call resolved it; resolving a closed alert is a no-op.
	ResolveAlert(ctx context.Context, id int64) (*models.Alert, bool, error)
}
