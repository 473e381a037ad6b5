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

package api

//go:generate mockgen -destination=mock_api.go -package=api github.com/carverauto/centraldanone/pkg/core/api ScanController,ReportService

import (
	"context"

	"github.com/carverauto/centraldanone/pkg/models"
)

// DeviceReader is the read model served by the API.
type DeviceReader interface {
	ListDevices(ctx context.Context, filter models.DeviceFilter) ([]models.DeviceSummary, error)
	DeviceDetail(ctx context.Context, idOrIP string) (*models.DeviceDetail, error)
	Statistics(ctx context.Context) (*models.Statistics, error)
	Alerts(ctx context.Context, filter models.AlertFilter) ([]models.Alert, error)
	ScanRuns(ctx context.Context, limit int) ([]models.ScanRun, error)
}

// ScanController queues and cancels scan runs.
type ScanController interface {
	TriggerScan(cidr string) (string, error)
	CancelCurrent() bool
}

// AlertResolver closes alerts by hand.
type AlertResolver interface {
	ResolveAlert(ctx context.Context, id int64) (*models.Alert, bool, error)
}

// ReportService manages generated report files.
type ReportService interface {
	Generate(ctx context.Context, req *models.ReportRequest) (*models.ReportInfo, error)
	List() ([]models.ReportInfo, error)
	Stats() (*models.ReportStats, error)
	Path(name string) (string, error)
	Delete(name string) error
}

// AlertNotifier receives manually resolved alerts.
type AlertNotifier interface {
	Notify(ctx context.Context, changes []models.AlertChange) error
}
