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

package reports

import (
	"context"
	"time"

	"github.com/carverauto/centraldanone/pkg/db"
	"github.com/carverauto/centraldanone/pkg/models"
)

// Source is the read side a report is built from.
type Source interface {
	Statistics(ctx context.Context) (*models.Statistics, error)
	ListDevices(ctx context.Context, filter models.DeviceFilter) ([]models.DeviceSummary, error)
	ObservationSummaries(ctx context.Context, from, to time.Time) (map[int64]db.ObservationSummary, error)
	CountScanRuns(ctx context.Context, from, to time.Time) (int, error)
}
