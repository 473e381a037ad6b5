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

package alerts

//go:generate mockgen -destination=mock_alerts.go -package=alerts github.com/carverauto/centraldanone/pkg/alerts Store,Notifier

import (
	"context"
	"time"

	"github.com/carverauto/centraldanone/pkg/models"
)

// Store is the slice of the registry transaction the engine needs. It is
// satisfied by *db.Queries.
type Store interface {
	ActiveAlert(ctx context.Context, deviceID *int64, kind models.AlertKind) (*models.Alert, error)
	InsertAlert(ctx context.Context, a *models.Alert) error
	ResolveAlert(ctx context.Context, id int64, at time.Time) (*models.Alert, error)
}

// Notifier receives alert changes once the transaction that produced them
// has committed.
type Notifier interface {
	Notify(ctx context.Context, changes []models.AlertChange) error
}
