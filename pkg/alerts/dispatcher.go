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

import (
	"context"
	"errors"
	"fmt"

	"github.com/carverauto/centraldanone/pkg/logger"
	"github.com/carverauto/centraldanone/pkg/models"
)

// Dispatcher fans committed alert changes out to every registered notifier.
type Dispatcher struct {
	notifiers []Notifier
	logger    logger.Logger
}

func NewDispatcher(log logger.Logger, notifiers ...Notifier) *Dispatcher {
	return &Dispatcher{notifiers: notifiers, logger: log}
}

// Add registers another notifier. It must not race with Notify.
func (d *Dispatcher) Add(n Notifier) {
	if n != nil {
		d.notifiers = append(d.notifiers, n)
	}
}

// Notify delivers changes to all notifiers. A failing notifier does not stop
// delivery to the others.
func (d *Dispatcher) Notify(ctx context.Context, changes []models.AlertChange) error {
	if len(changes) == 0 {
		return nil
	}

	var errs []error

	for _, n := range d.notifiers {
		if err := n.Notify(ctx, changes); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		err := fmt.Errorf("%w: %w", errFailedToNotify, errors.Join(errs...))

		d.logger.Warn().Err(err).Int("changes", len(changes)).Msg("Alert notification failed")

		return err
	}

	return nil
}
