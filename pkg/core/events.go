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

package core

import (
	"context"
	"errors"
	"net/http"

	"github.com/carverauto/centraldanone/pkg/models"
	"github.com/carverauto/centraldanone/pkg/sweeper"
)

// eventFanout forwards engine events to every live consumer. A failing sink
// does not stop delivery to the others.
type eventFanout []sweeper.EventSink

var _ sweeper.EventSink = eventFanout(nil)

func (f eventFanout) Publish(ctx context.Context, evt models.EngineEvent) error {
	var errs []error

	for _, sink := range f {
		if err := sink.Publish(ctx, evt); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// originChecker accepts websocket upgrades from the configured CORS origins.
// Requests without an Origin header come from non-browser clients and pass.
func originChecker(cors models.CORSConfig) func(r *http.Request) bool {
	allowed := make(map[string]struct{}, len(cors.AllowedOrigins))

	for _, o := range cors.AllowedOrigins {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}

		allowed[o] = struct{}{}
	}

	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}

		_, ok := allowed[origin]

		return ok
	}
}
