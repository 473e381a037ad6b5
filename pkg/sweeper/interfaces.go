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

	"github.com/carverauto/centraldanone/pkg/models"
)

// InterfaceChecker verifies that the host can reach the network at all.
type InterfaceChecker interface {
	Check(ctx context.Context) error
}

// EventSink receives engine events for live consumers.
type EventSink interface {
	Publish(ctx context.Context, evt models.EngineEvent) error
}
