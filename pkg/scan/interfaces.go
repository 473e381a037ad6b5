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

//go:generate mockgen -destination=mock_scan.go -package=scan github.com/carverauto/centraldanone/pkg/scan Prober,HostnameResolver,MACResolver

package scan

import (
	"context"

	"github.com/carverauto/centraldanone/pkg/models"
)

// Prober performs a single reachability probe. Failures never surface as
// errors; they are reported through ProbeResult.ErrorKind.
type Prober interface {
	Probe(ctx context.Context, ip string) models.ProbeResult
}

// HostnameResolver names a reachable host.
type HostnameResolver interface {
	LookupHostname(ctx context.Context, ip string) (string, error)
}

// MACResolver returns the hardware address of a host on the local segment.
type MACResolver interface {
	LookupMAC(ctx context.Context, ip string) (string, error)
}
