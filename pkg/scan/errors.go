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

package scan

import "errors"

var (
	ErrInvalidRange      = errors.New("invalid IPv4 range")
	ErrRangeTooLarge     = errors.New("range exceeds maximum host count")
	ErrInvalidTarget     = errors.New("invalid probe target")
	ErrICMPNotPermitted  = errors.New("icmp requires raw socket privileges")
	ErrProbeTimedOut     = errors.New("probe timed out")
	ErrHostUnreachable   = errors.New("host unreachable")
	ErrNoFallbackPorts   = errors.New("no tcp fallback ports configured")
	ErrSNMPNoSysName     = errors.New("snmp returned no sysName")
	ErrNoSuitableIface   = errors.New("no non-loopback interface is up")
	errConnectionRefused = errors.New("connection refused")
)
