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

package models

import "time"

// AlertKind identifies the condition an alert reports.
type AlertKind string

const (
	AlertKindOffline    AlertKind = "offline"
	AlertKindRecovered  AlertKind = "recovered"
	AlertKindLowUptime  AlertKind = "low_uptime"
	AlertKindScanFailed AlertKind = "scan_failed"
)

// AlertPriority ranks alerts for display and notification.
type AlertPriority string

const (
	PriorityLow    AlertPriority = "low"
	PriorityMedium AlertPriority = "medium"
	PriorityHigh   AlertPriority = "high"
)

// Priority is the fixed priority of each alert kind.
func (k AlertKind) Priority() AlertPriority {
	switch k {
	case AlertKindOffline, AlertKindScanFailed:
		return PriorityHigh
	case AlertKindLowUptime:
		return PriorityMedium
	default:
		return PriorityLow
	}
}

// Alert is raised by the alert engine and resolved, never deleted.
// DeviceID is nil for run-level alerts.
type Alert struct {
	ID         int64         `json:"id"`
	DeviceID   *int64        `json:"device_id,omitempty"`
	DeviceIP   string        `json:"device_ip,omitempty"`
	Kind       AlertKind     `json:"kind"`
	Priority   AlertPriority `json:"priority"`
	Message    string        `json:"message"`
	CreatedAt  time.Time     `json:"created_at"`
	ResolvedAt *time.Time    `json:"resolved_at,omitempty"`
}

// Active reports whether the alert is still unresolved.
func (a *Alert) Active() bool {
	return a.ResolvedAt == nil
}

// AlertFilter narrows an alert listing.
type AlertFilter struct {
	ActiveOnly bool
	DeviceID   *int64
	Limit      int
}

// AlertChange is emitted after commit for every alert opened or resolved.
type AlertChange struct {
	Alert    Alert  `json:"alert"`
	Resolved bool   `json:"resolved"`
	DeviceIP string `json:"device_ip,omitempty"`
}
