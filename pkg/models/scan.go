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

// ErrorKind classifies why a probe failed.
type ErrorKind string

const (
	ErrorKindTimeout          ErrorKind = "timeout"
	ErrorKindUnreachable      ErrorKind = "unreachable"
	ErrorKindPermissionDenied ErrorKind = "permission_denied"
	ErrorKindResolutionFailed ErrorKind = "resolution_failed"
	ErrorKindOther            ErrorKind = "other"
)

// ProbeResult is the outcome of one reachability probe.
type ProbeResult struct {
	IP             string     `json:"ip"`
	Reachable      bool       `json:"reachable"`
	ResponseTimeMs *float64   `json:"response_time_ms,omitempty"`
	Hostname       string     `json:"hostname,omitempty"`
	MAC            string     `json:"mac,omitempty"`
	ErrorKind      *ErrorKind `json:"error_kind,omitempty"`
	Method         string     `json:"method,omitempty"`
	Timestamp      time.Time  `json:"timestamp"`
}

// ScanObservation is an immutable record of one probe outcome for a device.
type ScanObservation struct {
	ID             int64      `json:"id"`
	DeviceID       int64      `json:"device_id"`
	ScanID         string     `json:"scan_id,omitempty"`
	Timestamp      time.Time  `json:"timestamp"`
	Reachable      bool       `json:"reachable"`
	ResponseTimeMs *float64   `json:"response_time_ms,omitempty"`
	ErrorKind      *ErrorKind `json:"error_kind,omitempty"`
}

// ObservationFromProbe converts a probe outcome into an observation.
func ObservationFromProbe(scanID string, r *ProbeResult) ScanObservation {
	return ScanObservation{
		ScanID:         scanID,
		Timestamp:      r.Timestamp,
		Reachable:      r.Reachable,
		ResponseTimeMs: r.ResponseTimeMs,
		ErrorKind:      r.ErrorKind,
	}
}

// ScanTrigger records why a run started.
type ScanTrigger string

const (
	ScanTriggerScheduled ScanTrigger = "scheduled"
	ScanTriggerManual    ScanTrigger = "manual"
)

// ScanRun is one traversal of a CIDR range.
type ScanRun struct {
	ID               string      `json:"id"`
	Range            string      `json:"range"`
	Trigger          ScanTrigger `json:"trigger"`
	StartedAt        time.Time   `json:"started_at"`
	FinishedAt       *time.Time  `json:"finished_at,omitempty"`
	DevicesProbed    int         `json:"devices_probed"`
	DevicesReachable int         `json:"devices_reachable"`
	DevicesSkipped   int         `json:"devices_skipped"`
	DurationMs       int64       `json:"duration_ms"`
	Cancelled        bool        `json:"cancelled"`
	Error            string      `json:"error,omitempty"`
}

// Finish stamps the end of a run.
func (r *ScanRun) Finish(now time.Time) {
	r.FinishedAt = &now
	r.DurationMs = now.Sub(r.StartedAt).Milliseconds()
}
