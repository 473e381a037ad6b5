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

// DeviceType is the classification tag of a device.
type DeviceType string

const (
	DeviceTypeRouter      DeviceType = "router"
	DeviceTypeServer      DeviceType = "server"
	DeviceTypePrinter     DeviceType = "printer"
	DeviceTypeWorkstation DeviceType = "workstation"
	DeviceTypeSwitch      DeviceType = "switch"
	DeviceTypeCamera      DeviceType = "camera"
	DeviceTypePhone       DeviceType = "phone"
	DeviceTypeAutomation  DeviceType = "automation"
	DeviceTypeUnknown     DeviceType = "unknown"
)

// KnownDeviceTypes lists every valid tag.
func KnownDeviceTypes() []DeviceType {
	return []DeviceType{
		DeviceTypeRouter, DeviceTypeServer, DeviceTypePrinter, DeviceTypeWorkstation,
		DeviceTypeSwitch, DeviceTypeCamera, DeviceTypePhone, DeviceTypeAutomation,
		DeviceTypeUnknown,
	}
}

// Valid reports whether t is a known tag.
func (t DeviceType) Valid() bool {
	for _, known := range KnownDeviceTypes() {
		if t == known {
			return true
		}
	}

	return false
}

// DeviceRecord is the persisted state of one supervised host, keyed by IP.
type DeviceRecord struct {
	ID                  int64      `json:"id"`
	IP                  string     `json:"ip"`
	Hostname            *string    `json:"hostname,omitempty"`
	MAC                 *string    `json:"mac,omitempty"`
	MACVendor           *string    `json:"mac_vendor,omitempty"`
	DeviceType          DeviceType `json:"device_type"`
	IsOnline            bool       `json:"is_online"`
	FirstSeen           time.Time  `json:"first_seen"`
	LastSeen            *time.Time `json:"last_seen,omitempty"`
	ResponseTimeMs      *float64   `json:"response_time_ms,omitempty"`
	ConsecutiveFailures int        `json:"consecutive_failures"`
	UptimePct           float64    `json:"uptime_pct"`
	HealthScore         float64    `json:"health_score"`
	FailureProbability  float64    `json:"failure_probability"`
	AnomalyScore        float64    `json:"anomaly_score"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

// NewDeviceRecord returns a record with the defaults of a freshly registered device.
func NewDeviceRecord(ip string, now time.Time) *DeviceRecord {
	return &DeviceRecord{
		IP:          ip,
		DeviceType:  DeviceTypeUnknown,
		IsOnline:    true,
		FirstSeen:   now,
		UptimePct:   100,
		HealthScore: 100,
		UpdatedAt:   now,
	}
}

// Clone returns a deep copy so callers can keep a pre-mutation snapshot.
func (d *DeviceRecord) Clone() *DeviceRecord {
	if d == nil {
		return nil
	}

	out := *d
	out.Hostname = cloneString(d.Hostname)
	out.MAC = cloneString(d.MAC)
	out.MACVendor = cloneString(d.MACVendor)

	if d.LastSeen != nil {
		ls := *d.LastSeen
		out.LastSeen = &ls
	}

	if d.ResponseTimeMs != nil {
		rt := *d.ResponseTimeMs
		out.ResponseTimeMs = &rt
	}

	return &out
}

// HostnameOrEmpty dereferences Hostname.
func (d *DeviceRecord) HostnameOrEmpty() string {
	if d.Hostname == nil {
		return ""
	}

	return *d.Hostname
}

// DeviceSummary is one row of the device list view.
type DeviceSummary struct {
	ID                 int64      `json:"id"`
	IP                 string     `json:"ip"`
	Hostname           *string    `json:"hostname,omitempty"`
	DeviceType         DeviceType `json:"device_type"`
	IsOnline           bool       `json:"is_online"`
	LastSeen           *time.Time `json:"last_seen,omitempty"`
	HealthScore        float64    `json:"health_score"`
	FailureProbability float64    `json:"failure_probability"`
	AnomalyScore       float64    `json:"anomaly_score"`
	ActiveAlertCount   int        `json:"active_alert_count"`
}

// DeviceFilter narrows a device listing. Zero value matches everything.
type DeviceFilter struct {
	Online     *bool
	DeviceType DeviceType
}

// DeviceDetail is the detail view of one device.
type DeviceDetail struct {
	DeviceRecord
	Observations []ScanObservation `json:"observations"`
	ActiveAlerts []Alert           `json:"active_alerts"`
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}

	v := *s

	return &v
}

// StringPtr returns nil for an empty string.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}

	return &s
}
