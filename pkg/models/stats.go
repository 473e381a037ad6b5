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

// Statistics aggregates the registry for dashboards and reports.
type Statistics struct {
	TotalDevices          int                   `json:"total_devices"`
	OnlineDevices         int                   `json:"online_devices"`
	OfflineDevices        int                   `json:"offline_devices"`
	UptimePercentage      float64               `json:"uptime_percentage"`
	AverageHealthScore    float64               `json:"average_health_score"`
	AlertCountsByPriority map[AlertPriority]int `json:"alert_counts_by_priority"`
	DevicesByType         map[DeviceType]int    `json:"devices_by_type"`
	LastScan              *ScanRun              `json:"last_scan,omitempty"`
	ScanInProgress        bool                  `json:"scan_in_progress"`
}
