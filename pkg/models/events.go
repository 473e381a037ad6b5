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

// CloudEvent represents a CloudEvents v1.0 compliant event.
type CloudEvent struct {
	SpecVersion     string      `json:"specversion"`
	ID              string      `json:"id"`
	Source          string      `json:"source"`
	Type            string      `json:"type"`
	DataContentType string      `json:"datacontenttype"`
	Subject         string      `json:"subject,omitempty"`
	Time            *time.Time  `json:"time,omitempty"`
	Data            interface{} `json:"data,omitempty"`
}

// EngineEventType names the events streamed to websocket clients and NATS.
type EngineEventType string

const (
	EventAlertOpened   EngineEventType = "alert.opened"
	EventAlertResolved EngineEventType = "alert.resolved"
	EventScanStarted   EngineEventType = "scan.started"
	EventScanCompleted EngineEventType = "scan.completed"
	EventDeviceUpdated EngineEventType = "device.updated"
)

// EngineEvent is the in-process envelope fanned out to subscribers.
type EngineEvent struct {
	Type      EngineEventType `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Data      interface{}     `json:"data"`
}

// DeviceStatusEventData accompanies device.updated.
type DeviceStatusEventData struct {
	DeviceID    int64   `json:"device_id"`
	IP          string  `json:"ip"`
	IsOnline    bool    `json:"is_online"`
	WasOnline   bool    `json:"was_online"`
	HealthScore float64 `json:"health_score"`
}
