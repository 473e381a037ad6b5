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
	"time"

	"github.com/carverauto/centraldanone/pkg/models"
)

const (
	defaultBatchSize     = 64
	defaultMaxConcurrent = 50
	defaultStopGrace     = 10 * time.Second
	finalizeTimeout      = 10 * time.Second
)

// Config controls scan scheduling.
type Config struct {
	DefaultRange  string
	Interval      time.Duration
	BatchSize     int
	MaxConcurrent int
	StopGrace     time.Duration
	// RetentionDays prunes older observations after each run; 0 keeps all.
	RetentionDays int
}

func ConfigFromSettings(cfg *models.Configuration) Config {
	return Config{
		DefaultRange:  cfg.Network.DefaultRange,
		Interval:      cfg.ScanInterval(),
		BatchSize:     cfg.Performance.ScanBatchSize,
		MaxConcurrent: cfg.Performance.MaxConcurrentScans,
		StopGrace:     cfg.StopGracePeriod(),
		RetentionDays: cfg.Retention.ObservationDays,
	}
}

func (c *Config) applyDefaults() {
	if c.BatchSize <= 0 {
		c.BatchSize = defaultBatchSize
	}

	if c.MaxConcurrent <= 0 {
		c.MaxConcurrent = defaultMaxConcurrent
	}

	if c.StopGrace <= 0 {
		c.StopGrace = defaultStopGrace
	}
}
