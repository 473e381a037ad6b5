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

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDefaultConfigurationIsValid(t *testing.T) {
	cfg := DefaultConfiguration()

	require.NoError(t, cfg.Validate())
	assert.Equal(t, 5*time.Minute, cfg.ScanInterval())
	assert.Equal(t, 10*time.Second, cfg.ProbeTimeout())
	assert.Equal(t, 10*time.Second, cfg.StopGracePeriod())
	assert.Equal(t, []int{80, 443, 22}, cfg.Network.TCPFallbackPorts)
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Configuration)
		field  string
	}{
		{"bad cidr", func(c *Configuration) { c.Network.DefaultRange = "192.168.1.0/33" }, "network.default_range"},
		{"ipv6 cidr", func(c *Configuration) { c.Network.DefaultRange = "fd00::/64" }, "network.default_range"},
		{"zero batch", func(c *Configuration) { c.Performance.ScanBatchSize = 0 }, "performance.scan_batch_size"},
		{"negative retries", func(c *Configuration) { c.Network.MaxRetries = -1 }, "network.max_retries"},
		{"threshold above 100", func(c *Configuration) { c.Alert.Threshold = 101 }, "alert.threshold"},
		{"unknown tag", func(c *Configuration) {
			c.DeviceTypes = append(c.DeviceTypes, DeviceTypeRule{Tag: "toaster", Keywords: []string{"t"}})
		}, "device_types"},
		{"bad driver", func(c *Configuration) { c.Database.Driver = "mysql" }, "database.driver"},
		{"events without url", func(c *Configuration) { c.Events.Enabled = true }, "events"},
		{"email without key", func(c *Configuration) { c.Notify.Email.Enabled = true }, "notify.email"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfiguration()
			tt.mutate(&cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrConfig)

			var cfgErr *ConfigError
			require.True(t, errors.As(err, &cfgErr))
			assert.Equal(t, tt.field, cfgErr.Field)
		})
	}
}

func TestDeviceTypesKeepJSONOrder(t *testing.T) {
	var cfg struct {
		DeviceTypes DeviceTypes `json:"device_types"`
	}

	doc := `{"device_types": {"switch": ["sw"], "router": ["router", "gw"], "camera": []}}`
	require.NoError(t, json.Unmarshal([]byte(doc), &cfg))

	require.Len(t, cfg.DeviceTypes, 3)
	assert.Equal(t, DeviceTypeSwitch, cfg.DeviceTypes[0].Tag)
	assert.Equal(t, DeviceTypeRouter, cfg.DeviceTypes[1].Tag)
	assert.Equal(t, []string{"router", "gw"}, cfg.DeviceTypes[1].Keywords)
	assert.Equal(t, DeviceTypeCamera, cfg.DeviceTypes[2].Tag)

	out, err := json.Marshal(cfg.DeviceTypes)
	require.NoError(t, err)
	assert.JSONEq(t, `{"switch":["sw"],"router":["router","gw"],"camera":[]}`, string(out))
	assert.Equal(t, `{"switch":["sw"],"router":["router","gw"],"camera":[]}`, string(out))
}

func TestDeviceTypesKeepYAMLOrder(t *testing.T) {
	var cfg struct {
		DeviceTypes DeviceTypes `yaml:"device_types"`
	}

	doc := "device_types:\n  printer: [printer, hp]\n  server: [srv]\n"
	require.NoError(t, yaml.Unmarshal([]byte(doc), &cfg))

	require.Len(t, cfg.DeviceTypes, 2)
	assert.Equal(t, DeviceTypePrinter, cfg.DeviceTypes[0].Tag)
	assert.Equal(t, DeviceTypeServer, cfg.DeviceTypes[1].Tag)

	out, err := yaml.Marshal(cfg)
	require.NoError(t, err)
	assert.Contains(t, string(out), "printer:")
}

func TestDeviceTypesRejectArray(t *testing.T) {
	var dt DeviceTypes
	require.Error(t, json.Unmarshal([]byte(`["router"]`), &dt))
}

func TestFilterSensitiveFields(t *testing.T) {
	cfg := DefaultConfiguration()
	cfg.APIKey = "top-secret"
	cfg.Database.Password = "hunter2"
	cfg.Notify.Email.APIKey = "brevo-key"

	filtered, err := FilterSensitiveFields(&cfg)
	require.NoError(t, err)

	_, hasKey := filtered["api_key"]
	assert.False(t, hasKey)

	db, ok := filtered["database"].(map[string]interface{})
	require.True(t, ok)
	assert.NotContains(t, db, "password")
	assert.Equal(t, "sqlite", db["driver"])

	out, err := json.Marshal(filtered)
	require.NoError(t, err)
	assert.NotContains(t, string(out), "hunter2")
	assert.NotContains(t, string(out), "brevo-key")
	assert.Contains(t, string(out), `"router":["router","gateway","firewall"]`)

	_, err = FilterSensitiveFields(42)
	require.Error(t, err)
}

func TestAlertConfigEnabled(t *testing.T) {
	a := AlertConfig{DeviceOffline: true, ScanFailed: false}

	assert.True(t, a.Enabled(AlertKindOffline))
	assert.False(t, a.Enabled(AlertKindScanFailed))
	assert.False(t, a.Enabled(AlertKind("other")))
}
