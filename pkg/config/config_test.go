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

package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/centraldanone/pkg/logger"
	"github.com/carverauto/centraldanone/pkg/models"
)

type fakeKVStore struct {
	values map[string][]byte
	err    error
}

func (f *fakeKVStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	if f.err != nil {
		return nil, false, f.err
	}

	val, ok := f.values[key]

	return val, ok, nil
}

func writeFile(t *testing.T, name, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	return path
}

func TestLoadConfigurationJSONOverDefaults(t *testing.T) {
	t.Setenv("CONFIG_SOURCE", "")

	path := writeFile(t, "danone.json", `{
		"network": {"default_range": "10.0.0.0/24", "max_retries": 0},
		"alert": {"threshold": 70, "scan_failed": true},
		"device_types": {"camera": ["cam"], "router": ["gw"]}
	}`)

	cfg, err := LoadConfiguration(context.Background(), NewConfig(nil), path)
	require.NoError(t, err)

	assert.Equal(t, "10.0.0.0/24", cfg.Network.DefaultRange)
	assert.Equal(t, 0, cfg.Network.MaxRetries)
	assert.InDelta(t, 10.0, cfg.Network.ScanTimeout, 1e-9, "unset keys keep defaults")
	assert.InDelta(t, 70.0, cfg.Alert.Threshold, 1e-9)
	assert.True(t, cfg.Alert.ScanFailed)
	assert.True(t, cfg.Alert.DeviceOffline)
	require.Len(t, cfg.DeviceTypes, 2)
	assert.Equal(t, models.DeviceTypeCamera, cfg.DeviceTypes[0].Tag)
}

func TestLoadConfigurationYAML(t *testing.T) {
	t.Setenv("CONFIG_SOURCE", "file")

	path := writeFile(t, "danone.yaml", `
network:
  default_range: 192.168.0.0/30
  scan_interval: 1
performance:
  max_concurrent_scans: 4
  scan_batch_size: 2
device_types:
  switch: [sw]
  router: [router]
logging:
  level: debug
`)

	cfg, err := LoadConfiguration(context.Background(), NewConfig(logger.NewTestLogger()), path)
	require.NoError(t, err)

	assert.Equal(t, time.Minute, cfg.ScanInterval())
	assert.Equal(t, 4, cfg.Performance.MaxConcurrentScans)
	assert.Equal(t, 2, cfg.Performance.ScanBatchSize)
	assert.Equal(t, models.DeviceTypeSwitch, cfg.DeviceTypes[0].Tag)
	require.NotNil(t, cfg.Logging)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadConfigurationInvalidIsConfigError(t *testing.T) {
	t.Setenv("CONFIG_SOURCE", "")

	path := writeFile(t, "bad.json", `{"performance": {"scan_batch_size": 0}}`)

	_, err := LoadConfiguration(context.Background(), NewConfig(nil), path)
	require.ErrorIs(t, err, models.ErrConfig)

	var cfgErr *models.ConfigError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "performance.scan_batch_size", cfgErr.Field)
}

func TestLoadConfigurationMissingFile(t *testing.T) {
	t.Setenv("CONFIG_SOURCE", "")

	_, err := LoadConfiguration(context.Background(), NewConfig(nil), filepath.Join(t.TempDir(), "nope.json"))
	require.ErrorIs(t, err, models.ErrConfig)
}

func TestLoadConfigurationEmptyPathUsesDefaults(t *testing.T) {
	t.Setenv("CONFIG_SOURCE", "")

	cfg, err := LoadConfiguration(context.Background(), NewConfig(nil), "")
	require.NoError(t, err)
	assert.Equal(t, models.DefaultNetworkRange, cfg.Network.DefaultRange)
}

func TestEnvSource(t *testing.T) {
	t.Setenv("CONFIG_SOURCE", "env")
	t.Setenv("DANONE_NETWORK_DEFAULT_RANGE", "172.16.0.0/28")
	t.Setenv("DANONE_NETWORK_SCAN_TIMEOUT", "0.5")
	t.Setenv("DANONE_NETWORK_TCP_FALLBACK_PORTS", "[8080]")
	t.Setenv("DANONE_ALERT_DEVICE_ONLINE", "false")
	t.Setenv("DANONE_DEVICE_TYPES", `{"printer":["prn"]}`)
	t.Setenv("DANONE_LOGGING_OTEL_BATCH_TIMEOUT", "2s")

	cfg, err := LoadConfiguration(context.Background(), NewConfig(nil), "")
	require.NoError(t, err)

	assert.Equal(t, "172.16.0.0/28", cfg.Network.DefaultRange)
	assert.Equal(t, 500*time.Millisecond, cfg.ProbeTimeout())
	assert.Equal(t, []int{8080}, cfg.Network.TCPFallbackPorts)
	assert.False(t, cfg.Alert.DeviceOnline)
	require.Len(t, cfg.DeviceTypes, 1)
	assert.Equal(t, models.DeviceTypePrinter, cfg.DeviceTypes[0].Tag)
	assert.Equal(t, logger.Duration(2*time.Second), cfg.Logging.OTel.BatchTimeout)
}

func TestEnvSourceConfigJSON(t *testing.T) {
	t.Setenv("CONFIG_SOURCE", "env")
	t.Setenv("CONFIG_ENV_PREFIX", "LAB_")
	t.Setenv("LAB_CONFIG_JSON", `{"listen_addr": ":9999"}`)

	cfg, err := LoadConfiguration(context.Background(), NewConfig(nil), "")
	require.NoError(t, err)
	assert.Equal(t, ":9999", cfg.ListenAddr)
}

func TestKVSource(t *testing.T) {
	t.Setenv("CONFIG_SOURCE", "kv")

	c := NewConfig(nil)

	_, err := LoadConfiguration(context.Background(), c, "/etc/danone/danone.json")
	require.Error(t, err, "kv source without a store must fail")

	c.SetKVStore(&fakeKVStore{values: map[string][]byte{
		"config/danone.json": []byte(`{"network": {"default_range": "10.1.0.0/16"}}`),
	}})

	cfg, err := LoadConfiguration(context.Background(), c, "/etc/danone/danone.json")
	require.NoError(t, err)
	assert.Equal(t, "10.1.0.0/16", cfg.Network.DefaultRange)

	_, err = LoadConfiguration(context.Background(), c, "/etc/danone/other.json")
	require.ErrorIs(t, err, models.ErrConfig)
}

func TestInvalidSource(t *testing.T) {
	t.Setenv("CONFIG_SOURCE", "consul")

	err := NewConfig(nil).LoadAndValidate(context.Background(), "", &models.Configuration{})
	require.ErrorIs(t, err, errInvalidConfigSource)
}

func TestEnvSourceOptionalSections(t *testing.T) {
	t.Setenv("CONFIG_SOURCE", "env")
	t.Setenv("DANONE_EVENTS_ENABLED", "true")
	t.Setenv("DANONE_EVENTS_NATS_URL", "nats://nats.local:4222")
	t.Setenv("DANONE_CORS_ALLOWED_ORIGINS", "http://a.local, http://b.local")

	cfg, err := LoadConfiguration(context.Background(), NewConfig(nil), "")
	require.NoError(t, err)

	assert.True(t, cfg.Events.Enabled)
	assert.Equal(t, "nats://nats.local:4222", cfg.Events.NATSURL)
	assert.Equal(t, "danone-events", cfg.Events.StreamName)
	assert.Nil(t, cfg.Events.TLS, "untouched optional sections stay nil")
	assert.Equal(t, []string{"http://a.local", "http://b.local"}, cfg.CORS.AllowedOrigins)

	t.Setenv("DANONE_EVENTS_TLS_CA_FILE", "/etc/danone/ca.pem")

	cfg, err = LoadConfiguration(context.Background(), NewConfig(nil), "")
	require.NoError(t, err)
	require.NotNil(t, cfg.Events.TLS)
	assert.Equal(t, "/etc/danone/ca.pem", cfg.Events.TLS.CAFile)
}

func TestEnvSourceRejectsBadValue(t *testing.T) {
	t.Setenv("CONFIG_SOURCE", "env")
	t.Setenv("DANONE_PERFORMANCE_SCAN_BATCH_SIZE", "many")

	_, err := LoadConfiguration(context.Background(), NewConfig(nil), "")
	require.ErrorIs(t, err, models.ErrConfig)
}
