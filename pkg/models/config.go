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
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/carverauto/centraldanone/pkg/logger"
)

var errNotIPv4 = errors.New("not an IPv4 range")

const (
	DefaultNetworkRange = "192.168.1.0/24"
	DatabaseSQLite      = "sqlite"
	DatabasePostgres    = "postgres"
)

// Configuration is read once at startup and handed to every component.
type Configuration struct {
	ListenAddr  string            `json:"listen_addr" yaml:"listen_addr"`
	APIKey      string            `json:"api_key" yaml:"api_key" sensitive:"true"`
	CORS        CORSConfig        `json:"cors" yaml:"cors"`
	Network     NetworkConfig     `json:"network" yaml:"network"`
	Performance PerformanceConfig `json:"performance" yaml:"performance"`
	Alert       AlertConfig       `json:"alert" yaml:"alert"`
	DeviceTypes DeviceTypes       `json:"device_types" yaml:"device_types"`
	Database    DatabaseConfig    `json:"database" yaml:"database"`
	Retention   RetentionConfig   `json:"retention" yaml:"retention"`
	Reports     ReportsConfig     `json:"reports" yaml:"reports"`
	Events      EventsConfig      `json:"events" yaml:"events"`
	Notify      NotifyConfig      `json:"notify" yaml:"notify"`
	Logging     *logger.Config    `json:"logging" yaml:"logging"`
}

type CORSConfig struct {
	AllowedOrigins   []string `json:"allowed_origins" yaml:"allowed_origins"`
	AllowCredentials bool     `json:"allow_credentials" yaml:"allow_credentials"`
}

type NetworkConfig struct {
	DefaultRange        string             `json:"default_range" yaml:"default_range"`
	ScanInterval        float64            `json:"scan_interval" yaml:"scan_interval"` // minutes
	ScanTimeout         float64            `json:"scan_timeout" yaml:"scan_timeout"`   // seconds per probe
	MaxRetries          int                `json:"max_retries" yaml:"max_retries"`
	RegisterUnreachable bool               `json:"register_unreachable" yaml:"register_unreachable"`
	TCPFallbackPorts    []int              `json:"tcp_fallback_ports" yaml:"tcp_fallback_ports"`
	ResolveMAC          bool               `json:"resolve_mac" yaml:"resolve_mac"`
	SNMPHostname        SNMPHostnameConfig `json:"snmp_hostname" yaml:"snmp_hostname"`
}

// SNMPHostnameConfig enables the sysName fallback when reverse DNS is empty.
type SNMPHostnameConfig struct {
	Enabled   bool   `json:"enabled" yaml:"enabled"`
	Community string `json:"community" yaml:"community" sensitive:"true"`
	Port      uint16 `json:"port" yaml:"port"`
}

type PerformanceConfig struct {
	MaxConcurrentScans int     `json:"max_concurrent_scans" yaml:"max_concurrent_scans"`
	ScanBatchSize      int     `json:"scan_batch_size" yaml:"scan_batch_size"`
	UptimeWindow       int     `json:"uptime_window" yaml:"uptime_window"`
	DetailObservations int     `json:"detail_observations" yaml:"detail_observations"`
	StopGracePeriod    float64 `json:"stop_grace_period" yaml:"stop_grace_period"` // seconds
}

type AlertConfig struct {
	Threshold     float64 `json:"threshold" yaml:"threshold"`
	DeviceOffline bool    `json:"device_offline" yaml:"device_offline"`
	DeviceOnline  bool    `json:"device_online" yaml:"device_online"`
	LowUptime     bool    `json:"low_uptime" yaml:"low_uptime"`
	ScanFailed    bool    `json:"scan_failed" yaml:"scan_failed"`
}

// Enabled reports whether alerts of kind may be opened.
func (a AlertConfig) Enabled(kind AlertKind) bool {
	switch kind {
	case AlertKindOffline:
		return a.DeviceOffline
	case AlertKindRecovered:
		return a.DeviceOnline
	case AlertKindLowUptime:
		return a.LowUptime
	case AlertKindScanFailed:
		return a.ScanFailed
	default:
		return false
	}
}

type DatabaseConfig struct {
	Driver   string `json:"driver" yaml:"driver"`
	Path     string `json:"path" yaml:"path"`
	Host     string `json:"host" yaml:"host"`
	Port     int    `json:"port" yaml:"port"`
	Name     string `json:"name" yaml:"name"`
	Username string `json:"username" yaml:"username"`
	Password string `json:"password" yaml:"password" sensitive:"true"`
	SSLMode  string `json:"ssl_mode" yaml:"ssl_mode"`
	MaxConns int32  `json:"max_conns" yaml:"max_conns"`
	MinConns int32  `json:"min_conns" yaml:"min_conns"`

	TLS *TLSConfig `json:"tls,omitempty" yaml:"tls,omitempty"`
}

// TLSConfig enables mutual TLS towards PostgreSQL or NATS.
type TLSConfig struct {
	CertFile string `json:"cert_file" yaml:"cert_file"`
	KeyFile  string `json:"key_file" yaml:"key_file"`
	CAFile   string `json:"ca_file" yaml:"ca_file"`
}

type RetentionConfig struct {
	ObservationDays int `json:"observation_days" yaml:"observation_days"`
}

type ReportsConfig struct {
	Directory    string     `json:"directory" yaml:"directory"`
	AutoGenerate bool       `json:"auto_generate" yaml:"auto_generate"`
	Frequency    ReportType `json:"frequency" yaml:"frequency"`
	Format       string     `json:"format" yaml:"format"`
}

type EventsConfig struct {
	Enabled       bool   `json:"enabled" yaml:"enabled"`
	NATSURL       string `json:"nats_url" yaml:"nats_url"`
	StreamName    string `json:"stream_name" yaml:"stream_name"`
	SubjectPrefix string `json:"subject_prefix" yaml:"subject_prefix"`
	Domain        string `json:"domain,omitempty" yaml:"domain,omitempty"`

	TLS *TLSConfig `json:"tls,omitempty" yaml:"tls,omitempty"`
}

type NotifyConfig struct {
	Email EmailConfig `json:"email" yaml:"email"`
}

type EmailConfig struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	APIKey  string `json:"api_key" yaml:"api_key" sensitive:"true"`
	From    string `json:"from" yaml:"from"`
	To      string `json:"to" yaml:"to"`

	RateLimitPerHour int `json:"rate_limit_per_hour" yaml:"rate_limit_per_hour"`
}

// DefaultConfiguration mirrors the settings the dashboard ships with.
func DefaultConfiguration() Configuration {
	return Configuration{
		ListenAddr: ":8080",
		CORS:       CORSConfig{AllowedOrigins: []string{"*"}},
		Network: NetworkConfig{
			DefaultRange:        DefaultNetworkRange,
			ScanInterval:        5,
			ScanTimeout:         10,
			MaxRetries:          2,
			RegisterUnreachable: true,
			TCPFallbackPorts:    []int{80, 443, 22},
			SNMPHostname:        SNMPHostnameConfig{Community: "public", Port: 161},
		},
		Performance: PerformanceConfig{
			MaxConcurrentScans: 50,
			ScanBatchSize:      64,
			UptimeWindow:       100,
			DetailObservations: 20,
			StopGracePeriod:    10,
		},
		Alert: AlertConfig{
			Threshold:     85,
			DeviceOffline: true,
			DeviceOnline:  true,
			LowUptime:     true,
			ScanFailed:    false,
		},
		DeviceTypes: DefaultDeviceTypes(),
		Database: DatabaseConfig{
			Driver:   DatabaseSQLite,
			Path:     "centraldanone.db",
			Port:     5432,
			SSLMode:  "disable",
			MaxConns: 10,
		},
		Retention: RetentionConfig{ObservationDays: 30},
		Reports: ReportsConfig{
			Directory: "reports",
			Frequency: ReportDaily,
			Format:    string(ReportFormatHTML),
		},
		Events: EventsConfig{
			StreamName:    "danone-events",
			SubjectPrefix: "danone",
		},
		Notify: NotifyConfig{
			Email: EmailConfig{RateLimitPerHour: 30},
		},
		Logging: logger.DefaultConfig(),
	}
}

func (c *Configuration) ScanInterval() time.Duration {
	return time.Duration(c.Network.ScanInterval * float64(time.Minute))
}

func (c *Configuration) ProbeTimeout() time.Duration {
	return time.Duration(c.Network.ScanTimeout * float64(time.Second))
}

func (c *Configuration) StopGracePeriod() time.Duration {
	return time.Duration(c.Performance.StopGracePeriod * float64(time.Second))
}

// Validate implements config.Validator. Every failure is a *ConfigError.
func (c *Configuration) Validate() error {
	if _, err := ParseIPv4CIDR(c.Network.DefaultRange); err != nil {
		return &ConfigError{Field: "network.default_range", Reason: err.Error()}
	}

	checks := []struct {
		ok     bool
		field  string
		reason string
	}{
		{c.Network.ScanInterval > 0, "network.scan_interval", "must be > 0 minutes"},
		{c.Network.ScanTimeout > 0, "network.scan_timeout", "must be > 0 seconds"},
		{c.Network.MaxRetries >= 0, "network.max_retries", "must be >= 0"},
		{c.Performance.MaxConcurrentScans > 0, "performance.max_concurrent_scans", "must be > 0"},
		{c.Performance.ScanBatchSize > 0, "performance.scan_batch_size", "must be > 0"},
		{c.Performance.UptimeWindow > 0, "performance.uptime_window", "must be > 0"},
		{c.Performance.DetailObservations >= 0, "performance.detail_observations", "must be >= 0"},
		{c.Performance.StopGracePeriod >= 0, "performance.stop_grace_period", "must be >= 0"},
		{c.Alert.Threshold >= 0 && c.Alert.Threshold <= 100, "alert.threshold", "must be within [0, 100]"},
		{c.Retention.ObservationDays >= 0, "retention.observation_days", "must be >= 0"},
	}

	for _, check := range checks {
		if !check.ok {
			return &ConfigError{Field: check.field, Reason: check.reason}
		}
	}

	for _, port := range c.Network.TCPFallbackPorts {
		if port <= 0 || port > 65535 {
			return &ConfigError{Field: "network.tcp_fallback_ports", Reason: fmt.Sprintf("invalid port %d", port)}
		}
	}

	if err := c.validateDeviceTypes(); err != nil {
		return err
	}

	switch c.Database.Driver {
	case DatabaseSQLite:
		if c.Database.Path == "" {
			return &ConfigError{Field: "database.path", Reason: "required for sqlite"}
		}
	case DatabasePostgres:
		if c.Database.Host == "" || c.Database.Name == "" {
			return &ConfigError{Field: "database.host", Reason: "host and name are required for postgres"}
		}
	default:
		return &ConfigError{Field: "database.driver", Reason: fmt.Sprintf("unsupported driver %q", c.Database.Driver)}
	}

	switch c.Reports.Frequency {
	case ReportDaily, ReportWeekly, ReportMonthly:
	default:
		return &ConfigError{Field: "reports.frequency", Reason: fmt.Sprintf("unsupported frequency %q", c.Reports.Frequency)}
	}

	if c.Events.Enabled && (c.Events.NATSURL == "" || c.Events.StreamName == "") {
		return &ConfigError{Field: "events", Reason: "nats_url and stream_name are required when enabled"}
	}

	if c.Notify.Email.Enabled && (c.Notify.Email.APIKey == "" || c.Notify.Email.From == "" || c.Notify.Email.To == "") {
		return &ConfigError{Field: "notify.email", Reason: "api_key, from and to are required when enabled"}
	}

	return nil
}

func (c *Configuration) validateDeviceTypes() error {
	seen := make(map[DeviceType]struct{}, len(c.DeviceTypes))

	for _, rule := range c.DeviceTypes {
		if !rule.Tag.Valid() || rule.Tag == DeviceTypeUnknown {
			return &ConfigError{Field: "device_types", Reason: fmt.Sprintf("unknown device type %q", rule.Tag)}
		}

		if _, dup := seen[rule.Tag]; dup {
			return &ConfigError{Field: "device_types", Reason: fmt.Sprintf("duplicate device type %q", rule.Tag)}
		}

		seen[rule.Tag] = struct{}{}

		for _, kw := range rule.Keywords {
			if strings.TrimSpace(kw) == "" {
				return &ConfigError{Field: "device_types." + string(rule.Tag), Reason: "empty keyword"}
			}
		}
	}

	return nil
}

// ParseIPv4CIDR parses an IPv4 network in CIDR notation.
func ParseIPv4CIDR(cidr string) (*net.IPNet, error) {
	ip, ipNet, err := net.ParseCIDR(strings.TrimSpace(cidr))
	if err != nil {
		return nil, err
	}

	if ip.To4() == nil {
		return nil, fmt.Errorf("%w: %s", errNotIPv4, cidr)
	}

	return ipNet, nil
}
