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

import (
	"context"
	"errors"
	"net"
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/carverauto/centraldanone/pkg/logger"
	"github.com/carverauto/centraldanone/pkg/models"
)

var probeTime = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestProber(cfg Config) *HostProber {
	if cfg.Timeout == 0 {
		cfg.Timeout = time.Second
	}

	return &HostProber{
		cfg:    cfg,
		logger: logger.NewTestLogger(),
		now:    func() time.Time { return probeTime },
		dial: func(context.Context, string, string) (net.Conn, error) {
			return nil, errors.New("dial not expected")
		},
	}
}

func refused() error {
	return &net.OpError{Op: "dial", Net: "tcp", Err: &os.SyscallError{Syscall: "connect", Err: syscall.ECONNREFUSED}}
}

func TestProbeICMPSuccess(t *testing.T) {
	ctrl := gomock.NewController(t)
	hostnames := NewMockHostnameResolver(ctrl)

	p := newTestProber(Config{Retries: 2})
	p.hostnames = hostnames
	p.echo = func(context.Context, string, time.Duration, bool) (time.Duration, error) {
		return 5 * time.Millisecond, nil
	}

	hostnames.EXPECT().LookupHostname(gomock.Any(), "192.168.1.10").Return("srv-files", nil)

	result := p.Probe(context.Background(), "192.168.1.10")

	require.True(t, result.Reachable)
	require.NotNil(t, result.ResponseTimeMs)
	assert.InDelta(t, 5.0, *result.ResponseTimeMs, 0.001)
	assert.Equal(t, "srv-files", result.Hostname)
	assert.Equal(t, MethodICMP, result.Method)
	assert.Nil(t, result.ErrorKind)
	assert.Equal(t, probeTime, result.Timestamp)
}

func TestProbeRetriesUntilSuccess(t *testing.T) {
	calls := 0

	p := newTestProber(Config{Retries: 2})
	p.echo = func(context.Context, string, time.Duration, bool) (time.Duration, error) {
		calls++
		if calls < 3 {
			return 0, ErrProbeTimedOut
		}

		return 2 * time.Millisecond, nil
	}

	result := p.Probe(context.Background(), "10.0.0.1")

	assert.True(t, result.Reachable)
	assert.Equal(t, 3, calls)
}

func TestProbeRetriesExhausted(t *testing.T) {
	calls := 0

	p := newTestProber(Config{Retries: 2})
	p.echo = func(context.Context, string, time.Duration, bool) (time.Duration, error) {
		calls++

		return 0, ErrProbeTimedOut
	}

	result := p.Probe(context.Background(), "10.0.0.1")

	assert.False(t, result.Reachable)
	assert.Nil(t, result.ResponseTimeMs)
	require.NotNil(t, result.ErrorKind)
	assert.Equal(t, models.ErrorKindTimeout, *result.ErrorKind)
	assert.Equal(t, 3, calls)
}

func TestProbeRoundTripEqualToTimeoutFails(t *testing.T) {
	p := newTestProber(Config{Timeout: 100 * time.Millisecond})
	p.echo = func(_ context.Context, _ string, timeout time.Duration, _ bool) (time.Duration, error) {
		return timeout, nil
	}

	result := p.Probe(context.Background(), "10.0.0.1")

	assert.False(t, result.Reachable)
	require.NotNil(t, result.ErrorKind)
	assert.Equal(t, models.ErrorKindTimeout, *result.ErrorKind)
}

func TestProbeFallsBackToTCPWhenICMPDenied(t *testing.T) {
	var dialed []string

	p := newTestProber(Config{Retries: 2, TCPPorts: []int{80, 443, 22}})
	p.echo = func(context.Context, string, time.Duration, bool) (time.Duration, error) {
		return 0, ErrICMPNotPermitted
	}
	p.dial = func(_ context.Context, _, address string) (net.Conn, error) {
		dialed = append(dialed, address)
		if address == "10.0.0.5:80" {
			return nil, errors.New("i/o timeout")
		}

		return nil, refused()
	}

	result := p.Probe(context.Background(), "10.0.0.5")

	assert.True(t, result.Reachable)
	assert.Equal(t, MethodTCP, result.Method)
	assert.Equal(t, []string{"10.0.0.5:80", "10.0.0.5:443"}, dialed)
}

func TestProbeTCPHandshake(t *testing.T) {
	p := newTestProber(Config{TCPPorts: []int{22}})
	p.echo = func(context.Context, string, time.Duration, bool) (time.Duration, error) {
		return 0, ErrICMPNotPermitted
	}
	p.dial = func(context.Context, string, string) (net.Conn, error) {
		client, server := net.Pipe()
		_ = server.Close()

		return client, nil
	}

	result := p.Probe(context.Background(), "10.0.0.6")

	assert.True(t, result.Reachable)
	assert.Equal(t, MethodTCP, result.Method)
}

func TestProbePermissionDeniedWithoutFallback(t *testing.T) {
	calls := 0

	p := newTestProber(Config{Retries: 3})
	p.echo = func(context.Context, string, time.Duration, bool) (time.Duration, error) {
		calls++

		return 0, ErrICMPNotPermitted
	}

	result := p.Probe(context.Background(), "10.0.0.1")

	assert.False(t, result.Reachable)
	require.NotNil(t, result.ErrorKind)
	assert.Equal(t, models.ErrorKindPermissionDenied, *result.ErrorKind)
	assert.Equal(t, 1, calls, "permission errors are not retried")
}

func TestProbeFallbackAllPortsUnreachable(t *testing.T) {
	p := newTestProber(Config{TCPPorts: []int{80, 443}})
	p.echo = func(context.Context, string, time.Duration, bool) (time.Duration, error) {
		return 0, ErrICMPNotPermitted
	}
	p.dial = func(context.Context, string, string) (net.Conn, error) {
		return nil, &net.OpError{Op: "dial", Net: "tcp", Err: &os.SyscallError{Syscall: "connect", Err: syscall.EHOSTUNREACH}}
	}

	result := p.Probe(context.Background(), "10.0.0.7")

	assert.False(t, result.Reachable)
	require.NotNil(t, result.ErrorKind)
	assert.Equal(t, models.ErrorKindUnreachable, *result.ErrorKind)
}

func TestProbeInvalidTarget(t *testing.T) {
	p := newTestProber(Config{})
	p.echo = func(context.Context, string, time.Duration, bool) (time.Duration, error) {
		t.Fatal("echo must not run for an invalid target")

		return 0, nil
	}

	for _, ip := range []string{"not-an-ip", "fe80::1", ""} {
		result := p.Probe(context.Background(), ip)

		assert.False(t, result.Reachable, ip)
		require.NotNil(t, result.ErrorKind, ip)
		assert.Equal(t, models.ErrorKindResolutionFailed, *result.ErrorKind, ip)
	}
}

func TestProbeCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := newTestProber(Config{Retries: 2})
	p.echo = func(context.Context, string, time.Duration, bool) (time.Duration, error) {
		t.Fatal("echo must not run once the context is cancelled")

		return 0, nil
	}

	result := p.Probe(ctx, "10.0.0.1")

	assert.False(t, result.Reachable)
	require.NotNil(t, result.ErrorKind)
}

func TestProbeResolvesMACAndIgnoresHostnameFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	hostnames := NewMockHostnameResolver(ctrl)
	macs := NewMockMACResolver(ctrl)

	p := newTestProber(Config{ResolveMAC: true})
	p.hostnames = hostnames
	p.macs = macs
	p.echo = func(context.Context, string, time.Duration, bool) (time.Duration, error) {
		return time.Millisecond, nil
	}

	hostnames.EXPECT().LookupHostname(gomock.Any(), "10.0.0.8").Return("", errors.New("no PTR"))
	macs.EXPECT().LookupMAC(gomock.Any(), "10.0.0.8").Return("00:90:f5:01:02:03", nil)

	result := p.Probe(context.Background(), "10.0.0.8")

	assert.True(t, result.Reachable)
	assert.Empty(t, result.Hostname)
	assert.Equal(t, "00:90:f5:01:02:03", result.MAC)
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want models.ErrorKind
	}{
		{"permission", ErrICMPNotPermitted, models.ErrorKindPermissionDenied},
		{"eperm", &os.SyscallError{Syscall: "socket", Err: syscall.EPERM}, models.ErrorKindPermissionDenied},
		{"timeout", ErrProbeTimedOut, models.ErrorKindTimeout},
		{"deadline", context.DeadlineExceeded, models.ErrorKindTimeout},
		{"dns", &net.DNSError{Err: "no such host", Name: "x"}, models.ErrorKindResolutionFailed},
		{"invalid", ErrInvalidTarget, models.ErrorKindResolutionFailed},
		{"unreachable", ErrHostUnreachable, models.ErrorKindUnreachable},
		{"net unreachable", syscall.ENETUNREACH, models.ErrorKindUnreachable},
		{"other", errors.New("boom"), models.ErrorKindOther},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyError(tt.err))
		})
	}
}

func TestConfigFromSettings(t *testing.T) {
	settings := models.DefaultConfiguration()
	settings.Network.ScanTimeout = 2.5

	cfg := ConfigFromSettings(&settings)

	assert.Equal(t, 2500*time.Millisecond, cfg.Timeout)
	assert.Equal(t, 2, cfg.Retries)
	assert.Equal(t, []int{80, 443, 22}, cfg.TCPPorts)
	assert.Equal(t, uint16(161), cfg.SNMP.Port)
}
