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
	"fmt"
	"net"
	"os"
	"strconv"
	"syscall"
	"time"

	"github.com/go-ping/ping"

	"github.com/carverauto/centraldanone/pkg/logger"
	"github.com/carverauto/centraldanone/pkg/models"
)

const (
	MethodICMP = "icmp"
	MethodTCP  = "tcp"

	defaultTimeout = 10 * time.Second
)

// Config controls how a HostProber reaches a host.
type Config struct {
	Timeout    time.Duration
	Retries    int
	TCPPorts   []int
	ResolveMAC bool
	SNMP       models.SNMPHostnameConfig
}

// ConfigFromSettings derives the probe settings from the engine configuration.
func ConfigFromSettings(cfg *models.Configuration) Config {
	return Config{
		Timeout:    cfg.ProbeTimeout(),
		Retries:    cfg.Network.MaxRetries,
		TCPPorts:   append([]int(nil), cfg.Network.TCPFallbackPorts...),
		ResolveMAC: cfg.Network.ResolveMAC,
		SNMP:       cfg.Network.SNMPHostname,
	}
}

type (
	echoFunc func(ctx context.Context, ip string, timeout time.Duration, privileged bool) (time.Duration, error)
	dialFunc func(ctx context.Context, network, address string) (net.Conn, error)
)

// HostProber probes with ICMP echo and falls back to TCP connects when ICMP
// is not permitted.
type HostProber struct {
	cfg        Config
	privileged bool
	logger     logger.Logger
	echo       echoFunc
	dial       dialFunc
	hostnames  HostnameResolver
	macs       MACResolver
	now        func() time.Time
}

var _ Prober = (*HostProber)(nil)

// NewHostProber builds a prober. Raw socket capability is detected once.
func NewHostProber(cfg Config, log logger.Logger) *HostProber {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	if cfg.Retries < 0 {
		cfg.Retries = 0
	}

	var dialer net.Dialer

	p := &HostProber{
		cfg:        cfg,
		privileged: os.Geteuid() == 0 || CanUseRawSocket(),
		logger:     log,
		echo:       icmpEcho,
		dial:       dialer.DialContext,
		hostnames:  NewHostnameResolver(cfg.SNMP, cfg.Timeout),
		now:        time.Now,
	}

	if cfg.ResolveMAC {
		p.macs = NewARPResolver()
	}

	return p
}

// Privileged reports whether ICMP runs over raw sockets.
func (p *HostProber) Privileged() bool {
	return p.privileged
}

// Probe implements Prober.
func (p *HostProber) Probe(ctx context.Context, ip string) models.ProbeResult {
	result := models.ProbeResult{IP: ip}

	if parsed := net.ParseIP(ip); parsed == nil || parsed.To4() == nil {
		kind := models.ErrorKindResolutionFailed
		result.ErrorKind = &kind
		result.Timestamp = p.now()

		return result
	}

	rtt, method, err := p.reach(ctx, ip)
	result.Method = method
	result.Timestamp = p.now()

	if err != nil {
		kind := ClassifyError(err)
		result.ErrorKind = &kind

		p.logger.Debug().
			Str("ip", ip).
			Str("method", method).
			Str("error_kind", string(kind)).
			Err(err).
			Msg("Probe failed")

		return result
	}

	ms := float64(rtt.Microseconds()) / 1000
	result.Reachable = true
	result.ResponseTimeMs = &ms

	result.Hostname = p.lookupHostname(ctx, ip)

	if p.macs != nil {
		result.MAC = p.lookupMAC(ctx, ip)
	}

	return result
}

func (p *HostProber) reach(ctx context.Context, ip string) (time.Duration, string, error) {
	rtt, err := p.echoWithRetries(ctx, ip)
	if err == nil {
		return rtt, MethodICMP, nil
	}

	if !errors.Is(err, ErrICMPNotPermitted) {
		return 0, MethodICMP, err
	}

	if len(p.cfg.TCPPorts) == 0 {
		return 0, MethodICMP, err
	}

	rtt, err = p.connect(ctx, ip)

	return rtt, MethodTCP, err
}

func (p *HostProber) echoWithRetries(ctx context.Context, ip string) (time.Duration, error) {
	var lastErr error

	for attempt := 0; attempt <= p.cfg.Retries; attempt++ {
		if err := ctx.Err(); err != nil {
			return 0, err
		}

		rtt, err := p.echo(ctx, ip, p.cfg.Timeout, p.privileged)
		if err == nil && rtt >= p.cfg.Timeout {
			err = fmt.Errorf("%w: round trip %s", ErrProbeTimedOut, rtt)
		}

		if err == nil {
			return rtt, nil
		}

		lastErr = err

		if !retryable(err) {
			break
		}
	}

	return 0, lastErr
}

// connect tries each fallback port in order. A refused connection proves the
// host is up.
func (p *HostProber) connect(ctx context.Context, ip string) (time.Duration, error) {
	var lastErr error

	for _, port := range p.cfg.TCPPorts {
		rtt, err := p.checkPort(ctx, ip, port)
		if err == nil {
			return rtt, nil
		}

		if errors.Is(err, errConnectionRefused) {
			return rtt, nil
		}

		lastErr = err

		if ctx.Err() != nil {
			return 0, ctx.Err()
		}
	}

	if lastErr == nil {
		lastErr = ErrNoFallbackPorts
	}

	return 0, lastErr
}

func (p *HostProber) checkPort(ctx context.Context, host string, port int) (time.Duration, error) {
	probeCtx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()

	start := time.Now()

	conn, err := p.dial(probeCtx, "tcp", net.JoinHostPort(host, strconv.Itoa(port)))
	rtt := time.Since(start)

	if err != nil {
		if errors.Is(err, syscall.ECONNREFUSED) {
			return rtt, errConnectionRefused
		}

		if probeCtx.Err() != nil && ctx.Err() == nil {
			return rtt, fmt.Errorf("%w: tcp/%d", ErrProbeTimedOut, port)
		}

		return rtt, err
	}

	if err := conn.Close(); err != nil {
		p.logger.Debug().Err(err).Str("ip", host).Int("port", port).Msg("Failed to close probe connection")
	}

	if rtt >= p.cfg.Timeout {
		return rtt, fmt.Errorf("%w: tcp/%d round trip %s", ErrProbeTimedOut, port, rtt)
	}

	return rtt, nil
}

func (p *HostProber) lookupHostname(ctx context.Context, ip string) string {
	if p.hostnames == nil {
		return ""
	}

	name, err := p.hostnames.LookupHostname(ctx, ip)
	if err != nil {
		p.logger.Debug().Err(err).Str("ip", ip).Msg("Hostname lookup failed")

		return ""
	}

	return name
}

func (p *HostProber) lookupMAC(ctx context.Context, ip string) string {
	mac, err := p.macs.LookupMAC(ctx, ip)
	if err != nil {
		p.logger.Debug().Err(err).Str("ip", ip).Msg("MAC lookup failed")

		return ""
	}

	return mac
}

// icmpEcho sends one echo request with go-ping and returns the first RTT.
func icmpEcho(ctx context.Context, ip string, timeout time.Duration, privileged bool) (time.Duration, error) {
	pinger, err := ping.NewPinger(ip)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidTarget, err)
	}

	pinger.Count = 1
	pinger.Timeout = timeout
	pinger.SetPrivileged(privileged)

	done := make(chan error, 1)

	go func() {
		done <- pinger.Run()
	}()

	select {
	case <-ctx.Done():
		pinger.Stop()
		<-done

		return 0, ctx.Err()
	case err := <-done:
		if err != nil {
			if isPermissionError(err) {
				return 0, fmt.Errorf("%w: %w", ErrICMPNotPermitted, err)
			}

			return 0, err
		}
	}

	stats := pinger.Statistics()
	if stats.PacketsRecv == 0 || len(stats.Rtts) == 0 {
		return 0, ErrProbeTimedOut
	}

	return stats.Rtts[0], nil
}

func isPermissionError(err error) bool {
	return errors.Is(err, os.ErrPermission) ||
		errors.Is(err, syscall.EPERM) ||
		errors.Is(err, syscall.EACCES) ||
		errors.Is(err, syscall.EPROTONOSUPPORT)
}

func retryable(err error) bool {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return false
	case errors.Is(err, ErrICMPNotPermitted), errors.Is(err, ErrInvalidTarget):
		return false
	default:
		return true
	}
}

// ClassifyError maps a probe failure onto the error kinds recorded in
// observations.
func ClassifyError(err error) models.ErrorKind {
	var dnsErr *net.DNSError

	var netErr net.Error

	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrICMPNotPermitted), isPermissionError(err):
		return models.ErrorKindPermissionDenied
	case errors.Is(err, ErrInvalidTarget), errors.As(err, &dnsErr):
		return models.ErrorKindResolutionFailed
	case errors.Is(err, ErrProbeTimedOut), errors.Is(err, context.DeadlineExceeded):
		return models.ErrorKindTimeout
	case errors.Is(err, ErrHostUnreachable),
		errors.Is(err, syscall.EHOSTUNREACH),
		errors.Is(err, syscall.ENETUNREACH):
		return models.ErrorKindUnreachable
	case errors.As(err, &netErr) && netErr.Timeout():
		return models.ErrorKindTimeout
	default:
		return models.ErrorKindOther
	}
}
