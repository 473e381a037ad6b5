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
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/gosnmp/gosnmp"

	"github.com/carverauto/centraldanone/pkg/models"
)

// sysNameOID is SNMPv2-MIB::sysName.0.
const sysNameOID = ".1.3.6.1.2.1.1.5.0"

type sysNameFunc func(ctx context.Context, ip string) (string, error)

// DNSSNMPResolver resolves hostnames via reverse DNS and, when enabled, falls
// back to the SNMP sysName of the device.
type DNSSNMPResolver struct {
	resolver *net.Resolver
	timeout  time.Duration
	snmp     models.SNMPHostnameConfig
	sysName  sysNameFunc
}

var _ HostnameResolver = (*DNSSNMPResolver)(nil)

func NewHostnameResolver(snmp models.SNMPHostnameConfig, timeout time.Duration) *DNSSNMPResolver {
	r := &DNSSNMPResolver{
		resolver: net.DefaultResolver,
		timeout:  timeout,
		snmp:     snmp,
	}

	r.sysName = r.querySysName

	return r
}

// LookupHostname returns the first PTR name, or the SNMP sysName when no PTR
// record exists. An empty name with a nil error means nothing was found.
func (r *DNSSNMPResolver) LookupHostname(ctx context.Context, ip string) (string, error) {
	lookupCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	names, err := r.resolver.LookupAddr(lookupCtx, ip)
	if err == nil && len(names) > 0 {
		if name := normalizeHostname(names[0]); name != "" {
			return name, nil
		}
	}

	if ctx.Err() != nil {
		return "", ctx.Err()
	}

	if !r.snmp.Enabled {
		return "", err
	}

	name, snmpErr := r.sysName(ctx, ip)
	if snmpErr != nil {
		return "", snmpErr
	}

	return normalizeHostname(name), nil
}

func (r *DNSSNMPResolver) querySysName(ctx context.Context, ip string) (string, error) {
	port := r.snmp.Port
	if port == 0 {
		port = 161
	}

	conn := &gosnmp.GoSNMP{
		Target:    ip,
		Port:      port,
		Community: r.snmp.Community,
		Version:   gosnmp.Version2c,
		Timeout:   r.timeout,
		Retries:   0,
		Context:   ctx,
	}

	if err := conn.Connect(); err != nil {
		return "", fmt.Errorf("snmp connect %s: %w", ip, err)
	}

	defer func() { _ = conn.Conn.Close() }()

	packet, err := conn.Get([]string{sysNameOID})
	if err != nil {
		return "", fmt.Errorf("snmp get sysName %s: %w", ip, err)
	}

	for _, variable := range packet.Variables {
		if variable.Type != gosnmp.OctetString {
			continue
		}

		if raw, ok := variable.Value.([]byte); ok && len(raw) > 0 {
			return string(raw), nil
		}
	}

	return "", ErrSNMPNoSysName
}

func normalizeHostname(name string) string {
	return strings.TrimSuffix(strings.TrimSpace(name), ".")
}
