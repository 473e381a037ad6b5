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
	"fmt"
	"net"
)

// MaxRangeHosts bounds how many addresses a single run may enumerate (a /16).
const MaxRangeHosts = 1 << 16

// ExpandCIDR expands an IPv4 CIDR into its host addresses in ascending order.
// Network and broadcast addresses are skipped for everything but a /32, so a
// /31 yields no hosts.
func ExpandCIDR(cidr string) ([]string, error) {
	baseIP, ipnet, err := net.ParseCIDR(cidr)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRange, err)
	}

	base4 := baseIP.To4()
	if base4 == nil {
		return nil, fmt.Errorf("%w: %s is not IPv4", ErrInvalidRange, cidr)
	}

	ones, bits := ipnet.Mask.Size()
	if bits != 32 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidRange, cidr)
	}

	if 32-ones > 16 {
		return nil, fmt.Errorf("%w: %s", ErrRangeTooLarge, cidr)
	}

	network := base4.Mask(ipnet.Mask)

	if ones == 32 {
		return []string{network.String()}, nil
	}

	ips := make([]string, 0, hostCount(ones))

	for currentIP := dup(network); ipnet.Contains(currentIP); incIP(currentIP) {
		if currentIP.Equal(network) || isBroadcast(currentIP, network, ipnet.Mask) {
			continue
		}

		ips = append(ips, currentIP.String())
	}

	return ips, nil
}

// CountHosts returns how many probes ExpandCIDR would produce without
// allocating the list.
func CountHosts(cidr string) (int, error) {
	_, ipnet, err := net.ParseCIDR(cidr)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidRange, err)
	}

	ones, bits := ipnet.Mask.Size()
	if bits != 32 {
		return 0, fmt.Errorf("%w: %s", ErrInvalidRange, cidr)
	}

	if 32-ones > 16 {
		return 0, fmt.Errorf("%w: %s", ErrRangeTooLarge, cidr)
	}

	return hostCount(ones), nil
}

func hostCount(ones int) int {
	switch {
	case ones == 32:
		return 1
	case ones == 31:
		return 0
	default:
		return (1 << (32 - ones)) - 2
	}
}

func dup(ip net.IP) net.IP {
	out := make(net.IP, len(ip))
	copy(out, ip)

	return out
}

// incIP increments an IP address in place.
func incIP(ip net.IP) {
	for i := len(ip) - 1; i >= 0; i-- {
		ip[i]++
		if ip[i] != 0 {
			break
		}
	}
}

func isBroadcast(ip, network net.IP, mask net.IPMask) bool {
	broadcast := make(net.IP, len(network))
	for i := range network {
		broadcast[i] = network[i] | ^mask[i]
	}

	return ip.Equal(broadcast)
}
