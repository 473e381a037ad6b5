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

	"github.com/j-keck/arping"
)

type arpingFunc func(ip net.IP) (net.HardwareAddr, error)

// ARPResolver looks up MAC addresses with an ARP request. It only works for
// hosts on a directly attached segment and usually needs raw socket rights.
type ARPResolver struct {
	ping arpingFunc
}

var _ MACResolver = (*ARPResolver)(nil)

func NewARPResolver() *ARPResolver {
	return &ARPResolver{ping: func(ip net.IP) (net.HardwareAddr, error) {
		mac, _, err := arping.Ping(ip)

		return mac, err
	}}
}

// LookupMAC returns the address in lowercase colon notation.
func (a *ARPResolver) LookupMAC(ctx context.Context, ip string) (string, error) {
	target := net.ParseIP(ip).To4()
	if target == nil {
		return "", fmt.Errorf("%w: %s", ErrInvalidTarget, ip)
	}

	type reply struct {
		mac net.HardwareAddr
		err error
	}

	done := make(chan reply, 1)

	go func() {
		mac, err := a.ping(target)
		done <- reply{mac: mac, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-done:
		if r.err != nil {
			return "", fmt.Errorf("arping %s: %w", ip, r.err)
		}

		return r.mac.String(), nil
	}
}
