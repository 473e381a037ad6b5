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
	"slices"

	psnet "github.com/shirou/gopsutil/v3/net"
	"golang.org/x/net/icmp"
)

// CanUseRawSocket reports whether the process may open raw ICMP sockets.
func CanUseRawSocket() bool {
	conn, err := icmp.ListenPacket("ip4:icmp", "0.0.0.0")
	if err != nil {
		return false
	}

	_ = conn.Close()

	return true
}

type interfaceLister func(ctx context.Context) (psnet.InterfaceStatList, error)

// InterfaceChecker verifies that the host has a usable network interface
// before a scan starts.
type InterfaceChecker struct {
	list interfaceLister
}

func NewInterfaceChecker() *InterfaceChecker {
	return &InterfaceChecker{list: psnet.InterfacesWithContext}
}

// Check returns ErrNoSuitableIface unless at least one non-loopback
// interface is up.
func (c *InterfaceChecker) Check(ctx context.Context) error {
	ifaces, err := c.list(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrNoSuitableIface, err)
	}

	for _, iface := range ifaces {
		if slices.Contains(iface.Flags, "up") && !slices.Contains(iface.Flags, "loopback") {
			return nil
		}
	}

	return ErrNoSuitableIface
}
