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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestARPResolverLookupMAC(t *testing.T) {
	hw, err := net.ParseMAC("00:90:F5:AA:BB:CC")
	require.NoError(t, err)

	r := &ARPResolver{ping: func(ip net.IP) (net.HardwareAddr, error) {
		assert.Equal(t, "192.168.1.20", ip.String())

		return hw, nil
	}}

	mac, err := r.LookupMAC(context.Background(), "192.168.1.20")

	require.NoError(t, err)
	assert.Equal(t, "00:90:f5:aa:bb:cc", mac)
}

func TestARPResolverErrors(t *testing.T) {
	r := &ARPResolver{ping: func(net.IP) (net.HardwareAddr, error) {
		return nil, errors.New("timeout")
	}}

	_, err := r.LookupMAC(context.Background(), "192.168.1.20")
	require.Error(t, err)

	_, err = r.LookupMAC(context.Background(), "bogus")
	require.ErrorIs(t, err, ErrInvalidTarget)
}

func TestARPResolverHonoursContext(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	r := &ARPResolver{ping: func(net.IP) (net.HardwareAddr, error) {
		<-release

		return nil, nil
	}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.LookupMAC(ctx, "192.168.1.20")
	require.ErrorIs(t, err, context.Canceled)
}
