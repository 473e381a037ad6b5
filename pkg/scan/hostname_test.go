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
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/centraldanone/pkg/models"
)

func failingResolver() *net.Resolver {
	return &net.Resolver{
		PreferGo: true,
		Dial: func(context.Context, string, string) (net.Conn, error) {
			return nil, errors.New("dns disabled in tests")
		},
	}
}

func TestLookupHostnameFallsBackToSysName(t *testing.T) {
	r := NewHostnameResolver(models.SNMPHostnameConfig{Enabled: true, Community: "public"}, time.Second)
	r.resolver = failingResolver()
	r.sysName = func(_ context.Context, ip string) (string, error) {
		assert.Equal(t, "10.0.0.9", ip)

		return " plc-line3 ", nil
	}

	name, err := r.LookupHostname(context.Background(), "10.0.0.9")

	require.NoError(t, err)
	assert.Equal(t, "plc-line3", name)
}

func TestLookupHostnameWithoutSNMP(t *testing.T) {
	r := NewHostnameResolver(models.SNMPHostnameConfig{}, time.Second)
	r.resolver = failingResolver()
	r.sysName = func(context.Context, string) (string, error) {
		t.Fatal("sysName must not be queried when disabled")

		return "", nil
	}

	name, err := r.LookupHostname(context.Background(), "10.0.0.9")

	assert.Error(t, err)
	assert.Empty(t, name)
}

func TestLookupHostnameSNMPError(t *testing.T) {
	r := NewHostnameResolver(models.SNMPHostnameConfig{Enabled: true}, time.Second)
	r.resolver = failingResolver()
	r.sysName = func(context.Context, string) (string, error) {
		return "", ErrSNMPNoSysName
	}

	_, err := r.LookupHostname(context.Background(), "10.0.0.9")

	require.ErrorIs(t, err, ErrSNMPNoSysName)
}

func TestNormalizeHostname(t *testing.T) {
	assert.Equal(t, "router.lan", normalizeHostname("router.lan."))
	assert.Equal(t, "pc-01", normalizeHostname("  pc-01 "))
	assert.Empty(t, normalizeHostname("."))
}
