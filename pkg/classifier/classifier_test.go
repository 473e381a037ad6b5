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

package classifier

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/carverauto/centraldanone/pkg/models"
)

func TestClassifyHostnameDefaults(t *testing.T) {
	c := New(models.DefaultDeviceTypes())

	tests := []struct {
		hostname string
		want     models.DeviceType
	}{
		{"ROUTER-main", models.DeviceTypeRouter},
		{"fw-gateway", models.DeviceTypeRouter},
		{"srv-files", models.DeviceTypeServer},
		{"HP-LaserJet-4", models.DeviceTypePrinter},
		{"desktop-ab12", models.DeviceTypeWorkstation},
		{"core-switch", models.DeviceTypeSwitch},
		{"cam-entrance", models.DeviceTypeCamera},
		{"voip-phone-12", models.DeviceTypePhone},
		{"plc-line3", models.DeviceTypeAutomation},
		{"mystery-box", models.DeviceTypeUnknown},
		{"", models.DeviceTypeUnknown},
		{"   ", models.DeviceTypeUnknown},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.hostname, func(t *testing.T) {
			assert.Equal(t, tt.want, c.ClassifyHostname(tt.hostname))
		})
	}
}

func TestClassifyHostnameDeclarationOrderWins(t *testing.T) {
	c := New(models.DefaultDeviceTypes())

	// "printserver" matches both server and printer keywords.
	assert.Equal(t, models.DeviceTypeServer, c.ClassifyHostname("printserver"))

	reordered := New(models.DeviceTypes{
		{Tag: models.DeviceTypePrinter, Keywords: []string{"print"}},
		{Tag: models.DeviceTypeServer, Keywords: []string{"server"}},
	})

	assert.Equal(t, models.DeviceTypePrinter, reordered.ClassifyHostname("printserver"))
}

func TestNewNormalisesKeywords(t *testing.T) {
	c := New(models.DeviceTypes{
		{Tag: models.DeviceTypeCamera, Keywords: []string{" IPCAM ", ""}},
	})

	assert.Equal(t, models.DeviceTypeCamera, c.ClassifyHostname("lobby-ipcam"))
	assert.Equal(t, models.DeviceTypeUnknown, c.ClassifyHostname("lobby"))
}

func TestClassifyFallsBackToVendor(t *testing.T) {
	c := New(models.DefaultDeviceTypes())

	tests := []struct {
		name       string
		hostname   string
		mac        string
		wantType   models.DeviceType
		wantVendor string
	}{
		{"cisco without hostname", "", "00:90:f5:01:02:03", models.DeviceTypeSwitch, "Cisco"},
		{"tp-link dashed", "", "28-C6-8E-11-22-33", models.DeviceTypeSwitch, "TP-Link"},
		{"samsung phone", "", "f4f2.6d00.0001", models.DeviceTypePhone, "Samsung"},
		{"schneider plc", "unknown-host", "00:80:F4:00:00:01", models.DeviceTypeAutomation, "Schneider Electric"},
		{"hostname wins", "srv-01", "00:90:F5:01:02:03", models.DeviceTypeServer, "Cisco"},
		{"vendor without rule", "", "B8:27:EB:00:00:01", models.DeviceTypeUnknown, "Raspberry Pi"},
		{"unknown oui", "", "02:00:00:00:00:01", models.DeviceTypeUnknown, ""},
		{"no mac", "", "", models.DeviceTypeUnknown, ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			got := c.Classify(tt.hostname, tt.mac)

			assert.Equal(t, tt.wantType, got.DeviceType)
			assert.Equal(t, tt.wantVendor, got.MACVendor)
		})
	}
}

func TestTypeForVendor(t *testing.T) {
	assert.Equal(t, models.DeviceTypeSwitch, TypeForVendor("D-Link Corporation"))
	assert.Equal(t, models.DeviceTypePrinter, TypeForVendor("Ricoh Company"))
	assert.Equal(t, models.DeviceTypePhone, TypeForVendor("Xiaomi Communications"))
	assert.Equal(t, models.DeviceTypeAutomation, TypeForVendor("Mitsubishi Electric"))
	assert.Equal(t, models.DeviceTypeUnknown, TypeForVendor("VMware"))
	assert.Equal(t, models.DeviceTypeUnknown, TypeForVendor(""))
}

func TestVendorForMACRejectsMalformed(t *testing.T) {
	assert.Empty(t, VendorForMAC("00:90:F5"))
	assert.Empty(t, VendorForMAC("zz:90:F5:01:02:03"))
}

func TestClassifierConcurrentUse(t *testing.T) {
	c := New(models.DefaultDeviceTypes())

	var wg sync.WaitGroup

	for i := 0; i < 16; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			assert.Equal(t, models.DeviceTypeRouter, c.ClassifyHostname("router-1"))
		}()
	}

	wg.Wait()
}
