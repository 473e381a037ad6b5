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
	"strings"

	"github.com/carverauto/centraldanone/pkg/models"
)

// ouiVendors maps the first three octets of a MAC address to its vendor.
var ouiVendors = map[string]string{
	"00:00:0C": "Cisco",
	"00:90:F5": "Cisco",
	"00:1F:45": "Netgear",
	"28:C6:8E": "TP-Link",
	"00:05:5D": "D-Link",
	"00:00:85": "Canon",
	"00:00:48": "Epson",
	"00:80:77": "Brother",
	"00:00:AA": "Xerox",
	"00:03:93": "Apple",
	"00:1E:C2": "Apple",
	"F4:F2:6D": "Samsung",
	"00:E0:FC": "Huawei",
	"00:0E:8C": "Siemens",
	"00:80:F4": "Schneider Electric",
	"00:00:5E": "IANA",
	"00:50:56": "VMware",
	"00:0C:29": "VMware",
	"08:00:27": "Oracle VirtualBox",
	"00:1B:21": "Intel",
	"00:E0:4C": "Realtek",
	"B8:27:EB": "Raspberry Pi",
	"DC:A6:32": "Raspberry Pi",
}

// vendorRules is walked in order; the first keyword contained in the
// normalised vendor name decides the tag.
var vendorRules = []struct {
	tag      models.DeviceType
	keywords []string
}{
	{models.DeviceTypeSwitch, []string{"cisco", "netgear", "tplink", "dlink"}},
	{models.DeviceTypePrinter, []string{"hp", "canon", "epson", "brother", "xerox", "ricoh"}},
	{models.DeviceTypePhone, []string{"apple", "samsung", "huawei", "xiaomi", "oneplus"}},
	{models.DeviceTypeAutomation, []string{"siemens", "schneider", "abb", "mitsubishi"}},
}

// VendorForMAC returns the vendor registered for the MAC's OUI, or "".
func VendorForMAC(mac string) string {
	oui, ok := normalizeOUI(mac)
	if !ok {
		return ""
	}

	return ouiVendors[oui]
}

// TypeForVendor maps a vendor name onto a device tag.
func TypeForVendor(vendor string) models.DeviceType {
	name := strings.ToLower(vendor)
	name = strings.NewReplacer("-", "", " ", "", "_", "").Replace(name)

	if name == "" {
		return models.DeviceTypeUnknown
	}

	for _, rule := range vendorRules {
		for _, kw := range rule.keywords {
			if strings.Contains(name, kw) {
				return rule.tag
			}
		}
	}

	return models.DeviceTypeUnknown
}

// normalizeOUI accepts colon, dash, dot or bare hex notation.
func normalizeOUI(mac string) (string, bool) {
	hex := strings.Map(func(r rune) rune {
		switch {
		case r >= '0' && r <= '9', r >= 'A' && r <= 'F':
			return r
		case r >= 'a' && r <= 'f':
			return r - 'a' + 'A'
		case r == ':' || r == '-' || r == '.':
			return -1
		default:
			return '!'
		}
	}, mac)

	if len(hex) != 12 || strings.ContainsRune(hex, '!') {
		return "", false
	}

	return hex[0:2] + ":" + hex[2:4] + ":" + hex[4:6], true
}
