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

// Package classifier assigns device-type tags from hostnames and MAC vendors.
package classifier

import (
	"strings"

	"github.com/carverauto/centraldanone/pkg/models"
)

// Classifier walks an ordered keyword dictionary. It holds no mutable state
// and is safe for concurrent use.
type Classifier struct {
	rules models.DeviceTypes
}

// Result is the outcome of classifying one host.
type Result struct {
	DeviceType models.DeviceType
	MACVendor  string
}

func New(rules models.DeviceTypes) *Classifier {
	normalized := make(models.DeviceTypes, 0, len(rules))

	for _, rule := range rules {
		keywords := make([]string, 0, len(rule.Keywords))

		for _, kw := range rule.Keywords {
			if kw = strings.ToLower(strings.TrimSpace(kw)); kw != "" {
				keywords = append(keywords, kw)
			}
		}

		normalized = append(normalized, models.DeviceTypeRule{Tag: rule.Tag, Keywords: keywords})
	}

	return &Classifier{rules: normalized}
}

// ClassifyHostname returns the first tag in declaration order with a keyword
// that is a substring of the lowercased hostname.
func (c *Classifier) ClassifyHostname(hostname string) models.DeviceType {
	name := strings.ToLower(strings.TrimSpace(hostname))
	if name == "" {
		return models.DeviceTypeUnknown
	}

	for _, rule := range c.rules {
		for _, kw := range rule.Keywords {
			if strings.Contains(name, kw) {
				return rule.Tag
			}
		}
	}

	return models.DeviceTypeUnknown
}

// Classify uses the hostname first and falls back to the MAC vendor.
func (c *Classifier) Classify(hostname, mac string) Result {
	vendor := ""
	if mac != "" {
		vendor = VendorForMAC(mac)
	}

	tag := c.ClassifyHostname(hostname)
	if tag == models.DeviceTypeUnknown && vendor != "" {
		tag = TypeForVendor(vendor)
	}

	return Result{DeviceType: tag, MACVendor: vendor}
}
