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

package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

var (
	errDeviceTypesNotObject = errors.New("device_types must be an object of tag -> keyword list")
	errDeviceTypesNotMap    = errors.New("device_types must be a mapping")
)

// DeviceTypeRule is one entry of the classification dictionary.
type DeviceTypeRule struct {
	Tag      DeviceType `json:"tag" yaml:"tag"`
	Keywords []string   `json:"keywords" yaml:"keywords"`
}

// DeviceTypes is the ordered tag -> keywords dictionary. Declaration order
// breaks ties, so both decoders keep the order found in the document.
type DeviceTypes []DeviceTypeRule

// DefaultDeviceTypes is the dictionary used when none is configured.
func DefaultDeviceTypes() DeviceTypes {
	return DeviceTypes{
		{Tag: DeviceTypeRouter, Keywords: []string{"router", "gateway", "firewall"}},
		{Tag: DeviceTypeServer, Keywords: []string{"server", "srv", "dc", "domain"}},
		{Tag: DeviceTypePrinter, Keywords: []string{"printer", "print", "hp", "canon", "epson"}},
		{Tag: DeviceTypeWorkstation, Keywords: []string{"pc", "workstation", "desktop", "laptop"}},
		{Tag: DeviceTypeSwitch, Keywords: []string{"switch", "sw", "hub"}},
		{Tag: DeviceTypeCamera, Keywords: []string{"camera", "cam", "ipcam"}},
		{Tag: DeviceTypePhone, Keywords: []string{"phone", "voip", "sip"}},
		{Tag: DeviceTypeAutomation, Keywords: []string{"plc", "automate", "scada", "hmi"}},
	}
}

func (d DeviceTypes) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte('{')

	for i, rule := range d {
		if i > 0 {
			buf.WriteByte(',')
		}

		key, err := json.Marshal(string(rule.Tag))
		if err != nil {
			return nil, err
		}

		keywords := rule.Keywords
		if keywords == nil {
			keywords = []string{}
		}

		value, err := json.Marshal(keywords)
		if err != nil {
			return nil, err
		}

		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}

	buf.WriteByte('}')

	return buf.Bytes(), nil
}

// UnmarshalJSON walks the object token by token to keep key order.
func (d *DeviceTypes) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))

	tok, err := dec.Token()
	if err != nil {
		return err
	}

	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return errDeviceTypesNotObject
	}

	rules := DeviceTypes{}

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}

		key, ok := keyTok.(string)
		if !ok {
			return errDeviceTypesNotObject
		}

		var keywords []string
		if err := dec.Decode(&keywords); err != nil {
			return fmt.Errorf("device_types.%s: %w", key, err)
		}

		rules = append(rules, DeviceTypeRule{Tag: DeviceType(key), Keywords: keywords})
	}

	if _, err := dec.Token(); err != nil {
		return err
	}

	*d = rules

	return nil
}

func (d DeviceTypes) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}

	for _, rule := range d {
		value := &yaml.Node{}
		if err := value.Encode(rule.Keywords); err != nil {
			return nil, err
		}

		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: string(rule.Tag)},
			value,
		)
	}

	return node, nil
}

func (d *DeviceTypes) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return errDeviceTypesNotMap
	}

	rules := make(DeviceTypes, 0, len(node.Content)/2)

	for i := 0; i+1 < len(node.Content); i += 2 {
		var keywords []string
		if err := node.Content[i+1].Decode(&keywords); err != nil {
			return fmt.Errorf("device_types.%s: %w", node.Content[i].Value, err)
		}

		rules = append(rules, DeviceTypeRule{Tag: DeviceType(node.Content[i].Value), Keywords: keywords})
	}

	*d = rules

	return nil
}
