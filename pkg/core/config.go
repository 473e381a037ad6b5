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

package core

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/carverauto/centraldanone/pkg/config"
	"github.com/carverauto/centraldanone/pkg/logger"
	"github.com/carverauto/centraldanone/pkg/models"
)

const (
	defaultConfigBucket = "danone-config"

	envConfigSource = "CONFIG_SOURCE"
	envNATSURL      = "NATS_URL"
	envConfigBucket = "CONFIG_KV_BUCKET"
)

// LoadConfig reads the engine configuration from the source selected by
// CONFIG_SOURCE. For the kv source the bucket is read over NATS_URL.
func LoadConfig(ctx context.Context, path string, log logger.Logger) (models.Configuration, error) {
	loader := config.NewConfig(log)

	if strings.EqualFold(os.Getenv(envConfigSource), "kv") {
		nc, err := nats.Connect(envOrDefault(envNATSURL, nats.DefaultURL), nats.Name("centraldanone-config"))
		if err != nil {
			return models.Configuration{}, &models.ConfigError{Field: "source", Reason: err.Error()}
		}
		defer nc.Close()

		store, err := openKVStore(ctx, nc, envOrDefault(envConfigBucket, defaultConfigBucket))
		if err != nil {
			return models.Configuration{}, &models.ConfigError{Field: "source", Reason: err.Error()}
		}

		loader.SetKVStore(store)
	}

	return config.LoadConfiguration(ctx, loader, path)
}

func openKVStore(ctx context.Context, nc *nats.Conn, bucket string) (*config.NATSKVStore, error) {
	js, err := jetstream.New(nc)
	if err != nil {
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	return config.NewNATSKVStore(ctx, js, bucket)
}

func envOrDefault(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}

	return def
}
