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

package lifecycle

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/centraldanone/pkg/logger"
)

func TestCreateComponentLogger(t *testing.T) {
	l, err := CreateComponentLogger(context.Background(), "sweeper", &logger.Config{Level: "debug"})
	require.NoError(t, err)

	l.SetDebug(false)
	assert.Equal(t, zerolog.InfoLevel, l.WithComponent("x").GetLevel())

	child := ComponentLogger(l, "prober")
	assert.NotNil(t, child)
}

func TestCreateComponentLoggerBadLevel(t *testing.T) {
	_, err := CreateComponentLogger(context.Background(), "core", &logger.Config{Level: "nope"})
	require.Error(t, err)
}

func TestShutdownLoggerWithoutPipelines(t *testing.T) {
	require.NoError(t, ShutdownLogger())
}
