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

package reports

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/centraldanone/pkg/logger"
	"github.com/carverauto/centraldanone/pkg/models"
)

func TestPeriod(t *testing.T) {
	assert.Equal(t, 24*time.Hour, Period(models.ReportDaily))
	assert.Equal(t, 7*24*time.Hour, Period(models.ReportWeekly))
	assert.Equal(t, 30*24*time.Hour, Period(models.ReportMonthly))
}

func TestSchedulerGeneratesReports(t *testing.T) {
	g := newGenerator(t, newSource())
	tick := now

	// Each report gets its own second so names never collide.
	g.now = func() time.Time {
		tick = tick.Add(time.Second)

		return tick
	}

	cfg := &models.ReportsConfig{Frequency: models.ReportDaily, Format: string(models.ReportFormatJSON)}
	s := NewScheduler(g, cfg, logger.NewTestLogger())
	s.period = 5 * time.Millisecond

	require.NoError(t, s.Start(context.Background()))
	require.ErrorIs(t, s.Start(context.Background()), ErrAlreadyStarted)

	require.Eventually(t, func() bool {
		list, err := g.List()

		return err == nil && len(list) >= 2
	}, 2*time.Second, 5*time.Millisecond)

	s.Stop()
	s.Stop()
}
