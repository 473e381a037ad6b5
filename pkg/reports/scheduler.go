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
	"sync"
	"time"

	"github.com/carverauto/centraldanone/pkg/logger"
	"github.com/carverauto/centraldanone/pkg/models"
)

// Scheduler generates a report of the configured frequency on every period.
type Scheduler struct {
	generator *Generator
	kind      models.ReportType
	format    models.ReportFormat
	period    time.Duration
	logger    logger.Logger

	mu      sync.Mutex
	cancel  context.CancelFunc
	stopped chan struct{}
}

func NewScheduler(g *Generator, cfg *models.ReportsConfig, log logger.Logger) *Scheduler {
	return &Scheduler{
		generator: g,
		kind:      cfg.Frequency,
		format:    models.ReportFormat(cfg.Format),
		period:    Period(cfg.Frequency),
		logger:    log,
	}
}

// Period maps a report frequency to its generation interval.
func Period(kind models.ReportType) time.Duration {
	switch kind {
	case models.ReportWeekly:
		return 7 * 24 * time.Hour
	case models.ReportMonthly:
		return 30 * 24 * time.Hour
	default:
		return 24 * time.Hour
	}
}

// Start launches the generation loop. The first report is produced one
// period after start.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		return ErrAlreadyStarted
	}

	ctx, s.cancel = context.WithCancel(ctx)
	s.stopped = make(chan struct{})

	go s.run(ctx, s.stopped)

	s.logger.Info().
		Str("frequency", string(s.kind)).
		Dur("period", s.period).
		Msg("Report scheduler started")

	return nil
}

// Stop ends the loop and waits for an in-flight report to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel, stopped := s.cancel, s.stopped
	s.cancel = nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}

	cancel()
	<-stopped
}

func (s *Scheduler) run(ctx context.Context, stopped chan<- struct{}) {
	defer close(stopped)

	ticker := time.NewTicker(s.period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.generate(ctx)
		}
	}
}

func (s *Scheduler) generate(ctx context.Context) {
	info, err := s.generator.Generate(ctx, &models.ReportRequest{
		Type:        s.kind,
		Format:      s.format,
		Description: "Automatic " + string(s.kind) + " report",
	})
	if err != nil {
		s.logger.Error().Err(err).Str("frequency", string(s.kind)).Msg("Automatic report failed")

		return
	}

	s.logger.Debug().Str("filename", info.Filename).Msg("Automatic report stored")
}
