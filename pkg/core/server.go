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

// Package core assembles the supervision engine from its components and
// owns their lifecycle.
package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/nats-io/nats.go"

	"github.com/carverauto/centraldanone/pkg/alerts"
	"github.com/carverauto/centraldanone/pkg/classifier"
	"github.com/carverauto/centraldanone/pkg/core/api"
	"github.com/carverauto/centraldanone/pkg/db"
	"github.com/carverauto/centraldanone/pkg/health"
	"github.com/carverauto/centraldanone/pkg/logger"
	"github.com/carverauto/centraldanone/pkg/metrics"
	"github.com/carverauto/centraldanone/pkg/models"
	"github.com/carverauto/centraldanone/pkg/natsutil"
	"github.com/carverauto/centraldanone/pkg/notify"
	"github.com/carverauto/centraldanone/pkg/readmodel"
	"github.com/carverauto/centraldanone/pkg/registry"
	"github.com/carverauto/centraldanone/pkg/reports"
	"github.com/carverauto/centraldanone/pkg/scan"
	"github.com/carverauto/centraldanone/pkg/sweeper"
)

// Server holds every long-lived component of the engine.
type Server struct {
	config *models.Configuration
	logger logger.Logger

	DB        *db.DB
	Registry  *registry.DeviceRegistry
	Sweeper   *sweeper.NetworkSweeper
	ReadModel *readmodel.ReadModel
	Reports   *reports.Generator
	Hub       *api.Hub

	dispatcher      *alerts.Dispatcher
	reportScheduler *reports.Scheduler
	metrics         *metrics.Recorder
	nc              *nats.Conn
}

// Option customises NewServer, mostly for tests.
type Option func(*serverOptions)

type serverOptions struct {
	prober      scan.Prober
	ifaces      sweeper.InterfaceChecker
	emailSender notify.Sender
}

// WithProber replaces the host prober.
func WithProber(p scan.Prober) Option {
	return func(o *serverOptions) { o.prober = p }
}

// WithInterfaceChecker replaces the startup interface check.
func WithInterfaceChecker(c sweeper.InterfaceChecker) Option {
	return func(o *serverOptions) { o.ifaces = c }
}

// WithEmailSender replaces the Brevo client used for alert mail.
func WithEmailSender(s notify.Sender) Option {
	return func(o *serverOptions) { o.emailSender = s }
}

// NewServer opens storage and builds the engine. Nothing runs until Start.
func NewServer(ctx context.Context, cfg *models.Configuration, log logger.Logger, opts ...Option) (*Server, error) {
	var o serverOptions

	for _, opt := range opts {
		opt(&o)
	}

	database, err := db.Open(ctx, &cfg.Database, log)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errDatabaseError, err)
	}

	if err := database.Migrate(ctx); err != nil {
		_ = database.Close()

		return nil, fmt.Errorf("%w: %w", errDatabaseError, err)
	}

	s := &Server{
		config:     cfg,
		logger:     log,
		DB:         database,
		dispatcher: alerts.NewDispatcher(log),
	}

	if err := s.initialize(ctx, &o); err != nil {
		s.closeResources()

		return nil, err
	}

	return s, nil
}

func (s *Server) initialize(ctx context.Context, o *serverOptions) error {
	cfg := s.config

	rec, err := metrics.New(nil)
	if err != nil {
		return fmt.Errorf("failed to create metrics recorder: %w", err)
	}

	s.metrics = rec

	s.Registry = registry.NewDeviceRegistry(s.DB,
		health.NewTracker(cfg.Performance.UptimeWindow),
		registry.Config{RegisterUnreachable: cfg.Network.RegisterUnreachable},
		s.logger)

	s.Hub = api.NewHub(s.logger, originChecker(cfg.CORS))
	s.dispatcher.Add(s.Hub)

	sinks := eventFanout{s.Hub}

	if cfg.Events.Enabled {
		publisher, err := s.connectEvents(ctx)
		if err != nil {
			return err
		}

		s.dispatcher.Add(publisher)
		sinks = append(sinks, publisher)
	}

	if cfg.Notify.Email.Enabled {
		mailer, err := notify.NewEmailNotifier(&cfg.Notify.Email, o.emailSender, s.logger)
		if err != nil {
			return err
		}

		s.dispatcher.Add(mailer)
	}

	prober := o.prober
	if prober == nil {
		prober = scan.NewHostProber(scan.ConfigFromSettings(cfg), s.logger)
	}

	ifaces := o.ifaces
	if ifaces == nil {
		ifaces = scan.NewInterfaceChecker()
	}

	s.Sweeper = sweeper.NewNetworkSweeper(
		sweeper.ConfigFromSettings(cfg),
		prober,
		classifier.New(cfg.DeviceTypes),
		s.Registry,
		alerts.NewEngine(cfg.Alert, s.logger),
		s.logger,
		sweeper.WithNotifier(s.dispatcher),
		sweeper.WithEventSink(sinks),
		sweeper.WithInterfaceChecker(ifaces),
		sweeper.WithMetrics(rec),
	)

	s.ReadModel = readmodel.New(s.DB, s.Sweeper, cfg.Performance.DetailObservations)
	s.Reports = reports.NewGenerator(&cfg.Reports, s.ReadModel, s.logger)

	if cfg.Reports.AutoGenerate {
		s.reportScheduler = reports.NewScheduler(s.Reports, &cfg.Reports, s.logger)
	}

	return nil
}

func (s *Server) connectEvents(ctx context.Context) (*natsutil.EventPublisher, error) {
	nc, err := natsutil.Connect(&s.config.Events, s.logger)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errEventsError, err)
	}

	s.nc = nc

	publisher, err := natsutil.CreateEventPublisher(ctx, nc, &s.config.Events, s.logger)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errEventsError, err)
	}

	s.logger.Info().
		Str("stream", s.config.Events.StreamName).
		Str("prefix", s.config.Events.SubjectPrefix).
		Msg("Engine events enabled")

	return publisher, nil
}

// APIOptions returns the options that bind the API server to this engine.
func (s *Server) APIOptions() []func(server *api.APIServer) {
	return []func(server *api.APIServer){
		api.WithLogger(s.logger),
		api.WithDeviceReader(s.ReadModel),
		api.WithScanController(s.Sweeper),
		api.WithAlertResolver(s.Registry, s.dispatcher),
		api.WithReportService(s.Reports),
		api.WithHub(s.Hub),
		api.WithPinger(s.DB),
		api.WithSettings(s.config),
		api.WithAPIKey(s.config.APIKey),
	}
}

// Start launches the scan scheduler and, when enabled, automatic reports.
func (s *Server) Start(ctx context.Context) error {
	if err := s.Sweeper.Start(ctx); err != nil {
		return err
	}

	if s.reportScheduler != nil {
		if err := s.reportScheduler.Start(ctx); err != nil {
			return err
		}
	}

	return nil
}

// Stop halts scanning, waiting up to the configured grace period for the
// current run, then releases every resource. The database closes last.
func (s *Server) Stop(ctx context.Context) error {
	var errs []error

	if s.reportScheduler != nil {
		s.reportScheduler.Stop()
	}

	if err := s.Sweeper.Stop(); err != nil {
		if errors.Is(err, sweeper.ErrStopTimeout) {
			err = fmt.Errorf("%w: %w", errShutdownTimeout, err)
		}

		errs = append(errs, err)
	}

	if ctx.Err() != nil {
		s.logger.Warn().Err(ctx.Err()).Msg("Shutdown context expired before resources were released")
	}

	errs = append(errs, s.closeResources())

	return errors.Join(errs...)
}

func (s *Server) closeResources() error {
	var errs []error

	if s.Hub != nil {
		s.Hub.Close()
	}

	if s.nc != nil {
		if err := s.nc.Drain(); err != nil {
			errs = append(errs, err)
		}
	}

	if err := s.metrics.Close(); err != nil {
		errs = append(errs, err)
	}

	if err := s.DB.Close(); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}
