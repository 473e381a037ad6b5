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

// Package app boots the supervision engine and its HTTP API.
package app

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/carverauto/centraldanone/pkg/core"
	"github.com/carverauto/centraldanone/pkg/core/api"
	"github.com/carverauto/centraldanone/pkg/lifecycle"
	"github.com/carverauto/centraldanone/pkg/logger"
	"github.com/carverauto/centraldanone/pkg/version"
)

const (
	serviceName     = "centraldanone"
	shutdownTimeout = 30 * time.Second
)

// Options contains runtime configuration derived from CLI flags.
type Options struct {
	ConfigPath string
}

// Run boots the engine and blocks until SIGINT or SIGTERM.
func Run(ctx context.Context, opts Options) error {
	if ctx == nil {
		ctx = context.Background()
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := core.LoadConfig(ctx, opts.ConfigPath, nil)
	if err != nil {
		return err
	}

	if cfg.Logging == nil {
		cfg.Logging = logger.DefaultConfig()
	}

	mainLogger, err := lifecycle.CreateComponentLogger(ctx, "danone-main", cfg.Logging)
	if err != nil {
		return err
	}

	defer func() {
		if shutdownErr := lifecycle.ShutdownLogger(); shutdownErr != nil {
			mainLogger.Error().Err(shutdownErr).Msg("Error shutting down logger")
		}
	}()

	tp, err := logger.InitializeTracing(ctx, logger.TracingConfig{
		ServiceName:    serviceName,
		ServiceVersion: version.GetVersion(),
		Logger:         mainLogger,
		OTel:           &cfg.Logging.OTel,
	})
	if err != nil {
		return err
	}

	defer func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			mainLogger.Error().Err(err).Msg("Error shutting down tracer provider")
		}
	}()

	if _, metricsErr := logger.InitializeMetrics(ctx, logger.MetricsConfig{
		ServiceName:    serviceName,
		ServiceVersion: version.GetVersion(),
		OTel:           &cfg.Logging.OTel,
	}); metricsErr != nil && !errors.Is(metricsErr, logger.ErrOTelMetricsDisabled) {
		return metricsErr
	}

	server, err := core.NewServer(ctx, &cfg, mainLogger)
	if err != nil {
		return err
	}

	apiServer := api.NewAPIServer(cfg.CORS, server.APIOptions()...)

	if err := server.Start(ctx); err != nil {
		_ = server.Stop(context.Background())

		return err
	}

	apiErr := make(chan error, 1)

	go func() {
		mainLogger.Info().
			Str("listen_addr", cfg.ListenAddr).
			Str("version", version.GetFullVersion()).
			Msg("Starting HTTP API server")

		apiErr <- apiServer.Start(cfg.ListenAddr)
	}()

	var runErr error

	select {
	case <-ctx.Done():
		mainLogger.Info().Msg("Shutdown signal received")
	case runErr = <-apiErr:
		if runErr != nil {
			mainLogger.Error().Err(runErr).Msg("HTTP API server error")
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		mainLogger.Warn().Err(err).Msg("HTTP API server shutdown")
	}

	if err := server.Stop(shutdownCtx); err != nil {
		mainLogger.Error().Err(err).Msg("Engine shutdown")

		return errors.Join(runErr, err)
	}

	mainLogger.Info().Msg("Central Danone stopped")

	return runErr
}
