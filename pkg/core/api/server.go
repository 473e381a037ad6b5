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

// Package api provides the HTTP API server for Central Danone.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"golang.org/x/time/rate"

	srHttp "github.com/carverauto/centraldanone/pkg/http"
	"github.com/carverauto/centraldanone/pkg/logger"
	"github.com/carverauto/centraldanone/pkg/models"
)

const (
	defaultReadTimeout  = 10 * time.Second
	defaultWriteTimeout = 30 * time.Second
	defaultIdleTimeout  = 60 * time.Second

	// Scan and report triggers share one budget.
	defaultTriggerRate  = rate.Limit(1)
	defaultTriggerBurst = 5
)

var errServerNotStarted = errors.New("api server not started")

// Pinger checks storage reachability for /health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// APIServer serves the REST API and the websocket event stream.
type APIServer struct {
	router     *mux.Router
	corsConfig models.CORSConfig
	logger     logger.Logger

	reader   DeviceReader
	scanner  ScanController
	alerts   AlertResolver
	notifier AlertNotifier
	reports  ReportService
	hub      *Hub
	pinger   Pinger
	settings *models.Configuration
	apiKey   string
	limiter  *rate.Limiter

	mu     sync.Mutex
	server *http.Server
}

// NewAPIServer creates a new API server instance with the given configuration
func NewAPIServer(config models.CORSConfig, options ...func(server *APIServer)) *APIServer {
	s := &APIServer{
		router:     mux.NewRouter(),
		corsConfig: config,
		logger:     logger.NewTestLogger(),
		limiter:    rate.NewLimiter(defaultTriggerRate, defaultTriggerBurst),
	}

	for _, o := range options {
		o(s)
	}

	s.setupRoutes()

	return s
}

func WithLogger(log logger.Logger) func(server *APIServer) {
	return func(server *APIServer) {
		server.logger = log
	}
}

func WithDeviceReader(r DeviceReader) func(server *APIServer) {
	return func(server *APIServer) {
		server.reader = r
	}
}

func WithScanController(c ScanController) func(server *APIServer) {
	return func(server *APIServer) {
		server.scanner = c
	}
}

// WithAlertResolver enables POST /api/alerts/{id}/resolve. Resolved alerts
// are handed to n when it is not nil.
func WithAlertResolver(r AlertResolver, n AlertNotifier) func(server *APIServer) {
	return func(server *APIServer) {
		server.alerts = r
		server.notifier = n
	}
}

func WithReportService(r ReportService) func(server *APIServer) {
	return func(server *APIServer) {
		server.reports = r
	}
}

func WithHub(h *Hub) func(server *APIServer) {
	return func(server *APIServer) {
		server.hub = h
	}
}

func WithPinger(p Pinger) func(server *APIServer) {
	return func(server *APIServer) {
		server.pinger = p
	}
}

// WithSettings exposes cfg, with secrets removed, on GET /api/settings.
func WithSettings(cfg *models.Configuration) func(server *APIServer) {
	return func(server *APIServer) {
		server.settings = cfg
	}
}

// WithAPIKey protects every /api route with key. An empty key leaves the API open.
func WithAPIKey(key string) func(server *APIServer) {
	return func(server *APIServer) {
		server.apiKey = key
	}
}

// WithTriggerLimit replaces the rate limit on scan and report triggers.
func WithTriggerLimit(limit rate.Limit, burst int) func(server *APIServer) {
	return func(server *APIServer) {
		server.limiter = rate.NewLimiter(limit, burst)
	}
}

// Handler returns the routed handler wrapped in CORS handling. CORS sits
// outside the router so preflight requests reach it for every path.
func (s *APIServer) Handler() http.Handler {
	return srHttp.CommonMiddleware(s.router, s.corsConfig, s.logger)
}

func (s *APIServer) setupRoutes() {
	s.router.HandleFunc("/health", s.getHealth).Methods(http.MethodGet)

	protected := s.router.PathPrefix("/api").Subrouter()
	protected.Use(srHttp.APIKeyMiddleware(s.apiKey, s.logger))

	limited := srHttp.RateLimitMiddleware(s.limiter)

	protected.HandleFunc("/devices", s.getDevices).Methods(http.MethodGet)
	protected.HandleFunc("/devices/{id}", s.getDevice).Methods(http.MethodGet)
	protected.HandleFunc("/statistics", s.getStatistics).Methods(http.MethodGet)

	protected.Handle("/scan", limited(http.HandlerFunc(s.triggerScan))).Methods(http.MethodPost)
	protected.HandleFunc("/scan/cancel", s.cancelScan).Methods(http.MethodPost)
	protected.HandleFunc("/scans", s.getScans).Methods(http.MethodGet)

	protected.HandleFunc("/alerts", s.getAlerts).Methods(http.MethodGet)
	protected.HandleFunc("/alerts/{id}/resolve", s.resolveAlert).Methods(http.MethodPost)

	protected.HandleFunc("/reports/list", s.listReports).Methods(http.MethodGet)
	protected.Handle("/reports/generate", limited(http.HandlerFunc(s.generateReport))).Methods(http.MethodPost)
	protected.HandleFunc("/reports/stats", s.reportStats).Methods(http.MethodGet)
	protected.HandleFunc("/reports/download/{filename}", s.downloadReport).Methods(http.MethodGet)
	protected.HandleFunc("/reports/{filename}", s.deleteReport).Methods(http.MethodDelete)

	protected.HandleFunc("/settings", s.getSettings).Methods(http.MethodGet)

	if s.hub != nil {
		protected.HandleFunc("/ws", s.hub.ServeWS).Methods(http.MethodGet)
	}
}

// Start serves on addr until Shutdown is called.
func (s *APIServer) Start(addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  defaultReadTimeout,
		WriteTimeout: defaultWriteTimeout,
		IdleTimeout:  defaultIdleTimeout,
	}

	s.mu.Lock()
	s.server = srv
	s.mu.Unlock()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

// Shutdown stops accepting requests and disconnects websocket clients.
func (s *APIServer) Shutdown(ctx context.Context) error {
	if s.hub != nil {
		s.hub.Close()
	}

	s.mu.Lock()
	srv := s.server
	s.mu.Unlock()

	if srv == nil {
		return errServerNotStarted
	}

	return srv.Shutdown(ctx)
}

func (s *APIServer) encodeJSONResponse(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error().Err(err).Msg("Error encoding response")
	}
}

func writeError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")

	w.WriteHeader(statusCode)

	errResponse := ErrorResponse{
		Message: message,
		Status:  statusCode,
	}

	if err := json.NewEncoder(w).Encode(errResponse); err != nil {
		http.Error(w, "Failed to encode error response", http.StatusInternalServerError)
	}
}
