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

package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/carverauto/centraldanone/pkg/models"
	"github.com/carverauto/centraldanone/pkg/reports"
	"github.com/carverauto/centraldanone/pkg/scan"
)

const (
	healthCheckTimeout = 2 * time.Second
	maxRequestBody     = 64 << 10
)

func (s *APIServer) getHealth(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{Status: "ok", Database: "ok"}

	if s.hub != nil {
		resp.WSClients = s.hub.Clients()
	}

	status := http.StatusOK

	if s.pinger != nil {
		ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
		defer cancel()

		if err := s.pinger.Ping(ctx); err != nil {
			s.logger.Warn().Err(err).Msg("Health check failed to reach database")

			resp.Status = "degraded"
			resp.Database = "unreachable"
			status = http.StatusServiceUnavailable
		}
	}

	s.encodeJSONResponse(w, status, resp)
}

func (s *APIServer) getDevices(w http.ResponseWriter, r *http.Request) {
	if s.reader == nil {
		writeError(w, "Device store not configured", http.StatusInternalServerError)
		return
	}

	filter, err := parseDeviceFilter(r)
	if err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	devices, err := s.reader.ListDevices(r.Context(), filter)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to list devices")
		writeError(w, "Failed to list devices", http.StatusInternalServerError)

		return
	}

	if devices == nil {
		devices = []models.DeviceSummary{}
	}

	s.encodeJSONResponse(w, http.StatusOK, devices)
}

var errBadStatus = errors.New("status must be online or offline")

var errBadType = errors.New("unknown device type")

func parseDeviceFilter(r *http.Request) (models.DeviceFilter, error) {
	var filter models.DeviceFilter

	q := r.URL.Query()

	switch q.Get("status") {
	case "":
	case "online":
		online := true
		filter.Online = &online
	case "offline":
		online := false
		filter.Online = &online
	default:
		return filter, errBadStatus
	}

	if t := q.Get("type"); t != "" {
		filter.DeviceType = models.DeviceType(t)
		if !filter.DeviceType.Valid() {
			return filter, errBadType
		}
	}

	return filter, nil
}

func (s *APIServer) getDevice(w http.ResponseWriter, r *http.Request) {
	if s.reader == nil {
		writeError(w, "Device store not configured", http.StatusInternalServerError)
		return
	}

	id := mux.Vars(r)["id"]

	detail, err := s.reader.DeviceDetail(r.Context(), id)
	if errors.Is(err, models.ErrDeviceNotFound) {
		writeError(w, "Device not found", http.StatusNotFound)
		return
	}

	if err != nil {
		s.logger.Error().Err(err).Str("device", id).Msg("Failed to load device")
		writeError(w, "Failed to load device", http.StatusInternalServerError)

		return
	}

	s.encodeJSONResponse(w, http.StatusOK, detail)
}

func (s *APIServer) getStatistics(w http.ResponseWriter, r *http.Request) {
	if s.reader == nil {
		writeError(w, "Device store not configured", http.StatusInternalServerError)
		return
	}

	stats, err := s.reader.Statistics(r.Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to compute statistics")
		writeError(w, "Failed to compute statistics", http.StatusInternalServerError)

		return
	}

	s.encodeJSONResponse(w, http.StatusOK, stats)
}

func (s *APIServer) triggerScan(w http.ResponseWriter, r *http.Request) {
	if s.scanner == nil {
		writeError(w, "Scanner not configured", http.StatusServiceUnavailable)
		return
	}

	var req ScanRequest

	if err := decodeOptionalBody(r, &req); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	runID, err := s.scanner.TriggerScan(req.Range)
	if errors.Is(err, scan.ErrInvalidRange) || errors.Is(err, scan.ErrRangeTooLarge) {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err != nil {
		s.logger.Error().Err(err).Str("range", req.Range).Msg("Failed to queue scan")
		writeError(w, "Failed to queue scan", http.StatusInternalServerError)

		return
	}

	s.logger.Info().Str("run_id", runID).Str("range", req.Range).Msg("Manual scan queued")

	s.encodeJSONResponse(w, http.StatusAccepted, ScanResponse{
		RunID:  runID,
		Range:  req.Range,
		Status: "queued",
	})
}

func (s *APIServer) cancelScan(w http.ResponseWriter, _ *http.Request) {
	if s.scanner == nil {
		writeError(w, "Scanner not configured", http.StatusServiceUnavailable)
		return
	}

	status := "idle"
	if s.scanner.CancelCurrent() {
		status = "cancelling"
	}

	s.encodeJSONResponse(w, http.StatusOK, map[string]string{"status": status})
}

const defaultScanListLimit = 50

func (s *APIServer) getScans(w http.ResponseWriter, r *http.Request) {
	if s.reader == nil {
		writeError(w, "Device store not configured", http.StatusInternalServerError)
		return
	}

	limit, err := parseLimit(r, defaultScanListLimit)
	if err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	runs, err := s.reader.ScanRuns(r.Context(), limit)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to list scan runs")
		writeError(w, "Failed to list scan runs", http.StatusInternalServerError)

		return
	}

	if runs == nil {
		runs = []models.ScanRun{}
	}

	s.encodeJSONResponse(w, http.StatusOK, runs)
}

var errBadLimit = errors.New("limit must be a positive integer")

func parseLimit(r *http.Request, def int) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return def, nil
	}

	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, errBadLimit
	}

	return n, nil
}

func (s *APIServer) getAlerts(w http.ResponseWriter, r *http.Request) {
	if s.reader == nil {
		writeError(w, "Device store not configured", http.StatusInternalServerError)
		return
	}

	limit, err := parseLimit(r, 0)
	if err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	filter := models.AlertFilter{Limit: limit}

	if v := r.URL.Query().Get("active"); v != "" {
		filter.ActiveOnly, err = strconv.ParseBool(v)
		if err != nil {
			writeError(w, "active must be a boolean", http.StatusBadRequest)
			return
		}
	}

	alerts, err := s.reader.Alerts(r.Context(), filter)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to list alerts")
		writeError(w, "Failed to list alerts", http.StatusInternalServerError)

		return
	}

	if alerts == nil {
		alerts = []models.Alert{}
	}

	s.encodeJSONResponse(w, http.StatusOK, alerts)
}

func (s *APIServer) resolveAlert(w http.ResponseWriter, r *http.Request) {
	if s.alerts == nil {
		writeError(w, "Alert store not configured", http.StatusInternalServerError)
		return
	}

	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeError(w, "Invalid alert id", http.StatusBadRequest)
		return
	}

	alert, changed, err := s.alerts.ResolveAlert(r.Context(), id)
	if errors.Is(err, models.ErrAlertNotFound) {
		writeError(w, "Alert not found", http.StatusNotFound)
		return
	}

	if err != nil {
		s.logger.Error().Err(err).Int64("alert_id", id).Msg("Failed to resolve alert")
		writeError(w, "Failed to resolve alert", http.StatusInternalServerError)

		return
	}

	if changed && s.notifier != nil {
		change := models.AlertChange{Alert: *alert, Resolved: true, DeviceIP: alert.DeviceIP}

		if err := s.notifier.Notify(r.Context(), []models.AlertChange{change}); err != nil {
			s.logger.Warn().Err(err).Int64("alert_id", id).Msg("Failed to publish manual resolution")
		}
	}

	s.encodeJSONResponse(w, http.StatusOK, alert)
}

func (s *APIServer) listReports(w http.ResponseWriter, _ *http.Request) {
	if s.reports == nil {
		writeError(w, "Reports not configured", http.StatusServiceUnavailable)
		return
	}

	list, err := s.reports.List()
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to list reports")
		writeError(w, "Failed to list reports", http.StatusInternalServerError)

		return
	}

	if list == nil {
		list = []models.ReportInfo{}
	}

	s.encodeJSONResponse(w, http.StatusOK, list)
}

func (s *APIServer) generateReport(w http.ResponseWriter, r *http.Request) {
	if s.reports == nil {
		writeError(w, "Reports not configured", http.StatusServiceUnavailable)
		return
	}

	var req models.ReportRequest

	if err := decodeOptionalBody(r, &req); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	info, err := s.reports.Generate(r.Context(), &req)

	switch {
	case errors.Is(err, reports.ErrUnsupportedType),
		errors.Is(err, reports.ErrUnsupportedFormat),
		errors.Is(err, reports.ErrInvalidWindow):
		writeError(w, err.Error(), http.StatusBadRequest)
	case err != nil:
		s.logger.Error().Err(err).Str("type", string(req.Type)).Msg("Failed to generate report")
		writeError(w, "Failed to generate report", http.StatusInternalServerError)
	default:
		s.encodeJSONResponse(w, http.StatusCreated, info)
	}
}

func (s *APIServer) reportStats(w http.ResponseWriter, _ *http.Request) {
	if s.reports == nil {
		writeError(w, "Reports not configured", http.StatusServiceUnavailable)
		return
	}

	stats, err := s.reports.Stats()
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to compute report statistics")
		writeError(w, "Failed to compute report statistics", http.StatusInternalServerError)

		return
	}

	s.encodeJSONResponse(w, http.StatusOK, stats)
}

func (s *APIServer) downloadReport(w http.ResponseWriter, r *http.Request) {
	if s.reports == nil {
		writeError(w, "Reports not configured", http.StatusServiceUnavailable)
		return
	}

	name := mux.Vars(r)["filename"]

	path, err := s.reports.Path(name)
	if !s.reportFileError(w, name, err) {
		return
	}

	w.Header().Set("Content-Disposition", "attachment; filename=\""+name+"\"")
	http.ServeFile(w, r, path)
}

func (s *APIServer) deleteReport(w http.ResponseWriter, r *http.Request) {
	if s.reports == nil {
		writeError(w, "Reports not configured", http.StatusServiceUnavailable)
		return
	}

	name := mux.Vars(r)["filename"]

	if !s.reportFileError(w, name, s.reports.Delete(name)) {
		return
	}

	s.logger.Info().Str("filename", name).Msg("Report deleted")
	w.WriteHeader(http.StatusNoContent)
}

// reportFileError writes the response for a failed report lookup and
// reports whether the caller may continue.
func (s *APIServer) reportFileError(w http.ResponseWriter, name string, err error) bool {
	switch {
	case err == nil:
		return true
	case errors.Is(err, reports.ErrInvalidFilename):
		writeError(w, "Invalid report filename", http.StatusBadRequest)
	case errors.Is(err, reports.ErrReportNotFound), errors.Is(err, os.ErrNotExist):
		writeError(w, "Report not found", http.StatusNotFound)
	default:
		s.logger.Error().Err(err).Str("filename", name).Msg("Report file operation failed")
		writeError(w, "Report file operation failed", http.StatusInternalServerError)
	}

	return false
}

func (s *APIServer) getSettings(w http.ResponseWriter, _ *http.Request) {
	if s.settings == nil {
		s.encodeJSONResponse(w, http.StatusOK, map[string]interface{}{})
		return
	}

	filtered, err := models.FilterSensitiveFields(s.settings)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to filter settings")
		writeError(w, "Failed to load settings", http.StatusInternalServerError)

		return
	}

	s.encodeJSONResponse(w, http.StatusOK, filtered)
}

// decodeOptionalBody decodes a JSON body into v. An empty body leaves v untouched.
func decodeOptionalBody(r *http.Request, v interface{}) error {
	if r.Body == nil {
		return nil
	}

	err := json.NewDecoder(io.LimitReader(r.Body, maxRequestBody)).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}

	return err
}
