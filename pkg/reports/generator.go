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

// Package reports renders fleet availability reports to disk and manages the
// report directory.
package reports

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/carverauto/centraldanone/pkg/logger"
	"github.com/carverauto/centraldanone/pkg/models"
)

const (
	filePrefix       = "report_"
	maxNameAttempts  = 100
	downloadBasePath = "/api/reports/download/"
	reportFileMode   = 0o644
	reportDirMode    = 0o755
)

// Data is the root structure every report format is rendered from.
type Data struct {
	Title       string            `json:"title"`
	Type        models.ReportType `json:"type"`
	Description string            `json:"description,omitempty"`
	GeneratedAt time.Time         `json:"generated_at"`
	From        time.Time         `json:"from"`
	To          time.Time         `json:"to"`
	ScanRuns    int               `json:"scan_runs"`
	Statistics  models.Statistics `json:"statistics"`
	Devices     []DeviceRow       `json:"devices"`
}

// DeviceRow is one device line of a report. Availability is the share of
// reachable observations inside the report window, nil when the device was
// not probed in it.
type DeviceRow struct {
	ID                 int64      `json:"id"`
	IP                 string     `json:"ip"`
	Hostname           string     `json:"hostname"`
	DeviceType         string     `json:"device_type"`
	Status             string     `json:"status"`
	LastSeen           *time.Time `json:"last_seen,omitempty"`
	HealthScore        float64    `json:"health_score"`
	FailureProbability float64    `json:"failure_probability"`
	Observations       int        `json:"observations"`
	Availability       *float64   `json:"availability,omitempty"`
	AvgRTTMs           *float64   `json:"avg_rtt_ms,omitempty"`
	ActiveAlerts       int        `json:"active_alerts"`
}

// Generator writes reports into a single directory.
type Generator struct {
	dir           string
	source        Source
	defaultFormat models.ReportFormat
	logger        logger.Logger
	tracer        trace.Tracer
	now           func() time.Time
}

func NewGenerator(cfg *models.ReportsConfig, source Source, log logger.Logger) *Generator {
	format := models.ReportFormat(cfg.Format)
	if !validFormat(format) {
		format = models.ReportFormatHTML
	}

	dir := cfg.Directory
	if dir == "" {
		dir = "reports"
	}

	return &Generator{
		dir:           dir,
		source:        source,
		defaultFormat: format,
		logger:        log,
		tracer:        otel.Tracer("centraldanone/reports"),
		now:           time.Now,
	}
}

// Dir returns the report directory.
func (g *Generator) Dir() string {
	return g.dir
}

// Generate collects the fleet state for the requested window, renders it and
// stores the file.
func (g *Generator) Generate(ctx context.Context, req *models.ReportRequest) (*models.ReportInfo, error) {
	format := req.Format
	if format == "" {
		format = g.defaultFormat
	}

	if !validFormat(format) {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}

	now := g.now().UTC()

	from, to, err := window(req, now)
	if err != nil {
		return nil, err
	}

	ctx, span := g.tracer.Start(ctx, "report.generate", trace.WithAttributes(
		attribute.String("report.type", string(req.Type)),
		attribute.String("report.format", string(format)),
	))
	defer span.End()

	info, err := g.generate(ctx, req, format, from, to, now)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		return nil, err
	}

	span.SetAttributes(attribute.String("report.filename", info.Filename), attribute.Int64("report.size", info.Size))

	g.logger.Info().
		Str("filename", info.Filename).
		Str("type", string(req.Type)).
		Int64("size", info.Size).
		Msg("Report generated")

	return info, nil
}

func (g *Generator) generate(ctx context.Context, req *models.ReportRequest, format models.ReportFormat,
	from, to, now time.Time) (*models.ReportInfo, error) {
	data, err := g.collect(ctx, req, from, to, now)
	if err != nil {
		return nil, fmt.Errorf("failed to collect report data: %w", err)
	}

	body, err := render(format, data)
	if err != nil {
		return nil, fmt.Errorf("failed to render report: %w", err)
	}

	if err := os.MkdirAll(g.dir, reportDirMode); err != nil {
		return nil, fmt.Errorf("failed to create reports directory: %w", err)
	}

	name, err := g.write(req.Type, format, now, body)
	if err != nil {
		return nil, fmt.Errorf("failed to write report: %w", err)
	}

	return g.info(name)
}

// window resolves the time range of a request.
func window(req *models.ReportRequest, now time.Time) (from, to time.Time, err error) {
	to = now

	switch req.Type {
	case models.ReportDaily:
		return to.Add(-24 * time.Hour), to, nil
	case models.ReportWeekly:
		return to.AddDate(0, 0, -7), to, nil
	case models.ReportMonthly:
		return to.AddDate(0, 0, -30), to, nil
	case models.ReportCustom:
		if req.DateFrom == nil {
			return from, to, fmt.Errorf("%w: date_from is required for custom reports", ErrInvalidWindow)
		}

		from = req.DateFrom.UTC()

		if req.DateTo != nil {
			to = req.DateTo.UTC()
		}

		if !from.Before(to) {
			return from, to, fmt.Errorf("%w: date_from must be before date_to", ErrInvalidWindow)
		}

		return from, to, nil
	default:
		return from, to, fmt.Errorf("%w: %q", ErrUnsupportedType, req.Type)
	}
}

func (g *Generator) collect(ctx context.Context, req *models.ReportRequest, from, to, now time.Time) (*Data, error) {
	stats, err := g.source.Statistics(ctx)
	if err != nil {
		return nil, err
	}

	devices, err := g.source.ListDevices(ctx, models.DeviceFilter{})
	if err != nil {
		return nil, err
	}

	summaries, err := g.source.ObservationSummaries(ctx, from, to)
	if err != nil {
		return nil, err
	}

	runs, err := g.source.CountScanRuns(ctx, from, to)
	if err != nil {
		return nil, err
	}

	rows := make([]DeviceRow, 0, len(devices))

	for i := range devices {
		d := &devices[i]

		row := DeviceRow{
			ID:                 d.ID,
			IP:                 d.IP,
			Hostname:           "Unknown",
			DeviceType:         string(d.DeviceType),
			Status:             "offline",
			LastSeen:           d.LastSeen,
			HealthScore:        d.HealthScore,
			FailureProbability: d.FailureProbability,
			ActiveAlerts:       d.ActiveAlertCount,
		}

		if d.Hostname != nil && *d.Hostname != "" {
			row.Hostname = *d.Hostname
		}

		if d.IsOnline {
			row.Status = "online"
		}

		if s, ok := summaries[d.ID]; ok && s.Total > 0 {
			pct := float64(s.Reachable) * 100 / float64(s.Total)
			row.Observations = s.Total
			row.Availability = &pct
			row.AvgRTTMs = s.AvgRTTMs
		}

		rows = append(rows, row)
	}

	return &Data{
		Title:       title(req.Type, from, to),
		Type:        req.Type,
		Description: req.Description,
		GeneratedAt: now,
		From:        from,
		To:          to,
		ScanRuns:    runs,
		Statistics:  *stats,
		Devices:     rows,
	}, nil
}

func title(kind models.ReportType, from, to time.Time) string {
	if kind == models.ReportDaily {
		return fmt.Sprintf("Central Danone daily report %s", to.Format("2006-01-02"))
	}

	return fmt.Sprintf("Central Danone %s report %s to %s", kind, from.Format("2006-01-02"), to.Format("2006-01-02"))
}

// write stores body under a fresh name. Two reports in the same second get a
// numeric suffix instead of overwriting each other.
func (g *Generator) write(kind models.ReportType, format models.ReportFormat, now time.Time, body []byte) (string, error) {
	base := fmt.Sprintf("%s%s_%s", filePrefix, kind, now.Format("20060102_150405"))

	for i := 0; i < maxNameAttempts; i++ {
		name := base + "." + string(format)
		if i > 0 {
			name = fmt.Sprintf("%s_%d.%s", base, i, format)
		}

		f, err := os.OpenFile(filepath.Join(g.dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, reportFileMode)
		if errors.Is(err, os.ErrExist) {
			continue
		}

		if err != nil {
			return "", err
		}

		if _, err := f.Write(body); err != nil {
			_ = f.Close()
			_ = os.Remove(f.Name())

			return "", err
		}

		return name, f.Close()
	}

	return "", fmt.Errorf("%w: %s", errNameExhausted, base)
}

// List returns the stored reports, newest first.
func (g *Generator) List() ([]models.ReportInfo, error) {
	entries, err := os.ReadDir(g.dir)
	if errors.Is(err, os.ErrNotExist) {
		return []models.ReportInfo{}, nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to read reports directory: %w", err)
	}

	out := make([]models.ReportInfo, 0, len(entries))

	for _, e := range entries {
		if e.IsDir() || validateName(e.Name()) != nil {
			continue
		}

		info, err := g.info(e.Name())
		if err != nil {
			// Deleted between ReadDir and Stat.
			continue
		}

		out = append(out, *info)
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].Created.Equal(out[j].Created) {
			return out[i].Created.After(out[j].Created)
		}

		return out[i].Filename > out[j].Filename
	})

	return out, nil
}

// Stats summarizes the report directory.
func (g *Generator) Stats() (*models.ReportStats, error) {
	list, err := g.List()
	if err != nil {
		return nil, err
	}

	now := g.now()
	stats := &models.ReportStats{TotalReports: len(list)}

	for i := range list {
		stats.TotalSizeBytes += list[i].Size

		created := list[i].Created.In(now.Location())
		if created.Year() == now.Year() && created.Month() == now.Month() {
			stats.ReportsThisMonth++
		}
	}

	return stats, nil
}

// Path returns the absolute location of a stored report.
func (g *Generator) Path(name string) (string, error) {
	if err := validateName(name); err != nil {
		return "", err
	}

	path := filepath.Join(g.dir, name)

	st, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) || (err == nil && st.IsDir()) {
		return "", fmt.Errorf("%w: %s", ErrReportNotFound, name)
	}

	if err != nil {
		return "", err
	}

	return path, nil
}

// Delete removes a stored report.
func (g *Generator) Delete(name string) error {
	path, err := g.Path(name)
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrReportNotFound, name)
		}

		return err
	}

	g.logger.Info().Str("filename", name).Msg("Report deleted")

	return nil
}

func (g *Generator) info(name string) (*models.ReportInfo, error) {
	st, err := os.Stat(filepath.Join(g.dir, name))
	if err != nil {
		return nil, err
	}

	return &models.ReportInfo{
		Filename:    name,
		Size:        st.Size(),
		Created:     st.ModTime().UTC(),
		DownloadURL: downloadBasePath + name,
	}, nil
}

// validateName accepts only names this package produces, so a download or
// delete can never leave the report directory.
func validateName(name string) error {
	if name == "" || name != filepath.Base(name) || strings.ContainsAny(name, `/\`) ||
		!strings.HasPrefix(name, filePrefix) {
		return fmt.Errorf("%w: %q", ErrInvalidFilename, name)
	}

	if !validFormat(models.ReportFormat(strings.TrimPrefix(filepath.Ext(name), "."))) {
		return fmt.Errorf("%w: %q", ErrInvalidFilename, name)
	}

	return nil
}

func validFormat(f models.ReportFormat) bool {
	switch f {
	case models.ReportFormatJSON, models.ReportFormatCSV, models.ReportFormatHTML:
		return true
	default:
		return false
	}
}
