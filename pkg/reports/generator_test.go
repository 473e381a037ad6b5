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
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/carverauto/centraldanone/pkg/db"
	"github.com/carverauto/centraldanone/pkg/logger"
	"github.com/carverauto/centraldanone/pkg/models"
)

var (
	now = time.Date(2025, 6, 14, 18, 30, 0, 0, time.UTC)

	errSource = errors.New("source unavailable")
)

type fakeSource struct {
	stats     models.Statistics
	devices   []models.DeviceSummary
	summaries map[int64]db.ObservationSummary
	runs      int
	err       error

	from, to time.Time
}

func (f *fakeSource) Statistics(context.Context) (*models.Statistics, error) {
	if f.err != nil {
		return nil, f.err
	}

	s := f.stats

	return &s, nil
}

func (f *fakeSource) ListDevices(context.Context, models.DeviceFilter) ([]models.DeviceSummary, error) {
	return f.devices, nil
}

func (f *fakeSource) ObservationSummaries(_ context.Context, from, to time.Time) (map[int64]db.ObservationSummary, error) {
	f.from, f.to = from, to

	return f.summaries, nil
}

func (f *fakeSource) CountScanRuns(context.Context, time.Time, time.Time) (int, error) {
	return f.runs, nil
}

func strPtr(s string) *string { return &s }

func floatPtr(v float64) *float64 { return &v }

func newSource() *fakeSource {
	seen := now.Add(-5 * time.Minute)

	return &fakeSource{
		stats: models.Statistics{TotalDevices: 2, OnlineDevices: 1, OfflineDevices: 1, UptimePercentage: 62.5},
		devices: []models.DeviceSummary{
			{ID: 1, IP: "10.0.0.1", Hostname: strPtr("core-router"), DeviceType: models.DeviceTypeRouter,
				IsOnline: true, LastSeen: &seen, HealthScore: 97.5},
			{ID: 2, IP: "10.0.0.2", Hostname: strPtr("<b>lab</b>"), DeviceType: models.DeviceTypePrinter,
				HealthScore: 12, FailureProbability: 0.88, ActiveAlertCount: 2},
		},
		summaries: map[int64]db.ObservationSummary{
			1: {DeviceID: 1, Total: 4, Reachable: 3, AvgRTTMs: floatPtr(1.25)},
		},
		runs: 7,
	}
}

func newGenerator(t *testing.T, src Source) *Generator {
	t.Helper()

	g := NewGenerator(&models.ReportsConfig{Directory: filepath.Join(t.TempDir(), "reports")}, src, logger.NewTestLogger())
	g.now = func() time.Time { return now }

	return g
}

func readReport(t *testing.T, g *Generator, info *models.ReportInfo) []byte {
	t.Helper()

	path, err := g.Path(info.Filename)
	require.NoError(t, err)

	body, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, int64(len(body)), info.Size)

	return body
}

func TestGenerateJSON(t *testing.T) {
	src := newSource()
	g := newGenerator(t, src)

	info, err := g.Generate(context.Background(), &models.ReportRequest{
		Type: models.ReportWeekly, Format: models.ReportFormatJSON, Description: "weekly review",
	})
	require.NoError(t, err)

	assert.Equal(t, "report_weekly_20250614_183000.json", info.Filename)
	assert.Equal(t, "/api/reports/download/report_weekly_20250614_183000.json", info.DownloadURL)
	assert.Equal(t, now.AddDate(0, 0, -7), src.from)
	assert.Equal(t, now, src.to)

	var data Data
	require.NoError(t, json.Unmarshal(readReport(t, g, info), &data))

	assert.Equal(t, models.ReportWeekly, data.Type)
	assert.Equal(t, "weekly review", data.Description)
	assert.Equal(t, 7, data.ScanRuns)
	assert.Equal(t, 2, data.Statistics.TotalDevices)
	require.Len(t, data.Devices, 2)

	router := data.Devices[0]
	assert.Equal(t, "online", router.Status)
	assert.Equal(t, 4, router.Observations)
	require.NotNil(t, router.Availability)
	assert.InDelta(t, 75.0, *router.Availability, 1e-9)
	require.NotNil(t, router.AvgRTTMs)
	assert.InDelta(t, 1.25, *router.AvgRTTMs, 1e-9)

	printer := data.Devices[1]
	assert.Equal(t, "offline", printer.Status)
	assert.Nil(t, printer.Availability)
	assert.Equal(t, 2, printer.ActiveAlerts)
}

func TestGenerateCSV(t *testing.T) {
	g := newGenerator(t, newSource())

	info, err := g.Generate(context.Background(), &models.ReportRequest{Type: models.ReportDaily, Format: models.ReportFormatCSV})
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(readReport(t, g, info))).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, csvHeader, records[0])
	assert.Equal(t, []string{
		"1", "10.0.0.1", "core-router", "router", "online", "2025-06-14T18:25:00Z",
		"97.50", "0.0000", "4", "75.0", "1.25", "0",
	}, records[1])
	assert.Equal(t, "", records[2][5])
	assert.Equal(t, "", records[2][9])
}

func TestGenerateHTMLEscapesDeviceFields(t *testing.T) {
	g := newGenerator(t, newSource())

	info, err := g.Generate(context.Background(), &models.ReportRequest{Type: models.ReportDaily})
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(info.Filename, ".html"))

	body := string(readReport(t, g, info))
	assert.Contains(t, body, "Central Danone daily report 2025-06-14")
	assert.Contains(t, body, "10.0.0.1")
	assert.Contains(t, body, "&lt;b&gt;lab&lt;/b&gt;")
	assert.NotContains(t, body, "<b>lab</b>")
	assert.Contains(t, body, "Never")
}

func TestGenerateRejectsBadRequests(t *testing.T) {
	g := newGenerator(t, newSource())
	ctx := context.Background()
	from := now.Add(-time.Hour)
	later := now.Add(time.Hour)

	_, err := g.Generate(ctx, &models.ReportRequest{Type: "yearly"})
	require.ErrorIs(t, err, ErrUnsupportedType)

	_, err = g.Generate(ctx, &models.ReportRequest{Type: models.ReportDaily, Format: "pdf"})
	require.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = g.Generate(ctx, &models.ReportRequest{Type: models.ReportCustom})
	require.ErrorIs(t, err, ErrInvalidWindow)

	_, err = g.Generate(ctx, &models.ReportRequest{Type: models.ReportCustom, DateFrom: &later, DateTo: &from})
	require.ErrorIs(t, err, ErrInvalidWindow)

	list, err := g.List()
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestGenerateCustomWindow(t *testing.T) {
	src := newSource()
	g := newGenerator(t, src)
	from := now.Add(-36 * time.Hour)
	to := now.Add(-12 * time.Hour)

	_, err := g.Generate(context.Background(), &models.ReportRequest{
		Type: models.ReportCustom, Format: models.ReportFormatJSON, DateFrom: &from, DateTo: &to,
	})
	require.NoError(t, err)
	assert.Equal(t, from, src.from)
	assert.Equal(t, to, src.to)
}

func TestGenerateSourceErrorWritesNothing(t *testing.T) {
	src := newSource()
	src.err = errSource
	g := newGenerator(t, src)

	_, err := g.Generate(context.Background(), &models.ReportRequest{Type: models.ReportDaily})
	require.ErrorIs(t, err, errSource)

	list, err := g.List()
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestGenerateSameSecondDoesNotOverwrite(t *testing.T) {
	g := newGenerator(t, newSource())
	req := &models.ReportRequest{Type: models.ReportDaily, Format: models.ReportFormatCSV}

	first, err := g.Generate(context.Background(), req)
	require.NoError(t, err)
	second, err := g.Generate(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, "report_daily_20250614_183000.csv", first.Filename)
	assert.Equal(t, "report_daily_20250614_183000_1.csv", second.Filename)
}

func TestGenerateRecordsSpan(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	g := newGenerator(t, newSource())
	g.tracer = provider.Tracer("test")

	_, err := g.Generate(context.Background(), &models.ReportRequest{Type: models.ReportMonthly, Format: models.ReportFormatJSON})
	require.NoError(t, err)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "report.generate", spans[0].Name())
}

func TestListStatsAndDelete(t *testing.T) {
	g := newGenerator(t, newSource())
	ctx := context.Background()

	old, err := g.Generate(ctx, &models.ReportRequest{Type: models.ReportDaily, Format: models.ReportFormatJSON})
	require.NoError(t, err)
	recent, err := g.Generate(ctx, &models.ReportRequest{Type: models.ReportWeekly, Format: models.ReportFormatCSV})
	require.NoError(t, err)

	lastMonth := now.AddDate(0, -1, 0)
	require.NoError(t, os.Chtimes(filepath.Join(g.Dir(), old.Filename), lastMonth, lastMonth))
	require.NoError(t, os.Chtimes(filepath.Join(g.Dir(), recent.Filename), now, now))

	// Foreign files are ignored.
	require.NoError(t, os.WriteFile(filepath.Join(g.Dir(), "notes.txt"), []byte("x"), 0o600))

	list, err := g.List()
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, recent.Filename, list[0].Filename)
	assert.Equal(t, old.Filename, list[1].Filename)

	stats, err := g.Stats()
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalReports)
	assert.Equal(t, 1, stats.ReportsThisMonth)
	assert.Equal(t, old.Size+recent.Size, stats.TotalSizeBytes)

	require.NoError(t, g.Delete(old.Filename))
	require.ErrorIs(t, g.Delete(old.Filename), ErrReportNotFound)

	list, err = g.List()
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestPathRejectsForeignNames(t *testing.T) {
	g := newGenerator(t, newSource())

	for _, name := range []string{"", "../report_daily_x.json", "report_daily_x.exe", "notes.txt", `report_a\b.csv`} {
		_, err := g.Path(name)
		require.ErrorIs(t, err, ErrInvalidFilename, name)
	}

	_, err := g.Path("report_daily_20250101_000000.json")
	require.ErrorIs(t, err, ErrReportNotFound)
}

func TestListMissingDirectory(t *testing.T) {
	g := newGenerator(t, newSource())

	list, err := g.List()
	require.NoError(t, err)
	assert.Empty(t, list)

	stats, err := g.Stats()
	require.NoError(t, err)
	assert.Zero(t, stats.TotalReports)
}
