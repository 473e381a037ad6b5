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
	_ "embed"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"html/template"
	"strconv"
	"time"

	"github.com/carverauto/centraldanone/pkg/models"
)

//go:embed templates/report.html
var reportTemplate string

var htmlReport = template.Must(template.New("report").Funcs(template.FuncMap{
	"pct":  formatPercent,
	"ms":   formatMillis,
	"when": formatTime,
	"fmt1": func(v float64) string { return strconv.FormatFloat(v, 'f', 1, 64) },
}).Parse(reportTemplate))

var csvHeader = []string{
	"id", "ip", "hostname", "device_type", "status", "last_seen", "health_score",
	"failure_probability", "observations", "availability_pct", "avg_rtt_ms", "active_alerts",
}

func render(format models.ReportFormat, data *Data) ([]byte, error) {
	switch format {
	case models.ReportFormatJSON:
		return json.MarshalIndent(data, "", "  ")
	case models.ReportFormatCSV:
		return renderCSV(data)
	case models.ReportFormatHTML:
		var buf bytes.Buffer
		if err := htmlReport.Execute(&buf, data); err != nil {
			return nil, fmt.Errorf("template execute error: %w", err)
		}

		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

func renderCSV(data *Data) ([]byte, error) {
	var buf bytes.Buffer

	w := csv.NewWriter(&buf)

	if err := w.Write(csvHeader); err != nil {
		return nil, err
	}

	for i := range data.Devices {
		d := &data.Devices[i]

		record := []string{
			strconv.FormatInt(d.ID, 10),
			d.IP,
			d.Hostname,
			d.DeviceType,
			d.Status,
			formatTime(d.LastSeen),
			strconv.FormatFloat(d.HealthScore, 'f', 2, 64),
			strconv.FormatFloat(d.FailureProbability, 'f', 4, 64),
			strconv.Itoa(d.Observations),
			formatPercent(d.Availability),
			formatMillis(d.AvgRTTMs),
			strconv.Itoa(d.ActiveAlerts),
		}

		if err := w.Write(record); err != nil {
			return nil, err
		}
	}

	w.Flush()

	return buf.Bytes(), w.Error()
}

func formatPercent(v *float64) string {
	if v == nil {
		return ""
	}

	return strconv.FormatFloat(*v, 'f', 1, 64)
}

func formatMillis(v *float64) string {
	if v == nil {
		return ""
	}

	return strconv.FormatFloat(*v, 'f', 2, 64)
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}

	return t.UTC().Format(time.RFC3339)
}
