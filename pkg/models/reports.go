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

package models

import "time"

// ReportType selects the time window of a report.
type ReportType string

const (
	ReportDaily   ReportType = "daily"
	ReportWeekly  ReportType = "weekly"
	ReportMonthly ReportType = "monthly"
	ReportCustom  ReportType = "custom"
)

// ReportFormat selects the output encoding.
type ReportFormat string

const (
	ReportFormatJSON ReportFormat = "json"
	ReportFormatCSV  ReportFormat = "csv"
	ReportFormatHTML ReportFormat = "html"
)

// ReportRequest is the body of POST /api/reports/generate.
type ReportRequest struct {
	Type        ReportType   `json:"type"`
	Format      ReportFormat `json:"format"`
	DateFrom    *time.Time   `json:"date_from,omitempty"`
	DateTo      *time.Time   `json:"date_to,omitempty"`
	Description string       `json:"description,omitempty"`
}

// ReportInfo describes one generated report file.
type ReportInfo struct {
	Filename    string    `json:"filename"`
	Size        int64     `json:"size"`
	Created     time.Time `json:"created"`
	DownloadURL string    `json:"download_url"`
}

// ReportStats summarises the report directory.
type ReportStats struct {
	TotalReports     int   `json:"total_reports"`
	ReportsThisMonth int   `json:"reports_this_month"`
	TotalSizeBytes   int64 `json:"total_size_bytes"`
}
