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

import "errors"

var (
	ErrReportNotFound    = errors.New("report not found")
	ErrInvalidFilename   = errors.New("invalid report filename")
	ErrUnsupportedType   = errors.New("unsupported report type")
	ErrUnsupportedFormat = errors.New("unsupported report format")
	ErrInvalidWindow     = errors.New("invalid report window")
	ErrAlreadyStarted    = errors.New("report scheduler already started")
	errNameExhausted     = errors.New("no free report filename")
)
