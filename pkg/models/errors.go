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

import (
	"errors"
	"fmt"
)

var (
	ErrStorage        = errors.New("storage error")
	ErrConfig         = errors.New("configuration error")
	ErrCancelled      = errors.New("scan cancelled")
	ErrDeviceNotFound = errors.New("device not found")
	ErrAlertNotFound  = errors.New("alert not found")
)

// StorageError wraps a failed registry operation. The scheduler logs it and
// skips the device for the current tick.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func (*StorageError) Is(target error) bool { return target == ErrStorage }

// NewStorageError wraps err unless it is nil or already a StorageError.
func NewStorageError(op string, err error) error {
	if err == nil {
		return nil
	}

	var se *StorageError
	if errors.As(err, &se) {
		return err
	}

	return &StorageError{Op: op, Err: err}
}

// ConfigError rejects a configuration at startup.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Reason)
}

func (*ConfigError) Is(target error) bool { return target == ErrConfig }

// CancelledError marks a run that stopped before probing its whole range.
type CancelledError struct {
	RunID  string
	Probed int
	Cause  error
}

func (e *CancelledError) Error() string {
	return fmt.Sprintf("scan %s cancelled after %d probes: %v", e.RunID, e.Probed, e.Cause)
}

func (e *CancelledError) Unwrap() error { return e.Cause }

func (*CancelledError) Is(target error) bool { return target == ErrCancelled }
