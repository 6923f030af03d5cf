// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package methodoverride

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidGetter is returned when a getter cannot be resolved, e.g. an
	// empty header name or a nil function.
	ErrInvalidGetter = errors.New("methodoverride: invalid getter")

	// ErrInvalidMethod is returned when a configured source method is empty
	// or not uppercase.
	ErrInvalidMethod = errors.New("methodoverride: source methods must be non-empty uppercase tokens")

	// ErrInvalidConfig is returned when a declarative configuration cannot be
	// loaded or fails validation.
	ErrInvalidConfig = errors.New("methodoverride: invalid configuration")
)

// ConfigError describes a configuration failure with the field and the
// operation that produced it.
type ConfigError struct {
	Field     string // Offending field (optional)
	Operation string // "parse", "decode", "validate" or "build"
	Err       error  // Underlying error
}

// Error returns a formatted error message.
func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("methodoverride config error in %s during %s: %v", e.Field, e.Operation, e.Err)
	}

	return fmt.Sprintf("methodoverride config error during %s: %v", e.Operation, e.Err)
}

// Unwrap returns the underlying error.
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// Is reports ErrInvalidConfig for every ConfigError so callers can test for
// configuration failures without knowing the cause.
func (e *ConfigError) Is(target error) bool {
	return target == ErrInvalidConfig
}
