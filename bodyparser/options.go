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

package bodyparser

import (
	"log/slog"
	"net/http"
	"strings"
)

// DefaultLimit is the default maximum body size read by the parser (1 MiB).
const DefaultLimit int64 = 1 << 20

// Option defines functional options for the body parser middleware.
type Option func(*config)

// config holds body parser configuration.
type config struct {
	limit       int64
	strictLimit bool
	methods     map[string]bool
	decoders    map[string]Decoder
	logger      *slog.Logger
}

func defaultConfig() *config {
	return &config{
		limit: DefaultLimit,
		methods: map[string]bool{
			http.MethodPost:   true,
			http.MethodPut:    true,
			http.MethodPatch:  true,
			http.MethodDelete: true,
		},
		decoders: defaultDecoders(),
	}
}

// WithLimit sets the maximum number of body bytes read.
// Default: 1 MiB
//
// Example:
//
//	bodyparser.New(bodyparser.WithLimit(64 << 10))
func WithLimit(limit int64) Option {
	return func(c *config) {
		if limit > 0 {
			c.limit = limit
		}
	}
}

// WithStrictLimit answers bodies over the limit with 413 Request Entity Too
// Large instead of passing them on undecoded.
// Default: false
func WithStrictLimit(strict bool) Option {
	return func(c *config) {
		c.strictLimit = strict
	}
}

// WithMethods sets the request methods whose bodies are decoded.
// Default: POST, PUT, PATCH, DELETE
//
// Example:
//
//	bodyparser.New(bodyparser.WithMethods("POST"))
func WithMethods(methods ...string) Option {
	return func(c *config) {
		c.methods = make(map[string]bool, len(methods))
		for _, m := range methods {
			c.methods[strings.ToUpper(m)] = true
		}
	}
}

// WithDecoder registers a decoder for a media type such as "application/cbor".
// Registering an existing media type replaces its decoder.
func WithDecoder(mediaType string, d Decoder) Option {
	return func(c *config) {
		c.decoders[strings.ToLower(mediaType)] = d
	}
}

// WithLogger sets the logger for decode failures (debug level).
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}
