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
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel/metric"

	"rivaas.dev/methodoverride/methods"
)

// Option defines functional options for the method override filter.
type Option func(*config)

// config holds the configuration for the method override filter.
type config struct {
	getter        Getter
	methods       []string
	anyMethod     bool
	known         methods.Set
	logger        *slog.Logger
	meterProvider metric.MeterProvider
	tracing       bool

	requireCSRFToken bool
	respectBody      bool
}

// defaultConfig returns the default configuration: body field "_method",
// override attempted on POST only.
func defaultConfig() *config {
	return &config{
		getter:  Body(DefaultBodyKey),
		methods: []string{http.MethodPost},
		known:   methods.Default,
		tracing: true,
	}
}

// WithGetter sets where the override hint is read from.
// Default: Body("_method")
//
// Example:
//
//	methodoverride.New(methodoverride.WithGetter(methodoverride.Header("X-HTTP-Method-Override")))
func WithGetter(g Getter) Option {
	return func(cfg *config) {
		cfg.getter = g
	}
}

// WithMethods sets the source methods a request must currently have for an
// override to be attempted. Methods must be uppercase tokens.
// Default: ["POST"]
//
// Example:
//
//	methodoverride.New(methodoverride.WithMethods("POST", "PATCH"))
func WithMethods(methods ...string) Option {
	return func(cfg *config) {
		cfg.methods = methods
		cfg.anyMethod = false
	}
}

// WithAnyMethod attempts an override regardless of the request method.
func WithAnyMethod() Option {
	return func(cfg *config) {
		cfg.anyMethod = true
	}
}

// WithKnownMethods replaces the reference set hints are validated against.
// Default: methods.Default
//
// Example:
//
//	methodoverride.New(methodoverride.WithKnownMethods(methods.New("PUT", "PATCH", "DELETE")))
func WithKnownMethods(set methods.Set) Option {
	return func(cfg *config) {
		cfg.known = set
	}
}

// WithLogger sets the logger for override decisions. Decisions are logged at
// debug level. Default: discard.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *config) {
		cfg.logger = logger
	}
}

// WithMeterProvider records the http_method_override_total counter with the
// given provider. Default: no metrics.
func WithMeterProvider(provider metric.MeterProvider) Option {
	return func(cfg *config) {
		cfg.meterProvider = provider
	}
}

// WithTracing controls whether overridden requests annotate the active span
// with the effective and original method. Default: true
func WithTracing(enabled bool) Option {
	return func(cfg *config) {
		cfg.tracing = enabled
	}
}

// WithRequireCSRFToken requires CSRF verification before an override is
// attempted. A CSRF middleware must run first and store true under
// CSRFVerifiedKey in the request context.
// Default: false
//
// SECURITY WARNING: form based overrides let a cross-site form reach PUT,
// PATCH and DELETE handlers. Enable this for any browser facing application.
//
// Example:
//
//	f := methodoverride.MustNew(methodoverride.WithRequireCSRFToken(true))
//	handler := csrfVerify(f.Handler(mux)) // csrfVerify sets CSRFVerifiedKey
func WithRequireCSRFToken(required bool) Option {
	return func(cfg *config) {
		cfg.requireCSRFToken = required
	}
}

// WithRespectBody requires a request body for method overrides.
// When enabled, requests without a body are not overridden.
// Default: false
//
// Example:
//
//	methodoverride.New(methodoverride.WithRespectBody(true))
func WithRespectBody(required bool) Option {
	return func(cfg *config) {
		cfg.respectBody = required
	}
}
