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

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// Metrics exporters selectable with --metrics-exporter.
const (
	exporterPrometheus = "prometheus"
	exporterStdout     = "stdout"
	exporterOTLP       = "otlp"
	exporterNone       = "none"
)

const tracerName = "rivaas.dev/methodoverride/cmd/overrided"

// ErrUnsupportedExporter is returned for an unknown --metrics-exporter value.
var ErrUnsupportedExporter = errors.New("unsupported metrics exporter")

type telemetryOptions struct {
	metricsExporter string
	otlpEndpoint    string
	exportInterval  time.Duration
	traceStdout     bool
}

// telemetry owns the meter and tracer providers of the demo server.
type telemetry struct {
	meterProvider  *sdkmetric.MeterProvider
	tracerProvider *sdktrace.TracerProvider // nil when tracing is off
	metricsHandler http.Handler             // set for the prometheus exporter only
}

// newTelemetry builds the providers. Stdout exporters write to w.
func newTelemetry(ctx context.Context, opts telemetryOptions, w io.Writer) (*telemetry, error) {
	t := &telemetry{}

	var readers []sdkmetric.Option
	switch opts.metricsExporter {
	case exporterPrometheus, "":
		registry := promclient.NewRegistry()

		exporter, err := prometheus.New(prometheus.WithRegisterer(registry))
		if err != nil {
			return nil, fmt.Errorf("failed to create Prometheus exporter: %w", err)
		}
		readers = append(readers, sdkmetric.WithReader(exporter))
		t.metricsHandler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	case exporterStdout:
		exporter, err := stdoutmetric.New(stdoutmetric.WithWriter(w))
		if err != nil {
			return nil, fmt.Errorf("failed to create stdout exporter: %w", err)
		}
		readers = append(readers, sdkmetric.WithReader(
			sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(opts.exportInterval)),
		))
	case exporterOTLP:
		exporter, err := otlpmetrichttp.New(ctx, otlpmetrichttp.WithEndpointURL(opts.otlpEndpoint))
		if err != nil {
			return nil, fmt.Errorf("failed to create OTLP exporter: %w", err)
		}
		readers = append(readers, sdkmetric.WithReader(
			sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(opts.exportInterval)),
		))
	case exporterNone:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedExporter, opts.metricsExporter)
	}
	t.meterProvider = sdkmetric.NewMeterProvider(readers...)

	if opts.traceStdout {
		exporter, err := stdouttrace.New(stdouttrace.WithWriter(w))
		if err != nil {
			return nil, fmt.Errorf("failed to create stdout trace exporter: %w", err)
		}
		t.tracerProvider = sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
	}

	return t, nil
}

// traceRequests starts a server span per request, so the filter can annotate
// it. It is a pass-through when tracing is off.
func (t *telemetry) traceRequests(next http.Handler) http.Handler {
	if t.tracerProvider == nil {
		return next
	}
	tracer := t.tracerProvider.Tracer(tracerName)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "HTTP "+r.Method, trace.WithSpanKind(trace.SpanKindServer))
		defer span.End()

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// shutdown flushes and stops both providers.
func (t *telemetry) shutdown(ctx context.Context) error {
	var errs []error
	if t.tracerProvider != nil {
		errs = append(errs, t.tracerProvider.Shutdown(ctx))
	}
	errs = append(errs, t.meterProvider.Shutdown(ctx))

	return errors.Join(errs...)
}
