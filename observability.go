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
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"rivaas.dev/methodoverride/methods"
)

// Instrumentation scope and metric names.
const (
	instrumentationName = "rivaas.dev/methodoverride"
	metricOverrides     = "http_method_override_total"
)

// Attribute keys, following OpenTelemetry HTTP semantic conventions where
// one exists.
const (
	fieldMethod         = "http.request.method"
	fieldMethodOriginal = "http.request.method_original"
	fieldOutcome        = "methodoverride.outcome"
	fieldSource         = "methodoverride.source"

	// otherMethod replaces methods outside the known set, bounding the
	// attribute's cardinality.
	otherMethod = "_OTHER"
)

// observer records filter results as metrics and span attributes.
// A nil counter disables metrics.
type observer struct {
	counter metric.Int64Counter
	tracing bool
	known   methods.Set
}

func newObserver(provider metric.MeterProvider, tracing bool, known methods.Set) (*observer, error) {
	obs := &observer{tracing: tracing, known: known}
	if provider == nil {
		return obs, nil
	}

	counter, err := provider.Meter(instrumentationName).Int64Counter(
		metricOverrides,
		metric.WithDescription("Method override decisions by outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create method override counter: %w", err)
	}
	obs.counter = counter

	return obs, nil
}

func (o *observer) record(ctx context.Context, res Result) {
	if o.counter != nil {
		o.counter.Add(ctx, 1, metric.WithAttributes(
			attribute.String(fieldOutcome, res.Outcome.String()),
			attribute.String(fieldSource, res.Source.String()),
			attribute.String(fieldMethod, o.methodValue(res.Method)),
			attribute.String(fieldMethodOriginal, o.methodValue(res.Original)),
		))
	}

	if !o.tracing || res.Outcome != OutcomeOverridden {
		return
	}

	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	span.SetAttributes(
		attribute.String(fieldMethod, o.methodValue(res.Method)),
		attribute.String(fieldMethodOriginal, o.methodValue(res.Original)),
	)
}

func (o *observer) methodValue(method string) string {
	// Methods are case-sensitive tokens; "get" is not GET.
	if method == strings.ToUpper(method) && o.known.Contains(method) {
		return method
	}

	return otherMethod
}
