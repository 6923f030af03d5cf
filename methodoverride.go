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
	"log/slog"
	"strings"

	"rivaas.dev/methodoverride/methods"
)

// Outcome describes what a filter pass did with a request.
type Outcome int

const (
	// OutcomeSkipped means the request method is not an allowed source
	// method and the getter was not invoked.
	OutcomeSkipped Outcome = iota
	// OutcomeAbsent means the getter found no hint.
	OutcomeAbsent
	// OutcomeRejected means a hint was found but is not a known method.
	OutcomeRejected
	// OutcomeOverridden means the effective method was rewritten.
	OutcomeOverridden
)

// String returns the outcome name used in logs and metric attributes.
func (o Outcome) String() string {
	switch o {
	case OutcomeSkipped:
		return "skipped"
	case OutcomeAbsent:
		return "absent"
	case OutcomeRejected:
		return "rejected"
	case OutcomeOverridden:
		return "overridden"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Result reports a single filter pass.
type Result struct {
	Original string  // Transport method recorded on the request
	Previous string  // Effective method before this pass
	Method   string  // Effective method after this pass
	Outcome  Outcome // What happened
	Source   Source  // Getter source of the filter
}

// Filter rewrites the effective method of requests carrying an override hint.
// A Filter is immutable after construction and safe for concurrent use.
type Filter struct {
	getter  Getter
	extract extractor
	sources map[string]struct{} // nil means every method is a source method
	known   methods.Set
	logger  *slog.Logger
	obs     *observer

	requireCSRFToken bool
	respectBody      bool
}

// New creates a method override filter.
//
// Without options the filter reads the "_method" field of the decoded body and
// only considers POST requests:
//
//	f := methodoverride.MustNew()
//
// Header based override for POST and PATCH requests:
//
//	f, err := methodoverride.New(
//	    methodoverride.WithGetter(methodoverride.Header("X-HTTP-Method-Override")),
//	    methodoverride.WithMethods("POST", "PATCH"),
//	)
//
// SECURITY WARNING: method override lets clients reach handlers for verbs they
// did not send. Combine it with CSRF protection when hints come from forms.
func New(opts ...Option) (*Filter, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	extract, err := cfg.getter.resolve()
	if err != nil {
		return nil, err
	}

	var sources map[string]struct{}
	if !cfg.anyMethod {
		sources = make(map[string]struct{}, len(cfg.methods))
		for _, m := range cfg.methods {
			if m == "" || m != strings.ToUpper(m) {
				return nil, fmt.Errorf("%w: %q", ErrInvalidMethod, m)
			}
			sources[m] = struct{}{}
		}
	}

	logger := cfg.logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	obs, err := newObserver(cfg.meterProvider, cfg.tracing, cfg.known)
	if err != nil {
		return nil, err
	}

	return &Filter{
		getter:  cfg.getter,
		extract: extract,
		sources: sources,
		known:   cfg.known,
		logger:  logger,
		obs:     obs,

		requireCSRFToken: cfg.requireCSRFToken,
		respectBody:      cfg.respectBody,
	}, nil
}

// MustNew is like New but panics on an invalid configuration.
func MustNew(opts ...Option) *Filter {
	f, err := New(opts...)
	if err != nil {
		panic(err)
	}

	return f
}

// Getter returns the getter the filter was built with.
func (f *Filter) Getter() Getter {
	return f.getter
}

// SourceMethods returns the sorted allowed source methods, or nil when every
// method is eligible.
func (f *Filter) SourceMethods() []string {
	if f.sources == nil {
		return nil
	}

	out := make([]string, 0, len(f.sources))
	for m := range f.sources {
		out = append(out, m)
	}

	return methods.New(out...).Methods()
}

// Apply runs one filter pass over req. It records the original method,
// checks eligibility, extracts and validates the hint and rewrites the
// effective method in place. A request is eligible when its current method is
// a source method and, if configured, ctx carries CSRF verification and the
// request has a body. When the getter reads a header and the request is
// eligible, the header is added to res's Vary field whether or not the method
// changes. Apply never fails; res may be nil.
func (f *Filter) Apply(ctx context.Context, req Request, res ResponseHeader) Result {
	current := req.Method()

	original, ok := req.OriginalMethod()
	if !ok {
		original = current
		req.SetOriginalMethod(original)
	}

	result := Result{
		Original: original,
		Previous: current,
		Method:   current,
		Source:   f.getter.source,
	}

	// Gate on the current method so chained filters can build on each other.
	if !f.eligible(current) {
		result.Outcome = OutcomeSkipped
		f.obs.record(ctx, result)

		return result
	}

	if reason := f.blocked(ctx, req); reason != "" {
		result.Outcome = OutcomeSkipped
		f.logger.DebugContext(ctx, "method override not attempted",
			"reason", reason,
			"method", current,
		)
		f.obs.record(ctx, result)

		return result
	}

	if res != nil && f.getter.source == SourceHeader {
		res.Vary(f.getter.HeaderName())
	}

	hint := first(f.extract(req))
	if hint == nil || hint == "" {
		result.Outcome = OutcomeAbsent
		f.obs.record(ctx, result)

		return result
	}

	method, ok := f.known.Canonical(hint)
	if !ok {
		result.Outcome = OutcomeRejected
		f.logger.DebugContext(ctx, "ignoring method override hint",
			"hint", hint,
			"source", f.getter.String(),
			"method", current,
		)
		f.obs.record(ctx, result)

		return result
	}

	req.SetMethod(method)
	result.Method = method
	result.Outcome = OutcomeOverridden
	f.logger.DebugContext(ctx, "method overridden",
		"from", current,
		"to", method,
		"source", f.getter.String(),
	)
	f.obs.record(ctx, result)

	return result
}

func (f *Filter) eligible(method string) bool {
	if f.sources == nil {
		return true
	}
	_, ok := f.sources[method]

	return ok
}

// blocked returns why an eligible request may not be overridden, or "".
func (f *Filter) blocked(ctx context.Context, req Request) string {
	if f.requireCSRFToken {
		if verified, ok := ctx.Value(CSRFVerifiedKey).(bool); !ok || !verified {
			return "csrf not verified"
		}
	}
	if f.respectBody && !req.HasBody() {
		return "no request body"
	}

	return ""
}
