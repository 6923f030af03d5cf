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

// Package echooverride binds the method override filter to Echo.
//
// Echo routes a request before running middleware registered with Use, and it
// routes on the request it received, so the filter rewrites that request in
// place and must be registered with Pre:
//
//	e := echo.New()
//	e.Pre(echooverride.New(methodoverride.MustNew(
//	    methodoverride.WithGetter(methodoverride.Header("X-HTTP-Method-Override")),
//	)))
//
// Body getters need a decoded body; pass a parser with WithBodyParser:
//
//	e.Pre(echooverride.New(methodoverride.MustNew(),
//	    echooverride.WithBodyParser(bodyparser.NewParser()),
//	))
package echooverride

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"rivaas.dev/methodoverride"
	"rivaas.dev/methodoverride/bodyparser"
)

// Echo context keys.
const (
	originalMethodKey = string(methodoverride.OriginalMethodKey)
	bodyKey           = string(methodoverride.BodyKey)
)

// Option defines functional options for the Echo binding.
type Option func(*config)

type config struct {
	parser *bodyparser.Parser
}

// WithBodyParser decodes request bodies with p before body getters run.
func WithBodyParser(p *bodyparser.Parser) Option {
	return func(cfg *config) {
		cfg.parser = p
	}
}

// New returns Echo middleware running f before routing.
func New(f *methodoverride.Filter, opts ...Option) echo.MiddlewareFunc {
	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}
	parseBody := cfg.parser != nil && f.Getter().Source() == methodoverride.SourceBody

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if parseBody {
				if _, ok := c.Get(bodyKey).(map[string]any); !ok {
					if body, err := cfg.parser.Parse(c.Request()); err == nil {
						c.Set(bodyKey, body)
					}
				}
			}

			req := &contextRequest{c: c, routed: c.Request()}
			f.Apply(c.Request().Context(), req, methodoverride.VaryHeader(c.Response().Header()))

			return next(c)
		}
	}
}

// OriginalMethod returns the transport method of the request handled by c.
func OriginalMethod(c echo.Context) string {
	if orig, ok := c.Get(originalMethodKey).(string); ok {
		return orig
	}

	return methodoverride.GetOriginalMethod(c.Request())
}

// Body returns the body decoded by the binding, if any. Keys consumed by the
// filter are no longer present.
func Body(c echo.Context) (any, bool) {
	body := c.Get(bodyKey)
	return body, body != nil
}

// contextRequest implements methodoverride.Request on top of an Echo context.
// routed is the request Echo routes on; recording the original method swaps
// c.Request() for a copy with a new context, so method changes go to both.
type contextRequest struct {
	c      echo.Context
	routed *http.Request
}

func (r *contextRequest) Method() string {
	return r.c.Request().Method
}

func (r *contextRequest) SetMethod(method string) {
	r.routed.Method = method
	r.c.Request().Method = method
}

func (r *contextRequest) OriginalMethod() (string, bool) {
	if orig, ok := r.c.Get(originalMethodKey).(string); ok {
		return orig, true
	}
	orig, ok := r.c.Request().Context().Value(methodoverride.OriginalMethodKey).(string)

	return orig, ok
}

// SetOriginalMethod records method in the Echo context and in the request
// context, so methodoverride.GetOriginalMethod(c.Request()) agrees with
// OriginalMethod(c).
func (r *contextRequest) SetOriginalMethod(method string) {
	r.c.Set(originalMethodKey, method)

	req := r.c.Request()
	r.c.SetRequest(req.WithContext(context.WithValue(req.Context(), methodoverride.OriginalMethodKey, method)))
}

func (r *contextRequest) Header(name string) string {
	return strings.Join(r.c.Request().Header.Values(name), ", ")
}

func (r *contextRequest) ConsumeBodyKey(key string) (any, bool) {
	obj, ok := r.c.Get(bodyKey).(map[string]any)
	if !ok {
		return methodoverride.NewRequest(r.c.Request()).ConsumeBodyKey(key)
	}
	value, ok := obj[key]
	if ok {
		delete(obj, key)
	}

	return value, ok
}

func (r *contextRequest) HasBody() bool {
	return r.c.Get(bodyKey) != nil || methodoverride.NewRequest(r.c.Request()).HasBody()
}

func (r *contextRequest) Query(name string) []string {
	return r.c.QueryParams()[name]
}
