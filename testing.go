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
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
)

// NewTestLogger creates a silent logger for tests.
func NewTestLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

// NewCaptureLogger creates a debug level JSON logger writing to w, for tests
// that assert on log output.
func NewCaptureLogger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
}

// TestRequest is an in-memory Request for exercising a Filter or a custom
// getter without an HTTP stack.
//
//	req := &methodoverride.TestRequest{
//	    CurrentMethod: "POST",
//	    Body:          map[string]any{"_method": "DELETE"},
//	}
//	f.Apply(ctx, req, nil)
type TestRequest struct {
	CurrentMethod string
	Original      string // Empty means not recorded
	Headers       http.Header
	Body          any
	QueryValues   url.Values
	ContentLength int64 // Raw body size; a non-nil Body also counts as a body

	// SetMethodCalls counts effective method rewrites.
	SetMethodCalls int
}

// Method implements Request.
func (r *TestRequest) Method() string { return r.CurrentMethod }

// SetMethod implements Request.
func (r *TestRequest) SetMethod(method string) {
	r.CurrentMethod = method
	r.SetMethodCalls++
}

// OriginalMethod implements Request.
func (r *TestRequest) OriginalMethod() (string, bool) { return r.Original, r.Original != "" }

// SetOriginalMethod implements Request.
func (r *TestRequest) SetOriginalMethod(method string) { r.Original = method }

// Header implements Request.
func (r *TestRequest) Header(name string) string {
	return strings.Join(r.Headers.Values(name), ", ")
}

// ConsumeBodyKey implements Request.
func (r *TestRequest) ConsumeBodyKey(key string) (any, bool) {
	obj, ok := r.Body.(map[string]any)
	if !ok {
		return nil, false
	}
	value, ok := obj[key]
	if ok {
		delete(obj, key)
	}

	return value, ok
}

// Query implements Request.
func (r *TestRequest) Query(name string) []string { return r.QueryValues[name] }

// HasBody implements Request.
func (r *TestRequest) HasBody() bool { return r.ContentLength != 0 || r.Body != nil }

// TestResponse records Vary names written by a Filter.
type TestResponse struct {
	VaryNames []string
}

// Vary implements ResponseHeader.
func (r *TestResponse) Vary(header string) {
	r.VaryNames = append(r.VaryNames, header)
}
