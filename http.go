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
	"net/http"
	"net/url"
	"strings"

	"github.com/vfaronov/httpheader"
)

// HTTPRequest adapts an *http.Request to Request. The original method is kept
// in the request context, so recording it replaces the wrapped request with a
// shallow copy; use Request to obtain the current one.
type HTTPRequest struct {
	r *http.Request
}

// NewRequest wraps r.
func NewRequest(r *http.Request) *HTTPRequest {
	return &HTTPRequest{r: r}
}

// Request returns the wrapped request, including any context updates.
func (h *HTTPRequest) Request() *http.Request {
	return h.r
}

// Method implements Request.
func (h *HTTPRequest) Method() string {
	return h.r.Method
}

// SetMethod implements Request.
func (h *HTTPRequest) SetMethod(method string) {
	h.r.Method = method
}

// OriginalMethod implements Request.
func (h *HTTPRequest) OriginalMethod() (string, bool) {
	orig, ok := h.r.Context().Value(OriginalMethodKey).(string)
	return orig, ok
}

// SetOriginalMethod implements Request.
func (h *HTTPRequest) SetOriginalMethod(method string) {
	h.r = h.r.WithContext(context.WithValue(h.r.Context(), OriginalMethodKey, method))
}

// Header implements Request. Repeated header lines are joined with ", ".
func (h *HTTPRequest) Header(name string) string {
	return strings.Join(h.r.Header.Values(name), ", ")
}

// ConsumeBodyKey implements Request for bodies stored with WithBody.
// Object bodies are map[string]any or url.Values.
func (h *HTTPRequest) ConsumeBodyKey(key string) (any, bool) {
	body, ok := BodyFrom(h.r)
	if !ok {
		return nil, false
	}

	switch obj := body.(type) {
	case map[string]any:
		value, ok := obj[key]
		if !ok {
			return nil, false
		}
		delete(obj, key)
		return value, true
	case url.Values:
		value, ok := obj[key]
		if !ok {
			return nil, false
		}
		delete(obj, key)
		return value, true
	default:
		return nil, false
	}
}

// HasBody implements Request. A body attached with WithBody counts, as does
// any request with a non-zero (or unknown) Content-Length.
func (h *HTTPRequest) HasBody() bool {
	if h.r.ContentLength != 0 {
		return true
	}
	_, ok := BodyFrom(h.r)

	return ok
}

// Query implements Request.
func (h *HTTPRequest) Query(name string) []string {
	if h.r.URL == nil {
		return nil
	}

	return h.r.URL.Query()[name]
}

// VaryHeader adapts a response header map to ResponseHeader.
type VaryHeader http.Header

// Vary implements ResponseHeader. Names already listed, or a "Vary: *"
// response, are left alone.
func (v VaryHeader) Vary(name string) {
	h := http.Header(v)
	listed := httpheader.Vary(h)
	if listed["*"] || listed[http.CanonicalHeaderKey(name)] {
		return
	}
	httpheader.AddVary(h, name)
}

// Handler returns net/http middleware running the filter before next.
// next is always called.
//
//	mux := http.NewServeMux()
//	http.ListenAndServe(":8080", f.Handler(mux))
func (f *Filter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r, _ = f.Rewrite(w, r)
		next.ServeHTTP(w, r)
	})
}

// HandleNext runs the filter and then calls next with the rewritten request,
// for stacks that pass the continuation explicitly.
func (f *Filter) HandleNext(w http.ResponseWriter, r *http.Request, next http.HandlerFunc) {
	r, _ = f.Rewrite(w, r)
	next(w, r)
}

// Rewrite applies the filter to r and returns the request to pass on, which
// may be a shallow copy of r carrying the original method. w may be nil, in
// which case no Vary field is written.
func (f *Filter) Rewrite(w http.ResponseWriter, r *http.Request) (*http.Request, Result) {
	req := NewRequest(r)

	var res ResponseHeader
	if w != nil {
		res = VaryHeader(w.Header())
	}

	result := f.Apply(r.Context(), req, res)

	return req.Request(), result
}

// GetOriginalMethod returns the transport method recorded by a filter, or the
// current method when no filter ran.
func GetOriginalMethod(r *http.Request) string {
	if orig, ok := r.Context().Value(OriginalMethodKey).(string); ok {
		return orig
	}

	return r.Method
}

// WithBody returns a shallow copy of r carrying the decoded body. Body getters
// read and delete keys of object bodies (map[string]any or url.Values).
func WithBody(r *http.Request, body any) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), BodyKey, body))
}

// BodyFrom returns the decoded body stored with WithBody.
func BodyFrom(r *http.Request) (any, bool) {
	body := r.Context().Value(BodyKey)
	return body, body != nil
}
