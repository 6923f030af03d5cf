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

// Package methodoverride provides a request filter for HTTP method override,
// letting clients that can only send GET or POST (HTML forms, restrictive
// proxies and firewalls) express the method they intend, such as PUT, PATCH
// or DELETE.
//
// The intended method is read by a [Getter] from a request header, a field of
// the decoded body, a query parameter or a custom function. When the request's
// current method is an allowed source method (POST by default), the hint is
// validated against a reference set of known methods ([methods.Default]) and,
// if valid, becomes the request's effective method in upper case. Invalid or
// missing hints are ignored; the filter never fails a request.
//
// # Basic Usage
//
//	import "rivaas.dev/methodoverride"
//
//	f := methodoverride.MustNew(
//	    methodoverride.WithGetter(methodoverride.Header("X-HTTP-Method-Override")),
//	)
//	http.ListenAndServe(":8080", f.Handler(mux))
//
// # Getters
//
//   - Header(name): first value of a possibly comma-joined header; the header
//     is added to the response's Vary field whenever the filter consults it
//   - Body(key): field of the decoded body, removed once read (default "_method")
//   - Query(name): first value of a query parameter
//   - Func(fn): any function of the request
//   - ParseGetter(s): "X-..." selects a header, anything else a body field
//
// Body getters need a decoded body; see package bodyparser, or attach one with
// [WithBody].
//
// # Configuration Options
//
//   - WithGetter: where the hint is read (default: Body("_method"))
//   - WithMethods: allowed source methods (default: POST)
//   - WithAnyMethod: attempt an override for every request method
//   - WithKnownMethods: reference set hints are validated against
//   - WithLogger, WithMeterProvider, WithTracing: observability
//
// The original transport method is recorded once per request and is available
// through [GetOriginalMethod]. Chained filters keep the first recorded value.
//
// # Example Usage
//
// Clients can override methods using headers:
//
//	POST /users/123 HTTP/1.1
//	X-HTTP-Method-Override: DELETE
//
// Or using form fields:
//
//	<form method="POST" action="/users/123">
//	    <input type="hidden" name="_method" value="DELETE">
//	    <button type="submit">Delete</button>
//	</form>
//
// # Security Considerations
//
// Method override should only be used when necessary (e.g., HTML form
// limitations). Consider CSRF protection when using form-based method override:
// with WithRequireCSRFToken the filter only overrides requests whose context
// carries true under CSRFVerifiedKey, so a CSRF middleware must run first.
// WithRespectBody additionally skips requests that have no body.
package methodoverride
