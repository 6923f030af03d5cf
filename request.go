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

// Request is the narrow view of an incoming request the filter works on.
// Implementations wrap the framework request and mutate it in place.
type Request interface {
	// Method returns the current effective method.
	Method() string

	// SetMethod replaces the effective method seen by downstream routing.
	SetMethod(method string)

	// OriginalMethod returns the recorded transport method, if any.
	OriginalMethod() (string, bool)

	// SetOriginalMethod records the transport method.
	SetOriginalMethod(method string)

	// Header returns all values of the named header joined with ", ".
	// A missing header yields the empty string.
	Header(name string) string

	// ConsumeBodyKey reads key from the structured body and deletes it.
	// It reports false when there is no body, the body is not an object or
	// the key is missing.
	ConsumeBodyKey(key string) (any, bool)

	// Query returns the decoded values of the named query parameter.
	Query(name string) []string

	// HasBody reports whether the request carries a body.
	HasBody() bool
}

// ResponseHeader is the part of the response the filter may touch.
type ResponseHeader interface {
	// Vary adds header to the response's Vary field.
	Vary(header string)
}
