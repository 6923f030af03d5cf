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

// ContextKey is a type for context keys to avoid collisions with other packages.
type ContextKey string

const (
	// OriginalMethodKey is the context key for storing the transport HTTP
	// method before any override.
	OriginalMethodKey ContextKey = "methodoverride.original_method"

	// BodyKey is the context key for the decoded request body. It is set by
	// the bodyparser package or by WithBody.
	BodyKey ContextKey = "methodoverride.body"

	// CSRFVerifiedKey is the context key for CSRF verification status. A CSRF
	// middleware running before the filter sets it to true once the token is
	// verified; see WithRequireCSRFToken.
	CSRFVerifiedKey ContextKey = "methodoverride.csrf_verified"
)
