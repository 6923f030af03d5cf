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

// Package methods provides the reference set of HTTP method tokens that a
// method override hint is validated against.
//
// A [Set] is immutable once built and safe for concurrent use. Membership is
// tested case-insensitively on the candidate; the canonical form of every
// member is uppercase.
//
//	set := methods.New("GET", "POST", "PURGE")
//	set.IsOverridable("purge") // true
//	set.Canonical("purge")     // "PURGE", true
//
// [Default] mirrors the method tokens understood by common HTTP parsers,
// including the WebDAV and CalDAV extensions.
package methods
