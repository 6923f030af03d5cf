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

// Package bodyparser decodes request bodies into structured values for the
// method override body getter.
//
// The middleware reads the body once, decodes it according to its
// Content-Type and attaches the result with methodoverride.WithBody. The raw
// bytes are restored, so downstream handlers can still read r.Body.
//
// # Basic Usage
//
//	import (
//	    "rivaas.dev/methodoverride"
//	    "rivaas.dev/methodoverride/bodyparser"
//	)
//
//	f := methodoverride.MustNew() // reads the "_method" body field
//	handler := bodyparser.New()(f.Handler(mux))
//
// # Supported Content Types
//
//   - application/json and any +json suffix
//   - application/x-www-form-urlencoded
//   - multipart/form-data (value parts only)
//   - application/msgpack, application/x-msgpack, application/vnd.msgpack
//   - application/yaml, application/x-yaml, text/yaml
//   - application/toml
//
// Additional decoders can be registered with WithDecoder.
//
// # Failure Handling
//
// Undecodable or oversized bodies leave the request without a structured
// body; the chain always continues. WithStrictLimit(true) answers oversized
// bodies with 413 instead.
package bodyparser
