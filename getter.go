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
	"fmt"
	"strings"
)

// DefaultBodyKey is the body field inspected when no getter is configured.
const DefaultBodyKey = "_method"

// Source identifies where a getter reads the override hint from.
type Source int

const (
	// SourceBody reads a field of the decoded request body.
	SourceBody Source = iota
	// SourceHeader reads a request header.
	SourceHeader
	// SourceQuery reads a query parameter.
	SourceQuery
	// SourceFunc calls a user supplied GetterFunc.
	SourceFunc
)

// String returns the lower-case source name.
func (s Source) String() string {
	switch s {
	case SourceBody:
		return "body"
	case SourceHeader:
		return "header"
	case SourceQuery:
		return "query"
	case SourceFunc:
		return "func"
	default:
		return fmt.Sprintf("source(%d)", int(s))
	}
}

// ParseSource converts "body", "header", "query" or "func" into a Source.
func ParseSource(s string) (Source, error) {
	switch strings.ToLower(s) {
	case "body":
		return SourceBody, nil
	case "header":
		return SourceHeader, nil
	case "query":
		return SourceQuery, nil
	case "func":
		return SourceFunc, nil
	default:
		return 0, fmt.Errorf("%w: unknown source %q", ErrInvalidGetter, s)
	}
}

// GetterFunc extracts an override hint from a request. It returns nil when no
// hint is present, a string, or a []string / []any whose first element is the
// hint. Any other value is treated as invalid.
type GetterFunc func(Request) any

// Getter describes where the override hint comes from. It is resolved once,
// when the filter is built. The zero value is the default body getter.
type Getter struct {
	source Source
	key    string
	name   string // header name as configured, used for Vary
	fn     GetterFunc
}

// Header returns a getter reading the named request header. Only the first
// value of a comma-joined header is used.
func Header(name string) Getter {
	return Getter{source: SourceHeader, key: strings.ToLower(name), name: name}
}

// Body returns a getter reading key from the decoded request body. The key is
// removed from the body whenever it is present.
func Body(key string) Getter {
	return Getter{source: SourceBody, key: key}
}

// Query returns a getter reading the first value of the named query parameter.
func Query(name string) Getter {
	return Getter{source: SourceQuery, key: name}
}

// Func returns a getter calling fn.
func Func(fn GetterFunc) Getter {
	return Getter{source: SourceFunc, fn: fn}
}

// ParseGetter builds a getter from its string form. A name starting with
// "X-" (case-insensitive) selects a header getter, any other name a body
// getter. The empty string selects the default body key.
func ParseGetter(name string) Getter {
	if name == "" {
		return Body(DefaultBodyKey)
	}
	if len(name) >= 2 && strings.EqualFold(name[:2], "X-") {
		return Header(name)
	}

	return Body(name)
}

// Source returns the getter's source.
func (g Getter) Source() Source {
	return g.source
}

// Key returns the header, body or query name the getter reads.
func (g Getter) Key() string {
	if g.source == SourceBody && g.key == "" && g.fn == nil {
		return DefaultBodyKey
	}

	return g.key
}

// HeaderName returns the header name as configured, or the empty string for
// non-header getters.
func (g Getter) HeaderName() string {
	if g.source != SourceHeader {
		return ""
	}

	return g.name
}

// String returns a short description such as "header:x-http-method-override".
func (g Getter) String() string {
	if g.source == SourceFunc {
		return g.source.String()
	}

	return g.source.String() + ":" + g.Key()
}

// extractor reads a raw hint from a request.
type extractor func(Request) any

// resolve validates the getter and turns it into an extractor.
func (g Getter) resolve() (extractor, error) {
	switch g.source {
	case SourceHeader:
		if g.key == "" {
			return nil, fmt.Errorf("%w: empty header name", ErrInvalidGetter)
		}
		return headerExtractor(g.key), nil
	case SourceBody:
		return bodyExtractor(g.Key()), nil
	case SourceQuery:
		if g.key == "" {
			return nil, fmt.Errorf("%w: empty query parameter name", ErrInvalidGetter)
		}
		return queryExtractor(g.key), nil
	case SourceFunc:
		if g.fn == nil {
			return nil, fmt.Errorf("%w: nil getter function", ErrInvalidGetter)
		}
		fn := g.fn
		return func(r Request) any { return fn(r) }, nil
	default:
		return nil, fmt.Errorf("%w: unknown source %s", ErrInvalidGetter, g.source)
	}
}

// headerExtractor returns the first comma-separated segment of the header.
// Proxies may join repeated headers with commas; the first one wins.
func headerExtractor(name string) extractor {
	return func(r Request) any {
		value := r.Header(name)
		if i := strings.IndexByte(value, ','); i >= 0 {
			value = value[:i]
		}

		return strings.Trim(value, " \t")
	}
}

// bodyExtractor consumes key from the body, returning the first element of
// array values.
func bodyExtractor(key string) extractor {
	return func(r Request) any {
		value, ok := r.ConsumeBodyKey(key)
		if !ok {
			return nil
		}

		return first(value)
	}
}

func queryExtractor(name string) extractor {
	return func(r Request) any {
		values := r.Query(name)
		if len(values) == 0 {
			return nil
		}

		return values[0]
	}
}

// first unwraps list values to their first element. Empty lists yield nil.
func first(v any) any {
	switch list := v.(type) {
	case []string:
		if len(list) == 0 {
			return nil
		}
		return list[0]
	case []any:
		if len(list) == 0 {
			return nil
		}
		return list[0]
	default:
		return v
	}
}
