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

package bodyparser

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/elnormous/contenttype"

	"rivaas.dev/methodoverride"
)

var (
	// ErrSkipped is returned by Parse when the request is not eligible for
	// decoding: wrong method, no body or no decoder for its Content-Type.
	ErrSkipped = errors.New("body not parsed")

	// ErrTooLarge is returned by Parse when the body exceeds the limit.
	ErrTooLarge = errors.New("request body too large")
)

// Parser decodes request bodies. It is safe for concurrent use.
type Parser struct {
	cfg *config
}

// NewParser creates a Parser.
func NewParser(opts ...Option) *Parser {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.New(slog.DiscardHandler)
	}

	return &Parser{cfg: cfg}
}

// Parse reads and decodes the body of r. The bytes read are put back into
// r.Body in place, whatever the outcome.
func (p *Parser) Parse(r *http.Request) (any, error) {
	if !p.cfg.methods[r.Method] || r.Body == nil || r.Body == http.NoBody {
		return nil, ErrSkipped
	}

	decoder, params, ok := p.decoderFor(r)
	if !ok {
		return nil, ErrSkipped
	}

	data, err := io.ReadAll(io.LimitReader(r.Body, p.cfg.limit+1))
	r.Body = replay(data, r.Body)
	if err != nil {
		return nil, fmt.Errorf("read request body: %w", err)
	}
	if int64(len(data)) > p.cfg.limit {
		return nil, ErrTooLarge
	}

	return decoder.Decode(data, params)
}

// New creates body parsing middleware. Decoded bodies are attached with
// methodoverride.WithBody.
//
//	handler := bodyparser.New(
//	    bodyparser.WithLimit(64 << 10),
//	    bodyparser.WithMethods("POST"),
//	)(next)
func New(opts ...Option) func(http.Handler) http.Handler {
	return NewParser(opts...).Middleware
}

// Middleware attaches the decoded body to the request before calling next.
// next is always called unless the body is too large under a strict limit.
func (p *Parser) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Another parser already ran
		if _, ok := methodoverride.BodyFrom(r); ok {
			next.ServeHTTP(w, r)
			return
		}

		value, err := p.Parse(r)
		switch {
		case err == nil:
			next.ServeHTTP(w, methodoverride.WithBody(r, value))
		case errors.Is(err, ErrSkipped):
			next.ServeHTTP(w, r)
		case errors.Is(err, ErrTooLarge) && p.cfg.strictLimit:
			http.Error(w, http.StatusText(http.StatusRequestEntityTooLarge), http.StatusRequestEntityTooLarge)
		default:
			p.cfg.logger.DebugContext(r.Context(), "request body not decoded",
				"content_type", r.Header.Get("Content-Type"),
				"error", err,
			)
			next.ServeHTTP(w, r)
		}
	})
}

// decoderFor selects the decoder for the request's Content-Type.
func (p *Parser) decoderFor(r *http.Request) (Decoder, map[string]string, bool) {
	if r.Header.Get("Content-Type") == "" {
		return nil, nil, false
	}

	mediaType, err := contenttype.GetMediaType(r)
	if err != nil {
		p.cfg.logger.DebugContext(r.Context(), "invalid content type", "error", err)
		return nil, nil, false
	}

	typ := strings.ToLower(mediaType.Type)
	subtype := strings.ToLower(mediaType.Subtype)

	if d, ok := p.cfg.decoders[typ+"/"+subtype]; ok {
		return d, mediaType.Parameters, true
	}
	if strings.HasSuffix(subtype, "+json") {
		if d, ok := p.cfg.decoders["application/json"]; ok {
			return d, mediaType.Parameters, true
		}
	}

	return nil, nil, false
}

// replayBody serves the already read bytes, then the rest of the original
// body, and closes the original.
type replayBody struct {
	io.Reader
	io.Closer
}

func replay(data []byte, orig io.ReadCloser) io.ReadCloser {
	return replayBody{
		Reader: io.MultiReader(bytes.NewReader(data), orig),
		Closer: orig,
	}
}
