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
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

func multipartBody(t *testing.T, fields map[string]string) (string, []byte) {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	fw, err := w.CreateFormFile("upload", "a.txt")
	require.NoError(t, err)
	_, err = fw.Write([]byte("file content"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	return w.FormDataContentType(), buf.Bytes()
}

func TestParse_ContentTypes(t *testing.T) {
	t.Parallel()

	packed, err := msgpack.Marshal(map[string]any{"_method": "PUT", "id": "7"})
	require.NoError(t, err)

	mpType, mpBody := multipartBody(t, map[string]string{"_method": "PUT", "id": "7"})

	tests := []struct {
		name        string
		contentType string
		body        []byte
		expected    any
	}{
		{
			name:        "json",
			contentType: "application/json",
			body:        []byte(`{"_method":"PUT","id":"7"}`),
			expected:    map[string]any{"_method": "PUT", "id": "7"},
		},
		{
			name:        "json with charset",
			contentType: "application/json; charset=utf-8",
			body:        []byte(`{"_method":["PUT","PATCH"]}`),
			expected:    map[string]any{"_method": []any{"PUT", "PATCH"}},
		},
		{
			name:        "json suffix",
			contentType: "application/vnd.api+json",
			body:        []byte(`{"_method":"PUT","id":"7"}`),
			expected:    map[string]any{"_method": "PUT", "id": "7"},
		},
		{
			name:        "json array",
			contentType: "application/json",
			body:        []byte(`["PUT"]`),
			expected:    []any{"PUT"},
		},
		{
			name:        "form",
			contentType: "application/x-www-form-urlencoded",
			body:        []byte("_method=PUT&id=7"),
			expected:    map[string]any{"_method": "PUT", "id": "7"},
		},
		{
			name:        "form repeated key",
			contentType: "application/x-www-form-urlencoded",
			body:        []byte("_method=PUT&_method=PATCH"),
			expected:    map[string]any{"_method": []string{"PUT", "PATCH"}},
		},
		{
			name:        "multipart skips files",
			contentType: mpType,
			body:        mpBody,
			expected:    map[string]any{"_method": "PUT", "id": "7"},
		},
		{
			name:        "msgpack",
			contentType: "application/msgpack",
			body:        packed,
			expected:    map[string]any{"_method": "PUT", "id": "7"},
		},
		{
			name:        "yaml",
			contentType: "application/yaml",
			body:        []byte("_method: PUT\nid: \"7\"\n"),
			expected:    map[string]any{"_method": "PUT", "id": "7"},
		},
		{
			name:        "toml",
			contentType: "application/toml",
			body:        []byte("_method = \"PUT\"\nid = \"7\"\n"),
			expected:    map[string]any{"_method": "PUT", "id": "7"},
		},
	}

	p := NewParser()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(tt.body))
			req.Header.Set("Content-Type", tt.contentType)

			value, err := p.Parse(req)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, value)

			replayed, err := io.ReadAll(req.Body)
			require.NoError(t, err)
			assert.Equal(t, tt.body, replayed)
		})
	}
}

func TestParse_Skipped(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name        string
		method      string
		contentType string
		body        io.Reader
	}{
		{name: "GET", method: http.MethodGet, contentType: "application/json", body: strings.NewReader(`{}`)},
		{name: "no content type", method: http.MethodPost, body: strings.NewReader(`{}`)},
		{name: "unknown content type", method: http.MethodPost, contentType: "text/plain", body: strings.NewReader("x")},
		{name: "malformed content type", method: http.MethodPost, contentType: "/;", body: strings.NewReader("x")},
		{name: "no body", method: http.MethodPost, contentType: "application/json"},
	}

	p := NewParser()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(tt.method, "/", tt.body)
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}

			_, err := p.Parse(req)
			require.ErrorIs(t, err, ErrSkipped)
		})
	}
}

func TestParse_Errors(t *testing.T) {
	t.Parallel()

	t.Run("invalid json", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"_method":`))
		req.Header.Set("Content-Type", "application/json")

		_, err := NewParser().Parse(req)
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrSkipped)
	})

	t.Run("multipart without boundary", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("--x--"))
		req.Header.Set("Content-Type", "multipart/form-data")

		_, err := NewParser().Parse(req)
		require.ErrorIs(t, err, ErrMissingBoundary)
	})

	t.Run("too large", func(t *testing.T) {
		t.Parallel()

		body := `{"_method":"PUT","padding":"` + strings.Repeat("a", 64) + `"}`
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")

		_, err := NewParser(WithLimit(16)).Parse(req)
		require.ErrorIs(t, err, ErrTooLarge)

		replayed, err := io.ReadAll(req.Body)
		require.NoError(t, err)
		assert.Equal(t, body, string(replayed), "body is replayed in full")
	})
}

func TestParse_CustomDecoder(t *testing.T) {
	t.Parallel()

	p := NewParser(
		WithMethods("put"),
		WithDecoder("Text/Plain", DecoderFunc(func(data []byte, _ map[string]string) (any, error) {
			return map[string]any{"_method": strings.TrimSpace(string(data))}, nil
		})),
	)

	req := httptest.NewRequest(http.MethodPut, "/", strings.NewReader("DELETE\n"))
	req.Header.Set("Content-Type", "text/plain")

	value, err := p.Parse(req)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"_method": "DELETE"}, value)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader("DELETE\n"))
	req.Header.Set("Content-Type", "text/plain")

	_, err = p.Parse(req)
	require.ErrorIs(t, err, ErrSkipped, "POST no longer selected")
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("connection reset") }

func TestParse_ReadError(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodPost, "/", failingReader{})
	req.Header.Set("Content-Type", "application/json")

	_, err := NewParser().Parse(req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
}
