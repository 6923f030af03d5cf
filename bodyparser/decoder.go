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
	"mime/multipart"
	"net/url"

	"github.com/BurntSushi/toml"
	"github.com/goccy/go-json"
	"github.com/goccy/go-yaml"
	"github.com/vmihailenco/msgpack/v5"
)

// ErrMissingBoundary is returned for multipart bodies without a boundary
// parameter.
var ErrMissingBoundary = errors.New("multipart body without boundary")

// Decoder turns a raw body into a structured value. params holds the
// Content-Type parameters.
type Decoder interface {
	Decode(data []byte, params map[string]string) (any, error)
}

// DecoderFunc adapts a function to Decoder.
type DecoderFunc func(data []byte, params map[string]string) (any, error)

// Decode implements Decoder.
func (f DecoderFunc) Decode(data []byte, params map[string]string) (any, error) {
	return f(data, params)
}

// JSONDecoder decodes JSON documents.
type JSONDecoder struct{}

// Decode implements Decoder.
func (JSONDecoder) Decode(data []byte, _ map[string]string) (any, error) {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("decode json body: %w", err)
	}

	return v, nil
}

// FormDecoder decodes application/x-www-form-urlencoded bodies. Keys with a
// single value map to a string, repeated keys to a []string.
type FormDecoder struct{}

// Decode implements Decoder.
func (FormDecoder) Decode(data []byte, _ map[string]string) (any, error) {
	values, err := url.ParseQuery(string(data))
	if err != nil {
		return nil, fmt.Errorf("decode form body: %w", err)
	}

	return flattenValues(values), nil
}

// MultipartDecoder decodes the value parts of multipart/form-data bodies.
// File parts are skipped.
type MultipartDecoder struct {
	// MaxMemory bounds the memory used for value parts.
	MaxMemory int64
}

// Decode implements Decoder.
func (d MultipartDecoder) Decode(data []byte, params map[string]string) (any, error) {
	boundary := params["boundary"]
	if boundary == "" {
		return nil, ErrMissingBoundary
	}

	maxMemory := d.MaxMemory
	if maxMemory <= 0 {
		maxMemory = int64(len(data)) + 1
	}

	form, err := multipart.NewReader(bytes.NewReader(data), boundary).ReadForm(maxMemory)
	if err != nil {
		return nil, fmt.Errorf("decode multipart body: %w", err)
	}
	defer form.RemoveAll() //nolint:errcheck // temporary files only

	return flattenValues(form.Value), nil
}

// MsgPackDecoder decodes MessagePack documents.
type MsgPackDecoder struct{}

// Decode implements Decoder.
func (MsgPackDecoder) Decode(data []byte, _ map[string]string) (any, error) {
	var v any
	if err := msgpack.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("decode msgpack body: %w", err)
	}

	return v, nil
}

// YAMLDecoder decodes YAML documents.
type YAMLDecoder struct{}

// Decode implements Decoder.
func (YAMLDecoder) Decode(data []byte, _ map[string]string) (any, error) {
	var v any
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("decode yaml body: %w", err)
	}

	return v, nil
}

// TOMLDecoder decodes TOML documents. The result is always a table.
type TOMLDecoder struct{}

// Decode implements Decoder.
func (TOMLDecoder) Decode(data []byte, _ map[string]string) (any, error) {
	v := make(map[string]any)
	if err := toml.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("decode toml body: %w", err)
	}

	return v, nil
}

func flattenValues(values map[string][]string) map[string]any {
	out := make(map[string]any, len(values))
	for k, vs := range values {
		if len(vs) == 1 {
			out[k] = vs[0]
			continue
		}
		out[k] = vs
	}

	return out
}

// defaultDecoders maps "type/subtype" to a decoder.
func defaultDecoders() map[string]Decoder {
	msgpackDecoder := MsgPackDecoder{}
	yamlDecoder := YAMLDecoder{}

	return map[string]Decoder{
		"application/json":                  JSONDecoder{},
		"application/x-www-form-urlencoded": FormDecoder{},
		"multipart/form-data":               MultipartDecoder{},
		"application/msgpack":               msgpackDecoder,
		"application/x-msgpack":             msgpackDecoder,
		"application/vnd.msgpack":           msgpackDecoder,
		"application/yaml":                  yamlDecoder,
		"application/x-yaml":                yamlDecoder,
		"text/yaml":                         yamlDecoder,
		"application/toml":                  TOMLDecoder{},
	}
}
