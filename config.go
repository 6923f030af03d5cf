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
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/goccy/go-json"
	"github.com/goccy/go-yaml"

	"rivaas.dev/methodoverride/methods"
)

// Config is the declarative form of the filter options, suitable for YAML,
// TOML or JSON files.
//
//	getter: X-HTTP-Method-Override
//	methods: [POST, PATCH]
type Config struct {
	// Getter is the getter in string form: "X-..." selects a header, anything
	// else a body field. Empty selects "_method".
	Getter string `config:"getter"`

	// Source forces the getter source ("header", "body" or "query") instead
	// of deriving it from the Getter prefix.
	Source string `config:"source" validate:"omitempty,oneof=header body query"`

	// Methods are the allowed source methods. Empty keeps the default (POST).
	Methods []string `config:"methods" validate:"omitempty,dive,required,uppercase"`

	// AnyMethod attempts an override regardless of the request method.
	AnyMethod bool `config:"any_method"`

	// KnownMethods extends the reference set hints are validated against.
	KnownMethods []string `config:"known_methods" validate:"omitempty,dive,required"`

	// RequireCSRFToken maps to WithRequireCSRFToken.
	RequireCSRFToken bool `config:"require_csrf_token"`

	// RespectBody maps to WithRespectBody.
	RespectBody bool `config:"respect_body"`
}

var configValidator = newConfigValidator()

func newConfigValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("config"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	return v
}

// Validate checks the configuration without building a filter.
func (c Config) Validate() error {
	if err := configValidator.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return &ConfigError{
				Field:     verrs[0].Field(),
				Operation: "validate",
				Err:       fmt.Errorf("failed on %q rule", verrs[0].Tag()),
			}
		}
		return &ConfigError{Operation: "validate", Err: err}
	}

	if _, err := c.getter(); err != nil {
		return &ConfigError{Field: "getter", Operation: "validate", Err: err}
	}

	return nil
}

// Options converts the configuration into filter options.
func (c Config) Options() ([]Option, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	g, _ := c.getter()
	opts := []Option{WithGetter(g)}

	switch {
	case c.AnyMethod:
		opts = append(opts, WithAnyMethod())
	case len(c.Methods) > 0:
		opts = append(opts, WithMethods(c.Methods...))
	}

	if len(c.KnownMethods) > 0 {
		opts = append(opts, WithKnownMethods(methods.Default.Union(c.KnownMethods...)))
	}

	if c.RequireCSRFToken {
		opts = append(opts, WithRequireCSRFToken(true))
	}
	if c.RespectBody {
		opts = append(opts, WithRespectBody(true))
	}

	return opts, nil
}

func (c Config) getter() (Getter, error) {
	if c.Source == "" {
		return ParseGetter(c.Getter), nil
	}

	source, err := ParseSource(c.Source)
	if err != nil {
		return Getter{}, err
	}

	switch source {
	case SourceHeader:
		if c.Getter == "" {
			return Getter{}, fmt.Errorf("%w: header source needs a header name", ErrInvalidGetter)
		}
		return Header(c.Getter), nil
	case SourceQuery:
		if c.Getter == "" {
			return Getter{}, fmt.Errorf("%w: query source needs a parameter name", ErrInvalidGetter)
		}
		return Query(c.Getter), nil
	case SourceBody:
		return Body(c.Getter), nil
	default:
		return Getter{}, fmt.Errorf("%w: source %s is not configurable", ErrInvalidGetter, source)
	}
}

// NewFromConfig builds a filter from cfg. Extra options are applied after the
// configuration, so they can add a logger or meter provider.
func NewFromConfig(cfg Config, opts ...Option) (*Filter, error) {
	cfgOpts, err := cfg.Options()
	if err != nil {
		return nil, err
	}

	f, err := New(append(cfgOpts, opts...)...)
	if err != nil {
		return nil, &ConfigError{Operation: "build", Err: err}
	}

	return f, nil
}

// LoadConfig parses data in the given format ("yaml", "yml", "toml" or
// "json") and validates the result.
func LoadConfig(data []byte, format string) (Config, error) {
	values := make(map[string]any)

	var err error
	switch strings.ToLower(strings.TrimPrefix(format, ".")) {
	case "yaml", "yml":
		err = yaml.Unmarshal(data, &values)
	case "toml":
		err = toml.Unmarshal(data, &values)
	case "json":
		err = json.Unmarshal(data, &values)
	default:
		return Config{}, &ConfigError{Operation: "parse", Err: fmt.Errorf("unsupported format %q", format)}
	}
	if err != nil {
		return Config{}, &ConfigError{Operation: "parse", Err: err}
	}

	var cfg Config
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "config",
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		DecodeHook:       mapstructure.StringToSliceHookFunc(","),
		Result:           &cfg,
	})
	if err != nil {
		return Config{}, &ConfigError{Operation: "decode", Err: err}
	}
	if err = decoder.Decode(normalizeMapKeys(values)); err != nil {
		return Config{}, &ConfigError{Operation: "decode", Err: err}
	}

	if err = cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// LoadConfigFile reads a configuration file, choosing the format from its
// extension.
func LoadConfigFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, &ConfigError{Operation: "parse", Err: err}
	}

	return LoadConfig(data, filepath.Ext(path))
}

// normalizeMapKeys lower-cases top-level keys and maps "-" to "_" so that
// "Any-Method" and "any_method" decode alike.
func normalizeMapKeys(m map[string]any) map[string]any {
	normalized := make(map[string]any, len(m))
	for k, v := range m {
		normalized[strings.ReplaceAll(strings.ToLower(k), "-", "_")] = v
	}

	return normalized
}
