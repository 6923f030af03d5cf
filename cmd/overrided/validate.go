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

package main

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"rivaas.dev/methodoverride"
)

// ErrNoConfigFile is returned by validate without --config.
var ErrNoConfigFile = errors.New("no config file provided")

func newValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "validate",
		Short:   "Validates a method override config file",
		Example: "overrided validate -c override.yaml",
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := validateConfig(cmd)
			if err != nil {
				return err
			}

			sources := "any"
			if m := f.SourceMethods(); m != nil {
				sources = strings.Join(m, ", ")
			}

			cmd.Println("Configuration is valid")
			cmd.Printf("getter: %s\n", f.Getter())
			cmd.Printf("source methods: %s\n", sources)

			return nil
		},
	}
}

func validateConfig(cmd *cobra.Command) (*methodoverride.Filter, error) {
	if flagValue(cmd, flagConfig) == "" {
		return nil, ErrNoConfigFile
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	return methodoverride.NewFromConfig(cfg)
}
