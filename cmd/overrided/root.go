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
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"rivaas.dev/methodoverride"
)

// Flag names shared by the sub commands.
const (
	flagConfig   = "config"
	flagLogLevel = "log-level"
)

// Version is set at build time.
var Version = "dev"

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "overrided",
		Short:         "HTTP method override demo server",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringP(flagConfig, "c", "", "Method override config file (yaml, toml or json)")
	root.PersistentFlags().String(flagLogLevel, "info", "Log level: debug, info, warn or error")

	root.AddCommand(newServeCommand(), newValidateCommand())

	return root
}

// Execute runs the root command. It is called by main.main.
func Execute() {
	root := newRootCommand()
	if err := root.Execute(); err != nil {
		root.PrintErrln(err)
		os.Exit(1)
	}
}

// loadConfig reads the config file named by the --config flag. Without the
// flag the default configuration is used.
func loadConfig(cmd *cobra.Command) (methodoverride.Config, error) {
	path := flagValue(cmd, flagConfig)
	if path == "" {
		return methodoverride.Config{}, nil
	}

	return methodoverride.LoadConfigFile(path)
}

func newLogger(cmd *cobra.Command, w io.Writer) (*slog.Logger, error) {
	name := flagValue(cmd, flagLogLevel)

	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(name))); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", name, err)
	}

	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})), nil
}

// flagValue looks name up in the command flags and the persistent flags of
// its parents.
func flagValue(cmd *cobra.Command, name string) string {
	if f := cmd.Flag(name); f != nil {
		return f.Value.String()
	}

	return ""
}
