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
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/goccy/go-json"
	"github.com/justinas/alice"
	"github.com/spf13/cobra"

	"rivaas.dev/methodoverride"
	"rivaas.dev/methodoverride/bodyparser"
)

const (
	flagAddr            = "addr"
	flagMetricsAddr     = "metrics-addr"
	flagBodyLimit       = "body-limit"
	flagGetter          = "getter"
	flagMetricsExporter = "metrics-exporter"
	flagOTLPEndpoint    = "otlp-endpoint"
	flagExportInterval  = "export-interval"
	flagTraceStdout     = "trace-stdout"

	shutdownTimeout = 10 * time.Second
)

type serveOptions struct {
	addr        string
	metricsAddr string
	bodyLimit   int64
	getter      string
	telemetry   telemetryOptions
}

func newServeCommand() *cobra.Command {
	var opts serveOptions

	cmd := &cobra.Command{
		Use:     "serve",
		Short:   "Serves a demo application behind the method override filter",
		Example: "overrided serve -c override.yaml --addr :8080",
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger, err := newLogger(cmd, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if opts.getter != "" {
				cfg.Getter = opts.getter
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			tel, err := newTelemetry(ctx, opts.telemetry, cmd.OutOrStdout())
			if err != nil {
				return err
			}

			return runServe(ctx, cfg, opts, tel, logger)
		},
	}

	cmd.Flags().StringVar(&opts.addr, flagAddr, ":8080", "Listen address of the demo application")
	cmd.Flags().StringVar(&opts.metricsAddr, flagMetricsAddr, "",
		"Listen address of the Prometheus endpoint; empty serves /metrics on --addr")
	cmd.Flags().Int64Var(&opts.bodyLimit, flagBodyLimit, bodyparser.DefaultLimit, "Maximum request body size decoded")
	cmd.Flags().StringVar(&opts.getter, flagGetter, "", "Getter overriding the config file, e.g. X-HTTP-Method-Override")
	cmd.Flags().StringVar(&opts.telemetry.metricsExporter, flagMetricsExporter, exporterPrometheus,
		"Metrics exporter: prometheus, stdout, otlp or none")
	cmd.Flags().StringVar(&opts.telemetry.otlpEndpoint, flagOTLPEndpoint, "http://localhost:4318/v1/metrics",
		"OTLP/HTTP endpoint URL for the otlp exporter")
	cmd.Flags().DurationVar(&opts.telemetry.exportInterval, flagExportInterval, 30*time.Second,
		"Export interval of the stdout and otlp exporters")
	cmd.Flags().BoolVar(&opts.telemetry.traceStdout, flagTraceStdout, false, "Write request spans to stdout")

	return cmd
}

func newApp(cfg methodoverride.Config, bodyLimit int64, tel *telemetry, logger *slog.Logger) (http.Handler, error) {
	filter, err := methodoverride.NewFromConfig(cfg,
		methodoverride.WithLogger(logger),
		methodoverride.WithMeterProvider(tel.meterProvider),
		methodoverride.WithTracing(tel.tracerProvider != nil),
	)
	if err != nil {
		return nil, err
	}

	chain := alice.New(
		middleware.Recoverer,
		tel.traceRequests,
		bodyparser.New(bodyparser.WithLimit(bodyLimit), bodyparser.WithLogger(logger)),
		filter.Handler,
	)

	return chain.Then(newRouter()), nil
}

// echoResponse is what every demo route answers.
type echoResponse struct {
	Method         string `json:"method"`
	OriginalMethod string `json:"original_method"`
	Path           string `json:"path"`
	Body           any    `json:"body,omitempty"`
}

func newRouter() http.Handler {
	r := chi.NewRouter()

	r.HandleFunc("/*", func(w http.ResponseWriter, r *http.Request) {
		body, _ := methodoverride.BodyFrom(r)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(echoResponse{
			Method:         r.Method,
			OriginalMethod: methodoverride.GetOriginalMethod(r),
			Path:           r.URL.Path,
			Body:           body,
		})
	})

	return r
}

func runServe(
	ctx context.Context, cfg methodoverride.Config, opts serveOptions, tel *telemetry, logger *slog.Logger,
) error {
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := tel.shutdown(shutdownCtx); err != nil {
			logger.Error("failed to shut down telemetry", "error", err)
		}
	}()

	handler, err := newApp(cfg, opts.bodyLimit, tel, logger)
	if err != nil {
		return err
	}

	mux := http.NewServeMux()
	servers := []*http.Server{{
		Addr:              opts.addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}}

	if tel.metricsHandler != nil {
		if opts.metricsAddr == "" {
			mux.Handle("/metrics", tel.metricsHandler)
		} else {
			metricsMux := http.NewServeMux()
			metricsMux.Handle("/metrics", tel.metricsHandler)
			servers = append(servers, &http.Server{
				Addr:              opts.metricsAddr,
				Handler:           metricsMux,
				ReadHeaderTimeout: 10 * time.Second,
			})
		}
	}
	mux.Handle("/", handler)

	errCh := make(chan error, len(servers))
	for _, srv := range servers {
		go func() {
			logger.Info("server starting", "address", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- fmt.Errorf("server on %s failed: %w", srv.Addr, err)
			}
		}()
	}

	select {
	case <-ctx.Done():
	case err = <-errCh:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	for _, srv := range servers {
		if serr := srv.Shutdown(shutdownCtx); serr != nil {
			logger.Error("failed to shut down server", "address", srv.Addr, "error", serr)
		}
	}
	logger.Info("servers stopped")

	return err
}
