// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/AleutianAI/lexguard/services/lexguard/audit"
	"github.com/AleutianAI/lexguard/services/lexguard/directory"
	"github.com/AleutianAI/lexguard/services/lexguard/observability"
	"github.com/AleutianAI/lexguard/services/lexguard/routes"
	"github.com/AleutianAI/lexguard/services/lexguard/telemetry"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"golang.org/x/time/rate"
)

func newServeCmd(a *app) *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the validation HTTP service",
		Long: `Serve exposes POST /v1/validate, GET /v1/validations/:id, /health and
/metrics. Reports are kept in the audit store and the code directory file is
reloaded when it changes.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("port") {
				a.cfg.Server.Port = port
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, a)
		},
	}
	cmd.Flags().IntVarP(&port, "port", "p", 0, "listen port (overrides config)")
	return cmd
}

// server bundles the HTTP server with the resources it owns.
type server struct {
	http     *http.Server
	handler  http.Handler
	store    *audit.Store
	watcher  *directory.Watcher
	shutdown func(context.Context) error
}

// buildServer wires the directory source, validator, audit store, metrics,
// telemetry and routes from the loaded config.
func (a *app) buildServer(ctx context.Context) (*server, error) {
	cfg := a.cfg
	s := &server{}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	tcfg := cfg.TelemetryConfig()
	tcfg.Registerer = reg
	shutdown, err := telemetry.Init(ctx, tcfg)
	if err != nil {
		return nil, err
	}
	s.shutdown = shutdown

	metrics := observability.NewServiceMetrics(reg)

	dir, err := a.loadDirectory()
	if err != nil {
		_ = s.Close(ctx)
		return nil, err
	}
	source := directory.NewSource(dir)
	if cfg.Directory.Path != "" && cfg.Directory.Watch {
		w, err := directory.NewWatcher(cfg.Directory.Path, source, a.logger)
		if err != nil {
			_ = s.Close(ctx)
			return nil, err
		}
		w.OnReload(func(d *directory.Directory) {
			metrics.RecordDirectoryReload()
			a.logger.Info("directory reloaded", "codes", d.Len())
		})
		if err := w.Start(ctx); err != nil {
			_ = s.Close(ctx)
			return nil, err
		}
		s.watcher = w
	}

	v, err := a.newValidator(source)
	if err != nil {
		_ = s.Close(ctx)
		return nil, err
	}

	deps := routes.Dependencies{
		Validator: v,
		Metrics:   metrics,
		Logger:    a.logger,
		Gatherer:  reg,
	}
	if cfg.Audit.Enabled {
		acfg := cfg.AuditStoreConfig()
		acfg.Logger = a.logger
		store, err := audit.Open(acfg)
		if err != nil {
			_ = s.Close(ctx)
			return nil, fmt.Errorf("opening audit store: %w", err)
		}
		s.store = store
		deps.Store = store
	}
	if cfg.Server.RateLimit > 0 {
		burst := cfg.Server.Burst
		if burst <= 0 {
			burst = 1
		}
		deps.Limiter = rate.NewLimiter(rate.Limit(cfg.Server.RateLimit), burst)
	}

	router := gin.New()
	router.Use(gin.Recovery(), otelgin.Middleware("lexguard"))
	routes.SetupRoutes(router, deps)

	s.handler = router
	s.http = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s, nil
}

// Close releases the watcher, audit store and telemetry providers.
func (s *server) Close(ctx context.Context) error {
	var errs []error
	if s.watcher != nil {
		s.watcher.Stop()
	}
	if s.store != nil {
		errs = append(errs, s.store.Close())
	}
	if s.shutdown != nil {
		errs = append(errs, s.shutdown(ctx))
	}
	return errors.Join(errs...)
}

func runServe(ctx context.Context, a *app) error {
	gin.SetMode(gin.ReleaseMode)

	s, err := a.buildServer(ctx)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("lexguard listening", "addr", s.http.Addr)
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		_ = s.Close(context.Background())
		return err
	case <-ctx.Done():
	}

	a.logger.Info("shutting down")
	timeout := a.cfg.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	return errors.Join(s.http.Shutdown(shutdownCtx), s.Close(shutdownCtx))
}
