// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ClubPass Contributors

package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/clubpass/clubpass/internal/config"
	"github.com/clubpass/clubpass/internal/httpapi"
	"github.com/clubpass/clubpass/internal/logging"
	"github.com/clubpass/clubpass/internal/observability"
	"github.com/clubpass/clubpass/pkg/errutil"
)

// shutdownTimeout bounds the drain of in-flight requests.
const shutdownTimeout = 10 * time.Second

func newServeCmd(deps *Deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the auth HTTP API",
		Long: `Start the auth HTTP API and the metrics/health server. The process
shuts down gracefully on SIGINT or SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), cmd, deps)
		},
	}

	cmd.Flags().String("http-addr", "127.0.0.1:8080", "auth API listen address")
	cmd.Flags().String("metrics-addr", "127.0.0.1:9100", "metrics/health HTTP address (empty = disabled)")
	cmd.Flags().String("log-format", "json", "log format (json or text)")
	cmd.Flags().String("log-level", "info", "log level (debug, info, warn or error)")
	cmd.Flags().String("store", config.StorePostgres, "credential store (postgres or memory)")
	cmd.Flags().String("database-url", "", "PostgreSQL URL (overrides database.url)")
	cmd.Flags().String("email", config.EmailSMTP, "email driver (smtp or log)")
	cmd.Flags().Bool("auto-migrate", false, "apply pending database migrations before serving")

	return cmd
}

// runServe starts the servers and blocks until ctx is cancelled, a signal
// arrives, or a server fails.
func runServe(ctx context.Context, cmd *cobra.Command, deps *Deps) error {
	deps = deps.withDefaults()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := logging.Setup(logging.Options{
		Service: "clubpass",
		Version: version,
		Format:  cfg.Log.Format,
		Level:   cfg.Log.Level,
		Writer:  cmd.ErrOrStderr(),
	})
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	logger.Info("starting clubpass",
		"http_addr", cfg.HTTP.Addr,
		"store", cfg.Store.Driver,
		"email", cfg.Email.Driver,
	)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	var obs *observability.Server
	var metrics *observability.Metrics
	if cfg.Metrics.Addr != "" {
		obs = observability.NewServer(cfg.Metrics.Addr, func() bool { return false }, logger)
		metrics = obs.Metrics()
	}

	if cfg.Store.Driver == config.StorePostgres && cfg.Database.AutoMigrate {
		if err := autoMigrate(deps, cfg.Database.URL, logger); err != nil {
			return err
		}
	}

	opened, err := deps.StoreOpener(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer opened.Close()

	svc, issuer, err := buildService(cfg, opened.Store, cmd.ErrOrStderr(), logger)
	if err != nil {
		return err
	}

	api, err := httpapi.NewServer(cfg.HTTP.Addr, httpapi.Deps{
		Service: svc,
		Issuer:  issuer,
		Metrics: metrics,
		Logger:  logger,
	})
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)

	apiErrs, err := api.Start()
	if err != nil {
		return err
	}
	g.Go(func() error { return watchServer(gctx, apiErrs, "http") })

	metricsAddr := ""
	if obs != nil {
		obsErrs, err := obs.Start()
		if err != nil {
			stopServers(logger, api, nil)
			return err
		}
		obs.SetReadiness(opened.Ready)
		metricsAddr = obs.Addr()
		g.Go(func() error { return watchServer(gctx, obsErrs, "observability") })
	}

	logger.Info("clubpass ready", "http_addr", api.Addr(), "metrics_addr", metricsAddr)
	deps.Ready(api.Addr(), metricsAddr)

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		return stopServers(logger, api, obs)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("shutdown complete")
	return nil
}

func stopServers(logger *slog.Logger, api *httpapi.Server, obs *observability.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var errs []error
	if err := api.Stop(ctx); err != nil {
		errutil.LogError(logger, "error stopping http server", err)
		errs = append(errs, err)
	}
	if obs != nil {
		if err := obs.Stop(ctx); err != nil {
			errutil.LogError(logger, "error stopping observability server", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// watchServer returns a server's serve error so the group shuts down. A
// closed channel means the server stopped on request.
func watchServer(ctx context.Context, errCh <-chan error, name string) error {
	select {
	case err, ok := <-errCh:
		if !ok || err == nil {
			return nil
		}
		return oops.Code("SERVER_FAILED").With("server", name).Wrap(err)
	case <-ctx.Done():
		return nil
	}
}
