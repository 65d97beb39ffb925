// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/mendeley-mirror/internal/mirror"
	"github.com/pdiddy/mendeley-mirror/internal/server"
)

const shutdownTimeout = 15 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve catalogue views and trigger actions over HTTP",
	Long: `Serve exposes the catalogue query, cache refresh, cache clear, and
token generation actions as JSON endpoints under /api, plus /healthz and
/metrics.

When token.auto_refresh is set the access token is renewed every
token.refresh_interval. When cache.auto_refresh is set the cache is checked
every --cache-check and rebuilt once it is older than cache.refresh_interval.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (overrides server.address)")
	serveCmd.Flags().Duration("cache-check", time.Hour, "how often the scheduled cache refresh checks the cache age")
	_ = viper.BindPFlag("server.address", serveCmd.Flags().Lookup("addr"))
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cacheCheck, _ := cmd.Flags().GetDuration("cache-check")
	if cacheCheck <= 0 {
		return fmt.Errorf("--cache-check must be positive, got %s", cacheCheck)
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if a.cfg.Token.AutoRefresh {
		go runSchedule(ctx, a, a.mirror.TokenJob(a.cfg.Token.RefreshInterval))
	}
	if a.cfg.Cache.AutoRefresh {
		go runSchedule(ctx, a, a.mirror.CacheJob(cacheCheck, a.cfg.Cache.RefreshInterval))
	}

	srv := server.New(a.cfg.Server, a.mirror, a.registry, a.logger)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info().Msg("received shutdown signal")
	case err := <-errCh:
		a.logger.Error().Err(err).Msg("server error")
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.logger.Error().Err(err).Msg("HTTP server shutdown error")
	}
	a.logger.Info().Msg("server stopped")
	return nil
}

func runSchedule(ctx context.Context, a *app, job mirror.Job) {
	if err := mirror.Schedule(ctx, job, true, a.logger); err != nil && !errors.Is(err, context.Canceled) {
		a.logger.Error().Err(err).Str("job", job.Name).Msg("schedule stopped")
	}
}
