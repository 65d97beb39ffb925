// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/pdiddy/mendeley-mirror/internal/cache"
	"github.com/pdiddy/mendeley-mirror/internal/config"
	"github.com/pdiddy/mendeley-mirror/internal/mendeley"
	"github.com/pdiddy/mendeley-mirror/internal/mirror"
	"github.com/pdiddy/mendeley-mirror/internal/observability"
	"github.com/pdiddy/mendeley-mirror/internal/query"
	"github.com/pdiddy/mendeley-mirror/internal/retrieve"
	"github.com/pdiddy/mendeley-mirror/internal/secrets"
	"github.com/pdiddy/mendeley-mirror/internal/settings"
	"github.com/pdiddy/mendeley-mirror/pkg/types"
)

// app holds the wired components shared by every command.
type app struct {
	cfg      types.Config
	logger   zerolog.Logger
	registry *prometheus.Registry
	metrics  *observability.Metrics
	settings *settings.SQLiteStore
	client   *mendeley.Client
	tokens   *mendeley.TokenManager
	engine   *query.Engine
	mirror   *mirror.Service
}

// newApp loads configuration and wires the mirror. Callers must Close it.
func newApp() (*app, error) {
	cfg, err := config.Load(viper.GetViper(), loadedSecrets)
	if err != nil {
		return nil, err
	}

	logger := observability.NewLogger(cfg.Logging, os.Stderr)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := observability.NewMetrics(registry)

	store, err := settings.OpenSQLite(cfg.Settings.Path)
	if err != nil {
		return nil, fmt.Errorf("opening settings store: %w", err)
	}

	client := mendeley.NewClient(cfg.Mendeley, nil, logger, metrics)
	tokens := mendeley.NewTokenManager(client, store, cfg.Mendeley, logger, metrics)
	client.Tokens = tokens

	authors := cfg.Catalogue.AuthorList()
	retriever := retrieve.New(client, authors, cfg.Catalogue.BlankYearTolerance, logger, metrics)
	engine := query.NewEngine(authors, cfg.Catalogue.PageSize)
	svc := mirror.New(cache.NewStore(cfg.Cache.Dir), retriever, tokens, engine, logger, metrics)

	if !cfg.Mendeley.HasCredentials() {
		logger.Warn().
			Strs("missing_secrets", secrets.Missing(loadedSecrets)).
			Str("secrets_dir", secrets.DefaultDir).
			Msg("Mendeley application credentials are not configured; upstream calls will fail")
	}
	if len(authors) == 0 {
		logger.Warn().Msg("catalogue.authors is empty; the mirror will hold no articles")
	}

	return &app{
		cfg:      cfg,
		logger:   logger,
		registry: registry,
		metrics:  metrics,
		settings: store,
		client:   client,
		tokens:   tokens,
		engine:   engine,
		mirror:   svc,
	}, nil
}

// Close releases the settings database.
func (a *app) Close() error {
	return a.settings.Close()
}
