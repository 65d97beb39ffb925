// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package mirror is the entry point used by every trigger surface. It loads
// the article cache or builds it through a full retrieval, serves
// catalogue views over it, and renews the access token on demand.
package mirror

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/pdiddy/mendeley-mirror/internal/cache"
	"github.com/pdiddy/mendeley-mirror/internal/observability"
	"github.com/pdiddy/mendeley-mirror/internal/query"
	"github.com/pdiddy/mendeley-mirror/internal/retrieve"
	"github.com/pdiddy/mendeley-mirror/pkg/types"
)

// Retriever runs a full catalogue crawl.
type Retriever interface {
	Retrieve(ctx context.Context) (retrieve.Result, error)
}

// Tokens renews and inspects the persisted access token.
type Tokens interface {
	Refresh(ctx context.Context) (types.AccessToken, error)
	Stored(ctx context.Context) (types.AccessToken, error)
}

// Service ties the cache, the retriever and the query engine together.
type Service struct {
	cache     *cache.Store
	retriever Retriever
	tokens    Tokens
	engine    *query.Engine
	logger    zerolog.Logger
	metrics   *observability.Metrics
}

// New builds a service. tokens may be nil when token actions are not used.
func New(store *cache.Store, r Retriever, tokens Tokens, engine *query.Engine, logger zerolog.Logger, metrics *observability.Metrics) *Service {
	if metrics == nil {
		metrics = observability.NopMetrics()
	}
	return &Service{
		cache:     store,
		retriever: r,
		tokens:    tokens,
		engine:    engine,
		logger:    observability.Component(logger, "mirror"),
		metrics:   metrics,
	}
}

// EnsureArticles returns the cached collection, building the cache first
// when it is absent or corrupt.
func (s *Service) EnsureArticles(ctx context.Context) ([]types.Article, error) {
	if !s.cache.Exists() {
		s.logger.Info().Msg("no article cache; running full retrieval")
		return s.Refresh(ctx)
	}

	articles, err := s.cache.Load()
	switch {
	case err == nil:
		return articles, nil
	case errors.Is(err, cache.ErrCorrupt):
		s.logger.Warn().Err(err).Msg("article cache unreadable; rebuilding")
		return s.Refresh(ctx)
	case errors.Is(err, os.ErrNotExist):
		return s.Refresh(ctx)
	default:
		return nil, err
	}
}

// Refresh crawls the catalogue and replaces the cache with the result. On
// failure the existing cache is left untouched.
func (s *Service) Refresh(ctx context.Context) ([]types.Article, error) {
	start := time.Now()

	res, err := s.retriever.Retrieve(ctx)
	if err != nil {
		s.metrics.CacheRefreshes.WithLabelValues("failure").Inc()
		s.logger.Error().Err(err).Msg("retrieval failed; cache unchanged")
		return nil, fmt.Errorf("retrieving articles: %w", err)
	}

	if err := s.cache.Replace(res.Articles); err != nil {
		s.metrics.CacheRefreshes.WithLabelValues("failure").Inc()
		return nil, err
	}

	s.metrics.CacheRefreshes.WithLabelValues("success").Inc()
	s.metrics.CachedArticles.Set(float64(len(res.Articles)))
	s.logger.Info().
		Int("articles", len(res.Articles)).
		Int("authors", len(res.Authors)).
		Int("calls", res.Calls()).
		Dur("elapsed", time.Since(start)).
		Msg("article cache refreshed")

	return res.Articles, nil
}

// RefreshIfStale refreshes the cache when it is missing or older than
// maxAge, reporting whether a refresh ran.
func (s *Service) RefreshIfStale(ctx context.Context, maxAge time.Duration) (bool, error) {
	if !s.cache.NeedsRefresh(time.Now(), maxAge) {
		return false, nil
	}
	if _, err := s.Refresh(ctx); err != nil {
		return true, err
	}
	return true, nil
}

// Clear deletes the cache. The next EnsureArticles rebuilds it.
func (s *Service) Clear() error {
	if err := s.cache.Clear(); err != nil {
		return err
	}
	s.metrics.CachedArticles.Set(0)
	s.logger.Info().Msg("article cache cleared")
	return nil
}

// Catalogue renders one catalogue view over the cached collection.
func (s *Service) Catalogue(ctx context.Context, f query.Filters) (query.View, error) {
	articles, err := s.EnsureArticles(ctx)
	if err != nil {
		return query.View{}, err
	}
	return s.engine.Run(articles, f), nil
}

// Export writes the cached collection to w as json or yaml.
func (s *Service) Export(ctx context.Context, w io.Writer, format string) (int, error) {
	articles, err := s.EnsureArticles(ctx)
	if err != nil {
		return 0, err
	}
	if err := cache.Export(w, articles, format); err != nil {
		return 0, err
	}
	return len(articles), nil
}

// RefreshToken forces a new access token.
func (s *Service) RefreshToken(ctx context.Context) (types.AccessToken, error) {
	if s.tokens == nil {
		return types.AccessToken{}, errors.New("token refresh is not configured")
	}
	return s.tokens.Refresh(ctx)
}

// Status describes the cache and token without triggering any upstream call.
type Status struct {
	CacheExists    bool      `json:"cache_exists" yaml:"cache_exists"`
	CacheCorrupt   bool      `json:"cache_corrupt,omitempty" yaml:"cache_corrupt,omitempty"`
	CachePath      string    `json:"cache_path" yaml:"cache_path"`
	LastModified   time.Time `json:"last_modified,omitzero" yaml:"last_modified,omitempty"`
	Articles       int       `json:"articles" yaml:"articles"`
	OldestYear     int       `json:"oldest_year,omitempty" yaml:"oldest_year,omitempty"`
	NewestYear     int       `json:"newest_year,omitempty" yaml:"newest_year,omitempty"`
	TokenPresent   bool      `json:"token_present" yaml:"token_present"`
	TokenExpiresAt time.Time `json:"token_expires_at,omitzero" yaml:"token_expires_at,omitempty"`
}

// Status reports the current cache and token state.
func (s *Service) Status(ctx context.Context) (Status, error) {
	st := Status{CachePath: s.cache.Path(), CacheExists: s.cache.Exists()}

	if st.CacheExists {
		st.LastModified, _ = s.cache.LastModified()
		articles, err := s.cache.Load()
		switch {
		case errors.Is(err, cache.ErrCorrupt):
			st.CacheCorrupt = true
		case err != nil:
			return st, err
		default:
			st.Articles = len(articles)
			st.OldestYear = query.ExtremeYear(articles, false)
			st.NewestYear = query.ExtremeYear(articles, true)
		}
	}

	if s.tokens != nil {
		tok, err := s.tokens.Stored(ctx)
		if err != nil {
			return st, fmt.Errorf("reading stored token: %w", err)
		}
		st.TokenPresent = !tok.IsZero()
		st.TokenExpiresAt = tok.ExpiresAt
	}
	return st, nil
}
