// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package server exposes the mirror's trigger actions and catalogue views
// over HTTP as JSON endpoints.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/pdiddy/mendeley-mirror/internal/mendeley"
	"github.com/pdiddy/mendeley-mirror/internal/mirror"
	"github.com/pdiddy/mendeley-mirror/internal/query"
	"github.com/pdiddy/mendeley-mirror/pkg/types"
)

// ErrEncoding is reported when a response cannot be serialized.
var ErrEncoding = errors.New("failed to encode response")

// Mirror is the set of mirror actions the server triggers.
type Mirror interface {
	Catalogue(ctx context.Context, f query.Filters) (query.View, error)
	Refresh(ctx context.Context) ([]types.Article, error)
	Clear() error
	Status(ctx context.Context) (mirror.Status, error)
	RefreshToken(ctx context.Context) (types.AccessToken, error)
}

// Server is the HTTP trigger surface.
type Server struct {
	mirror     Mirror
	gatherer   prometheus.Gatherer
	logger     zerolog.Logger
	router     chi.Router
	httpServer *http.Server
}

// New builds the server. gatherer may be nil to omit /metrics.
func New(cfg types.ServerConfig, m Mirror, gatherer prometheus.Gatherer, logger zerolog.Logger) *Server {
	s := &Server{
		mirror:   m,
		gatherer: gatherer,
		logger:   logger.With().Str("component", "http-server").Logger(),
	}
	s.router = s.buildRouter()
	s.httpServer = &http.Server{
		Addr:              cfg.Address,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/healthz", s.healthHandler)
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/articles", s.listArticles)
		r.Post("/articles", s.listArticles)

		r.Get("/cache", s.cacheStatus)
		r.Post("/cache/refresh", s.refreshCache)
		r.Delete("/cache", s.clearCache)

		r.Post("/token", s.refreshToken)
	})

	return r
}

// Start listens on the configured address and serves until Shutdown.
func (s *Server) Start() error {
	s.logger.Info().Str("address", s.httpServer.Addr).Msg("HTTP server starting")
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("listen on HTTP address: %w", err)
	}
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug().
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	})
}

// writeJSON encodes v before writing any header so an encoding failure can
// still be reported as a 500.
func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		msg, _ := json.Marshal(map[string]string{"error": fmt.Errorf("%w: %v", ErrEncoding, err).Error()})
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write(append(msg, '\n'))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_, _ = w.Write(buf.Bytes())
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{
		"error": message,
	})
}

// statusFor maps mirror errors to HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, mendeley.ErrCredentialsMissing):
		return http.StatusPreconditionFailed
	case mendeley.IsUpstream(err):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	code := statusFor(err)
	s.logger.Error().
		Err(err).
		Str("request_id", middleware.GetReqID(r.Context())).
		Str("path", r.URL.Path).
		Int("status", code).
		Msg("request failed")
	writeError(w, code, err.Error())
}
