// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/pdiddy/mendeley-mirror/internal/query"
	"github.com/pdiddy/mendeley-mirror/pkg/types"
)

// Request parameters accepted by the catalogue endpoint.
const (
	paramAuthors   = "authors"
	paramTerm      = "article-search"
	paramStartYear = "starting-year"
	paramEndYear   = "ending-year"
	paramPageSize  = "articles-per-page"
	paramPage      = "article-page"
)

type refreshResponse struct {
	Articles int    `json:"articles"`
	Message  string `json:"message"`
}

type tokenResponse struct {
	ExpiresAt time.Time `json:"expires_at"`
	Message   string    `json:"message"`
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// listArticles renders a catalogue view. Parameters come from the query
// string or a form body.
func (s *Server) listArticles(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilters(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	view, err := s.mirror.Catalogue(r.Context(), f)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) cacheStatus(w http.ResponseWriter, r *http.Request) {
	st, err := s.mirror.Status(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) refreshCache(w http.ResponseWriter, r *http.Request) {
	articles, err := s.mirror.Refresh(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, refreshResponse{
		Articles: len(articles),
		Message:  "article cache refreshed",
	})
}

func (s *Server) clearCache(w http.ResponseWriter, r *http.Request) {
	if err := s.mirror.Clear(); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "article cache cleared"})
}

func (s *Server) refreshToken(w http.ResponseWriter, r *http.Request) {
	tok, err := s.mirror.RefreshToken(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{
		ExpiresAt: tok.ExpiresAt,
		Message:   "access token generated",
	})
}

// parseFilters reads catalogue filters. An absent authors parameter selects
// every configured author; repeated or comma-separated values are merged.
func parseFilters(r *http.Request) (query.Filters, error) {
	if err := r.ParseForm(); err != nil {
		return query.Filters{}, fmt.Errorf("parsing request: %w", err)
	}

	var f query.Filters
	values, present := r.Form[paramAuthors]
	if bracketed, ok := r.Form[paramAuthors+"[]"]; ok {
		values, present = append(values, bracketed...), true
	}
	if present {
		f.Authors = []string{}
		for _, v := range values {
			f.Authors = append(f.Authors, types.ParseAuthors(v)...)
		}
	}

	f.Term = r.Form.Get(paramTerm)

	ints := []struct {
		name string
		dst  *int
	}{
		{paramStartYear, &f.StartYear},
		{paramEndYear, &f.EndYear},
		{paramPageSize, &f.PageSize},
		{paramPage, &f.Page},
	}
	for _, p := range ints {
		raw := r.Form.Get(p.name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return query.Filters{}, fmt.Errorf("%s must be an integer, got %q", p.name, raw)
		}
		*p.dst = n
	}
	return f, nil
}
