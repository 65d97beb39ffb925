// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package mendeley talks to the Mendeley API: the client-credentials token
// exchange and the bearer-authenticated catalogue search.
package mendeley

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/pdiddy/mendeley-mirror/internal/httputil"
	"github.com/pdiddy/mendeley-mirror/internal/observability"
	"github.com/pdiddy/mendeley-mirror/pkg/types"
)

// DefaultBaseURL is the Mendeley API root.
const DefaultBaseURL = "https://api.mendeley.com"

// DefaultPageLimit is the largest page the catalogue search returns.
const DefaultPageLimit = 100

// documentMediaType pins catalogue responses to the v1 document schema.
const documentMediaType = "application/vnd.mendeley-document.1+json"

const (
	tokenPath   = "/oauth/token"
	catalogPath = "/search/catalog"
)

// TokenSource supplies bearer tokens for authenticated requests.
type TokenSource interface {
	Token(ctx context.Context) (types.AccessToken, error)
}

// Client issues requests against the Mendeley API. Tokens must be set
// before any authenticated request; the TokenManager is the usual source.
type Client struct {
	BaseURL   string
	UserAgent string
	PageLimit int
	Tokens    TokenSource

	pacer   *httputil.Pacer
	logger  zerolog.Logger
	metrics *observability.Metrics
}

// NewClient builds a client from cfg. hc may be nil; when cfg.Timeout is set
// a dedicated http.Client with that timeout is used instead.
func NewClient(cfg types.MendeleyConfig, hc *http.Client, logger zerolog.Logger, metrics *observability.Metrics) *Client {
	if hc == nil {
		hc = &http.Client{Timeout: cfg.Timeout}
	}
	if metrics == nil {
		metrics = observability.NopMetrics()
	}
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	pageLimit := cfg.PageLimit
	if pageLimit <= 0 || pageLimit > DefaultPageLimit {
		pageLimit = DefaultPageLimit
	}
	return &Client{
		BaseURL:   baseURL,
		UserAgent: cfg.UserAgent,
		PageLimit: pageLimit,
		pacer:     httputil.NewPacer(hc, cfg.RateLimit),
		logger:    observability.Component(logger, "mendeley"),
		metrics:   metrics,
	}
}

// Result is a successful API response. Decoded holds the JSON value when
// the body parses as JSON; otherwise Raw holds the body text.
type Result struct {
	StatusCode int
	Body       []byte
	Decoded    any
	Raw        string
}

// NotFound reports whether the upstream answered 404, which callers treat
// as "no records".
func (r *Result) NotFound() bool {
	return r.StatusCode == http.StatusNotFound
}

// Empty reports whether the result carries no records: a 404, an empty
// body, or an empty JSON array or object.
func (r *Result) Empty() bool {
	if r.NotFound() || len(bytes.TrimSpace(r.Body)) == 0 {
		return true
	}
	switch v := r.Decoded.(type) {
	case []any:
		return len(v) == 0
	case map[string]any:
		return len(v) == 0
	case nil:
		return r.Raw == ""
	}
	return false
}

// Request performs one call to path. With clientAuth the params are sent
// form-encoded and no bearer token is attached (token exchange only);
// otherwise the bearer token from Tokens and the pinned document media type
// are sent, and params become the query string for GET and DELETE.
//
// Statuses 200, 201, 204 and 404 succeed. Anything else, or a transport
// failure, returns an *UpstreamError. Nothing is retried.
func (c *Client) Request(ctx context.Context, method, path string, params url.Values, clientAuth bool) (*Result, error) {
	op := method + " " + path

	req, err := c.newRequest(ctx, method, path, params, clientAuth)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := c.pacer.Do(ctx, req)
	c.metrics.UpstreamDuration.WithLabelValues(path).Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.UpstreamRequests.WithLabelValues(path, "error").Inc()
		return nil, &UpstreamError{Op: op, Err: err}
	}
	c.metrics.UpstreamRequests.WithLabelValues(path, strconv.Itoa(resp.StatusCode)).Inc()

	c.logger.Debug().
		Str("op", op).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("upstream call")

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated, http.StatusNoContent, http.StatusNotFound:
	default:
		return nil, &UpstreamError{Op: op, StatusCode: resp.StatusCode, Body: string(resp.Body)}
	}

	result := &Result{StatusCode: resp.StatusCode, Body: resp.Body}
	if resp.StatusCode == http.StatusNotFound {
		return result, nil
	}
	if len(bytes.TrimSpace(resp.Body)) > 0 {
		var decoded any
		if err := json.Unmarshal(resp.Body, &decoded); err == nil {
			result.Decoded = decoded
		} else {
			result.Raw = string(resp.Body)
		}
	}
	return result, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, params url.Values, clientAuth bool) (*http.Request, error) {
	reqURL := c.BaseURL + path

	var body *strings.Reader
	sendForm := clientAuth || (method != http.MethodGet && method != http.MethodDelete)
	if sendForm {
		body = strings.NewReader(params.Encode())
	} else if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	var req *http.Request
	var err error
	if body != nil {
		req, err = http.NewRequestWithContext(ctx, method, reqURL, body)
	} else {
		req, err = http.NewRequestWithContext(ctx, method, reqURL, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}
	if sendForm {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if clientAuth {
		return req, nil
	}

	if c.Tokens == nil {
		return nil, fmt.Errorf("mendeley client has no token source")
	}
	tok, err := c.Tokens.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("obtaining access token: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+tok.Value)
	req.Header.Set("Accept", documentMediaType)
	return req, nil
}

// TokenGrant is the token endpoint's answer.
type TokenGrant struct {
	AccessToken string `json:"access_token"`
	// ExpiresIn is the token lifetime in seconds.
	ExpiresIn int64 `json:"expires_in"`
}

// ExchangeCredentials trades the application ID and secret for a bearer
// token through the client-credentials grant.
func (c *Client) ExchangeCredentials(ctx context.Context, applicationID, applicationSecret string) (TokenGrant, error) {
	params := url.Values{
		"grant_type":    {"client_credentials"},
		"scope":         {"all"},
		"client_id":     {applicationID},
		"client_secret": {applicationSecret},
	}

	res, err := c.Request(ctx, http.MethodPost, tokenPath, params, true)
	if err != nil {
		return TokenGrant{}, err
	}

	var grant TokenGrant
	if err := json.Unmarshal(res.Body, &grant); err != nil || grant.AccessToken == "" {
		if err == nil {
			err = fmt.Errorf("response carries no access_token")
		}
		return TokenGrant{}, &UpstreamError{
			Op:         http.MethodPost + " " + tokenPath,
			StatusCode: res.StatusCode,
			Body:       string(res.Body),
			Err:        err,
		}
	}
	return grant, nil
}

// SearchCatalog returns up to PageLimit catalogue records for author
// published between minYear and maxYear inclusive. A 404 or an empty body
// yields no records and no error.
func (c *Client) SearchCatalog(ctx context.Context, author string, minYear, maxYear int) ([]types.Article, error) {
	params := url.Values{
		"author":   {author},
		"limit":    {strconv.Itoa(c.PageLimit)},
		"min_year": {strconv.Itoa(minYear)},
		"max_year": {strconv.Itoa(maxYear)},
	}

	res, err := c.Request(ctx, http.MethodGet, catalogPath, params, false)
	if err != nil {
		return nil, err
	}
	if res.Empty() {
		return nil, nil
	}

	var articles []types.Article
	if err := json.Unmarshal(res.Body, &articles); err != nil {
		return nil, &UpstreamError{
			Op:         http.MethodGet + " " + catalogPath,
			StatusCode: res.StatusCode,
			Body:       string(res.Body),
			Err:        fmt.Errorf("parsing catalogue response: %w", err),
		}
	}
	return articles, nil
}
