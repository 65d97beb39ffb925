// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers shared by the upstream clients.
package httputil

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/time/rate"
)

// MaxBodyBytes bounds how much of a response body Do reads.
const MaxBodyBytes = 32 << 20

// Pacer sends HTTP requests no faster than a configured rate. It never
// retries: one call to Do is exactly one round trip.
type Pacer struct {
	client  *http.Client
	limiter *rate.Limiter
}

// NewPacer wraps client. A ratePerSecond of zero or less disables pacing.
// A nil client uses http.DefaultClient.
func NewPacer(client *http.Client, ratePerSecond float64) *Pacer {
	if client == nil {
		client = http.DefaultClient
	}
	p := &Pacer{client: client}
	if ratePerSecond > 0 {
		p.limiter = rate.NewLimiter(rate.Limit(ratePerSecond), 1)
	}
	return p
}

// Response is a fully read HTTP response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Do waits for the limiter, sends req, and reads the whole body. Transport
// failures and context cancellation return an error; any HTTP status is
// returned as a Response for the caller to interpret.
func (p *Pacer) Do(ctx context.Context, req *http.Request) (*Response, error) {
	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("waiting for rate limiter: %w", err)
		}
	}

	resp, err := p.client.Do(req.WithContext(ctx))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
	}, nil
}
