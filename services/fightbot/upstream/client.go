// Copyright (C) 2025 Octagon Ops (dev@octagonops.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// Default client configuration.
const (
	// DefaultTimeout is the per-attempt deadline for one origin call.
	DefaultTimeout = 5 * time.Second

	// DefaultCallsPerSecond throttles outbound origin calls. The limiter
	// serializes concurrent callers: no two permitted calls are spaced
	// closer than 1/DefaultCallsPerSecond.
	DefaultCallsPerSecond = 2.0

	userAgent = "fightbot/1.0"
)

// HTTPClient allows injecting mock HTTP clients for testing.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// RetryConfig configures retry behavior with exponential backoff.
type RetryConfig struct {
	// MaxAttempts is the maximum number of attempts (including initial).
	// Default: 3
	MaxAttempts int

	// InitialBackoff is the wait before the first retry. Default: 250ms
	InitialBackoff time.Duration

	// MaxBackoff caps the wait between retries. Default: 2s
	MaxBackoff time.Duration

	// BackoffFactor is the exponential multiplier. Default: 2.0
	BackoffFactor float64

	// JitterFactor is the maximum jitter as a fraction of the backoff
	// (0-1), preventing thundering herd. Default: 0.2
	JitterFactor float64
}

// DefaultRetryConfig returns sensible defaults for origin fetches.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:    3,
		InitialBackoff: 250 * time.Millisecond,
		MaxBackoff:     2 * time.Second,
		BackoffFactor:  2.0,
		JitterFactor:   0.2,
	}
}

// Client is the resilient fetcher for the rankings API. Every call waits
// on the shared rate limiter, runs with a fixed per-attempt timeout, and
// retries transient failures with exponential backoff.
//
// Thread Safety: Client is safe for concurrent use.
type Client struct {
	baseURL string
	http    HTTPClient
	limiter *rate.Limiter
	retry   RetryConfig
	timeout time.Duration
	logger  *slog.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient injects the transport, typically a mock in tests.
func WithHTTPClient(hc HTTPClient) Option {
	return func(c *Client) { c.http = hc }
}

// WithCallsPerSecond overrides the outbound rate limit.
func WithCallsPerSecond(cps float64) Option {
	return func(c *Client) { c.limiter = rate.NewLimiter(rate.Limit(cps), 1) }
}

// WithRetryConfig overrides the retry policy.
func WithRetryConfig(rc RetryConfig) Option {
	return func(c *Client) { c.retry = rc }
}

// WithTimeout overrides the per-attempt deadline.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// NewClient creates a Client for the given API base URL. logger may be nil.
func NewClient(baseURL string, logger *slog.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: DefaultTimeout},
		limiter: rate.NewLimiter(rate.Limit(DefaultCallsPerSecond), 1),
		retry:   DefaultRetryConfig(),
		timeout: DefaultTimeout,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fighters returns the full live roster keyed by fighter id.
func (c *Client) Fighters(ctx context.Context) (map[string]FighterPayload, error) {
	var out map[string]FighterPayload
	if err := c.fetchJSON(ctx, "/fighters", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Rankings returns every division with champion and ordered contenders.
func (c *Client) Rankings(ctx context.Context) ([]DivisionPayload, error) {
	var out []DivisionPayload
	if err := c.fetchJSON(ctx, "/rankings", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Fighter returns one fighter's detail record.
func (c *Client) Fighter(ctx context.Context, id string) (FighterPayload, error) {
	var out FighterPayload
	if err := c.fetchJSON(ctx, "/fighter/"+id, &out); err != nil {
		return FighterPayload{}, err
	}
	return out, nil
}

// Division returns one division's detail record.
func (c *Client) Division(ctx context.Context, id string) (DivisionPayload, error) {
	var out DivisionPayload
	if err := c.fetchJSON(ctx, "/division/"+id, &out); err != nil {
		return DivisionPayload{}, err
	}
	return out, nil
}

// fetchJSON performs a rate-limited GET of baseURL+path and decodes the
// body into v, retrying transient failures per the retry config.
func (c *Client) fetchJSON(ctx context.Context, path string, v any) error {
	start := time.Now()
	defer func() { fetchLatency.Observe(time.Since(start).Seconds()) }()

	if err := c.limiter.Wait(ctx); err != nil {
		fetchResults.WithLabelValues(string(FailureTimeout)).Inc()
		return &FetchError{Kind: FailureTimeout, Path: path, Err: err}
	}

	backoff := c.retry.InitialBackoff
	var lastErr error

	for attempt := 1; attempt <= c.retry.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			fetchResults.WithLabelValues(string(FailureTimeout)).Inc()
			return &FetchError{Kind: FailureTimeout, Path: path, Err: err}
		}

		err := c.doOnce(ctx, path, v)
		if err == nil {
			fetchResults.WithLabelValues("ok").Inc()
			return nil
		}
		lastErr = err

		if !IsRetryable(err) || attempt == c.retry.MaxAttempts {
			break
		}

		fetchRetries.Inc()
		c.logger.Warn("upstream fetch retrying",
			"path", path,
			"attempt", attempt,
			"max_attempts", c.retry.MaxAttempts,
			"error", err.Error(),
		)

		select {
		case <-ctx.Done():
			fetchResults.WithLabelValues(string(FailureTimeout)).Inc()
			return &FetchError{Kind: FailureTimeout, Path: path, Err: ctx.Err()}
		case <-time.After(withJitter(backoff, c.retry.JitterFactor)):
		}
		backoff = nextBackoff(backoff, c.retry.BackoffFactor, c.retry.MaxBackoff)
	}

	var fe *FetchError
	if errors.As(lastErr, &fe) {
		fetchResults.WithLabelValues(string(fe.Kind)).Inc()
	}
	return lastErr
}

// doOnce performs a single attempt with its own timeout.
func (c *Client) doOnce(ctx context.Context, path string, v any) error {
	attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return &FetchError{Kind: FailureNetwork, Path: path, Err: err}
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || attemptCtx.Err() != nil {
			return &FetchError{Kind: FailureTimeout, Path: path, Err: err}
		}
		return &FetchError{Kind: FailureNetwork, Path: path, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return &FetchError{
			Kind:   FailureHTTP,
			Status: resp.StatusCode,
			Path:   path,
			Err:    fmt.Errorf("unexpected status %s", resp.Status),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return &FetchError{Kind: FailureDecode, Path: path, Err: err}
	}
	return nil
}

// withJitter spreads a backoff over [base*(1-jitter), base*(1+jitter)].
func withJitter(base time.Duration, jitterFactor float64) time.Duration {
	if jitterFactor <= 0 {
		return base
	}
	jitter := (rand.Float64()*2 - 1) * jitterFactor
	return time.Duration(float64(base) * (1.0 + jitter))
}

func nextBackoff(current time.Duration, factor float64, max time.Duration) time.Duration {
	next := time.Duration(float64(current) * factor)
	if next > max {
		return max
	}
	return next
}
