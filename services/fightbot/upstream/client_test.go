// Copyright (C) 2025 Octagon Ops (dev@octagonops.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package upstream

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"sync"
	"testing"
	"time"
)

// fakeHTTP replays a scripted sequence of responses/errors.
type fakeHTTP struct {
	mu    sync.Mutex
	calls int
	steps []fakeStep
}

type fakeStep struct {
	status int
	body   string
	err    error
}

func (f *fakeHTTP) Do(req *http.Request) (*http.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	step := f.steps[len(f.steps)-1]
	if f.calls < len(f.steps) {
		step = f.steps[f.calls]
	}
	f.calls++
	if step.err != nil {
		return nil, step.err
	}
	return &http.Response{
		StatusCode: step.status,
		Status:     http.StatusText(step.status),
		Body:       io.NopCloser(bytes.NewBufferString(step.body)),
	}, nil
}

func fastRetry() RetryConfig {
	return RetryConfig{
		MaxAttempts:    3,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     5 * time.Millisecond,
		BackoffFactor:  2.0,
	}
}

func newTestClient(f *fakeHTTP) *Client {
	return NewClient("http://upstream.test", nil,
		WithHTTPClient(f),
		WithRetryConfig(fastRetry()),
		WithCallsPerSecond(10000),
	)
}

func TestClient_RetriesTransientThenSucceeds(t *testing.T) {
	f := &fakeHTTP{steps: []fakeStep{
		{status: 503, body: "busy"},
		{err: errors.New("connection reset")},
		{status: 200, body: `{"belal-muhammad":{"name":"Belal Muhammad","wins":"24"}}`},
	}}

	fighters, err := newTestClient(f).Fighters(context.Background())
	if err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if f.calls != 3 {
		t.Errorf("expected 3 attempts, got %d", f.calls)
	}
	if fighters["belal-muhammad"].Name != "Belal Muhammad" {
		t.Errorf("unexpected payload: %+v", fighters)
	}
}

func TestClient_NoRetryOn4xx(t *testing.T) {
	f := &fakeHTTP{steps: []fakeStep{{status: 404, body: "not found"}}}

	_, err := newTestClient(f).Fighter(context.Background(), "nobody")
	if err == nil {
		t.Fatal("expected error")
	}
	if f.calls != 1 {
		t.Errorf("4xx must not be retried, got %d attempts", f.calls)
	}

	var fe *FetchError
	if !errors.As(err, &fe) || fe.Kind != FailureHTTP || fe.Status != 404 {
		t.Errorf("expected FailureHTTP 404, got %v", err)
	}
}

func TestClient_DecodeErrorNotRetried(t *testing.T) {
	f := &fakeHTTP{steps: []fakeStep{{status: 200, body: `{"truncated`}}}

	_, err := newTestClient(f).Rankings(context.Background())
	var fe *FetchError
	if !errors.As(err, &fe) || fe.Kind != FailureDecode {
		t.Fatalf("expected FailureDecode, got %v", err)
	}
	if f.calls != 1 {
		t.Errorf("decode errors must not be retried, got %d attempts", f.calls)
	}
}

func TestClient_ExhaustsRetries(t *testing.T) {
	f := &fakeHTTP{steps: []fakeStep{{status: 500, body: "boom"}}}

	_, err := newTestClient(f).Rankings(context.Background())
	if err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	if f.calls != 3 {
		t.Errorf("expected 3 attempts, got %d", f.calls)
	}
	if !IsRetryable(err) {
		t.Error("a 500 FetchError should classify as retryable")
	}
}

func TestClient_RateLimiterSpacing(t *testing.T) {
	f := &fakeHTTP{steps: []fakeStep{{status: 200, body: `[]`}}}
	c := NewClient("http://upstream.test", nil,
		WithHTTPClient(f),
		WithCallsPerSecond(50), // 20ms minimum spacing
	)

	const callers = 4
	times := make([]time.Time, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			if _, err := c.Rankings(context.Background()); err != nil {
				t.Errorf("fetch %d: %v", n, err)
			}
			times[n] = time.Now()
		}(i)
	}
	wg.Wait()

	// With 4 concurrent callers at 50 cps the last release must be at
	// least 3 intervals after the first.
	var first, last time.Time
	for _, ts := range times {
		if first.IsZero() || ts.Before(first) {
			first = ts
		}
		if ts.After(last) {
			last = ts
		}
	}
	if spread := last.Sub(first); spread < 3*(time.Second/50)*9/10 {
		t.Errorf("limiter released calls too quickly: spread %v", spread)
	}
}

func TestIsRetryable_NonFetchError(t *testing.T) {
	if IsRetryable(errors.New("plain")) {
		t.Error("plain errors are not retryable")
	}
}

func TestParseCount(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"27", 27},
		{" 15 ", 15},
		{"", 0},
		{"n/a", 0},
		{"-3", 0},
	}
	for _, tt := range tests {
		if got := ParseCount(tt.in); got != tt.want {
			t.Errorf("ParseCount(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestParseMeasure(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"76.0", 76.0},
		{"84.5", 84.5},
		{"", 0},
		{"unknown", 0},
		{"-1", 0},
	}
	for _, tt := range tests {
		if got := ParseMeasure(tt.in); got != tt.want {
			t.Errorf("ParseMeasure(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
