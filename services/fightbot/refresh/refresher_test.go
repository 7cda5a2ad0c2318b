// Copyright (C) 2025 Octagon Ops (dev@octagonops.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package refresh

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestRunOnce_IntervalSelection(t *testing.T) {
	ctx := context.Background()

	t.Run("success uses normal interval", func(t *testing.T) {
		r := New(func(ctx context.Context) error { return nil }, nil,
			WithInterval(time.Hour), WithRetryInterval(time.Minute))
		if got := r.runOnce(ctx); got != time.Hour {
			t.Errorf("wait = %v, want %v", got, time.Hour)
		}
	})

	t.Run("failure backs off to retry interval", func(t *testing.T) {
		r := New(func(ctx context.Context) error { return errors.New("boom") }, nil,
			WithInterval(time.Hour), WithRetryInterval(time.Minute))
		if got := r.runOnce(ctx); got != time.Minute {
			t.Errorf("wait = %v, want %v", got, time.Minute)
		}
	})
}

func TestRun_RefreshesUntilCanceled(t *testing.T) {
	var calls atomic.Int64
	r := New(func(ctx context.Context) error {
		calls.Add(1)
		return nil
	}, nil, WithInterval(5*time.Millisecond), WithRetryInterval(time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Run(ctx)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for calls.Load() < 3 {
		select {
		case <-deadline:
			t.Fatalf("only %d refresh passes before deadline", calls.Load())
		case <-time.After(time.Millisecond):
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop on cancel")
	}
}

func TestRun_KeepsGoingAfterFailures(t *testing.T) {
	var calls atomic.Int64
	r := New(func(ctx context.Context) error {
		if calls.Add(1) == 1 {
			return errors.New("transient")
		}
		return nil
	}, nil, WithInterval(5*time.Millisecond), WithRetryInterval(time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go r.Run(ctx)

	deadline := time.After(2 * time.Second)
	for calls.Load() < 2 {
		select {
		case <-deadline:
			t.Fatal("refresher did not retry after a failed pass")
		case <-time.After(time.Millisecond):
		}
	}
}
