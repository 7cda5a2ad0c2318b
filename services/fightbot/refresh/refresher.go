// Copyright (C) 2025 Octagon Ops (dev@octagonops.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package refresh keeps the roster and rankings caches warm with a
// periodic background pass, independent of request traffic. A failed
// pass schedules a shorter retry instead of terminating; the
// refresher only stops when its context is canceled.
package refresh

import (
	"context"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	DefaultInterval      = 30 * time.Minute
	DefaultRetryInterval = 5 * time.Minute
)

var cyclesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "fightbot",
	Subsystem: "refresh",
	Name:      "cycles_total",
	Help:      "Background refresh passes, by outcome.",
}, []string{"result"})

// Refresher periodically re-fetches roster and rankings.
type Refresher struct {
	warm     func(ctx context.Context) error
	interval time.Duration
	retry    time.Duration
	logger   *slog.Logger
}

// Option configures a Refresher.
type Option func(*Refresher)

// WithInterval overrides the healthy-cycle interval.
func WithInterval(d time.Duration) Option {
	return func(r *Refresher) { r.interval = d }
}

// WithRetryInterval overrides the post-failure interval.
func WithRetryInterval(d time.Duration) Option {
	return func(r *Refresher) { r.retry = d }
}

// New builds a Refresher around a warm function that re-fetches
// whatever should stay cached and reports the first error it hits.
func New(warm func(ctx context.Context) error, logger *slog.Logger, opts ...Option) *Refresher {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Refresher{
		warm:     warm,
		interval: DefaultInterval,
		retry:    DefaultRetryInterval,
		logger:   logger.With("component", "refresh"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run blocks, refreshing on each tick, until ctx is canceled. The
// first pass runs immediately.
func (r *Refresher) Run(ctx context.Context) {
	wait := r.runOnce(ctx)
	timer := time.NewTimer(wait)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("refresher stopping", "reason", ctx.Err())
			return
		case <-timer.C:
			timer.Reset(r.runOnce(ctx))
		}
	}
}

// runOnce executes one refresh pass and returns the wait before the
// next one: the retry interval after a failure, the normal interval
// otherwise.
func (r *Refresher) runOnce(ctx context.Context) time.Duration {
	start := time.Now()
	if err := r.warm(ctx); err != nil {
		if ctx.Err() != nil {
			return r.retry
		}
		cyclesTotal.WithLabelValues("failure").Inc()
		r.logger.Warn("refresh pass failed, backing off",
			"error", err, "retry_in", r.retry)
		return r.retry
	}
	cyclesTotal.WithLabelValues("success").Inc()
	r.logger.Debug("refresh pass complete", "took", time.Since(start))
	return r.interval
}
