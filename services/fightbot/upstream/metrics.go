// Copyright (C) 2025 Octagon Ops (dev@octagonops.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package upstream

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	fetchLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "fightbot",
		Subsystem: "upstream",
		Name:      "fetch_latency_seconds",
		Help:      "Origin fetch latency including retries and limiter wait",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
	})

	fetchResults = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fightbot",
		Subsystem: "upstream",
		Name:      "fetch_results_total",
		Help:      "Origin fetch outcomes: ok or the failure kind",
	}, []string{"result"})

	fetchRetries = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "fightbot",
		Subsystem: "upstream",
		Name:      "fetch_retries_total",
		Help:      "Retry attempts beyond the first try",
	})
)
