// Copyright (C) 2025 Octagon Ops (dev@octagonops.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	cacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fightbot",
		Subsystem: "cache",
		Name:      "hits_total",
		Help:      "Local cache hits by cache name",
	}, []string{"cache"})

	cacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fightbot",
		Subsystem: "cache",
		Name:      "misses_total",
		Help:      "Local cache misses by cache name (includes expiries)",
	}, []string{"cache"})

	cacheEvictions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fightbot",
		Subsystem: "cache",
		Name:      "evictions_total",
		Help:      "Entries purged on access after TTL expiry, by cache name",
	}, []string{"cache"})

	redisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fightbot",
		Subsystem: "cache",
		Name:      "redis_errors_total",
		Help:      "Swallowed Redis tier errors by operation",
	}, []string{"op"})
)
