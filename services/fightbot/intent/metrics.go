// Copyright (C) 2025 Octagon Ops (dev@octagonops.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package intent

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var classifiedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "fightbot",
	Subsystem: "intent",
	Name:      "classified_total",
	Help:      "Messages classified, by resulting intent type.",
}, []string{"type"})
