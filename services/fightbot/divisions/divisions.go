// Copyright (C) 2025 Octagon Ops (dev@octagonops.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package divisions maps free-text division and weight references
// ("light heavy", "205", "93 kg", "women's bantamweight") to canonical
// division ids. The mapping starts from an embedded static table and is
// extended at runtime with the category names the rankings endpoint
// reports, so newly introduced divisions resolve without a redeploy.
package divisions

import (
	_ "embed"
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/octagonops/fightbot/pkg/fuzzy"
)

//go:embed data/divisionmap.yaml
var divisionMapYAML []byte

// Canonical ids for the pound-for-pound pseudo-divisions. These never
// appear in the static table because they carry no weight class.
const (
	P4PMens   = "mens-pound-for-pound-top-rank"
	P4PWomens = "womens-pound-for-pound-top-rank"
)

// fuzzyCutoff is the minimum similarity for a fuzzy key match.
const fuzzyCutoff = 0.7

const poundsPerKilogram = 2.20462

type mappingFile struct {
	Divisions []struct {
		ID   string   `yaml:"id"`
		Keys []string `yaml:"keys"`
	} `yaml:"divisions"`
}

// Normalizer resolves text phrases to division ids. Safe for
// concurrent use; live extensions are applied under a write lock.
type Normalizer struct {
	mu      sync.RWMutex
	mapping map[string]string // lowercased key -> division id
	keys    []string          // sorted snapshot of mapping keys
	static  map[string]string // embedded table, restored on Reset
	logger  *slog.Logger
}

// New builds a Normalizer from the embedded static table.
func New(logger *slog.Logger) (*Normalizer, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var file mappingFile
	if err := yaml.Unmarshal(divisionMapYAML, &file); err != nil {
		return nil, fmt.Errorf("parse division map: %w", err)
	}

	static := make(map[string]string)
	for _, d := range file.Divisions {
		if d.ID == "" {
			return nil, fmt.Errorf("division map entry with empty id")
		}
		for _, k := range d.Keys {
			static[strings.ToLower(strings.TrimSpace(k))] = d.ID
		}
	}

	n := &Normalizer{
		mapping: make(map[string]string, len(static)),
		static:  static,
		logger:  logger.With("component", "divisions"),
	}
	for k, v := range static {
		n.mapping[k] = v
	}
	n.rebuildKeys()
	return n, nil
}

// Extend adds a live category name for a division id. The name is
// registered both verbatim and with a trailing " division" stripped.
func (n *Normalizer) Extend(categoryName, id string) {
	name := strings.ToLower(strings.TrimSpace(categoryName))
	if name == "" || id == "" {
		return
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.mapping[name] = id
	n.mapping[strings.TrimSuffix(name, " division")] = id
	n.rebuildKeys()
}

// Reset drops all live extensions, restoring the static table. Wired
// to the store's invalidation hook.
func (n *Normalizer) Reset() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.mapping = make(map[string]string, len(n.static))
	for k, v := range n.static {
		n.mapping[k] = v
	}
	n.rebuildKeys()
	n.logger.Debug("division mapping reset to static table")
}

// rebuildKeys refreshes the sorted key snapshot. Caller holds n.mu.
func (n *Normalizer) rebuildKeys() {
	n.keys = n.keys[:0]
	for k := range n.mapping {
		n.keys = append(n.keys, k)
	}
	sort.Strings(n.keys)
}

var weightMention = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(kg|kgs|kilo|kilos|kilograms?|lbs?|pounds?)?`)

// Normalize resolves a free-text division phrase to a canonical id.
// Matching stages run in priority order; the first hit wins.
func (n *Normalizer) Normalize(phrase string) (string, bool) {
	q := strings.ToLower(strings.TrimSpace(phrase))
	q = strings.TrimSuffix(q, " division")
	if q == "" {
		return "", false
	}

	// Pound-for-pound is keyed on gender mention, defaulting to men's.
	if strings.Contains(q, "pound for pound") || strings.Contains(q, "pound-for-pound") ||
		strings.Contains(q, "p4p") {
		if mentionsWomen(q) {
			return P4PWomens, true
		}
		return P4PMens, true
	}

	// "light heavyweight" would otherwise collide with "lightweight".
	if strings.Contains(q, "light") && strings.Contains(q, "heavy") {
		return "light-heavyweight", true
	}

	n.mu.RLock()
	defer n.mu.RUnlock()

	if id, ok := n.mapping[q]; ok {
		return id, true
	}

	for _, key := range n.keys {
		if len(key) < 4 {
			continue
		}
		if strings.Contains(q, key) || strings.Contains(key, q) {
			return n.mapping[key], true
		}
	}

	// A numeric weight mention maps by threshold rather than by key.
	if m := weightMention.FindStringSubmatch(q); m != nil {
		value, err := strconv.ParseFloat(m[1], 64)
		if err == nil && value > 0 {
			if unit := m[2]; strings.HasPrefix(unit, "k") {
				value *= poundsPerKilogram
			}
			return WeightClassFor(value), true
		}
	}

	if key, score := fuzzy.Closest(q, n.keys); score >= fuzzyCutoff {
		return n.mapping[key], true
	}

	return "", false
}

// WeightClassFor buckets a weight in pounds into the division whose
// upper bound first covers it.
func WeightClassFor(pounds float64) string {
	switch {
	case pounds <= 125:
		return "flyweight"
	case pounds <= 135:
		return "bantamweight"
	case pounds <= 145:
		return "featherweight"
	case pounds <= 155:
		return "lightweight"
	case pounds <= 170:
		return "welterweight"
	case pounds <= 185:
		return "middleweight"
	case pounds <= 205:
		return "light-heavyweight"
	default:
		return "heavyweight"
	}
}

func mentionsWomen(q string) bool {
	return strings.Contains(q, "women") || strings.Contains(q, "woman") ||
		strings.Contains(q, "female")
}
