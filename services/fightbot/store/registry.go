// Copyright (C) 2025 Octagon Ops (dev@octagonops.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package store

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed data/retired.yaml
var retiredYAML []byte

// RetiredRegistry holds the curated historical fighters. It is built once
// at construction and read-only afterwards; InvalidateAll does not touch
// it (the data is compiled in).
type RetiredRegistry struct {
	byID map[string]Fighter
	ids  []string // sorted, for deterministic listings
}

// LoadRetiredRegistry parses the embedded registry. The id column in the
// data file is a bare slug; the "retired:" namespace is applied here.
func LoadRetiredRegistry() (*RetiredRegistry, error) {
	var raw []Fighter
	if err := yaml.Unmarshal(retiredYAML, &raw); err != nil {
		return nil, fmt.Errorf("parse retired registry: %w", err)
	}

	r := &RetiredRegistry{byID: make(map[string]Fighter, len(raw))}
	for _, f := range raw {
		if f.ID == "" || f.Name == "" {
			return nil, fmt.Errorf("retired registry entry missing id or name: %+v", f)
		}
		f.ID = RetiredIDPrefix + f.ID
		if f.Status == "" {
			f.Status = "Retired"
		}
		if _, dup := r.byID[f.ID]; dup {
			return nil, fmt.Errorf("duplicate retired id %q", f.ID)
		}
		r.byID[f.ID] = f
		r.ids = append(r.ids, f.ID)
	}
	sort.Strings(r.ids)
	return r, nil
}

// Get returns the registry fighter for a namespaced id.
func (r *RetiredRegistry) Get(id string) (Fighter, bool) {
	f, ok := r.byID[id]
	return f, ok
}

// All returns every registry fighter in id order.
func (r *RetiredRegistry) All() []Fighter {
	out := make([]Fighter, 0, len(r.ids))
	for _, id := range r.ids {
		out = append(out, r.byID[id])
	}
	return out
}

// MatchName finds a registry fighter whose lowercase name contains the
// query or is contained by it (either direction, per the resolver's
// retired-lookup contract). Returns the namespaced id.
func (r *RetiredRegistry) MatchName(query string) (string, bool) {
	q := strings.ToLower(strings.TrimSpace(query))
	if len(q) < 3 {
		return "", false
	}
	for _, id := range r.ids {
		name := strings.ToLower(r.byID[id].Name)
		if strings.Contains(name, q) || strings.Contains(q, name) {
			return id, true
		}
	}
	return "", false
}
