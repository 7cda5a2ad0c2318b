// Copyright (C) 2025 Octagon Ops (dev@octagonops.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package divisions

import "testing"

func newNormalizer(t *testing.T) *Normalizer {
	t.Helper()
	n, err := New(nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return n
}

func TestNormalize(t *testing.T) {
	n := newNormalizer(t)

	tests := []struct {
		phrase string
		want   string
		ok     bool
	}{
		{"lightweight", "lightweight", true},
		{"Lightweight Division", "lightweight", true},
		{"light heavyweight", "light-heavyweight", true},
		{"light heavy", "light-heavyweight", true},
		{"lhw", "light-heavyweight", true},
		{"heavyweight", "heavyweight", true},
		{"women's bantamweight", "womens-bantamweight", true},
		{"strawweight", "womens-strawweight", true},
		{"205", "light-heavyweight", true},
		{"155 pounds", "lightweight", true},
		{"70 kg", "lightweight", true},
		{"92 kg", "light-heavyweight", true},
		{"pound for pound", P4PMens, true},
		{"p4p", P4PMens, true},
		{"women's pound for pound", P4PWomens, true},
		{"featherwieght", "featherweight", true},
		{"midleweight", "middleweight", true}, // fuzzy only
		{"", "", false},
		{"cruiserweight", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.phrase, func(t *testing.T) {
			got, ok := n.Normalize(tt.phrase)
			if ok != tt.ok || got != tt.want {
				t.Errorf("Normalize(%q) = %q, %v; want %q, %v",
					tt.phrase, got, ok, tt.want, tt.ok)
			}
		})
	}
}

// Feeding a division's own display name back through the normalizer
// must return the same id.
func TestNormalize_RoundTrip(t *testing.T) {
	n := newNormalizer(t)

	categoryNames := map[string]string{
		"flyweight":           "Flyweight Division",
		"bantamweight":        "Bantamweight Division",
		"featherweight":       "Featherweight Division",
		"lightweight":         "Lightweight Division",
		"welterweight":        "Welterweight Division",
		"middleweight":        "Middleweight Division",
		"light-heavyweight":   "Light Heavyweight Division",
		"heavyweight":         "Heavyweight Division",
		"womens-strawweight":  "Women's Strawweight Division",
		"womens-flyweight":    "Women's Flyweight Division",
		"womens-bantamweight": "Women's Bantamweight Division",
		P4PMens:               "Men's Pound-for-Pound Top Rank",
		P4PWomens:             "Women's Pound-for-Pound Top Rank",
	}
	for id, name := range categoryNames {
		got, ok := n.Normalize(name)
		if !ok || got != id {
			t.Errorf("Normalize(%q) = %q, %v; want %q", name, got, ok, id)
		}
	}
}

func TestExtendAndReset(t *testing.T) {
	n := newNormalizer(t)

	if _, ok := n.Normalize("openweight"); ok {
		t.Fatal("openweight resolved before extension")
	}

	n.Extend("Openweight Division", "openweight")

	if got, ok := n.Normalize("openweight"); !ok || got != "openweight" {
		t.Fatalf("extended name did not resolve: %q, %v", got, ok)
	}
	if got, ok := n.Normalize("Openweight Division"); !ok || got != "openweight" {
		t.Fatalf("extended display name did not resolve: %q, %v", got, ok)
	}

	n.Reset()

	if _, ok := n.Normalize("openweight"); ok {
		t.Error("live extension survived Reset")
	}
}

func TestWeightClassFor(t *testing.T) {
	tests := []struct {
		pounds float64
		want   string
	}{
		{120, "flyweight"},
		{125, "flyweight"},
		{126, "bantamweight"},
		{135, "bantamweight"},
		{145, "featherweight"},
		{155, "lightweight"},
		{170, "welterweight"},
		{185, "middleweight"},
		{205, "light-heavyweight"},
		{206, "heavyweight"},
		{265, "heavyweight"},
	}
	for _, tt := range tests {
		if got := WeightClassFor(tt.pounds); got != tt.want {
			t.Errorf("WeightClassFor(%v) = %q, want %q", tt.pounds, got, tt.want)
		}
	}
}
