// Copyright (C) 2025 Octagon Ops (dev@octagonops.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package fuzzy

import (
	"math"
	"testing"
)

func TestRatio(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"identical", "lightweight", "lightweight", 1},
		{"case insensitive", "Jon Jones", "jon jones", 1},
		{"both empty", "", "", 1},
		{"one empty", "abc", "", 0},
		{"single substitution", "jon", "jan", 1 - 1.0/3},
		{"disjoint", "abc", "xyz", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Ratio(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Ratio(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestRatio_Symmetric(t *testing.T) {
	pairs := [][2]string{
		{"khabib", "khabob"},
		{"featherweight", "fetherweight"},
		{"pereira", "periera"},
	}
	for _, p := range pairs {
		if Ratio(p[0], p[1]) != Ratio(p[1], p[0]) {
			t.Errorf("Ratio not symmetric for %q / %q", p[0], p[1])
		}
	}
}

func TestClosest(t *testing.T) {
	candidates := []string{"flyweight", "bantamweight", "featherweight", "lightweight"}

	got, score := Closest("liteweight", candidates)
	if got != "lightweight" {
		t.Errorf("Closest = %q, want lightweight", got)
	}
	if score < 0.7 {
		t.Errorf("score = %v, want >= 0.7", score)
	}

	if got, score := Closest("anything", nil); got != "" || score != 0 {
		t.Errorf("empty candidates: got %q, %v", got, score)
	}
}
