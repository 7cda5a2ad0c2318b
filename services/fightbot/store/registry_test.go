// Copyright (C) 2025 Octagon Ops (dev@octagonops.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package store

import (
	"strings"
	"testing"
)

func TestRetiredRegistry(t *testing.T) {
	reg, err := LoadRetiredRegistry()
	if err != nil {
		t.Fatalf("LoadRetiredRegistry: %v", err)
	}

	t.Run("ids are namespaced", func(t *testing.T) {
		for _, f := range reg.All() {
			if !strings.HasPrefix(f.ID, RetiredIDPrefix) {
				t.Errorf("id %q missing %q prefix", f.ID, RetiredIDPrefix)
			}
			if !f.Retired() {
				t.Errorf("fighter %q not reported retired", f.ID)
			}
		}
	})

	t.Run("get by namespaced id", func(t *testing.T) {
		f, ok := reg.Get("retired:khabib-nurmagomedov")
		if !ok {
			t.Fatal("khabib not found")
		}
		if f.Losses != 0 {
			t.Errorf("Losses = %d, want 0", f.Losses)
		}
	})

	t.Run("match name both directions", func(t *testing.T) {
		if id, ok := reg.MatchName("st-pierre"); !ok || id != "retired:georges-st-pierre" {
			t.Errorf("MatchName(st-pierre) = %q, %v", id, ok)
		}
		// Query containing the full name also matches.
		if _, ok := reg.MatchName("tell me about ronda rousey please"); !ok {
			t.Error("full-name-in-query match failed")
		}
	})

	t.Run("short queries rejected", func(t *testing.T) {
		if _, ok := reg.MatchName("gs"); ok {
			t.Error("two-rune query must not match")
		}
	})
}
