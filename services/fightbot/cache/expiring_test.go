// Copyright (C) 2025 Octagon Ops (dev@octagonops.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestExpiring_BasicOperations(t *testing.T) {
	c := NewExpiring[string]("test", time.Hour)

	t.Run("set and get", func(t *testing.T) {
		c.Set("jon-jones", "heavyweight")
		got, ok := c.Get("jon-jones")
		if !ok {
			t.Fatal("expected cache hit")
		}
		if got != "heavyweight" {
			t.Errorf("got %q, want %q", got, "heavyweight")
		}
	})

	t.Run("miss for absent key", func(t *testing.T) {
		if _, ok := c.Get("nope"); ok {
			t.Error("expected cache miss")
		}
	})

	t.Run("set replaces", func(t *testing.T) {
		c.Set("jon-jones", "light-heavyweight")
		got, _ := c.Get("jon-jones")
		if got != "light-heavyweight" {
			t.Errorf("got %q after overwrite", got)
		}
	})

	t.Run("clear empties", func(t *testing.T) {
		c.Clear()
		if c.Len() != 0 {
			t.Errorf("Len() = %d after Clear", c.Len())
		}
	})
}

func TestExpiring_TTLBoundary(t *testing.T) {
	// Drive the clock manually so the Δ < ttl boundary is exact.
	current := time.Unix(1000, 0)
	c := NewExpiring[int]("test", time.Hour)
	c.now = func() time.Time { return current }

	c.Set("k", 7)

	current = current.Add(time.Hour - time.Nanosecond)
	if _, ok := c.Get("k"); !ok {
		t.Error("entry just under TTL must be visible")
	}

	current = current.Add(time.Nanosecond)
	if _, ok := c.Get("k"); ok {
		t.Error("entry at exactly TTL must be absent")
	}

	// The expired entry must have been purged, not just hidden.
	if c.Len() != 0 {
		t.Errorf("expired entry not purged, Len() = %d", c.Len())
	}
}

func TestExpiring_ConcurrentAccess(t *testing.T) {
	c := NewExpiring[int]("test", time.Hour)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				key := fmt.Sprintf("k%d", j%10)
				c.Set(key, n)
				c.Get(key)
			}
		}(i)
	}
	wg.Wait()

	if c.Len() != 10 {
		t.Errorf("Len() = %d, want 10", c.Len())
	}
}
