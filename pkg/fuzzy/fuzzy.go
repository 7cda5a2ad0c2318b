// Copyright (C) 2025 Octagon Ops (dev@octagonops.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package fuzzy provides string similarity scoring for entity and
// division name matching. Scores are normalized to [0, 1] where 1 is
// an exact match.
package fuzzy

import "strings"

// Ratio returns a normalized similarity score between two strings
// based on edit distance: 1 - dist/maxLen. Comparison is
// case-insensitive. Two empty strings score 1.
func Ratio(a, b string) float64 {
	a = strings.ToLower(a)
	b = strings.ToLower(b)
	if a == b {
		return 1
	}
	ra, rb := []rune(a), []rune(b)
	longest := len(ra)
	if len(rb) > longest {
		longest = len(rb)
	}
	if longest == 0 {
		return 1
	}
	return 1 - float64(distance(ra, rb))/float64(longest)
}

// Closest returns the candidate with the highest Ratio against query
// along with its score. Returns ("", 0) for an empty candidate list.
// Ties keep the earliest candidate.
func Closest(query string, candidates []string) (string, float64) {
	best := ""
	bestScore := 0.0
	for _, c := range candidates {
		if score := Ratio(query, c); score > bestScore {
			best, bestScore = c, score
		}
	}
	return best, bestScore
}

// distance computes the Levenshtein edit distance over runes using a
// two-row rolling buffer.
func distance(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min3(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
