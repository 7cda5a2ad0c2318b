// Copyright (C) 2025 Octagon Ops (dev@octagonops.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package validation provides input validation utilities for user-provided text.
//
// Inbound chat messages are free text and end up in log lines, cache keys, and
// fuzzy-matching scans. Sanitizing here keeps control characters out of logs and
// bounds the work the classifier does per request.
package validation

import (
	"fmt"
	"strings"
	"unicode"
)

// MaxMessageRunes is the maximum accepted message length. Longer messages are
// truncated, not rejected.
const MaxMessageRunes = 500

// ErrEmptyMessage is returned when a message is empty after sanitization.
var ErrEmptyMessage = fmt.Errorf("message cannot be empty")

// SanitizeMessage normalizes a raw user message for classification.
//
// The returned string is trimmed, stripped of control characters (tabs and
// newlines become single spaces), and truncated to MaxMessageRunes runes.
// A message that is empty after sanitization returns ErrEmptyMessage; that is
// the only rejection — oversized or messy input is cleaned up, not refused.
//
// Example:
//
//	msg, err := validation.SanitizeMessage(req.Message)
//	if err != nil {
//	    return // 400, classifier never sees it
//	}
func SanitizeMessage(raw string) (string, error) {
	var b strings.Builder
	b.Grow(len(raw))

	for _, r := range raw {
		switch {
		case r == '\n' || r == '\r' || r == '\t':
			b.WriteRune(' ')
		case unicode.IsControl(r):
			// Drop other control characters entirely.
		default:
			b.WriteRune(r)
		}
	}

	msg := strings.Join(strings.Fields(b.String()), " ")
	if msg == "" {
		return "", ErrEmptyMessage
	}

	runes := []rune(msg)
	if len(runes) > MaxMessageRunes {
		msg = strings.TrimSpace(string(runes[:MaxMessageRunes]))
	}
	return msg, nil
}
