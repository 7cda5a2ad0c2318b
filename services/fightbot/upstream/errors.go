// Copyright (C) 2025 Octagon Ops (dev@octagonops.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package upstream

import (
	"errors"
	"fmt"
)

// FailureKind classifies an upstream fetch failure. The data store treats
// all kinds identically (log and return absent); the kinds exist so the
// fetcher can decide retryability and metrics can break failures down.
type FailureKind string

const (
	// FailureTimeout is a per-attempt deadline expiry.
	FailureTimeout FailureKind = "timeout"

	// FailureHTTP is a non-2xx response.
	FailureHTTP FailureKind = "http_error"

	// FailureNetwork is a transport-level error (DNS, refused, reset).
	FailureNetwork FailureKind = "network_error"

	// FailureDecode is a 2xx response with a malformed payload.
	FailureDecode FailureKind = "decode_error"
)

// FetchError is the typed failure returned by the resilient fetcher.
type FetchError struct {
	Kind   FailureKind
	Status int // HTTP status for FailureHTTP, else 0
	Path   string
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("upstream %s %s (status %d): %v", e.Kind, e.Path, e.Status, e.Err)
	}
	return fmt.Sprintf("upstream %s %s: %v", e.Kind, e.Path, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// IsRetryable reports whether the fetcher should retry after err.
// Timeouts, network errors, and 5xx responses are transient; 4xx responses
// and decode errors will not improve on retry.
func IsRetryable(err error) bool {
	var fe *FetchError
	if !errors.As(err, &fe) {
		return false
	}
	switch fe.Kind {
	case FailureTimeout, FailureNetwork:
		return true
	case FailureHTTP:
		return fe.Status >= 500
	default:
		return false
	}
}
