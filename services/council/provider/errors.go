// Copyright (C) 2025 Cognitive Stack contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package provider

import (
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
)

// Sentinel errors for the provider package.
var (
	// ErrEmptyResponse indicates the endpoint answered 200 with no
	// usable text. Treated as a failure, never as success.
	ErrEmptyResponse = errors.New("empty response from API")

	// ErrUnknownProvider indicates a factory name with no wire variant.
	ErrUnknownProvider = errors.New("unknown provider")
)

// StatusError is a non-2xx HTTP response. The body is preserved for
// diagnostics and is redacted before it becomes user-visible.
type StatusError struct {
	Status int
	Body   string
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.Status, e.Body)
}

// Retryable reports whether the retry loop may attempt the request
// again. HTTP 429 and 5xx are retryable; any other 4xx is surfaced
// immediately. For transport errors, connection failures and timeouts
// are retryable; structural errors (bad URL, protocol misuse) are not.
func Retryable(err error) bool {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		if statusErr.Status == http.StatusTooManyRequests {
			return true
		}
		return statusErr.Status >= 500
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	// A connection dropped mid-body reads as an unexpected EOF.
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}

	return false
}
