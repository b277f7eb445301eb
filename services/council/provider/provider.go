// Copyright (C) 2025 Cognitive Stack contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package provider implements HTTP clients for remote text-completion
// endpoints.
//
// Four wire variants are supported (openai, anthropic, google, ollama).
// They differ only in request/response shaping; retry, backoff, timeout
// clamping, and secret redaction are shared and identical across all of
// them.
//
// Complete never returns a Go error for expected failure modes: every
// outcome, success or failure, is reported inside the Response so that
// one endpoint's failure cannot abort a council fan-out. All error text
// is redacted before it reaches a Response or a log line.
//
// A provider holds one lazily-created HTTP client with connection
// reuse and may serve many sequential Complete calls. The owner must
// call Close when done.
package provider

import "context"

// Message is one conversation turn in the generic role/content shape.
// Each wire variant maps it onto the provider's own schema.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Response is the outcome of one completion request after the full
// retry sequence. Immutable once returned.
//
// Invariant: Err == "" exactly when the call succeeded, and Content is
// empty whenever Err is set.
type Response struct {
	// Provider is the endpoint name ("openai", "anthropic", ...).
	Provider string

	// Model is the model identifier the request was sent to.
	Model string

	// Content is the extracted completion text. Empty on failure.
	Content string

	// Err holds the redacted failure description, empty on success.
	Err string

	// Usage carries the provider-reported token accounting, when any.
	Usage map[string]any
}

// OK reports whether the call succeeded.
func (r Response) OK() bool { return r.Err == "" }

// Provider is one remote text-completion endpoint.
//
// Implementations are safe for concurrent Complete calls; Close must
// only be called once no calls are in flight.
type Provider interface {
	// Name returns the endpoint name (e.g. "anthropic").
	Name() string

	// Model returns the configured model identifier.
	Model() string

	// Complete sends the conversation with an optional system prompt
	// and returns the outcome. Expected failures (HTTP errors, empty
	// content, exhausted retries) are reported in Response.Err, never
	// as a panic or error value.
	Complete(ctx context.Context, messages []Message, system string) Response

	// Close releases the underlying connection pool. The provider may
	// be used again afterwards; the pool is recreated on demand.
	Close()
}
