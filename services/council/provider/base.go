// Copyright (C) 2025 Cognitive Stack contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/sysadmin-info/cognitive-stack/pkg/logging"
	"github.com/sysadmin-info/cognitive-stack/pkg/redact"
)

// maxConnsPerEndpoint caps the connection pool of one provider.
const maxConnsPerEndpoint = 10

// base carries the transport, retry, and redaction behavior shared by
// every wire variant. Variants embed it and only implement payload
// shaping and content extraction.
type base struct {
	name string
	cfg  Config
	log  *logging.Logger

	mu         sync.Mutex
	httpClient *http.Client

	// sleep is a seam for deterministic retry tests.
	sleep func(time.Duration)
}

func newBase(name string, cfg Config, log *logging.Logger) base {
	if log == nil {
		log = logging.Default()
	}
	return base{
		name:  name,
		cfg:   cfg.resolved(),
		log:   log,
		sleep: time.Sleep,
	}
}

// Name returns the endpoint name.
func (b *base) Name() string { return b.name }

// Model returns the configured model identifier.
func (b *base) Model() string { return b.cfg.Model }

// client returns the HTTP client, creating it on first use. The pool
// is owned by this provider instance, never shared or global.
func (b *base) client() *http.Client {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.httpClient == nil {
		transport := http.DefaultTransport.(*http.Transport).Clone()
		transport.MaxConnsPerHost = maxConnsPerEndpoint
		transport.MaxIdleConnsPerHost = maxConnsPerEndpoint
		b.httpClient = &http.Client{
			Timeout:   b.cfg.timeout(),
			Transport: transport,
		}
	}
	return b.httpClient
}

// Close drops the connection pool. A later Complete recreates it.
func (b *base) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.httpClient != nil {
		b.httpClient.CloseIdleConnections()
		b.httpClient = nil
	}
}

// backoffDelay returns the wait before retry k (0-indexed): 2^k + 0.5s.
func backoffDelay(k int) time.Duration {
	return time.Duration(1<<uint(k))*time.Second + 500*time.Millisecond
}

// postJSON sends the payload and returns the response body, applying
// the shared retry policy: up to MaxRetries additional attempts for
// retryable failures, exponential backoff between attempts, immediate
// surfacing of non-retryable errors. Exhausted retries surface the
// last error seen.
func (b *base) postJSON(ctx context.Context, url string, headers map[string]string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= b.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := backoffDelay(attempt - 1)
			b.log.Warn("retrying request",
				"provider", b.name,
				"attempt", attempt,
				"max_retries", b.cfg.MaxRetries,
				"delay", delay.String(),
			)
			b.sleep(delay)
		}

		data, err := b.doOnce(ctx, url, headers, body)
		if err == nil {
			return data, nil
		}
		if !Retryable(err) {
			return nil, err
		}
		lastErr = err
	}
	return nil, lastErr
}

// doOnce performs a single HTTP attempt.
func (b *base) doOnce(ctx context.Context, url string, headers map[string]string, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := b.client().Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{Status: resp.StatusCode, Body: string(data)}
	}
	return data, nil
}

// failure logs the error and folds it into a Response. The error text
// is redacted before it leaves this method in either direction.
func (b *base) failure(err error) Response {
	msg := redact.Error(err)
	b.log.Error("completion failed", "provider", b.name, "model", b.cfg.Model, "error", msg)
	return Response{Provider: b.name, Model: b.cfg.Model, Err: msg}
}

// success builds a successful Response.
func (b *base) success(content string, usage map[string]any) Response {
	return Response{Provider: b.name, Model: b.cfg.Model, Content: content, Usage: usage}
}
