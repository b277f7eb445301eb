// Copyright (C) 2025 Cognitive Stack contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sysadmin-info/cognitive-stack/pkg/logging"
	"github.com/sysadmin-info/cognitive-stack/pkg/redact"
)

const okChatCompletion = `{"choices":[{"message":{"content":"hello"}}],"usage":{"total_tokens":5}}`

func quietLogger() *logging.Logger {
	return logging.New(logging.Config{Quiet: true})
}

// newTestOpenAI builds an OpenAI provider against a test server with
// sleeps recorded instead of performed.
func newTestOpenAI(t *testing.T, serverURL string, maxRetries int) (*OpenAI, *[]time.Duration) {
	t.Helper()

	p := NewOpenAI(Config{
		APIKey:     "test-key",
		Model:      "gpt-test",
		BaseURL:    serverURL,
		MaxRetries: maxRetries,
	}, quietLogger())

	var delays []time.Duration
	p.sleep = func(d time.Duration) { delays = append(delays, d) }
	t.Cleanup(p.Close)
	return p, &delays
}

func TestComplete_RetriesThenSucceeds(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) <= 2 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(okChatCompletion))
	}))
	defer server.Close()

	p, delays := newTestOpenAI(t, server.URL, 2)
	resp := p.Complete(context.Background(), []Message{{Role: "user", Content: "hi"}}, "")

	require.True(t, resp.OK(), "error: %s", resp.Err)
	assert.Equal(t, "hello", resp.Content)
	assert.Equal(t, int32(3), calls.Load())
	// Exactly maxRetries delays of 2^k + 0.5 seconds.
	assert.Equal(t, []time.Duration{
		1500 * time.Millisecond,
		2500 * time.Millisecond,
	}, *delays)
}

func TestComplete_NonRetryable4xxSingleAttempt(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "not found", http.StatusNotFound)
	}))
	defer server.Close()

	p, delays := newTestOpenAI(t, server.URL, 3)
	resp := p.Complete(context.Background(), []Message{{Role: "user", Content: "hi"}}, "")

	assert.False(t, resp.OK())
	assert.Empty(t, resp.Content)
	assert.Equal(t, int32(1), calls.Load(), "4xx other than 429 must not be retried")
	assert.Empty(t, *delays)
}

func TestComplete_429IsRetryable(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, "rate limited", http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(okChatCompletion))
	}))
	defer server.Close()

	p, _ := newTestOpenAI(t, server.URL, 1)
	resp := p.Complete(context.Background(), []Message{{Role: "user", Content: "hi"}}, "")

	assert.True(t, resp.OK())
	assert.Equal(t, int32(2), calls.Load())
}

func TestComplete_ExhaustedRetriesSurfacesLastError(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer server.Close()

	p, delays := newTestOpenAI(t, server.URL, 2)
	resp := p.Complete(context.Background(), []Message{{Role: "user", Content: "hi"}}, "")

	assert.False(t, resp.OK())
	assert.Contains(t, resp.Err, "502")
	assert.Equal(t, int32(3), calls.Load())
	assert.Len(t, *delays, 2)
}

func TestComplete_ConnectionFailureIsRetryable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // nothing listening anymore

	p, delays := newTestOpenAI(t, server.URL, 2)
	resp := p.Complete(context.Background(), []Message{{Role: "user", Content: "hi"}}, "")

	assert.False(t, resp.OK())
	assert.NotEmpty(t, resp.Err)
	assert.Len(t, *delays, 2)
}

func TestComplete_EmptyContentIsFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[{"message":{"content":""}}]}`))
	}))
	defer server.Close()

	p, _ := newTestOpenAI(t, server.URL, 0)
	resp := p.Complete(context.Background(), []Message{{Role: "user", Content: "hi"}}, "")

	assert.False(t, resp.OK())
	assert.Equal(t, ErrEmptyResponse.Error(), resp.Err)
	assert.Empty(t, resp.Content)
}

func TestComplete_ErrorTextIsRedacted(t *testing.T) {
	const secret = "sk-proj-SuperSecretValue1234567890"
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid api key "+secret, http.StatusUnauthorized)
	}))
	defer server.Close()

	p, _ := newTestOpenAI(t, server.URL, 0)
	resp := p.Complete(context.Background(), []Message{{Role: "user", Content: "hi"}}, "")

	assert.False(t, resp.OK())
	assert.NotContains(t, resp.Err, secret)
	assert.Contains(t, resp.Err, redact.Marker)
}

func TestResponse_OKInvariant(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(okChatCompletion))
	}))
	defer server.Close()

	p, _ := newTestOpenAI(t, server.URL, 0)

	ok := p.Complete(context.Background(), []Message{{Role: "user", Content: "hi"}}, "")
	assert.True(t, ok.OK() == (ok.Content != ""))

	bad := p.failure(ErrEmptyResponse)
	assert.True(t, bad.OK() == (bad.Content != ""))
	assert.Empty(t, bad.Content)
}

func TestBackoffDelay(t *testing.T) {
	assert.Equal(t, 1500*time.Millisecond, backoffDelay(0))
	assert.Equal(t, 2500*time.Millisecond, backoffDelay(1))
	assert.Equal(t, 4500*time.Millisecond, backoffDelay(2))
	assert.Equal(t, 8500*time.Millisecond, backoffDelay(3))
}

func TestClose_RecreatesPoolOnDemand(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(okChatCompletion))
	}))
	defer server.Close()

	p, _ := newTestOpenAI(t, server.URL, 0)

	first := p.Complete(context.Background(), []Message{{Role: "user", Content: "hi"}}, "")
	require.True(t, first.OK())

	p.Close()

	second := p.Complete(context.Background(), []Message{{Role: "user", Content: "hi"}}, "")
	assert.True(t, second.OK())
}
