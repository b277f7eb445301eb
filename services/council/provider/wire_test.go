// Copyright (C) 2025 Cognitive Stack contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package provider

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// captured holds everything one request carried over the wire.
type captured struct {
	path   string
	query  string
	header http.Header
	body   map[string]any
}

func captureServer(t *testing.T, responseJSON string) (*httptest.Server, *captured) {
	t.Helper()
	got := &captured{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got.path = r.URL.Path
		got.query = r.URL.RawQuery
		got.header = r.Header.Clone()
		data, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(data, &got.body))
		w.Write([]byte(responseJSON))
	}))
	t.Cleanup(server.Close)
	return server, got
}

func TestOpenAI_Wire(t *testing.T) {
	server, got := captureServer(t, okChatCompletion)

	p := NewOpenAI(Config{
		APIKey:      "sk-test",
		Model:       "gpt-test",
		BaseURL:     server.URL,
		MaxTokens:   256,
		Temperature: 0.3,
	}, quietLogger())
	defer p.Close()

	resp := p.Complete(context.Background(),
		[]Message{{Role: "user", Content: "question"}}, "be brief")

	require.True(t, resp.OK())
	assert.Equal(t, "openai", resp.Provider)
	assert.Equal(t, "gpt-test", resp.Model)
	assert.Equal(t, "hello", resp.Content)
	assert.NotNil(t, resp.Usage)

	assert.Equal(t, "/chat/completions", got.path)
	assert.Equal(t, "Bearer sk-test", got.header.Get("Authorization"))
	assert.Equal(t, "application/json", got.header.Get("Content-Type"))
	assert.Equal(t, "gpt-test", got.body["model"])
	assert.Equal(t, float64(256), got.body["max_tokens"])

	// System prompt leads the message list.
	msgs := got.body["messages"].([]any)
	require.Len(t, msgs, 2)
	first := msgs[0].(map[string]any)
	assert.Equal(t, "system", first["role"])
	assert.Equal(t, "be brief", first["content"])
}

func TestAnthropic_Wire(t *testing.T) {
	server, got := captureServer(t,
		`{"content":[{"text":"answer"}],"usage":{"input_tokens":3}}`)

	p := NewAnthropic(Config{
		APIKey:  "sk-ant-test",
		Model:   "claude-test",
		BaseURL: server.URL,
	}, quietLogger())
	defer p.Close()

	resp := p.Complete(context.Background(),
		[]Message{{Role: "user", Content: "question"}}, "be brief")

	require.True(t, resp.OK())
	assert.Equal(t, "answer", resp.Content)

	assert.Equal(t, "/v1/messages", got.path)
	assert.Equal(t, "sk-ant-test", got.header.Get("x-api-key"))
	assert.Equal(t, anthropicAPIVersion, got.header.Get("anthropic-version"))
	assert.Empty(t, got.header.Get("Authorization"))

	// System prompt is a top-level field, not a message.
	assert.Equal(t, "be brief", got.body["system"])
	msgs := got.body["messages"].([]any)
	require.Len(t, msgs, 1)
	assert.Equal(t, "user", msgs[0].(map[string]any)["role"])
}

func TestGoogle_Wire(t *testing.T) {
	server, got := captureServer(t,
		`{"candidates":[{"content":{"parts":[{"text":"answer"}]},"finishReason":"STOP"}],"usageMetadata":{"totalTokenCount":7}}`)

	p := NewGoogle(Config{
		APIKey:  "AIzaSyTestKey",
		Model:   "gemini-test",
		BaseURL: server.URL,
	}, quietLogger())
	defer p.Close()

	resp := p.Complete(context.Background(), []Message{
		{Role: "user", Content: "question"},
		{Role: "assistant", Content: "earlier answer"},
	}, "be brief")

	require.True(t, resp.OK())
	assert.Equal(t, "answer", resp.Content)

	assert.Equal(t, "/models/gemini-test:generateContent", got.path)
	assert.Equal(t, "key=AIzaSyTestKey", got.query, "API key travels as a query parameter")

	contents := got.body["contents"].([]any)
	require.Len(t, contents, 2)
	assert.Equal(t, "user", contents[0].(map[string]any)["role"])
	assert.Equal(t, "model", contents[1].(map[string]any)["role"], "non-user roles map to model")

	system := got.body["systemInstruction"].(map[string]any)
	parts := system["parts"].([]any)
	assert.Equal(t, "be brief", parts[0].(map[string]any)["text"])
}

func TestGoogle_BlockedResponse(t *testing.T) {
	server, _ := captureServer(t,
		`{"candidates":[{"content":{"parts":[]},"finishReason":"SAFETY"}]}`)

	p := NewGoogle(Config{APIKey: "k", Model: "gemini-test", BaseURL: server.URL}, quietLogger())
	defer p.Close()

	resp := p.Complete(context.Background(), []Message{{Role: "user", Content: "question"}}, "")

	assert.False(t, resp.OK())
	assert.Contains(t, resp.Err, "response blocked: SAFETY")
}

func TestOllama_Wire(t *testing.T) {
	server, got := captureServer(t, `{"message":{"content":"answer"}}`)

	p := NewOllama(Config{
		Model:       "llama-test",
		BaseURL:     server.URL,
		MaxTokens:   128,
		Temperature: 0.7,
	}, quietLogger())
	defer p.Close()

	resp := p.Complete(context.Background(),
		[]Message{{Role: "user", Content: "question"}}, "be brief")

	require.True(t, resp.OK())
	assert.Equal(t, "answer", resp.Content)
	assert.Nil(t, resp.Usage)

	assert.Equal(t, "/api/chat", got.path)
	assert.Empty(t, got.header.Get("Authorization"))
	assert.Equal(t, false, got.body["stream"])

	options := got.body["options"].(map[string]any)
	assert.Equal(t, float64(128), options["num_predict"])
	assert.Equal(t, 0.7, options["temperature"])

	msgs := got.body["messages"].([]any)
	require.Len(t, msgs, 2)
	assert.Equal(t, "system", msgs[0].(map[string]any)["role"])
}

func TestFactory(t *testing.T) {
	log := quietLogger()
	cfg := Config{Model: "m", BaseURL: "http://localhost"}

	for _, name := range Names() {
		p, err := New(name, cfg, log)
		require.NoError(t, err, name)
		assert.Equal(t, name, p.Name())
		p.Close()
	}

	_, err := New("mistral", cfg, log)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownProvider)
	assert.Contains(t, err.Error(), "mistral")
}
