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
	"fmt"

	"github.com/sysadmin-info/cognitive-stack/pkg/logging"
)

type ollamaOptions struct {
	NumPredict  int     `json:"num_predict"`
	Temperature float64 `json:"temperature"`
}

type ollamaRequest struct {
	Model    string        `json:"model"`
	Messages []Message     `json:"messages"`
	Stream   bool          `json:"stream"`
	Options  ollamaOptions `json:"options"`
}

type ollamaResponse struct {
	Message struct {
		Content string `json:"content"`
	} `json:"message"`
}

// Ollama talks to a local Ollama chat endpoint. No authentication; the
// system prompt travels as a leading system-role message and streaming
// is explicitly disabled.
type Ollama struct {
	base
}

// NewOllama creates an Ollama provider.
func NewOllama(cfg Config, log *logging.Logger) *Ollama {
	return &Ollama{base: newBase("ollama", cfg, log)}
}

// Complete implements Provider.
func (p *Ollama) Complete(ctx context.Context, messages []Message, system string) Response {
	all := messages
	if system != "" {
		all = append([]Message{{Role: "system", Content: system}}, messages...)
	}

	payload := ollamaRequest{
		Model:    p.cfg.Model,
		Messages: all,
		Stream:   false,
		Options: ollamaOptions{
			NumPredict:  p.cfg.MaxTokens,
			Temperature: p.cfg.Temperature,
		},
	}

	data, err := p.postJSON(ctx, p.cfg.BaseURL+"/api/chat", nil, payload)
	if err != nil {
		return p.failure(err)
	}

	var out ollamaResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return p.failure(fmt.Errorf("decoding response: %w", err))
	}

	if out.Message.Content == "" {
		return p.failure(ErrEmptyResponse)
	}
	return p.success(out.Message.Content, nil)
}
