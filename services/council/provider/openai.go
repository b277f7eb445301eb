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

type openAIRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
}

type openAIResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage map[string]any `json:"usage"`
}

// OpenAI talks to an OpenAI-compatible chat completions endpoint.
// The system prompt travels as a leading system-role message and
// authentication uses a Bearer header.
type OpenAI struct {
	base
}

// NewOpenAI creates an OpenAI provider. A nil logger falls back to the
// package default.
func NewOpenAI(cfg Config, log *logging.Logger) *OpenAI {
	return &OpenAI{base: newBase("openai", cfg, log)}
}

// Complete implements Provider.
func (p *OpenAI) Complete(ctx context.Context, messages []Message, system string) Response {
	all := messages
	if system != "" {
		all = append([]Message{{Role: "system", Content: system}}, messages...)
	}

	payload := openAIRequest{
		Model:       p.cfg.Model,
		Messages:    all,
		MaxTokens:   p.cfg.MaxTokens,
		Temperature: p.cfg.Temperature,
	}
	headers := map[string]string{
		"Authorization": "Bearer " + p.cfg.APIKey,
	}

	data, err := p.postJSON(ctx, p.cfg.BaseURL+"/chat/completions", headers, payload)
	if err != nil {
		return p.failure(err)
	}

	var out openAIResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return p.failure(fmt.Errorf("decoding response: %w", err))
	}

	var content string
	if len(out.Choices) > 0 {
		content = out.Choices[0].Message.Content
	}
	if content == "" {
		return p.failure(ErrEmptyResponse)
	}
	return p.success(content, out.Usage)
}
