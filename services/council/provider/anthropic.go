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

const anthropicAPIVersion = "2023-06-01"

type anthropicRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	Messages  []Message `json:"messages"`
	System    string    `json:"system,omitempty"`
}

type anthropicResponse struct {
	Content []struct {
		Text string `json:"text"`
	} `json:"content"`
	Usage map[string]any `json:"usage"`
}

// Anthropic talks to the Anthropic messages endpoint. The system
// prompt is a top-level field and authentication uses the x-api-key
// header plus a pinned API version.
type Anthropic struct {
	base
}

// NewAnthropic creates an Anthropic provider.
func NewAnthropic(cfg Config, log *logging.Logger) *Anthropic {
	return &Anthropic{base: newBase("anthropic", cfg, log)}
}

// Complete implements Provider.
func (p *Anthropic) Complete(ctx context.Context, messages []Message, system string) Response {
	payload := anthropicRequest{
		Model:     p.cfg.Model,
		MaxTokens: p.cfg.MaxTokens,
		Messages:  messages,
		System:    system,
	}
	headers := map[string]string{
		"x-api-key":         p.cfg.APIKey,
		"anthropic-version": anthropicAPIVersion,
	}

	data, err := p.postJSON(ctx, p.cfg.BaseURL+"/v1/messages", headers, payload)
	if err != nil {
		return p.failure(err)
	}

	var out anthropicResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return p.failure(fmt.Errorf("decoding response: %w", err))
	}

	var content string
	if len(out.Content) > 0 {
		content = out.Content[0].Text
	}
	if content == "" {
		return p.failure(ErrEmptyResponse)
	}
	return p.success(content, out.Usage)
}
