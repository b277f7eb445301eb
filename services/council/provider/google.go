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

type googlePart struct {
	Text string `json:"text"`
}

type googleContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []googlePart `json:"parts"`
}

type googleGenerationConfig struct {
	MaxOutputTokens int     `json:"maxOutputTokens"`
	Temperature     float64 `json:"temperature"`
}

type googleRequest struct {
	Contents          []googleContent        `json:"contents"`
	GenerationConfig  googleGenerationConfig `json:"generationConfig"`
	SystemInstruction *googleContent         `json:"systemInstruction,omitempty"`
}

type googleResponse struct {
	Candidates []struct {
		Content struct {
			Parts []googlePart `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
	UsageMetadata map[string]any `json:"usageMetadata"`
}

// Google talks to the Gemini generateContent endpoint. Roles map to
// user/model, the system prompt rides in systemInstruction, and the
// API key travels as a query parameter.
type Google struct {
	base
}

// NewGoogle creates a Google provider.
func NewGoogle(cfg Config, log *logging.Logger) *Google {
	return &Google{base: newBase("google", cfg, log)}
}

// Complete implements Provider.
func (p *Google) Complete(ctx context.Context, messages []Message, system string) Response {
	contents := make([]googleContent, 0, len(messages))
	for _, msg := range messages {
		role := "model"
		if msg.Role == "user" {
			role = "user"
		}
		contents = append(contents, googleContent{
			Role:  role,
			Parts: []googlePart{{Text: msg.Content}},
		})
	}

	payload := googleRequest{
		Contents: contents,
		GenerationConfig: googleGenerationConfig{
			MaxOutputTokens: p.cfg.MaxTokens,
			Temperature:     p.cfg.Temperature,
		},
	}
	if system != "" {
		payload.SystemInstruction = &googleContent{Parts: []googlePart{{Text: system}}}
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", p.cfg.BaseURL, p.cfg.Model, p.cfg.APIKey)
	data, err := p.postJSON(ctx, url, nil, payload)
	if err != nil {
		return p.failure(err)
	}

	var out googleResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return p.failure(fmt.Errorf("decoding response: %w", err))
	}

	var content, finishReason string
	if len(out.Candidates) > 0 {
		finishReason = out.Candidates[0].FinishReason
		if parts := out.Candidates[0].Content.Parts; len(parts) > 0 {
			content = parts[0].Text
		}
	}
	if content == "" {
		// Gemini reports safety blocks through finishReason rather
		// than an error status.
		if finishReason != "" && finishReason != "STOP" {
			return p.failure(fmt.Errorf("response blocked: %s", finishReason))
		}
		return p.failure(ErrEmptyResponse)
	}
	return p.success(content, out.UsageMetadata)
}
