// Copyright (C) 2025 Cognitive Stack contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package provider

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestResolveEnv(t *testing.T) {
	t.Setenv("COUNCIL_TEST_KEY", "resolved-value")
	t.Setenv("COUNCIL_TEST_EMPTY", "")

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain value passes through", "gpt-4o", "gpt-4o"},
		{"set variable", "${COUNCIL_TEST_KEY}", "resolved-value"},
		{"unset variable", "${COUNCIL_TEST_UNSET}", ""},
		{"unset variable with default", "${COUNCIL_TEST_UNSET:fallback}", "fallback"},
		{"set variable wins over default", "${COUNCIL_TEST_KEY:fallback}", "resolved-value"},
		{"empty-but-set variable wins over default", "${COUNCIL_TEST_EMPTY:fallback}", ""},
		{"unterminated placeholder passes through", "${COUNCIL_TEST_KEY", "${COUNCIL_TEST_KEY"},
		{"empty string", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, resolveEnv(tt.input))
		})
	}
}

func TestConfig_Resolved(t *testing.T) {
	t.Setenv("COUNCIL_TEST_KEY", "sk-from-env")

	cfg := Config{
		APIKey:  "${COUNCIL_TEST_KEY}",
		Model:   "claude-sonnet-4-5",
		BaseURL: "https://api.anthropic.com/",
	}
	got := cfg.resolved()

	assert.Equal(t, "sk-from-env", got.APIKey)
	assert.Equal(t, "claude-sonnet-4-5", got.Model)
	assert.Equal(t, "https://api.anthropic.com", got.BaseURL, "trailing slash trimmed")
	assert.Equal(t, defaultMaxTokens, got.MaxTokens)
	assert.Equal(t, defaultTimeout, got.TimeoutSeconds)
}

func TestConfig_TimeoutClamp(t *testing.T) {
	tests := []struct {
		name    string
		seconds int
		want    time.Duration
	}{
		{"below ceiling", 60, 60 * time.Second},
		{"at ceiling", 300, 300 * time.Second},
		{"above ceiling is clamped", 3600, 300 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{TimeoutSeconds: tt.seconds}
			assert.Equal(t, tt.want, cfg.timeout())
		})
	}
}
