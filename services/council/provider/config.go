// Copyright (C) 2025 Cognitive Stack contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package provider

import (
	"os"
	"strings"
	"time"
)

// Timeout ceiling applied regardless of configuration.
const maxTimeout = 300 * time.Second

const (
	defaultMaxTokens = 4096
	defaultTimeout   = 60
)

// Config holds the resolved settings for one endpoint. Values for
// APIKey, Model, and BaseURL may use environment placeholders of the
// form ${VAR} or ${VAR:default}; they are resolved once at provider
// construction. Immutable for the lifetime of the provider.
type Config struct {
	// APIKey is the credential sent with each request. Ollama ignores it.
	APIKey string `yaml:"api_key"`

	// Model is the provider-specific model identifier.
	Model string `yaml:"model"`

	// BaseURL is the API root, without a trailing slash.
	BaseURL string `yaml:"base_url"`

	// MaxTokens caps the completion length. Default 4096.
	MaxTokens int `yaml:"max_tokens"`

	// Temperature is the sampling temperature passed through verbatim.
	Temperature float64 `yaml:"temperature"`

	// TimeoutSeconds bounds one HTTP attempt. Default 60, hard
	// ceiling 300 regardless of the configured value.
	TimeoutSeconds int `yaml:"timeout"`

	// MaxRetries is the number of additional attempts after the
	// first. Zero means a single attempt.
	MaxRetries int `yaml:"max_retries"`

	// Enabled marks the endpoint as eligible for the council. Absent
	// means enabled.
	Enabled *bool `yaml:"enabled"`
}

// IsEnabled reports whether the endpoint may join the council.
func (c Config) IsEnabled() bool {
	return c.Enabled == nil || *c.Enabled
}

// resolved returns a copy with env placeholders expanded and defaults
// applied. Non-placeholder values pass through unchanged.
func (c Config) resolved() Config {
	c.APIKey = resolveEnv(c.APIKey)
	c.Model = resolveEnv(c.Model)
	c.BaseURL = strings.TrimRight(resolveEnv(c.BaseURL), "/")
	if c.MaxTokens <= 0 {
		c.MaxTokens = defaultMaxTokens
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = defaultTimeout
	}
	return c
}

// timeout returns the per-attempt HTTP timeout, clamped to maxTimeout.
func (c Config) timeout() time.Duration {
	t := time.Duration(c.TimeoutSeconds) * time.Second
	if t > maxTimeout {
		return maxTimeout
	}
	return t
}

// resolveEnv expands ${VAR} and ${VAR:default} placeholders.
//
// ${VAR} yields the variable's value or "" when unset. ${VAR:default}
// yields the default only when the variable is unset; an empty-but-set
// variable wins over the default. Anything else is returned verbatim.
func resolveEnv(value string) string {
	if !strings.HasPrefix(value, "${") || !strings.HasSuffix(value, "}") {
		return value
	}
	inner := value[2 : len(value)-1]
	if name, def, ok := strings.Cut(inner, ":"); ok {
		if v, found := os.LookupEnv(name); found {
			return v
		}
		return def
	}
	return os.Getenv(inner)
}
