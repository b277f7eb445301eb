// Copyright (C) 2025 Cognitive Stack contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const providersYAML = `
default_council:
  - openai
  - ollama
timeout: 90
max_retries: 3
providers:
  openai:
    api_key: ${OPENAI_API_KEY}
    model: gpt-4o
    base_url: https://api.openai.com/v1
    max_tokens: 2048
  ollama:
    model: llama3
    base_url: http://localhost:11434
    enabled: false
`

func TestLoadProviders(t *testing.T) {
	path := writeFile(t, t.TempDir(), "providers.yaml", providersYAML)

	cfg, err := LoadProviders(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"openai", "ollama"}, cfg.DefaultCouncil)
	assert.Equal(t, 90, cfg.Timeout)
	assert.Equal(t, 3, cfg.MaxRetries)

	openai := cfg.Providers["openai"]
	assert.Equal(t, "${OPENAI_API_KEY}", openai.APIKey, "placeholders resolve at construction, not load")
	assert.Equal(t, 2048, openai.MaxTokens)
	assert.True(t, openai.IsEnabled(), "absent enabled means enabled")

	assert.False(t, cfg.Providers["ollama"].IsEnabled())
}

func TestLoadProviders_Missing(t *testing.T) {
	_, err := LoadProviders(filepath.Join(t.TempDir(), "providers.yaml"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLoadProviders_EmptyCouncilRejected(t *testing.T) {
	path := writeFile(t, t.TempDir(), "providers.yaml", "providers:\n  openai:\n    model: m\n")
	_, err := LoadProviders(path)
	assert.Error(t, err)
}

func TestLoadProviders_InvalidYAML(t *testing.T) {
	path := writeFile(t, t.TempDir(), "providers.yaml", "default_council: [unclosed")
	_, err := LoadProviders(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid YAML")
}

func TestLoadUserModel(t *testing.T) {
	path := writeFile(t, t.TempDir(), "user_model.yaml", `
identity:
  name: Ada
  role: sysadmin
goals: [reduce toil]
risk_tolerance: low
communication_style:
  preferred_language: pl
`)

	um, err := LoadUserModel(path)
	require.NoError(t, err)
	assert.Equal(t, "Ada", um.Identity.Name)
	assert.Equal(t, []string{"reduce toil"}, um.Goals)
	assert.Equal(t, "pl", um.CommunicationStyle.PreferredLanguage)
}

func TestLoadUserModel_MissingIsEmpty(t *testing.T) {
	um, err := LoadUserModel(filepath.Join(t.TempDir(), "user_model.yaml"))
	require.NoError(t, err)
	assert.Equal(t, &UserModel{}, um)
}

func TestLoadExperts(t *testing.T) {
	path := writeFile(t, t.TempDir(), "experts.yaml", `
experts:
  cost_cutter:
    name: Cost Cutter
    description: Finds savings
    system_prompt: Always look for savings.
`)

	experts, err := LoadExperts(path)
	require.NoError(t, err)
	require.Contains(t, experts.Experts, "cost_cutter")
	assert.Equal(t, "Cost Cutter", experts.Experts["cost_cutter"].Name)
}

func TestLoadExperts_NamelessRejected(t *testing.T) {
	path := writeFile(t, t.TempDir(), "experts.yaml", "experts:\n  broken:\n    description: no name\n")
	_, err := LoadExperts(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken")
}

func TestLoadAll(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "providers.yaml", providersYAML)
	// user_model.yaml and experts.yaml deliberately absent.

	all, err := LoadAll(dir)
	require.NoError(t, err)
	assert.Len(t, all.Providers.DefaultCouncil, 2)
	assert.Empty(t, all.UserModel.Identity.Name)
	assert.Empty(t, all.Experts.Experts)
}
