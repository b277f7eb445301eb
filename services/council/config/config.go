// Copyright (C) 2025 Cognitive Stack contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package config loads and validates the YAML configuration files:
// providers.yaml (endpoint settings), user_model.yaml (user context for
// system prompts), and experts.yaml (named advisor personas).
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/sysadmin-info/cognitive-stack/services/council/provider"
)

// ErrNotFound is returned when a configuration file does not exist.
var ErrNotFound = errors.New("config file not found")

var validate = validator.New()

// Providers mirrors providers.yaml. Global timeout and max_retries are
// injected into each member of the council at construction time.
type Providers struct {
	DefaultCouncil []string                   `yaml:"default_council" validate:"min=1"`
	Timeout        int                        `yaml:"timeout" validate:"gte=0"`
	MaxRetries     int                        `yaml:"max_retries" validate:"gte=0,lte=10"`
	Providers      map[string]provider.Config `yaml:"providers" validate:"required"`
}

// Identity is the who-am-I section of user_model.yaml.
type Identity struct {
	Name string `yaml:"name"`
	Role string `yaml:"role"`
}

// CommunicationStyle controls language and tone of council answers.
type CommunicationStyle struct {
	PreferredLanguage string `yaml:"preferred_language"`
	Verbosity         string `yaml:"verbosity"`
	TechnicalDepth    string `yaml:"technical_depth"`
}

// UserModel mirrors user_model.yaml.
type UserModel struct {
	Identity           Identity           `yaml:"identity"`
	Goals              []string           `yaml:"goals"`
	Constraints        []string           `yaml:"constraints"`
	RiskTolerance      string             `yaml:"risk_tolerance"`
	Ethics             []string           `yaml:"ethics"`
	CommunicationStyle CommunicationStyle `yaml:"communication_style"`
}

// Expert is one advisor persona from experts.yaml.
type Expert struct {
	Name         string `yaml:"name" validate:"required"`
	Description  string `yaml:"description"`
	SystemPrompt string `yaml:"system_prompt"`
}

// Experts mirrors experts.yaml.
type Experts struct {
	Experts map[string]Expert `yaml:"experts"`
}

// Sonar mirrors the quality-server section of providers.yaml or a
// standalone sonar.yaml.
type Sonar struct {
	HostURL        string `yaml:"host_url"`
	Token          string `yaml:"token"`
	ScannerBin     string `yaml:"scanner_bin"`
	TimeoutSeconds int    `yaml:"timeout" validate:"gte=0"`
}

// All bundles every configuration file for one run.
type All struct {
	Providers Providers
	UserModel UserModel
	Experts   Experts
}

func loadYAML(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("invalid YAML in %s: %w", path, err)
	}
	return nil
}

// LoadProviders reads and validates providers.yaml.
func LoadProviders(path string) (*Providers, error) {
	var cfg Providers
	if err := loadYAML(path, &cfg); err != nil {
		return nil, err
	}
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid provider config %s: %w", path, err)
	}
	return &cfg, nil
}

// LoadUserModel reads user_model.yaml. A missing file is not an error;
// the council then runs without user context.
func LoadUserModel(path string) (*UserModel, error) {
	var cfg UserModel
	if err := loadYAML(path, &cfg); err != nil {
		if errors.Is(err, ErrNotFound) {
			return &UserModel{}, nil
		}
		return nil, err
	}
	return &cfg, nil
}

// LoadExperts reads experts.yaml. A missing file yields an empty set.
func LoadExperts(path string) (*Experts, error) {
	cfg := Experts{Experts: map[string]Expert{}}
	if err := loadYAML(path, &cfg); err != nil {
		if errors.Is(err, ErrNotFound) {
			return &cfg, nil
		}
		return nil, err
	}
	for name, expert := range cfg.Experts {
		if err := validate.Struct(expert); err != nil {
			return nil, fmt.Errorf("invalid expert %q: %w", name, err)
		}
	}
	return &cfg, nil
}

// LoadAll reads every configuration file from dir using the
// conventional file names.
func LoadAll(dir string) (*All, error) {
	providers, err := LoadProviders(filepath.Join(dir, "providers.yaml"))
	if err != nil {
		return nil, err
	}
	userModel, err := LoadUserModel(filepath.Join(dir, "user_model.yaml"))
	if err != nil {
		return nil, err
	}
	experts, err := LoadExperts(filepath.Join(dir, "experts.yaml"))
	if err != nil {
		return nil, err
	}
	return &All{Providers: *providers, UserModel: *userModel, Experts: *experts}, nil
}
