// Copyright (C) 2025 Cognitive Stack contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package provider

import (
	"fmt"
	"sort"

	"github.com/sysadmin-info/cognitive-stack/pkg/logging"
)

// New creates the provider registered under name. Known names are
// returned by Names.
func New(name string, cfg Config, log *logging.Logger) (Provider, error) {
	switch name {
	case "openai":
		return NewOpenAI(cfg, log), nil
	case "anthropic":
		return NewAnthropic(cfg, log), nil
	case "google":
		return NewGoogle(cfg, log), nil
	case "ollama":
		return NewOllama(cfg, log), nil
	default:
		return nil, fmt.Errorf("%w: %q (available: %v)", ErrUnknownProvider, name, Names())
	}
}

// Names returns the registered provider names in sorted order.
func Names() []string {
	names := []string{"anthropic", "google", "ollama", "openai"}
	sort.Strings(names)
	return names
}
