// Copyright (C) 2025 Cognitive Stack contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package council fans one task out to several model endpoints at once
// and collects every verdict, good or bad, without letting one failure
// abort the rest.
package council

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/sysadmin-info/cognitive-stack/pkg/logging"
	"github.com/sysadmin-info/cognitive-stack/services/council/config"
	"github.com/sysadmin-info/cognitive-stack/services/council/provider"
)

// Dispatch issues the same conversation to every provider concurrently
// and returns one Response per provider, index-aligned with the input.
// Slow or failing members never block or cancel the others; a failure
// is just a Response with Err set. Zero providers returns an empty
// slice immediately.
func Dispatch(ctx context.Context, providers []provider.Provider, messages []provider.Message, system string) []provider.Response {
	responses := make([]provider.Response, len(providers))
	if len(providers) == 0 {
		return responses
	}

	var wg sync.WaitGroup
	for i, p := range providers {
		i, p := i, p
		wg.Add(1)
		go func() {
			defer wg.Done()
			responses[i] = p.Complete(ctx, messages, system)
		}()
	}
	wg.Wait()
	return responses
}

// CloseAll releases every provider's connection pool.
func CloseAll(providers []provider.Provider) {
	var g errgroup.Group
	for _, p := range providers {
		p := p
		g.Go(func() error {
			p.Close()
			return nil
		})
	}
	g.Wait()
}

// ProvidersFromConfig builds the council members named by
// default_council. Global timeout and max_retries apply to every
// member. Misconfigured members are reported as warnings rather than
// failing the whole council; disabled members are skipped silently.
func ProvidersFromConfig(cfg *config.Providers, log *logging.Logger) ([]provider.Provider, []string) {
	var (
		providers []provider.Provider
		warnings  []string
	)

	for _, name := range cfg.DefaultCouncil {
		memberCfg, ok := cfg.Providers[name]
		if !ok {
			warnings = append(warnings, fmt.Sprintf("%s: not configured", name))
			continue
		}
		if !memberCfg.IsEnabled() {
			continue
		}

		memberCfg.TimeoutSeconds = cfg.Timeout
		memberCfg.MaxRetries = cfg.MaxRetries

		p, err := provider.New(name, memberCfg, log)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("%s: %v", name, err))
			continue
		}
		providers = append(providers, p)
	}
	return providers, warnings
}
