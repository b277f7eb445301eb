// Copyright (C) 2025 Cognitive Stack contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sysadmin-info/cognitive-stack/pkg/ux"
	"github.com/sysadmin-info/cognitive-stack/pkg/validation"
	"github.com/sysadmin-info/cognitive-stack/services/council/provider"
	"github.com/sysadmin-info/cognitive-stack/services/quality/fixloop"
	"github.com/sysadmin-info/cognitive-stack/services/quality/sonar"
)

func sonarClient() *sonar.Client {
	url := sonarURL
	if env := os.Getenv("SONAR_URL"); env != "" && url == "http://localhost:9000" {
		url = env
	}
	token := sonarToken
	if token == "" {
		token = os.Getenv("SONAR_TOKEN")
	}
	return sonar.NewClient(url, token, sonar.WithLogger(log))
}

func runScan(cmd *cobra.Command, args []string) error {
	if err := validation.ValidateProjectKey(projectKey); err != nil {
		return err
	}
	client := sonarClient()

	report, err := client.ScanAndWait(cmd.Context(), projectDir, projectKey)
	if err != nil {
		return err
	}

	fmt.Println(report.FormatForLLM())
	fmt.Println()

	if report.Passed() {
		ux.Success("Quality gate clean: " + report.Summary())
		return nil
	}
	ux.Error("Quality check failed: " + report.Summary())
	os.Exit(1)
	return nil
}

// fixProvider picks the endpoint that writes the fixes: the first
// enabled one of anthropic, openai, google.
func fixProvider() (provider.Provider, error) {
	for _, name := range []string{"anthropic", "openai", "google"} {
		memberCfg, ok := cfg.Providers.Providers[name]
		if !ok || !memberCfg.IsEnabled() {
			continue
		}
		memberCfg.TimeoutSeconds = cfg.Providers.Timeout
		memberCfg.MaxRetries = cfg.Providers.MaxRetries
		return provider.New(name, memberCfg, log)
	}
	return nil, fmt.Errorf("no enabled fix provider found in config")
}

func runFixloop(cmd *cobra.Command, args []string) error {
	if err := validation.ValidateProjectKey(projectKey); err != nil {
		return err
	}

	llm, err := fixProvider()
	if err != nil {
		return err
	}
	defer llm.Close()

	loop := fixloop.New(sonarClient(), llm, projectDir, projectKey,
		fixloop.WithLanguage(language),
		fixloop.WithMaxIterations(maxIterations),
		fixloop.WithLogger(log),
	)

	result := loop.Run(cmd.Context())
	fmt.Println(result.FormatSummary())

	if !result.FinalPassed {
		os.Exit(1)
	}
	return nil
}
