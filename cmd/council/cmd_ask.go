// Copyright (C) 2025 Cognitive Stack contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sysadmin-info/cognitive-stack/pkg/ux"
	"github.com/sysadmin-info/cognitive-stack/services/council"
	"github.com/sysadmin-info/cognitive-stack/services/council/analyze"
	"github.com/sysadmin-info/cognitive-stack/services/council/config"
	"github.com/sysadmin-info/cognitive-stack/services/council/provider"
)

// maxQueryLength bounds one question; longer input is almost always a
// paste mistake.
const maxQueryLength = 32000

func runAsk(cmd *cobra.Command, args []string) error {
	question := strings.TrimSpace(args[0])
	if question == "" {
		return fmt.Errorf("question is empty")
	}
	if len(question) > maxQueryLength {
		return fmt.Errorf("question is too long: %d characters (limit %d)", len(question), maxQueryLength)
	}

	var expert *config.Expert
	if expertName != "" {
		if e, ok := cfg.Experts.Experts[expertName]; ok {
			expert = &e
		} else {
			ux.Warning(fmt.Sprintf("Expert %q not found. Available: %s",
				expertName, strings.Join(expertNames(), ", ")))
		}
	}

	providers, warnings := council.ProvidersFromConfig(&cfg.Providers, log)
	for _, warning := range warnings {
		ux.Warning(warning)
	}
	if len(providers) == 0 {
		return fmt.Errorf("no usable providers configured")
	}
	defer council.CloseAll(providers)

	system := council.BuildSystemPrompt(&cfg.UserModel, expert)
	messages := []provider.Message{{Role: "user", Content: question}}

	log.Info("dispatching question", "providers", len(providers))
	responses := council.Dispatch(cmd.Context(), providers, messages, system)

	for _, resp := range responses {
		if resp.OK() {
			title := fmt.Sprintf("%s (%s)", resp.Provider, resp.Model)
			fmt.Println(ux.Panel(title, resp.Content))
		} else {
			fmt.Println(ux.ErrorPanel(resp.Provider, resp.Err))
		}
	}

	// The first provider doubles as analyzer for variance and debias.
	analyzer := providers[0]

	if !noVariance && countOK(responses) > 1 {
		report := analyze.Variance(cmd.Context(), responses, analyzer)
		fmt.Println()
		fmt.Println(report.Format())
	}

	if len(debiasList) > 0 {
		if first := firstOK(responses); first != nil {
			results := analyze.Debias(cmd.Context(), first.Content, debiasList, analyzer, question)
			fmt.Println()
			fmt.Println(analyze.FormatDebiasResults(results))
		} else {
			ux.Warning("No successful answer to debias.")
		}
	}
	return nil
}

func countOK(responses []provider.Response) int {
	n := 0
	for _, resp := range responses {
		if resp.OK() {
			n++
		}
	}
	return n
}

func firstOK(responses []provider.Response) *provider.Response {
	for i := range responses {
		if responses[i].OK() {
			return &responses[i]
		}
	}
	return nil
}

func expertNames() []string {
	names := make([]string, 0, len(cfg.Experts.Experts))
	for name := range cfg.Experts.Experts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func runExperts(cmd *cobra.Command, args []string) {
	if len(cfg.Experts.Experts) == 0 {
		fmt.Println("No experts configured.")
		return
	}
	ux.Title("Experts")
	for _, name := range expertNames() {
		expert := cfg.Experts.Experts[name]
		fmt.Printf("  %s - %s\n", ux.Styles.Bold.Render(name), expert.Description)
	}
}

func runTechniques(cmd *cobra.Command, args []string) {
	ux.Title("Debiasing techniques")
	for _, name := range analyze.Techniques() {
		fmt.Printf("  %s\n", name)
	}
}
