// Copyright (C) 2025 Cognitive Stack contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"github.com/spf13/cobra"
)

// --- Global Command Variables ---
var (
	configDir string
	verbose   bool

	// ask
	expertName string
	debiasList []string
	noVariance bool

	// scan / fixloop
	projectDir    string
	projectKey    string
	sonarURL      string
	sonarToken    string
	language      string
	maxIterations int

	rootCmd = &cobra.Command{
		Use:   "council",
		Short: "Ask several AI models at once and drive quality fix loops",
		Long: `Council fans a question out to multiple model endpoints in parallel,
compares their answers, and can iterate code fixes against a
SonarQube-compatible quality server until the tree is clean.`,
	}

	askCmd = &cobra.Command{
		Use:   "ask [question]",
		Short: "Ask the council a question and compare the answers",
		Args:  cobra.ExactArgs(1),
		RunE:  runAsk, // Defined in cmd_ask.go
	}

	expertsCmd = &cobra.Command{
		Use:   "experts",
		Short: "List the configured expert personas",
		Run:   runExperts, // Defined in cmd_ask.go
	}

	techniquesCmd = &cobra.Command{
		Use:   "techniques",
		Short: "List the available debiasing techniques",
		Run:   runTechniques, // Defined in cmd_ask.go
	}

	scanCmd = &cobra.Command{
		Use:   "scan",
		Short: "Run a quality analysis and print the findings",
		RunE:  runScan, // Defined in cmd_quality.go
	}

	fixloopCmd = &cobra.Command{
		Use:   "fixloop",
		Short: "Iterate lint, scan, and model fixes until the tree is clean",
		RunE:  runFixloop, // Defined in cmd_quality.go
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configDir, "config", "c", "config", "Directory holding providers.yaml, user_model.yaml, experts.yaml")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	askCmd.Flags().StringVarP(&expertName, "expert", "e", "", "Expert persona to adopt")
	askCmd.Flags().StringSliceVarP(&debiasList, "debias", "d", nil, "Debiasing techniques to run on the first answer")
	askCmd.Flags().BoolVar(&noVariance, "no-variance", false, "Skip the variance analysis")

	for _, cmd := range []*cobra.Command{scanCmd, fixloopCmd} {
		cmd.Flags().StringVar(&projectDir, "dir", ".", "Project directory containing sonar-project.properties")
		cmd.Flags().StringVar(&projectKey, "project-key", "cognitive-stack", "Quality server project key")
		cmd.Flags().StringVar(&sonarURL, "sonar-url", "http://localhost:9000", "Quality server base URL (env: SONAR_URL)")
		cmd.Flags().StringVar(&sonarToken, "sonar-token", "", "Quality server token (env: SONAR_TOKEN)")
	}
	fixloopCmd.Flags().StringVarP(&language, "language", "l", "python", "Linter profile: python, ansible, terraform, go")
	fixloopCmd.Flags().IntVar(&maxIterations, "max-iterations", 5, "Iteration budget before giving up")

	rootCmd.AddCommand(askCmd, expertsCmd, techniquesCmd, scanCmd, fixloopCmd)
}
