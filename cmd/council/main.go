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

	"github.com/sysadmin-info/cognitive-stack/pkg/logging"
	"github.com/sysadmin-info/cognitive-stack/services/council/config"
)

var (
	cfg *config.All
	log *logging.Logger
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
}

func init() {
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		level := logging.LevelInfo
		if verbose {
			level = logging.LevelDebug
		}
		log = logging.New(logging.Config{Level: level, Service: "council"})

		loaded, err := config.LoadAll(configDir)
		if err != nil {
			return fmt.Errorf("loading configuration from %s: %w", configDir, err)
		}
		cfg = loaded
		return nil
	}
}
