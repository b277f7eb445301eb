// Copyright (C) 2025 Cognitive Stack contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package fixloop drives the bounded scan, fix, re-scan cycle: linters
// and a quality-server analysis decide whether the tree is clean, and a
// model endpoint rewrites offending files until it is or the iteration
// budget runs out.
package fixloop

import (
	"path/filepath"
	"sort"
	"strings"
)

// Profile describes how one language is linted and which files belong
// to it.
type Profile struct {
	// Linters are shell commands run in the project directory, in
	// order. Auto-fixing linters go first so cheap fixes land before
	// the analysis.
	Linters []string

	// Extensions are the file suffixes the language owns.
	Extensions []string
}

var profiles = map[string]Profile{
	"python": {
		Linters:    []string{"ruff check --fix", "ruff format"},
		Extensions: []string{".py"},
	},
	"ansible": {
		Linters:    []string{"ansible-lint --fix"},
		Extensions: []string{".yml", ".yaml"},
	},
	"terraform": {
		Linters:    []string{"terraform fmt -recursive", "tflint"},
		Extensions: []string{".tf"},
	},
	"go": {
		Linters:    []string{"gofmt -l -w .", "golangci-lint run --fix"},
		Extensions: []string{".go"},
	},
}

// ProfileFor returns the profile for language, falling back to python
// for unknown names.
func ProfileFor(language string) Profile {
	if p, ok := profiles[language]; ok {
		return p
	}
	return profiles["python"]
}

// Languages returns the supported language names in sorted order.
func Languages() []string {
	names := make([]string, 0, len(profiles))
	for name := range profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// fenceLanguage maps a file's extension to the identifier used on its
// code fence in fix prompts.
func fenceLanguage(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".py":
		return "python"
	case ".tf":
		return "terraform"
	case ".yml", ".yaml":
		return "yaml"
	case ".go":
		return "go"
	case ".sh":
		return "bash"
	case ".js":
		return "javascript"
	case ".ts":
		return "typescript"
	default:
		return ""
	}
}
