// Copyright (C) 2025 Cognitive Stack contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package fixloop

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sysadmin-info/cognitive-stack/services/council/provider"
	"github.com/sysadmin-info/cognitive-stack/services/quality/sonar"
)

// buildFixContext assembles the issue description handed to the model
// with every file: failing linter output first, then the quality
// report.
func buildFixContext(linters []LinterOutcome, report *sonar.Report) string {
	var b strings.Builder
	b.WriteString("Fix the following issues in the code:\n\n")

	for _, outcome := range linters {
		if !outcome.Passed {
			fmt.Fprintf(&b, "## %s issues:\n%s\n\n", outcome.Linter, outcome.Output)
		}
	}
	if report != nil && !report.Passed() {
		b.WriteString(report.FormatForLLM())
	}
	return b.String()
}

// filesWithIssues collects the union of files named by the quality
// report and scraped from failing linter output, sorted for
// deterministic fix order.
func (l *Loop) filesWithIssues(linters []LinterOutcome, report *sonar.Report) []string {
	files := map[string]struct{}{}
	if report != nil {
		for _, issue := range report.Issues {
			files[issue.File] = struct{}{}
		}
	}
	for _, outcome := range linters {
		for path := range l.scrapeFiles(outcome) {
			files[path] = struct{}{}
		}
	}

	sorted := make([]string, 0, len(files))
	for path := range files {
		sorted = append(sorted, path)
	}
	sort.Strings(sorted)
	return sorted
}

// applyFixes asks the model to rewrite every offending file. It reports
// whether any files were identified; per-file failures are logged and
// skipped so one stubborn file does not starve the rest.
func (l *Loop) applyFixes(ctx context.Context, linters []LinterOutcome, report *sonar.Report) bool {
	files := l.filesWithIssues(linters, report)
	if len(files) == 0 {
		l.log.Warn("no files identified for fixing")
		return false
	}

	fixContext := buildFixContext(linters, report)
	for _, path := range files {
		l.fixFile(ctx, path, fixContext)
	}
	return true
}

// fixFile rewrites one file from the model's answer. The original is
// kept next to it with a .bak suffix appended to the full name. Nothing
// is written when the model returns no fenced code or an identical
// file.
func (l *Loop) fixFile(ctx context.Context, relPath, fixContext string) bool {
	fullPath := filepath.Join(l.projectDir, relPath)

	original, err := os.ReadFile(fullPath)
	if err != nil {
		return false
	}

	prompt := fmt.Sprintf(`%s

## File to fix: %s

`+"```%s\n%s\n```"+`

Provide the complete fixed file content. Only output the code, no explanations.
Wrap the code in triple backticks with the language identifier.`,
		fixContext, relPath, fenceLanguage(relPath), string(original))

	resp := l.llm.Complete(ctx, []provider.Message{{Role: "user", Content: prompt}}, "")
	if !resp.OK() {
		l.log.Warn("fix request failed", "file", relPath, "error", resp.Err)
		return false
	}

	fixed, ok := extractFenced(resp.Content)
	if !ok || fixed == string(original) {
		return false
	}

	backupPath := fullPath + ".bak"
	if err := os.WriteFile(backupPath, original, 0o644); err != nil {
		l.log.Error("writing backup failed", "file", backupPath, "error", err)
		return false
	}
	if err := os.WriteFile(fullPath, []byte(fixed), 0o644); err != nil {
		l.log.Error("writing fix failed", "file", fullPath, "error", err)
		return false
	}
	l.log.Info("applied fixes", "file", relPath)
	return true
}

// extractFenced returns the body of the first fenced code block.
func extractFenced(text string) (string, bool) {
	var (
		inBlock bool
		lines   []string
	)
	for _, line := range strings.Split(text, "\n") {
		switch {
		case strings.HasPrefix(line, "```") && !inBlock:
			inBlock = true
		case strings.HasPrefix(line, "```") && inBlock:
			return strings.Join(lines, "\n"), len(lines) > 0
		case inBlock:
			lines = append(lines, line)
		}
	}
	if len(lines) > 0 {
		return strings.Join(lines, "\n"), true
	}
	return "", false
}
