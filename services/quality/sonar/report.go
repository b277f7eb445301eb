// Copyright (C) 2025 Cognitive Stack contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package sonar drives a SonarQube-compatible server: it submits scans
// through the scanner binary, polls the compute-engine task, and fetches
// unresolved issues as a report shaped for both humans and fix prompts.
package sonar

import (
	"fmt"
	"sort"
	"strings"
)

// Issue is one unresolved finding from the quality server.
type Issue struct {
	Rule     string
	Severity string
	Message  string
	File     string
	Line     int
	Effort   string
}

// Format renders the issue as a single line.
func (i Issue) Format() string {
	return fmt.Sprintf("[%s] %s:%d - %s (rule: %s)", i.Severity, i.File, i.Line, i.Message, i.Rule)
}

// Report is the outcome of one analysis of a project.
type Report struct {
	ProjectKey string
	Issues     []Issue
}

// Passed reports whether the analysis found no issues.
func (r *Report) Passed() bool { return len(r.Issues) == 0 }

// CriticalCount counts CRITICAL and BLOCKER issues.
func (r *Report) CriticalCount() int {
	n := 0
	for _, issue := range r.Issues {
		if issue.Severity == "CRITICAL" || issue.Severity == "BLOCKER" {
			n++
		}
	}
	return n
}

// MajorCount counts MAJOR issues.
func (r *Report) MajorCount() int {
	n := 0
	for _, issue := range r.Issues {
		if issue.Severity == "MAJOR" {
			n++
		}
	}
	return n
}

// FormatForLLM renders the issues grouped by file and sorted by line,
// in a shape a model can act on.
func (r *Report) FormatForLLM() string {
	if r.Passed() {
		return "No issues found. Code is clean."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d issues (%d critical, %d major):\n\n",
		len(r.Issues), r.CriticalCount(), r.MajorCount())

	byFile := map[string][]Issue{}
	for _, issue := range r.Issues {
		byFile[issue.File] = append(byFile[issue.File], issue)
	}

	files := make([]string, 0, len(byFile))
	for file := range byFile {
		files = append(files, file)
	}
	sort.Strings(files)

	for _, file := range files {
		fmt.Fprintf(&b, "## %s\n", file)
		issues := byFile[file]
		sort.SliceStable(issues, func(i, j int) bool { return issues[i].Line < issues[j].Line })
		for n, issue := range issues {
			fmt.Fprintf(&b, "%d. Line %d: [%s] %s\n", n+1, issue.Line, issue.Severity, issue.Message)
			fmt.Fprintf(&b, "   Rule: %s\n", issue.Rule)
		}
		b.WriteString("\n")
	}

	b.WriteString("Please fix these issues and ensure the code follows best practices.")
	return b.String()
}

// Summary is a one-line status for logs.
func (r *Report) Summary() string {
	if r.Passed() {
		return "clean"
	}
	return fmt.Sprintf("%d issues (%d critical)", len(r.Issues), r.CriticalCount())
}
