// Copyright (C) 2025 Cognitive Stack contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package fixloop

import (
	"context"
	"os/exec"
	"strings"
)

// LinterOutcome is the result of one linter command.
type LinterOutcome struct {
	Linter string
	Passed bool
	Output string
}

// runLinters executes the profile's linter commands sequentially in
// projectDir.
func (l *Loop) runLinters(ctx context.Context) []LinterOutcome {
	outcomes := make([]LinterOutcome, 0, len(l.profile.Linters))
	for _, command := range l.profile.Linters {
		outcomes = append(outcomes, l.runLinter(ctx, command))
	}
	return outcomes
}

// runLinter runs one linter command through the shell. A linter that
// is not installed counts as passed so an incomplete toolchain never
// blocks the loop.
func (l *Loop) runLinter(ctx context.Context, command string) LinterOutcome {
	name := strings.Fields(command)[0]

	if _, err := l.lookPath(name); err != nil {
		l.log.Warn("linter not found", "linter", name)
		return LinterOutcome{
			Linter: name,
			Passed: true,
			Output: name + " not installed, skipping",
		}
	}

	output, err := l.runShell(ctx, command)
	return LinterOutcome{
		Linter: name,
		Passed: err == nil,
		Output: string(output),
	}
}

func defaultRunShell(dir string) func(ctx context.Context, command string) ([]byte, error) {
	return func(ctx context.Context, command string) ([]byte, error) {
		cmd := exec.CommandContext(ctx, "sh", "-c", command)
		cmd.Dir = dir
		return cmd.CombinedOutput()
	}
}

// scrapeFiles pulls file paths out of a failed linter's output. Only
// unindented lines of the form <path>:<rest> count, and the path must
// carry one of the profile's extensions.
func (l *Loop) scrapeFiles(outcome LinterOutcome) map[string]struct{} {
	files := map[string]struct{}{}
	if outcome.Passed || outcome.Output == "" {
		return files
	}

	for _, line := range strings.Split(outcome.Output, "\n") {
		if strings.HasPrefix(line, " ") || !strings.Contains(line, ":") {
			continue
		}
		path := strings.TrimSpace(line[:strings.Index(line, ":")])
		for _, ext := range l.profile.Extensions {
			if strings.HasSuffix(path, ext) {
				files[path] = struct{}{}
				break
			}
		}
	}
	return files
}
