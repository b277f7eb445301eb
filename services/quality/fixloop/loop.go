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
	"os/exec"
	"strings"

	"github.com/google/uuid"

	"github.com/sysadmin-info/cognitive-stack/pkg/logging"
	"github.com/sysadmin-info/cognitive-stack/services/council/provider"
	"github.com/sysadmin-info/cognitive-stack/services/quality/sonar"
)

const defaultMaxIterations = 5

// Scanner runs one full quality analysis of a project.
type Scanner interface {
	ScanAndWait(ctx context.Context, projectDir, projectKey string) (*sonar.Report, error)
}

// Completer is the single-endpoint slice of a council member used for
// fix requests.
type Completer interface {
	Complete(ctx context.Context, messages []provider.Message, system string) provider.Response
}

// Iteration is the outcome of one pass through the loop.
type Iteration struct {
	Number       int
	Linters      []LinterOutcome
	Report       *sonar.Report
	FixesApplied bool
	Err          string
}

// Passed reports whether every linter and the quality analysis came
// back clean.
func (it *Iteration) Passed() bool {
	for _, outcome := range it.Linters {
		if !outcome.Passed {
			return false
		}
	}
	return it.Report == nil || it.Report.Passed()
}

// Result is the outcome of a whole loop run.
type Result struct {
	Iterations       []Iteration
	FinalPassed      bool
	TotalIssuesFixed int
}

// FormatSummary renders the run for display.
func (r *Result) FormatSummary() string {
	status := "FAILED"
	if r.FinalPassed {
		status = "PASSED"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "## Fix Loop %s\n", status)
	fmt.Fprintf(&b, "Iterations: %d\n", len(r.Iterations))
	fmt.Fprintf(&b, "Total issues fixed: %d\n", r.TotalIssuesFixed)

	for _, it := range r.Iterations {
		mark := "FAIL"
		if it.Passed() {
			mark = "OK"
		}
		fmt.Fprintf(&b, "\n### Iteration %d [%s]\n", it.Number, mark)
		for _, outcome := range it.Linters {
			lm := "FAIL"
			if outcome.Passed {
				lm = "OK"
			}
			fmt.Fprintf(&b, "  - %s: %s\n", outcome.Linter, lm)
		}
		if it.Report != nil {
			fmt.Fprintf(&b, "  - quality server: %s\n", it.Report.Summary())
		}
		if it.Err != "" {
			fmt.Fprintf(&b, "  - error: %s\n", it.Err)
		}
	}
	return b.String()
}

// Loop orchestrates iterative fixes until the tree is clean or the
// iteration budget runs out.
type Loop struct {
	scanner       Scanner
	llm           Completer
	projectDir    string
	projectKey    string
	profile       Profile
	maxIterations int
	log           *logging.Logger

	// seams for tests
	runShell func(ctx context.Context, command string) ([]byte, error)
	lookPath func(name string) (string, error)
}

// LoopOption adjusts a Loop.
type LoopOption func(*Loop)

// WithMaxIterations overrides the iteration budget.
func WithMaxIterations(n int) LoopOption {
	return func(l *Loop) {
		if n > 0 {
			l.maxIterations = n
		}
	}
}

// WithLanguage selects the linter profile. Unknown names fall back to
// python.
func WithLanguage(language string) LoopOption {
	return func(l *Loop) { l.profile = ProfileFor(language) }
}

// WithLogger overrides the logger.
func WithLogger(log *logging.Logger) LoopOption {
	return func(l *Loop) { l.log = log }
}

// New creates a Loop for one project.
func New(scanner Scanner, llm Completer, projectDir, projectKey string, opts ...LoopOption) *Loop {
	l := &Loop{
		scanner:       scanner,
		llm:           llm,
		projectDir:    projectDir,
		projectKey:    projectKey,
		profile:       ProfileFor("python"),
		maxIterations: defaultMaxIterations,
		log:           logging.Default(),
		runShell:      defaultRunShell(projectDir),
		lookPath:      exec.LookPath,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Run drives the loop until an iteration passes, an iteration errors,
// or the budget is exhausted. TotalIssuesFixed sums the per-iteration
// drop in quality issues, floored at zero; the terminal passing
// iteration does not enter the sum.
func (l *Loop) Run(ctx context.Context) *Result {
	runID := uuid.NewString()
	result := &Result{}

	for i := 1; i <= l.maxIterations; i++ {
		l.log.Info("iteration starting",
			"run_id", runID, "iteration", i, "max_iterations", l.maxIterations)

		iteration := l.runIteration(ctx, i)
		result.Iterations = append(result.Iterations, iteration)

		if iteration.Passed() {
			result.FinalPassed = true
			l.log.Info("all checks passed", "run_id", runID, "iteration", i)
			break
		}
		if iteration.Err != "" {
			l.log.Error("iteration failed", "run_id", runID, "iteration", i, "error", iteration.Err)
			break
		}

		if iteration.Report != nil {
			var prev int
			if n := len(result.Iterations); n > 1 && result.Iterations[n-2].Report != nil {
				prev = len(result.Iterations[n-2].Report.Issues)
			}
			if fixed := prev - len(iteration.Report.Issues); fixed > 0 {
				result.TotalIssuesFixed += fixed
			}
		}
	}
	return result
}

// runIteration performs one lint, scan, fix pass. A scan failure is
// fatal for the run and lands in Err.
func (l *Loop) runIteration(ctx context.Context, number int) Iteration {
	iteration := Iteration{Number: number}

	iteration.Linters = l.runLinters(ctx)

	report, err := l.scanner.ScanAndWait(ctx, l.projectDir, l.projectKey)
	if err != nil {
		iteration.Err = err.Error()
		return iteration
	}
	iteration.Report = report

	if !iteration.Passed() {
		iteration.FixesApplied = l.applyFixes(ctx, iteration.Linters, report)
	}
	return iteration
}
