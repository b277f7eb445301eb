// Copyright (C) 2025 Cognitive Stack contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package analyze

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/sysadmin-info/cognitive-stack/services/council/provider"
)

// debiasPrompts maps technique names to their analysis instructions.
var debiasPrompts = map[string]string{
	"premortem": `Run a pre-mortem on this decision or plan.
Assume a year has passed and the decision turned out to be a DISASTER.
Describe the 5 most likely reasons it failed.
Be specific and realistic.`,

	"counterargs": `Give the 3 strongest counterarguments against the recommendation above.
Present them as a smart, competent person who genuinely disagrees would.
Do not weaken the counterarguments; present each in its strongest form.`,

	"uncertainty": `For every key claim in the response above:
1. Rate the confidence level (0-100%)
2. Say what could change that rating
3. Mark which parts are facts and which are opinion or speculation

Format: [CLAIM] -> [X%] | [what could change it]`,

	"assumptions": `What hidden assumptions does the response above make?
List every assumption that must hold for the recommendation to be sound.
For each one, rate how risky it would be if it turned out false.`,

	"reference_class": `What is the reference class for this situation?
That is, how do similar cases usually play out statistically?
Is this situation genuinely exceptional or a typical case?
What are the base rates for success and failure in comparable situations?`,

	"change_mind": `What would have to happen, or what information would you need,
to REVERSE this recommendation?
Be specific: which data, events, or arguments would convince you
of the opposite conclusion?`,
}

var techniqueDisplayNames = map[string]string{
	"premortem":       "Pre-mortem",
	"counterargs":     "Counterarguments",
	"uncertainty":     "Uncertainty",
	"assumptions":     "Assumptions",
	"reference_class": "Reference Class",
	"change_mind":     "What Would Change Your Mind",
}

// DebiasResult is the outcome of one debiasing technique.
type DebiasResult struct {
	Technique string
	Analysis  string
	Err       string
}

// OK reports whether the technique produced an analysis.
func (r DebiasResult) OK() bool { return r.Err == "" }

// Techniques returns the known technique names in sorted order.
func Techniques() []string {
	names := make([]string, 0, len(debiasPrompts))
	for name := range debiasPrompts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Debias runs the named techniques against a response, all in
// parallel against the same provider. Unknown techniques are filtered
// out before dispatch; per-technique failures land in the result slot
// rather than aborting the batch. Results align with the filtered
// technique order.
func Debias(ctx context.Context, original string, techniques []string, p provider.Provider, userContext string) []DebiasResult {
	var valid []string
	for _, t := range techniques {
		if _, ok := debiasPrompts[t]; ok {
			valid = append(valid, t)
		}
	}
	if len(valid) == 0 {
		return nil
	}

	results := make([]DebiasResult, len(valid))
	var wg sync.WaitGroup
	for i, technique := range valid {
		i, technique := i, technique
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = runOne(ctx, technique, original, p, userContext)
		}()
	}
	wg.Wait()
	return results
}

func runOne(ctx context.Context, technique, original string, p provider.Provider, userContext string) DebiasResult {
	var parts []string
	if userContext != "" {
		parts = append(parts, "User context: "+userContext)
	}
	parts = append(parts,
		"Original response:\n\n"+original,
		"---",
		debiasPrompts[technique],
	)

	resp := p.Complete(ctx,
		[]provider.Message{{Role: "user", Content: strings.Join(parts, "\n\n")}}, "")

	if !resp.OK() {
		return DebiasResult{Technique: technique, Err: resp.Err}
	}
	return DebiasResult{Technique: technique, Analysis: resp.Content}
}

// FormatDebiasResults renders the batch as markdown.
func FormatDebiasResults(results []DebiasResult) string {
	if len(results) == 0 {
		return "## Debiasing\n\n_No debiasing results._"
	}

	var b strings.Builder
	b.WriteString("## Debiasing\n")
	for _, result := range results {
		name := techniqueDisplayNames[result.Technique]
		if name == "" {
			name = result.Technique
		}
		fmt.Fprintf(&b, "\n### %s\n", name)
		if result.OK() {
			b.WriteString(result.Analysis + "\n")
		} else {
			fmt.Fprintf(&b, "_Error: %s_\n", result.Err)
		}
	}
	return b.String()
}
