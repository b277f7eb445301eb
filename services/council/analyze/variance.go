// Copyright (C) 2025 Cognitive Stack contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package analyze compares council responses for agreement and runs
// debiasing techniques against a chosen answer. Both surfaces degrade
// to deterministic fallbacks instead of returning errors; a broken
// analyzer must never hide the council's answers.
package analyze

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sysadmin-info/cognitive-stack/services/council/provider"
)

const varianceSystemPrompt = `You are analyzing responses from multiple AI models to the same question.
Your task is to identify:
1. Where do the models AGREE? (These are more likely to be reliable)
2. Where do they DISAGREE? (These need human judgment)
3. What confidence signals should the user pay attention to?

Respond in this exact JSON format:
{
  "agreement_summary": "Brief summary of where models agree",
  "disagreement_points": ["Point 1", "Point 2"],
  "confidence_signals": ["Signal 1", "Signal 2"]
}

Be concise. Focus on actionable differences.`

// VarianceReport summarizes agreement and disagreement across the
// council's answers.
type VarianceReport struct {
	Responses          []provider.Response
	AgreementSummary   string
	DisagreementPoints []string
	ConfidenceSignals  []string
}

// Format renders the report as markdown.
func (r *VarianceReport) Format() string {
	var b strings.Builder
	b.WriteString("## Variance Analysis\n\n")

	b.WriteString("### Agreement\n")
	if r.AgreementSummary != "" {
		b.WriteString(r.AgreementSummary)
	} else {
		b.WriteString("_No data_")
	}
	b.WriteString("\n")

	if len(r.DisagreementPoints) > 0 {
		b.WriteString("\n### Disagreement Points\n")
		for _, point := range r.DisagreementPoints {
			fmt.Fprintf(&b, "- %s\n", point)
		}
	}
	if len(r.ConfidenceSignals) > 0 {
		b.WriteString("\n### Signals to Watch\n")
		for _, signal := range r.ConfidenceSignals {
			fmt.Fprintf(&b, "! %s\n", signal)
		}
	}
	return b.String()
}

type varianceVerdict struct {
	AgreementSummary   string   `json:"agreement_summary"`
	DisagreementPoints []string `json:"disagreement_points"`
	ConfidenceSignals  []string `json:"confidence_signals"`
}

// Variance asks the analyzer provider to compare the successful
// responses and returns a structured report. A failed analyzer call or
// malformed verdict JSON falls back to a fixed report; this function
// never returns an error.
func Variance(ctx context.Context, responses []provider.Response, analyzer provider.Provider) *VarianceReport {
	report := &VarianceReport{Responses: responses}
	if len(responses) == 0 {
		report.AgreementSummary = "No responses to analyze."
		return report
	}

	var b strings.Builder
	b.WriteString("Here are the responses from different models:\n\n")
	for _, resp := range responses {
		if resp.OK() {
			fmt.Fprintf(&b, "### %s (%s):\n%s\n\n", resp.Provider, resp.Model, resp.Content)
		}
	}

	result := analyzer.Complete(ctx,
		[]provider.Message{{Role: "user", Content: b.String()}}, varianceSystemPrompt)

	if !result.OK() {
		report.AgreementSummary = "Analysis failed: " + orUnknown(result.Err)
		report.ConfidenceSignals = []string{"Variance analysis errored"}
		return report
	}

	verdict, err := parseVerdict(result.Content)
	if err != nil {
		report.AgreementSummary = "Automatic analysis failed. Review the responses manually."
		report.ConfidenceSignals = []string{"Automatic analysis failed"}
		return report
	}

	report.AgreementSummary = verdict.AgreementSummary
	report.DisagreementPoints = verdict.DisagreementPoints
	report.ConfidenceSignals = verdict.ConfidenceSignals
	return report
}

// parseVerdict extracts the JSON object from the analyzer's reply,
// tolerating markdown code fences and surrounding prose.
func parseVerdict(text string) (*varianceVerdict, error) {
	content := strings.TrimSpace(text)
	if strings.HasPrefix(content, "```") {
		var kept []string
		for _, line := range strings.Split(content, "\n") {
			if strings.HasPrefix(strings.TrimSpace(line), "```") {
				continue
			}
			kept = append(kept, line)
		}
		content = strings.Join(kept, "\n")
	}

	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON object in analyzer reply")
	}

	var verdict varianceVerdict
	if err := json.Unmarshal([]byte(content[start:end+1]), &verdict); err != nil {
		return nil, fmt.Errorf("decoding analyzer verdict: %w", err)
	}
	return &verdict, nil
}

func orUnknown(s string) string {
	if s == "" {
		return "Unknown error"
	}
	return s
}
