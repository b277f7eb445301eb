// Copyright (C) 2025 Cognitive Stack contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package council

import (
	"fmt"
	"strings"

	"github.com/sysadmin-info/cognitive-stack/services/council/config"
)

// BuildSystemPrompt assembles the system prompt from the user model and
// an optional expert persona. Unset fields fall back to neutral
// defaults so the prompt always carries the same section structure.
func BuildSystemPrompt(userModel *config.UserModel, expert *config.Expert) string {
	var b strings.Builder

	b.WriteString("## User Context\n")
	fmt.Fprintf(&b, "Name: %s\n", orDefault(userModel.Identity.Name, "Unknown"))
	fmt.Fprintf(&b, "Role: %s\n", orDefault(userModel.Identity.Role, "Unknown"))

	if len(userModel.Goals) > 0 {
		fmt.Fprintf(&b, "Goals: %s\n", strings.Join(userModel.Goals, ", "))
	}
	if len(userModel.Constraints) > 0 {
		fmt.Fprintf(&b, "Constraints: %s\n", strings.Join(userModel.Constraints, ", "))
	}

	fmt.Fprintf(&b, "Risk tolerance: %s\n", orDefault(userModel.RiskTolerance, "medium"))

	if len(userModel.Ethics) > 0 {
		fmt.Fprintf(&b, "Ethics: %s\n", strings.Join(userModel.Ethics, ", "))
	}

	style := userModel.CommunicationStyle
	language := "English"
	if style.PreferredLanguage == "pl" {
		language = "Polish"
	}
	fmt.Fprintf(&b, "\nRespond in: %s\n", language)
	fmt.Fprintf(&b, "Verbosity: %s\n", orDefault(style.Verbosity, "normal"))
	fmt.Fprintf(&b, "Technical depth: %s", orDefault(style.TechnicalDepth, "intermediate"))

	if expert != nil {
		fmt.Fprintf(&b, "\n\n## Your Role: %s", orDefault(expert.Name, "Advisor"))
		if expert.SystemPrompt != "" {
			b.WriteString("\n" + expert.SystemPrompt)
		}
	}
	return b.String()
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
