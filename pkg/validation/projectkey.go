// Copyright (C) 2025 Cognitive Stack contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package validation provides input validation for values that reach
// subprocess arguments or server query parameters.
package validation

import (
	"fmt"
	"regexp"
)

// projectKeyPattern matches quality-server project keys: letters,
// digits, and the separators - _ . :, with at least one non-digit.
var projectKeyPattern = regexp.MustCompile(`^[A-Za-z0-9\-_.:]*[A-Za-z\-_.:][A-Za-z0-9\-_.:]*$`)

const maxProjectKeyLength = 400

// ValidateProjectKey validates a quality-server project key before it
// is used in API queries or scanner invocations.
//
// Valid keys are 1-400 characters of letters, digits, '-', '_', '.'
// and ':', and contain at least one non-digit character.
func ValidateProjectKey(key string) error {
	if key == "" {
		return fmt.Errorf("project key cannot be empty")
	}
	if len(key) > maxProjectKeyLength {
		return fmt.Errorf("project key too long: %d characters (limit %d)", len(key), maxProjectKeyLength)
	}
	if !projectKeyPattern.MatchString(key) {
		return fmt.Errorf("invalid project key %q (allowed: letters, digits, '-', '_', '.', ':', with at least one non-digit)", key)
	}
	return nil
}
