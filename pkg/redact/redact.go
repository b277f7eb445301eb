// Copyright (C) 2025 Cognitive Stack contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package redact removes API-key-shaped substrings from text before it
// becomes user-visible.
//
// Every error string produced by the provider layer passes through
// String before being logged or embedded in a result. The patterns
// cover bearer tokens, key= query parameters, and the key prefixes used
// by the supported providers.
package redact

import "regexp"

// Marker is the fixed replacement for a redacted secret.
const Marker = "***REDACTED***"

type rule struct {
	re          *regexp.Regexp
	replacement string
}

// Ordering matters: the more specific prefixes (sk-proj-, sk-ant-api)
// must run before the generic sk- rule or they would be half-rewritten.
var rules = []rule{
	{regexp.MustCompile(`key=[A-Za-z0-9_-]{15,}`), "key=" + Marker},
	{regexp.MustCompile(`sk-proj-[A-Za-z0-9_-]{20,}`), "sk-proj-" + Marker},
	{regexp.MustCompile(`sk-ant-api[A-Za-z0-9_-]{20,}`), "sk-ant-" + Marker},
	{regexp.MustCompile(`sk-[A-Za-z0-9_-]{20,}`), "sk-" + Marker},
	{regexp.MustCompile(`AIzaSy[A-Za-z0-9_-]{30,}`), Marker},
	{regexp.MustCompile(`Bearer [A-Za-z0-9_-]{20,}`), "Bearer " + Marker},
	{regexp.MustCompile(`x-api-key: [A-Za-z0-9_-]{20,}`), "x-api-key: " + Marker},
}

// String returns s with all recognized secret-shaped substrings
// replaced by Marker. Safe to call on already-redacted text.
func String(s string) string {
	for _, r := range rules {
		s = r.re.ReplaceAllString(s, r.replacement)
	}
	return s
}

// Error is a convenience wrapper for redacting error messages.
// A nil error yields an empty string.
func Error(err error) string {
	if err == nil {
		return ""
	}
	return String(err.Error())
}
