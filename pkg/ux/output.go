// Copyright (C) 2025 Cognitive Stack contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package ux renders council output for the terminal. Styling drops to
// plain text when stdout is not a TTY or NO_COLOR is set.
package ux

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
)

const (
	ColorPrimary = lipgloss.Color("#20B9B4") // teal - titles, response borders
	ColorSuccess = lipgloss.Color("#2CD7C7") // bright teal - passed checks
	ColorWarning = lipgloss.Color("#F4D03F") // amber - degraded results
	ColorError   = lipgloss.Color("#E74C3C") // red - failed members
	ColorMuted   = lipgloss.Color("#2C4A54") // slate - secondary text
)

// Styles provides the pre-configured lipgloss styles.
var Styles = struct {
	Title   lipgloss.Style
	Bold    lipgloss.Style
	Muted   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style

	Box      lipgloss.Style
	ErrorBox lipgloss.Style
}{
	Title:   lipgloss.NewStyle().Bold(true).Foreground(ColorPrimary),
	Bold:    lipgloss.NewStyle().Bold(true),
	Muted:   lipgloss.NewStyle().Foreground(ColorMuted),
	Success: lipgloss.NewStyle().Foreground(ColorSuccess),
	Warning: lipgloss.NewStyle().Foreground(ColorWarning),
	Error:   lipgloss.NewStyle().Foreground(ColorError),

	Box: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorPrimary).
		Padding(0, 1),
	ErrorBox: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorError).
		Padding(0, 1),
}

var colorEnabled = isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())

func init() {
	if _, found := os.LookupEnv("NO_COLOR"); found {
		colorEnabled = false
	}
	if !colorEnabled {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
}

// ColorEnabled reports whether styled output is active.
func ColorEnabled() bool { return colorEnabled }

// Panel renders titled, bordered content.
func Panel(title, content string) string {
	body := Styles.Bold.Render(title) + "\n" + strings.TrimRight(content, "\n")
	return Styles.Box.Render(body)
}

// ErrorPanel renders a failed member's panel with a red border.
func ErrorPanel(title, errText string) string {
	body := Styles.Bold.Render(title) + "\n" + Styles.Error.Render("Error: "+errText)
	return Styles.ErrorBox.Render(body)
}

// Title prints a styled section title.
func Title(text string) {
	fmt.Println(Styles.Title.Render(text))
}

// Success prints a success line.
func Success(text string) {
	fmt.Println(Styles.Success.Render("OK ") + text)
}

// Warning prints a warning line to stderr.
func Warning(text string) {
	fmt.Fprintln(os.Stderr, Styles.Warning.Render("WARN ")+text)
}

// Error prints an error line to stderr.
func Error(text string) {
	fmt.Fprintln(os.Stderr, Styles.Error.Render("ERROR ")+text)
}
