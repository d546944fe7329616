// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// Aleutian palette, shared with the rest of the CLI family.
var (
	colorTealBright = lipgloss.Color("#2CD7C7")
	colorSlate      = lipgloss.Color("#2C4A54")
	colorError      = lipgloss.Color("#E74C3C")
	colorWarning    = lipgloss.Color("#F4D03F")
)

// styles renders check reports. The zero value renders plain text.
type styles struct {
	title   lipgloss.Style
	label   lipgloss.Style
	success lipgloss.Style
	warning lipgloss.Style
	failure lipgloss.Style
}

func plainStyles() styles {
	s := lipgloss.NewStyle()
	return styles{title: s, label: s, success: s, warning: s, failure: s}
}

func colorStyles() styles {
	return styles{
		title:   lipgloss.NewStyle().Bold(true).Foreground(colorTealBright),
		label:   lipgloss.NewStyle().Foreground(colorSlate),
		success: lipgloss.NewStyle().Foreground(colorTealBright),
		warning: lipgloss.NewStyle().Foreground(colorWarning),
		failure: lipgloss.NewStyle().Bold(true).Foreground(colorError),
	}
}

// stylesFor colors output only when w is a terminal.
func stylesFor(w io.Writer) styles {
	f, ok := w.(*os.File)
	if !ok {
		return plainStyles()
	}
	if !isatty.IsTerminal(f.Fd()) && !isatty.IsCygwinTerminal(f.Fd()) {
		return plainStyles()
	}
	return colorStyles()
}
