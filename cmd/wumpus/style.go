package main

import (
	"io"

	"github.com/charmbracelet/lipgloss"
)

var (
	colorOK    = lipgloss.Color("#2CD7C7")
	colorWarn  = lipgloss.Color("#F4D03F")
	colorError = lipgloss.Color("#E74C3C")
	colorMuted = lipgloss.Color("#6C7A89")
)

// styles are bound to the command's writer so colour is only emitted when
// that writer is a terminal.
type styles struct {
	title lipgloss.Style
	ok    lipgloss.Style
	warn  lipgloss.Style
	fail  lipgloss.Style
	muted lipgloss.Style
	board lipgloss.Style
	cell  lipgloss.Style
}

func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		title: r.NewStyle().Bold(true),
		ok:    r.NewStyle().Foreground(colorOK),
		warn:  r.NewStyle().Foreground(colorWarn),
		fail:  r.NewStyle().Foreground(colorError),
		muted: r.NewStyle().Foreground(colorMuted),
		board: r.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorMuted).Padding(0, 1),
		cell:  r.NewStyle().Padding(0, 1),
	}
}
