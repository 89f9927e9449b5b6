// Package tui implements the clipboard history menu as a Bubble Tea program.
package tui

import "github.com/charmbracelet/lipgloss"

// Tokyo Night color palette.
var (
	colorGreen  = lipgloss.Color("#9ece6a")
	colorYellow = lipgloss.Color("#e0af68")
	colorBlue   = lipgloss.Color("#7aa2f7")
	colorGray   = lipgloss.Color("#565f89")
	colorWhite  = lipgloss.Color("#c0caf5")
	colorRed    = lipgloss.Color("#f7768e")
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorBlue).
			PaddingLeft(1)

	// Cursor row.
	selectedStyle = lipgloss.NewStyle().
			Foreground(colorBlue).
			Bold(true)

	normalStyle = lipgloss.NewStyle().
			Foreground(colorWhite)

	// Dot shown next to the entry currently on the clipboard.
	activeDotStyle = lipgloss.NewStyle().
			Foreground(colorGreen)

	// Boundary whitespace markers (␣ ⇥ ↵).
	markerStyle = lipgloss.NewStyle().
			Faint(true)

	placeholderStyle = lipgloss.NewStyle().
				Foreground(colorGray).
				Italic(true).
				PaddingLeft(2).
				PaddingTop(1).
				PaddingBottom(1)

	privateBadgeStyle = lipgloss.NewStyle().
				Foreground(colorYellow).
				Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(colorRed).
			PaddingLeft(1)

	helpStyle = lipgloss.NewStyle().
			Foreground(colorGray).
			PaddingLeft(1)
)

// Symbols.
const (
	iconDot    = "•"
	iconCursor = "▌"
)
