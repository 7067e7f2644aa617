package cli

import "github.com/charmbracelet/lipgloss"

// Tape colour palette
// Shared theme colours for consistent branding across CLI and TUI
var (
	TapeAmber  = lipgloss.Color("#F8B31D") // Brand yellow
	TapeOrange = lipgloss.Color("#FF8C00") // Deep orange
	TapeRed    = lipgloss.Color("#A40000") // Record light

	// Accent colours
	WarmGray = lipgloss.Color("#B8860B") // Dark goldenrod for subtle text
)
