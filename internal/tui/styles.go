package tui

import "github.com/charmbracelet/lipgloss"

// Indicator color styles
var (
	greenStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))  // live
	grayStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")) // offline
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241")) // secondary text
	cyanStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("51"))  // revealing prompt
)

// Text styles
var (
	boldStyle   = lipgloss.NewStyle().Bold(true)
	italicStyle = lipgloss.NewStyle().Italic(true)
	liveStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("46")).Bold(true)
)

// Row styles
var (
	selectedStyle = lipgloss.NewStyle().
		Background(lipgloss.Color("236")).
		Bold(true)
)

// Box styles for header/footer
var (
	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	statLabelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	statValueStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("99"))
)

// Indicator constants
const (
	iconActive  = "●"
	iconOffline = "○"
	iconCaret   = "▌"
)

// Indicator returns the colored status dot.
func Indicator(active bool) string {
	if active {
		return greenStyle.Render(iconActive)
	}
	return grayStyle.Render(iconOffline)
}
