// Package input provides the message composer component.
package input

import "github.com/charmbracelet/lipgloss"

// Props defines the properties for the input component.
type Props struct {
	Width   int
	View    string
	Enabled bool
	Accent  string
}

// Render draws the input inside a rounded border. The border is dimmed while
// submitting is disabled.
func Render(p Props) string {
	color := lipgloss.Color("240")
	if p.Enabled {
		color = lipgloss.Color(p.Accent)
	}
	width := p.Width - 2
	if width < 1 {
		width = 1
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(color).
		Width(width).
		Render(p.View)
}
