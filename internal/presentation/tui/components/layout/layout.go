// Package layout stacks the TUI regions vertically.
package layout

import "github.com/charmbracelet/lipgloss"

// Props defines the rendered regions.
type Props struct {
	Header string
	Main   string
	Input  string
	Footer string
}

// Render joins the regions top to bottom.
func Render(p Props) string {
	parts := []string{p.Header, p.Main, p.Input}
	if p.Footer != "" {
		parts = append(parts, p.Footer)
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}
