// Package modal provides the centered dialog component.
package modal

import "github.com/charmbracelet/lipgloss"

// Kind identifies the dialog being shown.
type Kind int

const (
	Quit Kind = iota
	Help
)

// Props defines the properties for the modal component.
type Props struct {
	Visible bool
	Kind    Kind
	Body    string
	Width   int
	Height  int
}

// Render centers the dialog box in the available area.
func Render(p Props) string {
	if !p.Visible {
		return ""
	}
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("63")).
		Padding(1, 2).
		Render(p.Body)
	return lipgloss.Place(p.Width, p.Height, lipgloss.Center, lipgloss.Center, box)
}
