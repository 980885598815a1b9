// Package header provides the module header component.
package header

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// Props defines the properties for the header component.
type Props struct {
	Title     string
	ServerURL string
	Accent    string
}

// Render renders the header component.
func Render(p Props) string {
	title := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(p.Accent)).Render(p.Title)
	server := lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Render(fmt.Sprintf("🔗 %s", p.ServerURL))
	return title + "\n" + server
}
