// Package mainview provides the transcript area component.
package mainview

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// Props defines the properties for the main view component.
type Props struct {
	Width   int
	Height  int
	Body    string
	Loading bool
	Spinner string
}

// Render renders the main view component. While a response is awaited the
// spinner line replaces the last row of the body.
func Render(p Props) string {
	mainStyle := lipgloss.NewStyle().
		Width(p.Width).
		Height(p.Height).
		MaxHeight(p.Height).
		PaddingLeft(1)

	content := p.Body
	if p.Loading {
		content = fmt.Sprintf("%s\n%s Thinking...", content, p.Spinner)
	}
	return mainStyle.Render(content)
}
