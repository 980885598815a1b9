package state

import "strings"

// FooterText returns the footer content for the current phase.
func FooterText(phase Phase, statusMessage, helpText string) string {
	lines := make([]string, 0, 3)
	if phase.InFlight() {
		lines = append(lines, "Waiting for response...")
	}
	if status := strings.TrimSpace(statusMessage); status != "" {
		lines = append(lines, status)
	}
	if helpText != "" {
		lines = append(lines, helpText)
	}
	return strings.Join(lines, "\n")
}
