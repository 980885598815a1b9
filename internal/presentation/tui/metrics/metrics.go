// Package metrics centralizes layout constants for the TUI.
package metrics

const (
	HeaderLines = 2
	// InputLines covers the bordered input box.
	InputLines = 3

	MainPaddingLeft    = 1
	InputBorderWidth   = 2
	InputPromptWidth   = 2
	HeaderWidthPadding = 2
)
