// Package intent parses user input into UI intents.
package intent

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/tesso57/substackchat/internal/presentation/tui/state"
)

// Type represents a user intent.
type Type int

const (
	None Type = iota
	Quit
	ToggleHelp
	Submit
	NextExample
	ScrollUp
	ScrollDown
)

// Intent represents a parsed user intent.
type Intent struct {
	Type Type
}

// FromKeyMsg maps a key message to an intent.
func FromKeyMsg(msg tea.KeyMsg, keys state.KeyMap) Intent {
	switch {
	case key.Matches(msg, keys.Quit):
		return Intent{Type: Quit}
	case key.Matches(msg, keys.Help):
		return Intent{Type: ToggleHelp}
	case key.Matches(msg, keys.Submit):
		return Intent{Type: Submit}
	case key.Matches(msg, keys.NextExample):
		return Intent{Type: NextExample}
	case key.Matches(msg, keys.UpPage):
		return Intent{Type: ScrollUp}
	case key.Matches(msg, keys.DownPage):
		return Intent{Type: ScrollDown}
	default:
		return Intent{Type: None}
	}
}
