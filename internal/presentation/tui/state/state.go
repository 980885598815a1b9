// Package state holds UI state types for the TUI.
package state

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/tesso57/substackchat/internal/application/settings"
)

// Session represents the current view state.
type Session int

const (
	ChatView Session = iota
	QuitView
)

// Phase tracks the lifecycle of the current turn.
type Phase int

const (
	// Idle accepts a new message.
	Idle Phase = iota
	// Awaiting has sent a message and has not seen any stream part yet.
	Awaiting
	// Streaming is receiving the assistant response.
	Streaming
)

// InFlight reports whether a response is pending.
func (p Phase) InFlight() bool {
	return p == Awaiting || p == Streaming
}

// CanSubmit reports whether the submit control is enabled.
func CanSubmit(phase Phase, input string) bool {
	return !phase.InFlight() && strings.TrimSpace(input) != ""
}

// KeyMap defines the keybindings for the application.
type KeyMap struct {
	Submit      key.Binding
	NextExample key.Binding
	UpPage      key.Binding
	DownPage    key.Binding
	Quit        key.Binding
	Help        key.Binding
}

// ShortHelp returns a subset of keybindings for the help view.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Submit, k.NextExample, k.Quit, k.Help}
}

// FullHelp returns all keybindings for the help view.
func (k *KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Submit, k.NextExample},
		{k.UpPage, k.DownPage},
		{k.Quit, k.Help},
	}
}

// NewKeyMap creates a new KeyMap from the configuration.
func NewKeyMap(cfg settings.KeyMapConfig) KeyMap {
	return KeyMap{
		Submit: key.NewBinding(
			key.WithKeys(splitKeys(cfg.Submit)...),
			key.WithHelp(cfg.Submit, "send"),
		),
		NextExample: key.NewBinding(
			key.WithKeys(splitKeys(cfg.NextExample)...),
			key.WithHelp(cfg.NextExample, "example"),
		),
		UpPage: key.NewBinding(
			key.WithKeys(splitKeys(cfg.UpPage)...),
			key.WithHelp(cfg.UpPage, "scroll up"),
		),
		DownPage: key.NewBinding(
			key.WithKeys(splitKeys(cfg.DownPage)...),
			key.WithHelp(cfg.DownPage, "scroll down"),
		),
		Quit: key.NewBinding(
			key.WithKeys(append(splitKeys(cfg.Quit), "ctrl+c")...),
			key.WithHelp(cfg.Quit, "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("f1"),
			key.WithHelp("f1", "toggle help"),
		),
	}
}

func splitKeys(keys string) []string {
	parts := strings.Split(keys, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		keyName := strings.TrimSpace(part)
		if keyName == "" {
			continue
		}
		out = append(out, keyName)
		switch keyName {
		case "pgdn":
			out = append(out, "pgdown")
		case "pgdown":
			out = append(out, "pgdn")
		}
	}
	return out
}
