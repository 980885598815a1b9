// Package state holds UI state types for the TUI.
package state

import (
	"context"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	"github.com/tesso57/substackchat/internal/application/settings"
	"github.com/tesso57/substackchat/internal/domain/conversation"
)

// ModelState holds the presentation state for the TUI.
type ModelState struct {
	Session       Session
	Previous      Session
	Phase         Phase
	Messages      []conversation.ChatMessage
	// Pending is the assistant message being streamed; nil until the first part arrives.
	Pending       *conversation.ChatMessage
	Input         textinput.Model
	Viewport      viewport.Model
	Help          help.Model
	Spinner       spinner.Model
	Keys          KeyMap
	Theme         settings.ThemeConfig
	Width         int
	Height        int
	StatusMessage string
	ExampleIndex  int
	Cancel        context.CancelFunc
}

// Transcript returns the committed messages followed by the pending one.
func (s *ModelState) Transcript() []conversation.ChatMessage {
	if s.Pending == nil {
		return s.Messages
	}
	out := make([]conversation.ChatMessage, 0, len(s.Messages)+1)
	out = append(out, s.Messages...)
	return append(out, *s.Pending)
}
