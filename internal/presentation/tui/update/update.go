// Package update holds UI update logic for the TUI.
package update

import (
	"context"
	"encoding/json"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/tesso57/substackchat/internal/domain/conversation"
	"github.com/tesso57/substackchat/internal/infrastructure/chatclient"
	"github.com/tesso57/substackchat/internal/infrastructure/datastream"
	"github.com/tesso57/substackchat/internal/infrastructure/logging"
	"github.com/tesso57/substackchat/internal/presentation/tui/intent"
	"github.com/tesso57/substackchat/internal/presentation/tui/presenter"
	"github.com/tesso57/substackchat/internal/presentation/tui/state"
)

// RateLimitMessage is shown when the server answers 429.
const RateLimitMessage = "You have reached your request limit for the day."

// ChatSender streams an assistant response for a history.
type ChatSender interface {
	Send(ctx context.Context, history []conversation.ChatMessage, onPart func(datastream.Part)) error
}

// Deps groups external dependencies for updates.
type Deps struct {
	Chat   ChatSender
	Logger logging.Logger
}

// StreamPartMsg carries one decoded part of the response stream.
type StreamPartMsg struct {
	Stream *Stream
	Part   datastream.Part
}

// StreamDoneMsg is emitted once the response stream has ended.
type StreamDoneMsg struct {
	Err error
}

// Stream relays parts from a background Send call into the update loop.
type Stream struct {
	ch chan tea.Msg
}

// OpenStream starts sending history in the background.
func OpenStream(ctx context.Context, sender ChatSender, history []conversation.ChatMessage) *Stream {
	s := &Stream{ch: make(chan tea.Msg, 64)}
	snapshot := append([]conversation.ChatMessage(nil), history...)
	go func() {
		defer close(s.ch)
		err := sender.Send(ctx, snapshot, func(part datastream.Part) {
			select {
			case s.ch <- StreamPartMsg{Stream: s, Part: part}:
			case <-ctx.Done():
			}
		})
		select {
		case s.ch <- StreamDoneMsg{Err: err}:
		case <-ctx.Done():
		}
	}()
	return s
}

// Next waits for the next stream message.
func (s *Stream) Next() tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-s.ch
		if !ok {
			return StreamDoneMsg{Err: context.Canceled}
		}
		return msg
	}
}

// HandleKeyMsg processes key input based on the current session.
func HandleKeyMsg(s *state.ModelState, msg tea.KeyMsg, deps Deps) (tea.Cmd, bool) {
	if s.Session == state.QuitView {
		return handleQuitView(s, msg)
	}

	parsed := intent.FromKeyMsg(msg, s.Keys)
	switch parsed.Type {
	case intent.Quit:
		s.Previous = s.Session
		s.Session = state.QuitView
		return nil, true
	case intent.ToggleHelp:
		s.Help.ShowAll = !s.Help.ShowAll
		return nil, true
	case intent.Submit:
		return submit(s, deps), true
	case intent.NextExample:
		fillNextExample(s)
		return nil, true
	case intent.ScrollUp:
		s.Viewport.HalfPageUp()
		return nil, true
	case intent.ScrollDown:
		s.Viewport.HalfPageDown()
		return nil, true
	default:
		return nil, false
	}
}

func handleQuitView(s *state.ModelState, msg tea.KeyMsg) (tea.Cmd, bool) {
	switch msg.String() {
	case "y", "Y", "ctrl+c":
		if s.Cancel != nil {
			s.Cancel()
		}
		return tea.Quit, true
	case "n", "N", "esc", "q", "Q":
		s.Session = s.Previous
		return nil, true
	}
	return nil, true
}

// submit appends the user message and opens a stream. It is a no-op while a
// response is in flight or the input is blank.
func submit(s *state.ModelState, deps Deps) tea.Cmd {
	text := s.Input.Value()
	if !state.CanSubmit(s.Phase, text) || deps.Chat == nil {
		return nil
	}

	s.Messages = append(s.Messages, conversation.ChatMessage{Role: conversation.RoleUser, Content: text})
	s.Input.Reset()
	s.StatusMessage = ""
	s.Phase = state.Awaiting
	s.Pending = nil
	RefreshTranscript(s)

	ctx, cancel := context.WithCancel(context.Background())
	s.Cancel = cancel
	stream := OpenStream(ctx, deps.Chat, s.Messages)
	return tea.Batch(s.Spinner.Tick, stream.Next())
}

func fillNextExample(s *state.ModelState) {
	if len(presenter.Examples) == 0 {
		return
	}
	example := presenter.Examples[s.ExampleIndex%len(presenter.Examples)]
	s.ExampleIndex++
	s.Input.SetValue(example.Prompt())
	s.Input.CursorEnd()
}

// HandleStreamPartMsg applies one stream part to the pending assistant message.
func HandleStreamPartMsg(s *state.ModelState, msg StreamPartMsg) tea.Cmd {
	if !s.Phase.InFlight() {
		return nil
	}
	s.Phase = state.Streaming
	if s.Pending == nil {
		s.Pending = &conversation.ChatMessage{Role: conversation.RoleAssistant}
	}

	part := msg.Part
	switch part.Type {
	case datastream.PartText:
		s.Pending.Content += part.Text
	case datastream.PartToolCall:
		if part.ToolCall != nil {
			s.Pending.ToolInvocations = append(s.Pending.ToolInvocations, conversation.ToolInvocation{
				ToolCallID: part.ToolCall.ToolCallID,
				ToolName:   part.ToolCall.ToolName,
				Args:       part.ToolCall.Args,
			})
		}
	case datastream.PartToolResult:
		if part.ToolResult != nil {
			applyToolResult(s.Pending, part.ToolResult.ToolCallID, part.ToolResult.Result)
		}
	}
	RefreshTranscript(s)

	if msg.Stream == nil {
		return nil
	}
	return msg.Stream.Next()
}

func applyToolResult(msg *conversation.ChatMessage, callID string, result json.RawMessage) {
	for i := range msg.ToolInvocations {
		if msg.ToolInvocations[i].ToolCallID == callID {
			msg.ToolInvocations[i].Result = result
			return
		}
	}
}

// HandleStreamDoneMsg commits the pending message and returns to idle.
// A 429 sets the rate-limit status; other failures are only logged.
func HandleStreamDoneMsg(s *state.ModelState, msg StreamDoneMsg, deps Deps) {
	if !s.Phase.InFlight() {
		return
	}
	if s.Cancel != nil {
		s.Cancel()
		s.Cancel = nil
	}

	if s.Pending != nil && (s.Pending.Content != "" || len(s.Pending.ToolInvocations) > 0) {
		s.Messages = append(s.Messages, *s.Pending)
	}
	s.Pending = nil
	s.Phase = state.Idle

	if msg.Err != nil {
		logger := logging.OrNop(deps.Logger)
		if chatclient.IsRateLimited(msg.Err) {
			s.StatusMessage = RateLimitMessage
			logger.Info("rate limited")
		} else {
			logger.Error("chat errored",
				logging.String("input", conversation.LastUserContent(s.Messages)),
				logging.Error(msg.Err),
			)
		}
	}
	RefreshTranscript(s)
}

// HandleWindowSize stores the terminal size and resizes components.
func HandleWindowSize(s *state.ModelState, msg tea.WindowSizeMsg) {
	s.Width = msg.Width
	s.Height = msg.Height
	UpdateSizes(s)
	RefreshTranscript(s)
}
