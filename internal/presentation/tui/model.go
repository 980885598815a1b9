package tui

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tesso57/substackchat/internal/application/settings"
	"github.com/tesso57/substackchat/internal/infrastructure/logging"
	"github.com/tesso57/substackchat/internal/presentation/tui/state"
	"github.com/tesso57/substackchat/internal/presentation/tui/update"
	"github.com/tesso57/substackchat/internal/presentation/tui/view"
)

// Model represents the main application state.
type Model struct {
	settings settings.UIConfig
	chat     update.ChatSender
	logger   logging.Logger
	state    *state.ModelState
}

// NewModel creates a chat model that talks to the server through chat.
func NewModel(cfg settings.UIConfig, chat update.ChatSender, logger logging.Logger) *Model {
	m := &Model{
		settings: cfg,
		chat:     chat,
		logger:   logging.OrNop(logger),
		state:    newModelState(cfg),
	}
	update.RefreshTranscript(m.state)
	return m
}

// Init initializes the model.
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		cmd, handled := update.HandleKeyMsg(m.state, msg, m.deps())
		if handled {
			update.UpdateSizes(m.state)
			return m, cmd
		}
	case tea.WindowSizeMsg:
		update.HandleWindowSize(m.state, msg)
		return m, nil
	case update.StreamPartMsg:
		return m, update.HandleStreamPartMsg(m.state, msg)
	case update.StreamDoneMsg:
		update.HandleStreamDoneMsg(m.state, msg, m.deps())
		update.UpdateSizes(m.state)
		return m, nil
	case spinner.TickMsg:
		if !m.state.Phase.InFlight() {
			return m, nil
		}
		var cmd tea.Cmd
		m.state.Spinner, cmd = m.state.Spinner.Update(msg)
		return m, cmd
	}

	if m.state.Session != state.ChatView {
		return m, nil
	}

	var cmd tea.Cmd
	m.state.Input, cmd = m.state.Input.Update(msg)
	cmds = append(cmds, cmd)
	if _, isKey := msg.(tea.KeyMsg); !isKey {
		m.state.Viewport, cmd = m.state.Viewport.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// View renders the application view.
func (m *Model) View() string {
	return view.Render(m.buildProps())
}

func (m *Model) deps() update.Deps {
	return update.Deps{
		Chat:   m.chat,
		Logger: m.logger,
	}
}

func newModelState(cfg settings.UIConfig) *state.ModelState {
	return &state.ModelState{
		Session:  state.ChatView,
		Phase:    state.Idle,
		Input:    newTextInput(),
		Viewport: viewport.New(0, 0),
		Help:     help.New(),
		Spinner:  newSpinner(cfg.Theme.Accent),
		Keys:     state.NewKeyMap(cfg.KeyMap),
		Theme:    cfg.Theme,
	}
}

func newTextInput() textinput.Model {
	ti := textinput.New()
	ti.Placeholder = "Send a message"
	ti.Focus()
	ti.CharLimit = 2000
	ti.Width = 40
	return ti
}

func newSpinner(color string) spinner.Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color(color))
	return s
}
