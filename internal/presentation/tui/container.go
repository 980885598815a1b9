// Package tui provides the terminal chat client.
package tui

import (
	"github.com/tesso57/substackchat/internal/presentation/tui/components/header"
	"github.com/tesso57/substackchat/internal/presentation/tui/components/input"
	mainview "github.com/tesso57/substackchat/internal/presentation/tui/components/main"
	"github.com/tesso57/substackchat/internal/presentation/tui/components/modal"
	"github.com/tesso57/substackchat/internal/presentation/tui/metrics"
	"github.com/tesso57/substackchat/internal/presentation/tui/presenter"
	"github.com/tesso57/substackchat/internal/presentation/tui/state"
	"github.com/tesso57/substackchat/internal/presentation/tui/textutil"
	"github.com/tesso57/substackchat/internal/presentation/tui/update"
	"github.com/tesso57/substackchat/internal/presentation/tui/view"
)

func (m *Model) buildProps() view.Props {
	return view.Props{
		Header: m.buildHeaderProps(),
		Main:   m.buildMainProps(),
		Input:  m.buildInputProps(),
		Modal:  m.buildModalProps(),
		Footer: m.buildFooterProps(),
	}
}

func (m *Model) buildHeaderProps() header.Props {
	width := m.state.Width - metrics.HeaderWidthPadding
	return header.Props{
		Title:     presenter.WelcomeTitle,
		ServerURL: textutil.Truncate(textutil.SingleLine(m.settings.ServerURL), width),
		Accent:    m.settings.Theme.Accent,
	}
}

func (m *Model) buildMainProps() mainview.Props {
	return mainview.Props{
		Width:   m.state.Width,
		Height:  update.MainHeight(m.state),
		Body:    m.state.Viewport.View(),
		Loading: m.state.Phase == state.Awaiting,
		Spinner: m.state.Spinner.View(),
	}
}

func (m *Model) buildInputProps() input.Props {
	return input.Props{
		Width:   m.state.Width,
		View:    m.state.Input.View(),
		Enabled: state.CanSubmit(m.state.Phase, m.state.Input.Value()),
		Accent:  m.settings.Theme.Accent,
	}
}

func (m *Model) buildModalProps() modal.Props {
	if m.state.Session == state.QuitView {
		return modal.Props{
			Visible: true,
			Kind:    modal.Quit,
			Body:    "Are you sure you want to quit?\n\n(y/n)",
			Width:   m.state.Width,
			Height:  m.state.Height,
		}
	}
	if m.state.Help.ShowAll {
		return modal.Props{
			Visible: true,
			Kind:    modal.Help,
			Body:    m.state.Help.View(&m.state.Keys),
			Width:   m.state.Width,
			Height:  m.state.Height,
		}
	}
	return modal.Props{Visible: false}
}

func (m *Model) buildFooterProps() string {
	helpText := m.state.Help.View(&m.state.Keys)
	return state.FooterText(m.state.Phase, m.state.StatusMessage, helpText)
}
