package update

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/tesso57/substackchat/internal/presentation/tui/metrics"
	"github.com/tesso57/substackchat/internal/presentation/tui/presenter"
	"github.com/tesso57/substackchat/internal/presentation/tui/state"
)

type layoutMetrics struct {
	mainWidth      int
	mainHeight     int
	viewportHeight int
	inputWidth     int
}

// MainHeight returns the rows available to the transcript area.
func MainHeight(s *state.ModelState) int {
	return buildLayoutMetrics(s).mainHeight
}

// UpdateSizes fits the viewport and input to the terminal.
func UpdateSizes(s *state.ModelState) {
	if s.Width <= 0 || s.Height <= 0 {
		return
	}

	layout := buildLayoutMetrics(s)
	s.Viewport.Width = layout.mainWidth
	s.Viewport.Height = layout.viewportHeight
	s.Input.Width = layout.inputWidth
}

// RefreshTranscript re-renders the conversation into the viewport and keeps
// the newest text in view.
func RefreshTranscript(s *state.ModelState) {
	width := s.Viewport.Width
	if width <= 0 {
		width = s.Width - metrics.MainPaddingLeft
	}
	s.Viewport.SetContent(presenter.Transcript(s.Transcript(), width, transcriptStyles(s)))
	if len(s.Messages) > 0 || s.Pending != nil {
		s.Viewport.GotoBottom()
	}
}

func buildLayoutMetrics(s *state.ModelState) layoutMetrics {
	available := s.Height - metrics.HeaderLines - metrics.InputLines - footerHeight(s)
	mainHeight := clampMin(available, 2)
	return layoutMetrics{
		mainWidth:      clampMin(s.Width-metrics.MainPaddingLeft, 1),
		mainHeight:     mainHeight,
		viewportHeight: mainHeight - 1,
		inputWidth:     clampMin(s.Width-metrics.InputBorderWidth-metrics.InputPromptWidth-1, 1),
	}
}

func footerHeight(s *state.ModelState) int {
	s.Help.Width = s.Width
	return lipgloss.Height(state.FooterText(s.Phase, s.StatusMessage, s.Help.View(&s.Keys)))
}

func transcriptStyles(s *state.ModelState) presenter.Styles {
	return presenter.NewStyles(s.Theme.Accent, s.Theme.Muted)
}

func clampMin(value, min int) int {
	if value < min {
		return min
	}
	return value
}
