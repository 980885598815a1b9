// Package view orchestrates the composition of UI components.
package view

import (
	"github.com/tesso57/substackchat/internal/presentation/tui/components/header"
	"github.com/tesso57/substackchat/internal/presentation/tui/components/input"
	"github.com/tesso57/substackchat/internal/presentation/tui/components/layout"
	mainview "github.com/tesso57/substackchat/internal/presentation/tui/components/main"
	"github.com/tesso57/substackchat/internal/presentation/tui/components/modal"
)

// Props aggregates properties for all UI components.
type Props struct {
	Header header.Props
	Main   mainview.Props
	Input  input.Props
	Modal  modal.Props
	Footer string
}

// Render renders the complete UI view based on the provided props.
func Render(p Props) string {
	if p.Modal.Visible {
		return modal.Render(p.Modal)
	}

	return layout.Render(layout.Props{
		Header: header.Render(p.Header),
		Main:   mainview.Render(p.Main),
		Input:  input.Render(p.Input),
		Footer: p.Footer,
	})
}
