package panel

import "github.com/daemonp/powerwidget2mqtt/internal/types"

// Renderer consumes each emitted snapshot.
type Renderer interface {
	Render(state types.PanelState)
}

// RenderFunc adapts a function to Renderer.
type RenderFunc func(types.PanelState)

func (f RenderFunc) Render(state types.PanelState) { f(state) }

// MultiRenderer fans a snapshot out to several renderers in order.
type MultiRenderer []Renderer

func (m MultiRenderer) Render(state types.PanelState) {
	for _, r := range m {
		if r != nil {
			r.Render(state)
		}
	}
}
