package ui

import "github.com/charmbracelet/lipgloss"

// Theme holds the lipgloss styles for the dashboard chrome. Task rows are
// not styled through it; see render.go.
type Theme struct {
	Renderer *lipgloss.Renderer

	Primary lipgloss.AdaptiveColor
	Muted   lipgloss.AdaptiveColor
}

// DefaultTheme builds the theme for a renderer (usually one bound to the
// program's output).
func DefaultTheme(r *lipgloss.Renderer) Theme {
	return Theme{
		Renderer: r,
		Primary:  lipgloss.AdaptiveColor{Light: "#5A3FC0", Dark: "#B4A7F5"},
		Muted:    lipgloss.AdaptiveColor{Light: "#8A8A8A", Dark: "#6C6C6C"},
	}
}

// HeaderStyle styles the title line.
func (t Theme) HeaderStyle() lipgloss.Style {
	return t.Renderer.NewStyle().Bold(true).Foreground(t.Primary)
}

// SubtleStyle styles secondary header text.
func (t Theme) SubtleStyle() lipgloss.Style {
	return t.Renderer.NewStyle().Foreground(t.Muted)
}
