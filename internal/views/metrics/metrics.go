// Package metrics renders the latest-metrics table with a per-metric
// trend glyph against the previous sample.
package metrics

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/ChanLumerico/torchlit/internal/session"
	"github.com/ChanLumerico/torchlit/internal/theme"
)

// Model holds the metrics table state.
type Model struct {
	Width int
}

// New creates a metrics table model.
func New() Model {
	return Model{}
}

// Trend returns the rendered glyph for a metric's direction: falling
// values read as improvement (green), rising as regression (red), flat
// as neutral. With fewer than two samples the direction is unknown,
// which is a distinct state from flat and renders blank.
func Trend(h *session.MetricHistory) string {
	if h == nil || len(h.Values) < 2 {
		return theme.StyleDimmed.Render("  ")
	}
	last := h.Values[len(h.Values)-1]
	prev := h.Values[len(h.Values)-2]
	switch {
	case last < prev:
		return theme.StyleTrendDown.Render(theme.GlyphDown)
	case last > prev:
		return theme.StyleTrendUp.Render(theme.GlyphUp)
	default:
		return theme.StyleDimmed.Render(theme.GlyphFlat)
	}
}

// View renders the table for the given snapshot.
func (m Model) View(snap session.Snapshot) string {
	width := m.Width
	if width < 24 {
		width = 24
	}

	title := theme.StyleHeader.Render(" Metrics ")

	if len(snap.LatestMetrics) == 0 {
		return theme.StyleBorder.Width(width).Padding(0, 1).Render(
			lipgloss.JoinVertical(lipgloss.Left,
				title,
				theme.StyleDimmed.Render("  waiting for first step..."),
			))
	}

	nameW := 12
	for _, mt := range snap.LatestMetrics {
		if len(mt.Name) > nameW {
			nameW = len(mt.Name)
		}
	}

	lines := []string{title}
	for _, mt := range snap.LatestMetrics {
		name := theme.StyleDimmed.Render(fmt.Sprintf("%-*s", nameW, mt.Name))
		val := lipgloss.NewStyle().Foreground(theme.ColorBright).
			Render(fmt.Sprintf("%12.4f", mt.Value))
		lines = append(lines, fmt.Sprintf("%s %s %s", name, val, Trend(snap.History(mt.Name))))
	}

	return theme.StyleBorder.Width(width).Padding(0, 1).
		Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}
