// Package history renders per-metric sparklines over the retained
// sample windows.
package history

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ChanLumerico/torchlit/internal/session"
	"github.com/ChanLumerico/torchlit/internal/theme"
)

// minRange guards the glyph scale against constant series.
const minRange = 1e-9

// chromeRows is the vertical overhead of the panel: two border rows
// plus the title row.
const chromeRows = 3

// Model holds the sparkline panel state.
type Model struct {
	Width int
}

// New creates a history panel model.
func New() Model {
	return Model{}
}

// Sparkline renders values as ramp glyphs, keeping only the last width
// samples. Scaling uses the min and max of the visible window, so an
// early spike that has scrolled off no longer flattens the rest.
func Sparkline(values []float64, width int) string {
	if width <= 0 || len(values) == 0 {
		return ""
	}
	if len(values) > width {
		values = values[len(values)-width:]
	}

	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	span := hi - lo
	if span < minRange {
		span = minRange
	}

	ramp := []rune(theme.SparkRamp)
	var b strings.Builder
	for _, v := range values {
		i := int(math.Round((v - lo) / span * float64(len(ramp)-1)))
		if i < 0 {
			i = 0
		}
		if i > len(ramp)-1 {
			i = len(ramp) - 1
		}
		b.WriteRune(ramp[i])
	}
	return b.String()
}

// View renders one sparkline row per metric, in first-seen order.
// height is the vertical space available to the panel: rows beyond it
// are dropped, and when not even one row fits (or there is nothing to
// draw) the panel is omitted entirely.
func (m Model) View(snap session.Snapshot, height int) string {
	if len(snap.Histories) == 0 || height < chromeRows+1 {
		return ""
	}

	width := m.Width
	if width < 24 {
		width = 24
	}

	nameW := 8
	for _, h := range snap.Histories {
		if len(h.Name) > nameW {
			nameW = len(h.Name)
		}
	}
	sparkW := width - nameW - 6
	if sparkW < 8 {
		sparkW = 8
	}

	maxRows := height - chromeRows
	lines := []string{theme.StyleHeader.Render(" History ")}
	for _, h := range snap.Histories {
		if len(lines)-1 >= maxRows {
			break
		}
		if len(h.Values) == 0 {
			continue
		}
		name := theme.StyleDimmed.Render(fmt.Sprintf("%-*s", nameW, h.Name))
		spark := lipgloss.NewStyle().Foreground(theme.DeviceColor(snap.Device)).
			Render(Sparkline(h.Values, sparkW))
		lines = append(lines, name+" "+spark)
	}

	return theme.StyleBorder.Width(width).Padding(0, 1).
		Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}
