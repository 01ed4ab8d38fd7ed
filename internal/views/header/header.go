// Package header renders the run identity banner: experiment name,
// model, parameter count, and a device badge tinted by accelerator.
package header

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/ChanLumerico/torchlit/internal/session"
	"github.com/ChanLumerico/torchlit/internal/theme"
)

// Model holds the header state.
type Model struct {
	Width int
}

// New creates a header model.
func New() Model {
	return Model{}
}

// View renders the banner for the given snapshot.
func (m Model) View(snap session.Snapshot) string {
	width := m.Width
	if width < 40 {
		width = 40
	}

	accent := theme.DeviceColor(snap.Device)

	title := theme.StyleHeader.Render(snap.Name)
	model := theme.StyleDimmed.Render("model ") +
		lipgloss.NewStyle().Foreground(theme.ColorBright).Render(snap.ModelName)
	params := theme.StyleDimmed.Render("params ") +
		lipgloss.NewStyle().Foreground(theme.ColorBright).Render(snap.TotalParams)
	device := lipgloss.NewStyle().Foreground(accent).Bold(true).
		Render(fmt.Sprintf("[%s]", snap.Device))

	sep := lipgloss.NewStyle().Foreground(theme.ColorBorder).Render(" | ")
	content := title + sep + model + sep + params + sep + device

	return lipgloss.NewStyle().
		Width(width).
		Padding(0, 1).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(accent).
		Render(content)
}
