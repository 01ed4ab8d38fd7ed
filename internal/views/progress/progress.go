// Package progress renders the step gauge and the timing panel
// (elapsed, ETA, step rate, host utilization).
package progress

import (
	"fmt"

	bprogress "github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	"github.com/ChanLumerico/torchlit/internal/session"
	"github.com/ChanLumerico/torchlit/internal/theme"
)

// Model holds the gauge state.
type Model struct {
	Width int
	gauge bprogress.Model
}

// New creates a progress model.
func New() Model {
	g := bprogress.New(
		bprogress.WithSolidFill(string(theme.ColorGauge)),
		bprogress.WithoutPercentage(),
	)
	return Model{gauge: g}
}

// Label is the gauge caption: "Step cur/total — pct%" when the total is
// known, "Step cur" otherwise.
func Label(snap session.Snapshot) string {
	if snap.TotalSteps != nil {
		pct := int(snap.ProgressRatio() * 100)
		return fmt.Sprintf("Step %d/%d — %d%%", snap.CurrentStep, *snap.TotalSteps, pct)
	}
	return fmt.Sprintf("Step %d", snap.CurrentStep)
}

// View renders the gauge plus the timing panel.
func (m Model) View(snap session.Snapshot) string {
	width := m.Width
	if width < 24 {
		width = 24
	}
	inner := width - 4

	m.gauge.Width = inner
	bar := m.gauge.ViewAs(snap.ProgressRatio())

	label := lipgloss.NewStyle().Foreground(theme.ColorBright).Render(Label(snap))

	gaugePanel := theme.StyleBorder.Width(width).Padding(0, 1).
		Render(lipgloss.JoinVertical(lipgloss.Left, label, bar))

	return lipgloss.JoinVertical(lipgloss.Left, gaugePanel, m.timingPanel(snap, width))
}

func (m Model) timingPanel(snap session.Snapshot, width int) string {
	dim := theme.StyleDimmed
	bright := lipgloss.NewStyle().Foreground(theme.ColorBright)

	lines := []string{
		theme.StyleHeader.Render(" Timing "),
		dim.Render("elapsed  ") + bright.Render(session.FormatDuration(snap.Elapsed)),
		dim.Render("eta      ") + bright.Render(snap.ETA()),
		dim.Render("rate     ") + bright.Render(fmt.Sprintf("%.2f steps/s", snap.StepsPerSec)),
	}
	if line := sysLine(snap.Sys); line != "" {
		lines = append(lines, line)
	}

	return theme.StyleBorder.Width(width).Padding(0, 1).
		Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

// sysLine renders host utilization, or "" when no reading exists yet.
func sysLine(sys session.SysStats) string {
	if !sys.Valid {
		return ""
	}
	s := fmt.Sprintf("cpu %3.0f%%  ram %3.0f%%", sys.CPUPercent, sys.RAMPercent)
	if sys.VRAMPercent != nil {
		s += fmt.Sprintf("  vram %3.0f%%", *sys.VRAMPercent)
	}
	return theme.StyleDimmed.Render(s)
}
