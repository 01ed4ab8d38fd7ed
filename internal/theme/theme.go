// Package theme provides the Lip Gloss color palette and reusable styles
// for the progress dashboard. It is a leaf package with no internal
// imports to avoid import cycles.
package theme

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Device accent colors.
var (
	ColorDeviceApple  = lipgloss.Color("#c084fc")
	ColorDeviceNvidia = lipgloss.Color("#22c55e")
	ColorDeviceOther  = lipgloss.Color("#f59e0b")
)

// Trend colors: a falling metric reads as improvement.
var (
	ColorTrendDown = lipgloss.Color("#22c55e")
	ColorTrendUp   = lipgloss.Color("#dc2626")
)

// UI chrome colors.
var (
	ColorBorder  = lipgloss.Color("#4b5563")
	ColorDimmed  = lipgloss.Color("#6b7280")
	ColorBright  = lipgloss.Color("#f9fafb")
	ColorGauge   = lipgloss.Color("#06b6d4")
	ColorHealthy = lipgloss.Color("#22c55e")
	ColorDanger  = lipgloss.Color("#dc2626")
)

// Trend glyphs.
const (
	GlyphDown = "▼"
	GlyphUp   = "▲"
	GlyphFlat = "─"
)

// SparkRamp holds the sparkline glyphs from lowest to highest.
const SparkRamp = "▁▂▃▄▅▆▇█"

// DeviceColor returns the accent color for a device string. Apple
// silicon maps to magenta, NVIDIA to green, everything else (CPU
// included) to amber.
func DeviceColor(device string) lipgloss.Color {
	d := strings.ToLower(device)
	switch {
	case strings.Contains(d, "mps"), strings.Contains(d, "apple"):
		return ColorDeviceApple
	case strings.Contains(d, "cuda"), strings.Contains(d, "nvidia"):
		return ColorDeviceNvidia
	default:
		return ColorDeviceOther
	}
}

// Reusable styles.
var (
	StyleBorder = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder)

	StyleHeader = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorBright)

	StyleDimmed = lipgloss.NewStyle().
			Foreground(ColorDimmed)

	StyleTrendDown = lipgloss.NewStyle().Foreground(ColorTrendDown)
	StyleTrendUp   = lipgloss.NewStyle().Foreground(ColorTrendUp)
)
