package history

import (
	"strings"
	"testing"

	"github.com/ChanLumerico/torchlit/internal/session"
)

func TestSparklineShape(t *testing.T) {
	got := Sparkline([]float64{0, 1, 2, 3, 4, 5, 6, 7}, 20)
	if got != "▁▂▃▄▅▆▇█" {
		t.Errorf("Sparkline linear ramp = %q, want full glyph ramp", got)
	}
}

// Glyph selection rounds to the nearest ramp step rather than
// truncating, so a midpoint value maps to the upper glyph.
func TestSparklineRoundsToNearestGlyph(t *testing.T) {
	got := Sparkline([]float64{0, 1, 2}, 10) // middle value scales to 3.5
	if got != "▁▅█" {
		t.Errorf("Sparkline midpoint = %q, want \"▁▅█\"", got)
	}
}

func TestSparklineConstantSeries(t *testing.T) {
	got := Sparkline([]float64{3, 3, 3, 3}, 10)
	if got != "▁▁▁▁" {
		t.Errorf("Sparkline constant = %q, want all-low glyphs", got)
	}
}

func TestSparklineEmpty(t *testing.T) {
	if got := Sparkline(nil, 10); got != "" {
		t.Errorf("Sparkline(nil) = %q, want empty", got)
	}
	if got := Sparkline([]float64{1, 2}, 0); got != "" {
		t.Errorf("Sparkline width 0 = %q, want empty", got)
	}
}

// An extreme sample that has scrolled past the visible window must not
// flatten the in-window glyphs.
func TestSparklineScalesToVisibleWindow(t *testing.T) {
	values := []float64{1000}
	for i := 0; i < 10; i++ {
		values = append(values, float64(i))
	}

	got := Sparkline(values, 10) // the 1000 spike falls outside
	if len([]rune(got)) != 10 {
		t.Fatalf("Sparkline length = %d, want 10", len([]rune(got)))
	}
	runes := []rune(got)
	if runes[0] != '▁' || runes[len(runes)-1] != '█' {
		t.Errorf("window [0..9] should span the full ramp, got %q", got)
	}
}

// A single sample still gets its row; only empty histories are skipped.
func TestViewDrawsSingleSampleRow(t *testing.T) {
	snap := session.Snapshot{
		Device: "cuda",
		Histories: []session.MetricHistory{
			{Name: "loss", Values: []float64{0.9, 0.8, 0.7}},
			{Name: "lr", Values: []float64{0.001}},
		},
	}

	out := Model{Width: 60}.View(snap, 20)
	if !strings.Contains(out, "loss") {
		t.Errorf("View() missing loss row:\n%s", out)
	}
	if !strings.Contains(out, "lr") {
		t.Errorf("View() missing single-sample lr row:\n%s", out)
	}
}

func TestViewCapsRowsToHeight(t *testing.T) {
	snap := session.Snapshot{
		Histories: []session.MetricHistory{
			{Name: "m1", Values: []float64{1, 2}},
			{Name: "m2", Values: []float64{1, 2}},
			{Name: "m3", Values: []float64{1, 2}},
			{Name: "m4", Values: []float64{1, 2}},
		},
	}

	// height 5 leaves room for two rows under the border and title.
	out := Model{Width: 60}.View(snap, 5)
	if !strings.Contains(out, "m1") || !strings.Contains(out, "m2") {
		t.Errorf("View() dropped rows that fit:\n%s", out)
	}
	if strings.Contains(out, "m3") || strings.Contains(out, "m4") {
		t.Errorf("View() rendered rows beyond the viewport:\n%s", out)
	}
}

func TestViewOmittedWhenTooShort(t *testing.T) {
	snap := session.Snapshot{
		Histories: []session.MetricHistory{{Name: "loss", Values: []float64{1, 2}}},
	}
	if out := (Model{Width: 60}).View(snap, 3); out != "" {
		t.Errorf("View() with no room for a row = %q, want omitted panel", out)
	}
}

func TestViewOmittedWhenEmpty(t *testing.T) {
	if out := (Model{Width: 60}).View(session.Snapshot{}, 20); out != "" {
		t.Errorf("View() with no histories = %q, want omitted panel", out)
	}
}
