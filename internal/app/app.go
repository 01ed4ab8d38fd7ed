// Package app holds the root Bubble Tea model: it polls the session
// store on a timer, lays out the panels, and drives the end-of-run
// grace period before quitting.
package app

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ChanLumerico/torchlit/internal/session"
	"github.com/ChanLumerico/torchlit/internal/theme"
	"github.com/ChanLumerico/torchlit/internal/views/debug"
	"github.com/ChanLumerico/torchlit/internal/views/header"
	"github.com/ChanLumerico/torchlit/internal/views/history"
	"github.com/ChanLumerico/torchlit/internal/views/metrics"
	"github.com/ChanLumerico/torchlit/internal/views/progress"
)

type tickMsg time.Time

// graceMsg fires after the hold period once the run has completed.
type graceMsg struct{}

// LogMsg carries an ingest diagnostic into the debug overlay. Sources
// deliver it from their own goroutines via Program.Send.
type LogMsg struct {
	Kind    string
	Message string
}

// Model is the root Bubble Tea model.
type Model struct {
	store   *session.Store
	refresh time.Duration
	grace   time.Duration

	keys   KeyMap
	width  int
	height int

	snap      session.Snapshot
	finishing bool
	showDebug bool

	header   header.Model
	metrics  metrics.Model
	progress progress.Model
	history  history.Model
	debug    debug.Model
}

// New creates the root model. refresh is the poll interval; grace is
// how long the final frame stays up after the run completes.
func New(store *session.Store, refresh, grace time.Duration) Model {
	if refresh <= 0 {
		refresh = 100 * time.Millisecond
	}
	return Model{
		store:    store,
		refresh:  refresh,
		grace:    grace,
		keys:     DefaultKeyMap(),
		snap:     store.Snapshot(),
		header:   header.New(),
		metrics:  metrics.New(),
		progress: progress.New(),
		history:  history.New(),
		debug:    debug.New(),
	}
}

// Init starts the poll timer.
func (m Model) Init() tea.Cmd {
	return m.tick()
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.refresh, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tickMsg:
		m.snap = m.store.Snapshot()
		if m.snap.Done && !m.finishing {
			// Hold the final frame so the completion footer is seen
			// before the alt screen is torn down.
			m.finishing = true
			return m, tea.Batch(m.tick(), tea.Tick(m.grace, func(time.Time) tea.Msg {
				return graceMsg{}
			}))
		}
		return m, m.tick()

	case graceMsg:
		return m, tea.Quit

	case LogMsg:
		m.debug.Add(msg.Kind, msg.Message)
		return m, nil
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showDebug {
		switch {
		case key.Matches(msg, m.keys.Escape), key.Matches(msg, m.keys.Debug):
			m.showDebug = false
		case key.Matches(msg, m.keys.Up):
			m.debug.ScrollUp(1)
		case key.Matches(msg, m.keys.Down):
			m.debug.ScrollDown(1)
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit), key.Matches(msg, m.keys.Escape):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Debug):
		m.showDebug = true
	}
	return m, nil
}

// layout distributes the window width: metrics on the left, gauge and
// sparklines stacked on the right.
func (m *Model) layout() {
	w := m.width
	if w < 60 {
		w = 60
	}
	m.header.Width = w - 2
	m.metrics.Width = w * 55 / 100
	right := w - m.metrics.Width - 2
	m.progress.Width = right
	m.history.Width = right
}

// View renders the full dashboard.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}

	if m.showDebug {
		return m.debug.View(m.width, m.height)
	}

	head := m.header.View(m.snap)
	prog := m.progress.View(m.snap)

	// The sparkline panel gets whatever height is left under the gauge;
	// it degrades to fewer rows, then disappears, as the terminal shrinks.
	histHeight := m.height - lipgloss.Height(head) - lipgloss.Height(prog) - 1
	right := prog
	if hist := m.history.View(m.snap, histHeight); hist != "" {
		right = lipgloss.JoinVertical(lipgloss.Left, prog, hist)
	}

	body := lipgloss.JoinHorizontal(lipgloss.Top,
		m.metrics.View(m.snap),
		right,
	)

	return lipgloss.JoinVertical(lipgloss.Left,
		head,
		body,
		m.footer(),
	)
}

func (m Model) footer() string {
	if m.snap.Done {
		return lipgloss.NewStyle().Foreground(theme.ColorHealthy).Bold(true).
			Render(fmt.Sprintf(" ✅ Training Complete — %d steps ", m.snap.CurrentStep))
	}
	return theme.StyleDimmed.Render("  d:ingest log  q:quit")
}
