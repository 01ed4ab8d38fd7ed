// Package session holds the single mutable aggregate the dashboard
// renders from. The ingest side mutates it through Store.Apply; the
// render side reads an isolated copy through Store.Snapshot. The two
// never share memory past the snapshot boundary.
package session

import (
	"fmt"
	"sort"
	"sync"

	"github.com/ChanLumerico/torchlit/internal/protocol"
)

// DefaultHistoryWindow is the sample cap per metric history.
const DefaultHistoryWindow = 80

// Placeholder is shown for identity fields that were never supplied.
const Placeholder = "—"

// Metric is one (name, value) pair from the most recent step.
type Metric struct {
	Name  string
	Value float64
}

// MetricHistory is a sliding window of the most recent samples for one
// metric. Oldest samples are evicted when the window is full.
type MetricHistory struct {
	Name   string
	Values []float64
}

// SysStats is a host utilization reading shown in the timing panel.
// Producer-reported stats take precedence over locally sampled ones.
type SysStats struct {
	CPUPercent   float64
	RAMPercent   float64
	VRAMPercent  *float64
	FromProducer bool
	Valid        bool
}

// Snapshot is a self-contained copy of the session, safe to render from
// without holding any lock.
type Snapshot struct {
	Name        string
	ModelName   string
	TotalParams string
	Device      string
	TotalSteps  *uint64

	CurrentStep uint64
	Elapsed     float64
	StepsPerSec float64
	Done        bool

	LatestMetrics []Metric        // sorted by name ascending
	Histories     []MetricHistory // first-seen order
	Sys           SysStats
}

// Store owns the session aggregate. All mutation happens under its
// lock; Apply holds it only for one event's field updates.
type Store struct {
	mu     sync.Mutex
	window int

	snap  Snapshot
	index map[string]int // metric name -> position in snap.Histories

	prevStep    uint64
	prevElapsed float64
}

// NewStore creates a session with placeholder identity. window caps
// each metric history; values <= 0 fall back to DefaultHistoryWindow.
func NewStore(window int) *Store {
	if window <= 0 {
		window = DefaultHistoryWindow
	}
	return &Store{
		window: window,
		index:  make(map[string]int),
		snap: Snapshot{
			Name:        Placeholder,
			ModelName:   Placeholder,
			TotalParams: Placeholder,
			Device:      "CPU",
		},
	}
}

// Apply folds one decoded event into the session.
func (st *Store) Apply(ev protocol.Event) {
	st.mu.Lock()
	defer st.mu.Unlock()

	switch ev := ev.(type) {
	case *protocol.Init:
		st.applyInit(ev)
	case *protocol.Step:
		st.applyStep(ev)
	case *protocol.Done:
		st.snap.CurrentStep = ev.Step
		st.snap.Done = true
	}
}

// applyInit overwrites identity unconditionally. A second init mid-run
// replaces the first; the producer contract does not guard against it.
func (st *Store) applyInit(ev *protocol.Init) {
	st.snap.Name = ev.Name
	st.snap.ModelName = orDefault(ev.ModelName, ev.HasModel, Placeholder)
	st.snap.TotalParams = orDefault(ev.TotalParams, ev.HasParams, Placeholder)
	st.snap.Device = orDefault(ev.Device, ev.HasDevice, "CPU")
	if st.snap.TotalSteps == nil && ev.TotalSteps != nil {
		total := *ev.TotalSteps
		st.snap.TotalSteps = &total
	}
}

func (st *Store) applyStep(ev *protocol.Step) {
	dt := ev.Elapsed - st.prevElapsed
	var ds uint64
	if ev.Step > st.prevStep {
		ds = ev.Step - st.prevStep
	}
	st.prevStep = ev.Step
	st.prevElapsed = ev.Elapsed

	// Keep the last good rate: a duplicate or out-of-order tick must
	// not zero out the displayed speed.
	if dt > 0 {
		if rate := float64(ds) / dt; rate > 0 {
			st.snap.StepsPerSec = rate
		}
	}

	st.snap.CurrentStep = ev.Step
	st.snap.Elapsed = ev.Elapsed

	latest := make([]Metric, 0, len(ev.Metrics))
	for name, value := range ev.Metrics {
		latest = append(latest, Metric{Name: name, Value: value})
		st.appendSample(name, value)
	}
	sort.Slice(latest, func(i, j int) bool { return latest[i].Name < latest[j].Name })
	st.snap.LatestMetrics = latest
}

func (st *Store) appendSample(name string, value float64) {
	i, ok := st.index[name]
	if !ok {
		i = len(st.snap.Histories)
		st.index[name] = i
		st.snap.Histories = append(st.snap.Histories, MetricHistory{Name: name})
	}
	h := &st.snap.Histories[i]
	h.Values = append(h.Values, value)
	if len(h.Values) > st.window {
		h.Values = h.Values[len(h.Values)-st.window:]
	}
}

// SetDone marks the session terminal without a done event, e.g. when
// the event stream closes.
func (st *Store) SetDone() {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.snap.Done = true
}

// SetLocalSys records a locally sampled host reading. It is ignored
// once producer-side stats have been seen.
func (st *Store) SetLocalSys(cpuPct, ramPct float64) {
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.snap.Sys.FromProducer {
		return
	}
	st.snap.Sys = SysStats{CPUPercent: cpuPct, RAMPercent: ramPct, Valid: true}
}

// SetProducerSys records stats reported by the producer itself.
func (st *Store) SetProducerSys(cpuPct, ramPct float64, vramPct *float64) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.snap.Sys = SysStats{
		CPUPercent:   cpuPct,
		RAMPercent:   ramPct,
		VRAMPercent:  vramPct,
		FromProducer: true,
		Valid:        true,
	}
}

// Snapshot returns a deep copy of the current session state. The copy
// reflects whole events only, never a partially applied one.
func (st *Store) Snapshot() Snapshot {
	st.mu.Lock()
	defer st.mu.Unlock()

	out := st.snap
	if st.snap.TotalSteps != nil {
		total := *st.snap.TotalSteps
		out.TotalSteps = &total
	}
	if st.snap.Sys.VRAMPercent != nil {
		vram := *st.snap.Sys.VRAMPercent
		out.Sys.VRAMPercent = &vram
	}
	out.LatestMetrics = append([]Metric(nil), st.snap.LatestMetrics...)
	out.Histories = make([]MetricHistory, len(st.snap.Histories))
	for i, h := range st.snap.Histories {
		out.Histories[i] = MetricHistory{
			Name:   h.Name,
			Values: append([]float64(nil), h.Values...),
		}
	}
	return out
}

// History returns the history for a metric name, or nil.
func (s Snapshot) History(name string) *MetricHistory {
	for i := range s.Histories {
		if s.Histories[i].Name == name {
			return &s.Histories[i]
		}
	}
	return nil
}

// ProgressRatio is current/total clamped to [0,1], or 0 when the total
// is unknown.
func (s Snapshot) ProgressRatio() float64 {
	if s.TotalSteps == nil || *s.TotalSteps == 0 {
		return 0
	}
	ratio := float64(s.CurrentStep) / float64(*s.TotalSteps)
	if ratio > 1 {
		return 1
	}
	return ratio
}

// ETA formats the projected time remaining, or the placeholder when it
// cannot be computed (no total, no positive rate, or already past the
// final step).
func (s Snapshot) ETA() string {
	if s.TotalSteps == nil || s.StepsPerSec <= 0 || s.CurrentStep >= *s.TotalSteps {
		return Placeholder
	}
	remaining := float64(*s.TotalSteps-s.CurrentStep) / s.StepsPerSec
	return FormatDuration(remaining)
}

// FormatDuration renders seconds as HH:MM:SS past one hour, MM:SS below.
func FormatDuration(secs float64) string {
	if secs < 0 {
		secs = 0
	}
	total := uint64(secs)
	h := total / 3600
	m := (total % 3600) / 60
	sec := total % 60
	if h > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, sec)
	}
	return fmt.Sprintf("%02d:%02d", m, sec)
}

func orDefault(v string, has bool, def string) string {
	if has {
		return v
	}
	return def
}
