// Package protocol decodes the newline-delimited JSON status stream a
// training producer writes to the dashboard. Each line is one event
// tagged by a "type" field: init, step, or done. Decoding is best
// effort — a line that does not form a complete event is dropped and
// the caller moves on to the next one.
package protocol

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Event is one decoded status event: *Init, *Step, or *Done.
type Event interface {
	event()
}

// Init announces run identity. Only Name is required on the wire;
// absent optional fields are substituted by the session layer.
type Init struct {
	Name        string
	ModelName   string
	HasModel    bool
	TotalParams string
	HasParams   bool
	Device      string
	HasDevice   bool
	TotalSteps  *uint64
}

// Step is one progress tick. Metrics holds only the numeric entries of
// the wire mapping; non-numeric values are dropped per entry.
type Step struct {
	Step    uint64
	Metrics map[string]float64
	Elapsed float64
}

// Done marks the run terminal at the given step.
type Done struct {
	Step uint64
}

func (*Init) event() {}
func (*Step) event() {}
func (*Done) event() {}

// ParamCount is the total_params wire field. Producers usually send a
// pre-formatted string ("11.2 M"), but a raw numeric count is accepted
// too and formatted with FormatCount.
type ParamCount string

func (p *ParamCount) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*p = ParamCount(s)
		return nil
	}
	var n float64
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*p = ParamCount(FormatCount(n))
	return nil
}

// FormatCount renders a parameter count with B/M/K suffixes: 1.2 B,
// 11.2 M, 30.5 K, plain below a thousand.
func FormatCount(n float64) string {
	switch {
	case n >= 1e9:
		return fmt.Sprintf("%.1f B", n/1e9)
	case n >= 1e6:
		return fmt.Sprintf("%.1f M", n/1e6)
	case n >= 1e3:
		return fmt.Sprintf("%.1f K", n/1e3)
	default:
		return fmt.Sprintf("%d", int64(n))
	}
}

// envelope is the union of all wire fields. Pointers distinguish absent
// from zero-valued fields so required-field checks are exact.
type envelope struct {
	Type        string          `json:"type"`
	Name        *string         `json:"name"`
	ExpName     *string         `json:"exp_name"` // emitted by the python tracker
	ModelName   *string         `json:"model_name"`
	TotalParams *ParamCount     `json:"total_params"`
	Device      *string         `json:"device"`
	TotalSteps  *uint64         `json:"total_steps"`
	Step        *uint64         `json:"step"`
	Metrics     json.RawMessage `json:"metrics"`
	Elapsed     *float64        `json:"elapsed"`
}

// Decode parses one line of the event stream. It returns (nil, false)
// for anything that is not a complete event: invalid JSON, an unknown
// discriminator, or a missing required field. It never returns an error.
func Decode(line string) (Event, bool) {
	var env envelope
	if err := json.Unmarshal([]byte(line), &env); err != nil {
		return nil, false
	}

	switch strings.ToLower(env.Type) {
	case "init":
		name := env.Name
		if name == nil {
			name = env.ExpName
		}
		if name == nil {
			return nil, false
		}
		ev := &Init{Name: *name, TotalSteps: env.TotalSteps}
		if env.ModelName != nil {
			ev.ModelName, ev.HasModel = *env.ModelName, true
		}
		if env.TotalParams != nil {
			ev.TotalParams, ev.HasParams = string(*env.TotalParams), true
		}
		if env.Device != nil {
			ev.Device, ev.HasDevice = *env.Device, true
		}
		return ev, true

	case "step":
		if env.Step == nil || env.Elapsed == nil || env.Metrics == nil {
			return nil, false
		}
		return &Step{
			Step:    *env.Step,
			Metrics: numericMetrics(env.Metrics),
			Elapsed: *env.Elapsed,
		}, true

	case "done":
		if env.Step == nil {
			return nil, false
		}
		return &Done{Step: *env.Step}, true
	}

	return nil, false
}

// numericMetrics extracts the numeric entries of a metrics object.
// A metrics value that is not a JSON object yields an empty map — the
// event is still valid, it just carries no samples.
func numericMetrics(raw json.RawMessage) map[string]float64 {
	var all map[string]any
	out := make(map[string]float64)
	if err := json.Unmarshal(raw, &all); err != nil {
		return out
	}
	for k, v := range all {
		if f, ok := v.(float64); ok {
			out[k] = f
		}
	}
	return out
}
