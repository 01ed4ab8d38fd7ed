package protocol

import "testing"

func TestDecodeInit(t *testing.T) {
	ev, ok := Decode(`{"type":"init","name":"run1","model_name":"ResNet18","total_params":"11.2 M","device":"cuda:0","total_steps":500}`)
	if !ok {
		t.Fatal("Decode returned false for valid init")
	}
	init, ok := ev.(*Init)
	if !ok {
		t.Fatalf("Decode returned %T, want *Init", ev)
	}
	if init.Name != "run1" {
		t.Errorf("Name = %q, want %q", init.Name, "run1")
	}
	if !init.HasModel || init.ModelName != "ResNet18" {
		t.Errorf("ModelName = %q (has=%v), want ResNet18", init.ModelName, init.HasModel)
	}
	if init.TotalSteps == nil || *init.TotalSteps != 500 {
		t.Errorf("TotalSteps = %v, want 500", init.TotalSteps)
	}
}

func TestDecodeInitExpNameAlias(t *testing.T) {
	ev, ok := Decode(`{"type":"init","exp_name":"cifar10"}`)
	if !ok {
		t.Fatal("Decode returned false for exp_name init")
	}
	init := ev.(*Init)
	if init.Name != "cifar10" {
		t.Errorf("Name = %q, want cifar10", init.Name)
	}
	if init.HasModel || init.HasParams || init.HasDevice {
		t.Error("optional fields should be marked absent")
	}
}

func TestDecodeInitNumericParamCount(t *testing.T) {
	ev, ok := Decode(`{"type":"init","name":"run1","total_params":11170000}`)
	if !ok {
		t.Fatal("Decode returned false for init with numeric total_params")
	}
	init := ev.(*Init)
	if !init.HasParams || init.TotalParams != "11.2 M" {
		t.Errorf("TotalParams = %q (has=%v), want \"11.2 M\"", init.TotalParams, init.HasParams)
	}
}

func TestFormatCount(t *testing.T) {
	tests := []struct {
		n    float64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1.0 K"},
		{30500, "30.5 K"},
		{1_200_000, "1.2 M"},
		{11_170_000, "11.2 M"},
		{1_300_000_000, "1.3 B"},
	}
	for _, tt := range tests {
		if got := FormatCount(tt.n); got != tt.want {
			t.Errorf("FormatCount(%v) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestDecodeCaseInsensitiveDiscriminator(t *testing.T) {
	for _, line := range []string{
		`{"type":"INIT","name":"x"}`,
		`{"type":"Init","name":"x"}`,
		`{"type":"DONE","step":3}`,
	} {
		if _, ok := Decode(line); !ok {
			t.Errorf("Decode(%s) = false, want true", line)
		}
	}
}

func TestDecodeStep(t *testing.T) {
	ev, ok := Decode(`{"type":"step","step":12,"metrics":{"loss":0.42,"acc":0.91},"elapsed":3.5}`)
	if !ok {
		t.Fatal("Decode returned false for valid step")
	}
	step := ev.(*Step)
	if step.Step != 12 || step.Elapsed != 3.5 {
		t.Errorf("Step/Elapsed = %d/%v, want 12/3.5", step.Step, step.Elapsed)
	}
	if step.Metrics["loss"] != 0.42 || step.Metrics["acc"] != 0.91 {
		t.Errorf("Metrics = %v", step.Metrics)
	}
}

func TestDecodeStepDropsNonNumericMetrics(t *testing.T) {
	ev, ok := Decode(`{"type":"step","step":1,"metrics":{"loss":0.5,"phase":"train","flag":true},"elapsed":1}`)
	if !ok {
		t.Fatal("Decode returned false; non-numeric metrics must not invalidate the event")
	}
	step := ev.(*Step)
	if len(step.Metrics) != 1 {
		t.Errorf("Metrics has %d entries, want 1: %v", len(step.Metrics), step.Metrics)
	}
	if step.Metrics["loss"] != 0.5 {
		t.Errorf("loss = %v, want 0.5", step.Metrics["loss"])
	}
}

func TestDecodeStepNonObjectMetrics(t *testing.T) {
	ev, ok := Decode(`{"type":"step","step":4,"metrics":[1,2],"elapsed":2}`)
	if !ok {
		t.Fatal("step with non-object metrics should still decode")
	}
	if len(ev.(*Step).Metrics) != 0 {
		t.Error("non-object metrics should yield no samples")
	}
}

func TestDecodeRejects(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{"empty", ""},
		{"garbage", "not json at all"},
		{"truncated json", `{"type":"step","step":1`},
		{"unknown type", `{"type":"pause","step":1}`},
		{"init without name", `{"type":"init","device":"cpu"}`},
		{"step without step", `{"type":"step","metrics":{},"elapsed":1}`},
		{"step without metrics", `{"type":"step","step":1,"elapsed":1}`},
		{"step without elapsed", `{"type":"step","step":1,"metrics":{}}`},
		{"done without step", `{"type":"done"}`},
		{"no discriminator", `{"step":1,"metrics":{},"elapsed":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if ev, ok := Decode(tt.line); ok {
				t.Errorf("Decode(%q) = %#v, want rejection", tt.line, ev)
			}
		})
	}
}

func TestDecodeDone(t *testing.T) {
	ev, ok := Decode(`{"type":"done","step":100}`)
	if !ok {
		t.Fatal("Decode returned false for valid done")
	}
	if ev.(*Done).Step != 100 {
		t.Errorf("Step = %d, want 100", ev.(*Done).Step)
	}
}
