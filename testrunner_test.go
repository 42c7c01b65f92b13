package rowan

import (
	"strings"
	"testing"
)

func TestLoadScriptValid(t *testing.T) {
	data := []byte(`{"steps":[
		{"action":"click","path":"body/0"},
		{"action":"wait","frames":3},
		{"action":"trigger","path":"body","event":"custom","payload":[1,2]},
		{"action":"resize","path":"body","width":100,"height":50},
		{"action":"stop"}
	]}`)
	r, err := LoadScript(data)
	if err != nil {
		t.Fatalf("LoadScript: %v", err)
	}
	if len(r.steps) != 5 {
		t.Errorf("steps = %d, want 5", len(r.steps))
	}
	if r.Done() {
		t.Error("new runner should not be done")
	}
}

func TestLoadScriptErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
		want string
	}{
		{"invalid json", `{not json`, "parse script"},
		{"no steps", `{"steps":[]}`, "no steps"},
		{"unknown action", `{"steps":[{"action":"jump"}]}`, `unknown action "jump"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadScript([]byte(tt.data))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want it to contain %q", err, tt.want)
			}
		})
	}
}

func TestScriptRunnerSequencesFrames(t *testing.T) {
	r := newRig(t, nil)
	runner, err := LoadScript([]byte(`{"steps":[
		{"action":"click","path":"body/0"},
		{"action":"wait","frames":2},
		{"action":"resize","path":"body","width":300,"height":200},
		{"action":"stop"}
	]}`))
	if err != nil {
		t.Fatal(err)
	}
	r.tm.SetScriptRunner(runner)
	r.tm.Start()

	// Frame 1 injects and delivers the click.
	r.tm.Step(0)
	if r.clicks != 1 {
		t.Errorf("clicks after frame 1 = %d, want 1", r.clicks)
	}

	// Frames 2 and 3 wait.
	r.tm.Step(16)
	r.tm.Step(32)
	if r.scene.Root().Size() != (Vec3{}) {
		t.Errorf("root resized too early: %v", r.scene.Root().Size())
	}

	// Frame 4 resizes, frame 5 stops.
	r.tm.Step(48)
	assertVec(t, "root size", r.scene.Root().Size(), Vec3{300, 200, 0})
	if runner.Done() {
		t.Error("runner done before the stop step")
	}
	r.tm.Step(64)
	if !runner.Done() {
		t.Error("runner should be done")
	}
	if r.tm.Running() || r.engine.Running() {
		t.Error("stop action should stop both loops")
	}
}

func TestScriptRunnerTriggerPayload(t *testing.T) {
	r := newRig(t, nil)
	var got any
	r.scene.Root().Dispatch().RegisterGlobalEvent("custom", func(p any) { got = p })
	runner, err := LoadScript([]byte(`{"steps":[{"action":"trigger","path":"body","event":"custom","payload":"x"}]}`))
	if err != nil {
		t.Fatal(err)
	}
	r.tm.SetScriptRunner(runner)
	r.tm.Step(0)
	if got != "x" {
		t.Errorf("payload = %v, want x", got)
	}
	if runner.Done() {
		t.Error("runner should wait for the injected event to drain")
	}
	r.tm.Step(16)
	if !runner.Done() {
		t.Error("runner should be done once the queue drains")
	}
}
