package rowan

import (
	"encoding/json"
	"fmt"
)

// scriptStep represents a single action in a script.
type scriptStep struct {
	Action  string  `json:"action"`
	Path    string  `json:"path,omitempty"`
	Event   string  `json:"event,omitempty"`
	Payload any     `json:"payload,omitempty"`
	Width   float64 `json:"width,omitempty"`
	Height  float64 `json:"height,omitempty"`
	Frames  int     `json:"frames,omitempty"`
}

// script is the top-level JSON structure for a script.
type script struct {
	Steps []scriptStep `json:"steps"`
}

// ScriptRunner sequences injected UI events across frames for automated
// testing. Attach to a ThreadManager via SetScriptRunner.
//
// Actions: "trigger" (path, event, payload), "click" (path), "resize" (path,
// width, height), "wait" (frames) and "stop".
type ScriptRunner struct {
	steps     []scriptStep
	cursor    int
	waitCount int
	done      bool
}

// LoadScript parses a JSON script and returns a ScriptRunner.
func LoadScript(jsonData []byte) (*ScriptRunner, error) {
	var s script
	if err := json.Unmarshal(jsonData, &s); err != nil {
		return nil, fmt.Errorf("parse script: %w", err)
	}
	if len(s.Steps) == 0 {
		return nil, fmt.Errorf("parse script: no steps")
	}
	for i, st := range s.Steps {
		switch st.Action {
		case "trigger", "click", "resize", "wait", "stop":
		default:
			return nil, fmt.Errorf("parse script: step %d: unknown action %q", i, st.Action)
		}
	}
	return &ScriptRunner{steps: s.Steps}, nil
}

// SetScriptRunner attaches a runner, advanced once per Step before injected
// events are processed.
func (tm *ThreadManager) SetScriptRunner(runner *ScriptRunner) {
	tm.runner = runner
}

// Done reports whether all steps have been executed.
func (r *ScriptRunner) Done() bool {
	return r.done
}

// step advances the runner by one frame.
func (r *ScriptRunner) step(tm *ThreadManager) {
	if r.done {
		return
	}
	// Wait for pending injections to drain before advancing.
	if len(tm.injectQueue) > 0 {
		return
	}
	if r.waitCount > 0 {
		r.waitCount--
		return
	}
	if r.cursor >= len(r.steps) {
		r.done = true
		return
	}

	st := r.steps[r.cursor]
	r.cursor++

	switch st.Action {
	case "trigger":
		tm.InjectEvent(st.Path, st.Event, st.Payload)
	case "click":
		tm.InjectClick(st.Path)
	case "resize":
		tm.InjectResize(st.Path, st.Width, st.Height)
	case "wait":
		if st.Frames > 0 {
			r.waitCount = st.Frames - 1 // this frame counts as one
		}
	case "stop":
		tm.Stop()
	}

	if r.cursor >= len(r.steps) && r.waitCount == 0 && len(tm.injectQueue) == 0 {
		r.done = true
	}
}
